package lineage

import "fmt"

// Warning codes for recoverable data-quality conditions.
const (
	WarnRosterUnmapped  = "roster_unmapped"
	WarnPickUnresolved  = "pick_unresolved"
	WarnUnknownType     = "unknown_transaction_type"
	WarnInvalidPick     = "invalid_pick_record"
	WarnMissingPlayer   = "missing_player"
	WarnMissingUpstream = "missing_upstream_record"
)

// Warning describes input the engine could only partially interpret. The
// affected events are still emitted.
type Warning struct {
	Code          string
	LeagueID      string
	TransactionID string
	Message       string
}

func (w Warning) String() string {
	if w.TransactionID == "" {
		return fmt.Sprintf("[%s] league %s: %s", w.Code, w.LeagueID, w.Message)
	}
	return fmt.Sprintf("[%s] league %s tx %s: %s", w.Code, w.LeagueID, w.TransactionID, w.Message)
}
