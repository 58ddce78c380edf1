package asset

import "context"

// Repository is the event store of the lineage engine. A family's events
// are only ever replaced wholesale.
type Repository interface {
	// ReplaceFamily deletes every event of leagueIDs and inserts events in
	// one transaction. A business key collision fails with ErrDuplicateEvent
	// and leaves the stored events untouched.
	ReplaceFamily(ctx context.Context, leagueIDs []string, events []Event) (int, error)
	ListByFamily(ctx context.Context, leagueIDs []string) ([]Event, error)
	ListByAsset(ctx context.Context, leagueIDs []string, ref Ref) ([]Event, error)
	ListByTransactions(ctx context.Context, leagueIDs []string, transactionIDs []string) ([]Event, error)
}
