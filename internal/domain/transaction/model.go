package transaction

import (
	"fmt"
	"strings"
	"time"
)

// Type is the upstream transaction category.
type Type string

const (
	TypeTrade        Type = "trade"
	TypeWaiver       Type = "waiver"
	TypeFreeAgent    Type = "free_agent"
	TypeCommissioner Type = "commissioner"
)

const StatusComplete = "complete"

// Transaction is one upstream transaction record of a league week.
// Adds and Drops map a player id to the league-local roster id.
type Transaction struct {
	ID            string
	LeagueID      string
	Type          Type
	Status        string
	Leg           int
	Created       int64
	StatusUpdated int64
	Creator       string
	RosterIDs     []int
	Adds          map[string]int
	Drops         map[string]int
	DraftPicks    []TradedPick
	WaiverBid     *int
}

func (t Transaction) Complete() bool {
	return strings.EqualFold(strings.TrimSpace(t.Status), StatusComplete)
}

// Timestamp prefers the status change time over the creation time.
func (t Transaction) Timestamp() time.Time {
	ms := t.StatusUpdated
	if ms <= 0 {
		ms = t.Created
	}
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// Week returns the leg as a week number. Legs of zero or below are not
// week scoped.
func (t Transaction) Week() *int {
	if t.Leg <= 0 {
		return nil
	}
	week := t.Leg
	return &week
}

// TradedPick is a draft-pick movement as reported by the upstream platform.
// RosterID is the pick's original owner; OwnerID and PreviousOwnerID are the
// receiving and sending rosters.
type TradedPick struct {
	Season          string
	Round           int
	RosterID        int
	OwnerID         int
	PreviousOwnerID int
}

func (p TradedPick) Validate() error {
	if strings.TrimSpace(p.Season) == "" {
		return fmt.Errorf("traded pick season is required")
	}
	if p.Round <= 0 {
		return fmt.Errorf("traded pick round must be > 0")
	}
	if p.RosterID <= 0 {
		return fmt.Errorf("traded pick original roster must be > 0")
	}
	return nil
}

// Draft is one draft of a league season. SlotToRosterID maps a draft slot
// to the roster sitting in it.
type Draft struct {
	ID             string
	LeagueID       string
	Season         string
	Status         string
	Type           string
	StartTime      int64
	Rounds         int
	Teams          int
	SlotToRosterID map[int]int
}

// SelectionTime places a selection on the timeline. Selections are spaced by
// one millisecond per overall pick so a draft keeps its order.
func (d Draft) SelectionTime(pickNo int) time.Time {
	if d.StartTime <= 0 {
		return time.UnixMilli(int64(pickNo)).UTC()
	}
	return time.UnixMilli(d.StartTime + int64(pickNo)).UTC()
}

// DraftSelection is one pick made in a draft.
type DraftSelection struct {
	DraftID   string
	PickNo    int
	Round     int
	DraftSlot int
	RosterID  int
	PlayerID  string
	PickedBy  string
	IsKeeper  bool
}

// SourceID is the synthetic transaction id shared by every event of one
// selection.
func (s DraftSelection) SourceID() string {
	return fmt.Sprintf("draft:%s:%d", s.DraftID, s.PickNo)
}
