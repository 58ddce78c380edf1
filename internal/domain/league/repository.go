package league

import "context"

// Repository describes league, roster and manager persistence.
type Repository interface {
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	ListRosters(ctx context.Context, leagueID string) ([]Roster, error)
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
}

// Snapshot is the refreshed league metadata of one rebuild pass.
type Snapshot struct {
	Leagues  []League
	Rosters  []Roster
	Managers []Manager
}
