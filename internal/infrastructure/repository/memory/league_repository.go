package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
)

type LeagueRepository struct {
	mu       sync.RWMutex
	items    map[string]league.League
	rosters  map[string][]league.Roster
	managers map[string]league.Manager
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	for _, l := range leagues {
		items[l.ID] = l
	}

	return &LeagueRepository{
		items:    items,
		rosters:  make(map[string][]league.Roster),
		managers: make(map[string]league.Manager),
	}
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}

	return l, true, nil
}

func (r *LeagueRepository) ListRosters(_ context.Context, leagueID string) ([]league.Roster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]league.Roster(nil), r.rosters[leagueID]...)
	return out, nil
}

func (r *LeagueRepository) SaveSnapshot(_ context.Context, snapshot league.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range snapshot.Leagues {
		r.items[l.ID] = l
	}

	byLeague := make(map[string][]league.Roster)
	for _, roster := range snapshot.Rosters {
		byLeague[roster.LeagueID] = append(byLeague[roster.LeagueID], roster)
	}
	for leagueID, rosters := range byLeague {
		sort.Slice(rosters, func(i, j int) bool { return rosters[i].RosterID < rosters[j].RosterID })
		r.rosters[leagueID] = rosters
	}

	for _, m := range snapshot.Managers {
		r.managers[m.ID] = m
	}

	return nil
}

// Manager is a test helper; the lineage use cases never read managers back.
func (r *LeagueRepository) Manager(managerID string) (league.Manager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.managers[managerID]
	return m, ok
}
