package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/player"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/transaction"
)

// fakeProvider serves a fixed upstream snapshot: three seasons of one
// family where roster 5 (manager X) trades player A and its 2024 first to
// roster 2 (manager Y), who drafts B with that pick.
type fakeProvider struct {
	mu           sync.Mutex
	leagues      map[string]league.League
	rosters      map[string][]league.Roster
	users        map[string][]league.Manager
	transactions map[string]map[int][]transaction.Transaction
	drafts       map[string][]transaction.Draft
	draftPicks   map[string][]transaction.DraftSelection
	players      []player.Player

	transactionErr error
	calls          int
}

func newScenarioProvider() *fakeProvider {
	rosters := func(leagueID string) []league.Roster {
		return []league.Roster{
			{LeagueID: leagueID, RosterID: 1, OwnerID: "M1"},
			{LeagueID: leagueID, RosterID: 2, OwnerID: "Y"},
			{LeagueID: leagueID, RosterID: 3, OwnerID: "M3"},
			{LeagueID: leagueID, RosterID: 4, OwnerID: "M4"},
			{LeagueID: leagueID, RosterID: 5, OwnerID: "X"},
			{LeagueID: leagueID, RosterID: 6, OwnerID: "M6"},
		}
	}
	users := []league.Manager{
		{ID: "M1", DisplayName: "one"},
		{ID: "Y", DisplayName: "why"},
		{ID: "X", DisplayName: "ex"},
	}

	return &fakeProvider{
		leagues: map[string]league.League{
			"L2022": {ID: "L2022", Season: "2022", TotalRosters: 6},
			"L2023": {ID: "L2023", Season: "2023", PreviousLeagueID: "L2022", TotalRosters: 6},
			"L2024": {ID: "L2024", Season: "2024", PreviousLeagueID: "L2023", TotalRosters: 6},
		},
		rosters: map[string][]league.Roster{
			"L2022": rosters("L2022"),
			"L2023": rosters("L2023"),
			"L2024": rosters("L2024"),
		},
		users: map[string][]league.Manager{"L2022": users, "L2023": users, "L2024": users},
		transactions: map[string]map[int][]transaction.Transaction{
			"L2022": {
				2: {{
					ID: "F1", LeagueID: "L2022", Type: transaction.TypeFreeAgent, Status: transaction.StatusComplete,
					Leg: 2, Created: 1_660_000_000_000, Adds: map[string]int{"Z": 1},
				}},
			},
			"L2023": {
				4: {{
					ID: "T1", LeagueID: "L2023", Type: transaction.TypeTrade, Status: transaction.StatusComplete,
					Leg: 4, Created: 1_690_000_000_000, StatusUpdated: 1_690_000_100_000,
					RosterIDs: []int{5, 2},
					Adds:      map[string]int{"A": 2},
					Drops:     map[string]int{"A": 5},
					DraftPicks: []transaction.TradedPick{
						{Season: "2024", Round: 1, RosterID: 5, OwnerID: 2, PreviousOwnerID: 5},
					},
				}},
			},
		},
		drafts: map[string][]transaction.Draft{
			"L2024": {{
				ID: "D24", LeagueID: "L2024", Season: "2024", Status: "complete",
				StartTime: 1_714_000_000_000, Rounds: 2, Teams: 6,
				SlotToRosterID: map[int]int{1: 1, 2: 2, 3: 3, 4: 4, 5: 5, 6: 6},
			}},
		},
		draftPicks: map[string][]transaction.DraftSelection{
			"D24": {
				{DraftID: "D24", PickNo: 1, Round: 1, DraftSlot: 1, RosterID: 1, PlayerID: "P1", PickedBy: "M1"},
				{DraftID: "D24", PickNo: 2, Round: 1, DraftSlot: 2, RosterID: 2, PlayerID: "B", PickedBy: "Y"},
				{DraftID: "D24", PickNo: 5, Round: 1, DraftSlot: 5, RosterID: 2, PlayerID: "C", PickedBy: "Y"},
			},
		},
		players: []player.Player{
			{ID: "A", FullName: "Player Alpha", Position: "WR"},
			{ID: "B", FullName: "Player Bravo", Position: "RB"},
		},
	}
}

func (p *fakeProvider) count() {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
}

func (p *fakeProvider) GetLeague(_ context.Context, leagueID string) (league.League, error) {
	p.count()
	lg, ok := p.leagues[leagueID]
	if !ok {
		return league.League{}, ErrNotFound
	}
	return lg, nil
}

func (p *fakeProvider) GetRosters(_ context.Context, leagueID string) ([]league.Roster, error) {
	p.count()
	return p.rosters[leagueID], nil
}

func (p *fakeProvider) GetUsers(_ context.Context, leagueID string) ([]league.Manager, error) {
	p.count()
	return p.users[leagueID], nil
}

func (p *fakeProvider) GetTransactions(_ context.Context, leagueID string, week int) ([]transaction.Transaction, error) {
	p.count()
	if p.transactionErr != nil {
		return nil, p.transactionErr
	}
	return p.transactions[leagueID][week], nil
}

func (p *fakeProvider) GetLeagueTradedPicks(context.Context, string) ([]transaction.TradedPick, error) {
	p.count()
	return nil, nil
}

func (p *fakeProvider) GetDrafts(_ context.Context, leagueID string) ([]transaction.Draft, error) {
	p.count()
	return p.drafts[leagueID], nil
}

func (p *fakeProvider) GetDraftPicks(_ context.Context, draftID string) ([]transaction.DraftSelection, error) {
	p.count()
	return p.draftPicks[draftID], nil
}

func (p *fakeProvider) GetDraftTradedPicks(context.Context, string) ([]transaction.TradedPick, error) {
	p.count()
	return nil, nil
}

func (p *fakeProvider) GetPlayers(context.Context) ([]player.Player, error) {
	p.count()
	return p.players, nil
}

// cachingProvider keeps transaction pages until ClearCache, the way the
// Sleeper client keeps response bodies.
type cachingProvider struct {
	*fakeProvider
	pages  map[string][]transaction.Transaction
	clears int
}

func newCachingProvider(inner *fakeProvider) *cachingProvider {
	return &cachingProvider{fakeProvider: inner, pages: make(map[string][]transaction.Transaction)}
}

func (p *cachingProvider) GetTransactions(ctx context.Context, leagueID string, week int) ([]transaction.Transaction, error) {
	key := fmt.Sprintf("%s/%d", leagueID, week)
	if page, ok := p.pages[key]; ok {
		return page, nil
	}
	page, err := p.fakeProvider.GetTransactions(ctx, leagueID, week)
	if err != nil {
		return nil, err
	}
	p.pages[key] = page
	return page, nil
}

func (p *cachingProvider) ClearCache() {
	p.clears++
	p.pages = make(map[string][]transaction.Transaction)
}
