package sleeper

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/player"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/transaction"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
)

const defaultSport = "nfl"

func (c *Client) GetLeague(ctx context.Context, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", usecase.ErrInvalidInput)
	}

	// Unknown leagues come back as a literal null.
	var out *leagueResponse
	if err := c.doJSON(ctx, "/league/"+leagueID, &out); err != nil {
		return league.League{}, fmt.Errorf("fetch league %s: %w", leagueID, err)
	}
	if out == nil || out.LeagueID == "" {
		return league.League{}, fmt.Errorf("%w: league %s", usecase.ErrNotFound, leagueID)
	}
	return out.toDomain(), nil
}

func (c *Client) GetRosters(ctx context.Context, leagueID string) ([]league.Roster, error) {
	var out []rosterResponse
	if err := c.doJSON(ctx, "/league/"+leagueID+"/rosters", &out); err != nil {
		return nil, fmt.Errorf("fetch rosters of league %s: %w", leagueID, err)
	}
	items := make([]league.Roster, 0, len(out))
	for _, r := range out {
		items = append(items, r.toDomain(leagueID))
	}
	return items, nil
}

func (c *Client) GetUsers(ctx context.Context, leagueID string) ([]league.Manager, error) {
	var out []userResponse
	if err := c.doJSON(ctx, "/league/"+leagueID+"/users", &out); err != nil {
		return nil, fmt.Errorf("fetch users of league %s: %w", leagueID, err)
	}
	items := make([]league.Manager, 0, len(out))
	for _, u := range out {
		items = append(items, u.toDomain())
	}
	return items, nil
}

// GetTransactions lists the transactions of one week (leg) of a league.
func (c *Client) GetTransactions(ctx context.Context, leagueID string, week int) ([]transaction.Transaction, error) {
	var out []transactionResponse
	path := fmt.Sprintf("/league/%s/transactions/%d", leagueID, week)
	if err := c.doJSON(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("fetch transactions of league %s week %d: %w", leagueID, week, err)
	}
	items := make([]transaction.Transaction, 0, len(out))
	for _, t := range out {
		items = append(items, t.toDomain(leagueID))
	}
	return items, nil
}

func (c *Client) GetLeagueTradedPicks(ctx context.Context, leagueID string) ([]transaction.TradedPick, error) {
	var out []tradedPickResponse
	if err := c.doJSON(ctx, "/league/"+leagueID+"/traded_picks", &out); err != nil {
		return nil, fmt.Errorf("fetch traded picks of league %s: %w", leagueID, err)
	}
	return tradedPicks(out), nil
}

func (c *Client) GetDrafts(ctx context.Context, leagueID string) ([]transaction.Draft, error) {
	var out []draftResponse
	if err := c.doJSON(ctx, "/league/"+leagueID+"/drafts", &out); err != nil {
		return nil, fmt.Errorf("fetch drafts of league %s: %w", leagueID, err)
	}
	items := make([]transaction.Draft, 0, len(out))
	for _, d := range out {
		items = append(items, d.toDomain())
	}
	return items, nil
}

func (c *Client) GetDraftPicks(ctx context.Context, draftID string) ([]transaction.DraftSelection, error) {
	var out []draftPickResponse
	if err := c.doJSON(ctx, "/draft/"+draftID+"/picks", &out); err != nil {
		return nil, fmt.Errorf("fetch picks of draft %s: %w", draftID, err)
	}
	items := make([]transaction.DraftSelection, 0, len(out))
	for _, p := range out {
		items = append(items, p.toDomain(draftID))
	}
	return items, nil
}

func (c *Client) GetDraftTradedPicks(ctx context.Context, draftID string) ([]transaction.TradedPick, error) {
	var out []tradedPickResponse
	if err := c.doJSON(ctx, "/draft/"+draftID+"/traded_picks", &out); err != nil {
		return nil, fmt.Errorf("fetch traded picks of draft %s: %w", draftID, err)
	}
	return tradedPicks(out), nil
}

// GetPlayers downloads the full player directory. The payload is large, so
// callers should sync at most daily.
func (c *Client) GetPlayers(ctx context.Context) ([]player.Player, error) {
	var out map[string]playerResponse
	if err := c.doJSON(ctx, "/players/"+defaultSport, &out); err != nil {
		return nil, fmt.Errorf("fetch players: %w", err)
	}
	items := make([]player.Player, 0, len(out))
	for _, id := range sortedPlayerIDs(out) {
		items = append(items, out[id].toDomain(id))
	}
	return items, nil
}

func tradedPicks(in []tradedPickResponse) []transaction.TradedPick {
	items := make([]transaction.TradedPick, 0, len(in))
	for _, p := range in {
		items = append(items, p.toDomain())
	}
	return items
}
