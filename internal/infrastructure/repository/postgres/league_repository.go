package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	qb "github.com/riskibarqy/dynasty-lineage/internal/platform/querybuilder"
)

const (
	upsertLeagueSuffix = `ON CONFLICT (league_id)
DO UPDATE SET
    name = EXCLUDED.name,
    season = EXCLUDED.season,
    previous_league_id = EXCLUDED.previous_league_id,
    total_rosters = EXCLUDED.total_rosters,
    status = EXCLUDED.status,
    settings = EXCLUDED.settings,
    updated_at = NOW()`

	upsertManagerSuffix = `ON CONFLICT (manager_id)
DO UPDATE SET
    display_name = EXCLUDED.display_name,
    username = EXCLUDED.username,
    team_name = EXCLUDED.team_name,
    updated_at = NOW()`

	upsertRosterSuffix = `ON CONFLICT (league_id, roster_id)
DO UPDATE SET
    owner_id = EXCLUDED.owner_id,
    updated_at = NOW()`
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by id query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by id: %w", err)
	}

	settings, err := decodeJSONObject(row.Settings)
	if err != nil {
		return league.League{}, false, fmt.Errorf("decode settings of league %s: %w", row.LeagueID, err)
	}

	return league.League{
		ID:               row.LeagueID,
		Name:             row.Name,
		Season:           row.Season,
		PreviousLeagueID: row.PreviousLeagueID.String,
		TotalRosters:     row.TotalRosters,
		Status:           row.Status,
		Settings:         settings,
	}, true, nil
}

func (r *LeagueRepository) ListRosters(ctx context.Context, leagueID string) ([]league.Roster, error) {
	query, args, err := qb.Select("league_id", "roster_id", "owner_id").From("rosters").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("roster_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rosters query: %w", err)
	}

	var rows []rosterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}

	out := make([]league.Roster, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.Roster{
			LeagueID: row.LeagueID,
			RosterID: row.RosterID,
			OwnerID:  row.OwnerID.String,
		})
	}

	return out, nil
}

// SaveSnapshot upserts leagues before rosters so the roster foreign key
// always has a parent row.
func (r *LeagueRepository) SaveSnapshot(ctx context.Context, snapshot league.Snapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for league snapshot: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := saveSnapshot(ctx, tx, snapshot); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit league snapshot: %w", err)
	}

	return nil
}

func saveSnapshot(ctx context.Context, tx *sqlx.Tx, snapshot league.Snapshot) error {
	for _, item := range snapshot.Leagues {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("validate league %s: %w", item.ID, err)
		}
		settings, err := encodeJSON(item.Settings, "{}")
		if err != nil {
			return fmt.Errorf("encode settings of league %s: %w", item.ID, err)
		}
		prev := ""
		if item.HasPrevious() {
			prev = item.PreviousLeagueID
		}
		query, args, err := qb.InsertModel("leagues", leagueInsertModel{
			LeagueID:         item.ID,
			Name:             item.Name,
			Season:           item.Season,
			PreviousLeagueID: optionalString(prev),
			TotalRosters:     item.TotalRosters,
			Status:           item.Status,
			Settings:         settings,
		}, upsertLeagueSuffix)
		if err != nil {
			return fmt.Errorf("build upsert league query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert league %s: %w", item.ID, err)
		}
	}

	managers := dedupeManagers(snapshot.Managers)
	if len(managers) > 0 {
		query, args, err := qb.InsertModels("managers", managers, upsertManagerSuffix)
		if err != nil {
			return fmt.Errorf("build upsert managers query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert managers: %w", err)
		}
	}

	rosters := dedupeRosters(snapshot.Rosters)
	if len(rosters) > 0 {
		query, args, err := qb.InsertModels("rosters", rosters, upsertRosterSuffix)
		if err != nil {
			return fmt.Errorf("build upsert rosters query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert rosters: %w", err)
		}
	}

	return nil
}

// dedupeManagers keeps the last record per manager; one multi-row upsert
// cannot touch the same conflict key twice.
func dedupeManagers(items []league.Manager) []any {
	byID := make(map[string]league.Manager, len(items))
	for _, m := range items {
		if m.ID == "" {
			continue
		}
		byID[m.ID] = m
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]any, 0, len(ids))
	for _, id := range ids {
		m := byID[id]
		out = append(out, managerInsertModel{
			ManagerID:   m.ID,
			DisplayName: m.DisplayName,
			Username:    m.Username,
			TeamName:    m.TeamName,
		})
	}
	return out
}

func dedupeRosters(items []league.Roster) []any {
	type key struct {
		league string
		roster int
	}
	seen := make(map[key]int, len(items))
	kept := make([]league.Roster, 0, len(items))
	for _, item := range items {
		if item.LeagueID == "" || item.RosterID <= 0 {
			continue
		}
		k := key{league: item.LeagueID, roster: item.RosterID}
		if idx, ok := seen[k]; ok {
			kept[idx] = item
			continue
		}
		seen[k] = len(kept)
		kept = append(kept, item)
	}

	out := make([]any, 0, len(kept))
	for _, item := range kept {
		out = append(out, rosterTableModel{
			LeagueID: item.LeagueID,
			RosterID: item.RosterID,
			OwnerID:  optionalString(item.OwnerID),
		})
	}
	return out
}
