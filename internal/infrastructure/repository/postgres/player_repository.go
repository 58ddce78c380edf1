package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/player"
	qb "github.com/riskibarqy/dynasty-lineage/internal/platform/querybuilder"
)

const upsertPlayerSuffix = `ON CONFLICT (player_id)
DO UPDATE SET
    full_name = EXCLUDED.full_name,
    position = EXCLUDED.position,
    team = EXCLUDED.team,
    status = EXCLUDED.status,
    updated_at = NOW()`

type playerTableModel struct {
	PlayerID string `db:"player_id"`
	FullName string `db:"full_name"`
	Position string `db:"position"`
	Team     string `db:"team"`
	Status   string `db:"status"`
}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select(qb.Columns(playerTableModel{})...).From("players").
		Where(qb.InStrings("player_id", playerIDs)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ids query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by ids: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:       row.PlayerID,
			FullName: row.FullName,
			Position: row.Position,
			Team:     row.Team,
			Status:   row.Status,
		})
	}

	return out, nil
}

// UpsertPlayers writes one batch as a single statement. A repeated id keeps
// the last record.
func (r *PlayerRepository) UpsertPlayers(ctx context.Context, items []player.Player) error {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[string]int, len(items))
	models := make([]any, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("validate player: %w", err)
		}
		model := playerTableModel{
			PlayerID: item.ID,
			FullName: item.FullName,
			Position: item.Position,
			Team:     item.Team,
			Status:   item.Status,
		}
		if idx, ok := seen[item.ID]; ok {
			models[idx] = model
			continue
		}
		seen[item.ID] = len(models)
		models = append(models, model)
	}

	query, args, err := qb.InsertModels("players", models, upsertPlayerSuffix)
	if err != nil {
		return fmt.Errorf("build upsert players query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert players: %w", err)
	}

	return nil
}
