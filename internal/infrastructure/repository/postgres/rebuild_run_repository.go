package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/rebuild"
	qb "github.com/riskibarqy/dynasty-lineage/internal/platform/querybuilder"
)

type rebuildRunTableModel struct {
	RunID            string         `db:"run_id"`
	FamilyKey        string         `db:"family_key"`
	HeadLeagueID     string         `db:"head_league_id"`
	Status           string         `db:"status"`
	Stage            string         `db:"stage"`
	LeaguesProcessed int            `db:"leagues_processed"`
	EventsWritten    int            `db:"events_written"`
	Warnings         []byte         `db:"warnings"`
	ErrorMessage     sql.NullString `db:"error_message"`
	TraceID          sql.NullString `db:"trace_id"`
	StartedAt        time.Time      `db:"started_at"`
	FinishedAt       *time.Time     `db:"finished_at"`
}

type rebuildRunInsertModel struct {
	RunID        string         `db:"run_id"`
	FamilyKey    string         `db:"family_key"`
	HeadLeagueID string         `db:"head_league_id"`
	Status       string         `db:"status"`
	TraceID      sql.NullString `db:"trace_id"`
	StartedAt    time.Time      `db:"started_at"`
}

type RebuildRunRepository struct {
	db *sqlx.DB
}

func NewRebuildRunRepository(db *sqlx.DB) *RebuildRunRepository {
	return &RebuildRunRepository{db: db}
}

func (r *RebuildRunRepository) Start(ctx context.Context, run rebuild.Run) error {
	query, args, err := qb.InsertModel("rebuild_runs", rebuildRunInsertModel{
		RunID:        run.ID,
		FamilyKey:    run.FamilyKey,
		HeadLeagueID: run.HeadLeagueID,
		Status:       string(run.Status),
		TraceID:      optionalString(run.TraceID),
		StartedAt:    run.StartedAt.UTC(),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert rebuild run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert rebuild run: %w", err)
	}
	return nil
}

func (r *RebuildRunRepository) Finish(ctx context.Context, run rebuild.Run) error {
	warnings, err := encodeJSON(run.Warnings, "[]")
	if err != nil {
		return fmt.Errorf("encode rebuild warnings: %w", err)
	}
	finishedAt := time.Now().UTC()
	if run.FinishedAt != nil {
		finishedAt = run.FinishedAt.UTC()
	}

	query, args, err := qb.Update("rebuild_runs").
		Set("status", string(run.Status)).
		Set("stage", run.Stage).
		Set("leagues_processed", run.LeaguesProcessed).
		Set("events_written", run.EventsWritten).
		Set("warnings", warnings).
		Set("error_message", optionalString(run.ErrorMessage)).
		Set("finished_at", finishedAt).
		Where(qb.Eq("run_id", run.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build finish rebuild run query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("finish rebuild run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish rebuild run rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rebuild run %s not found", run.ID)
	}
	return nil
}

func (r *RebuildRunRepository) ListRecent(ctx context.Context, familyKey string, limit int) ([]rebuild.Run, error) {
	b := qb.Select(qb.Columns(rebuildRunTableModel{})...).From("rebuild_runs").
		Where(qb.Eq("family_key", familyKey)).
		OrderBy("started_at DESC", "id DESC")
	if limit > 0 {
		b = b.Limit(limit)
	}
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rebuild runs query: %w", err)
	}

	var rows []rebuildRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rebuild runs: %w", err)
	}

	out := make([]rebuild.Run, 0, len(rows))
	for _, row := range rows {
		warnings, err := decodeJSONStrings(row.Warnings)
		if err != nil {
			return nil, fmt.Errorf("decode warnings of run %s: %w", row.RunID, err)
		}
		out = append(out, rebuild.Run{
			ID:               row.RunID,
			FamilyKey:        row.FamilyKey,
			HeadLeagueID:     row.HeadLeagueID,
			Status:           rebuild.Status(row.Status),
			Stage:            row.Stage,
			LeaguesProcessed: row.LeaguesProcessed,
			EventsWritten:    row.EventsWritten,
			Warnings:         warnings,
			ErrorMessage:     row.ErrorMessage.String,
			TraceID:          row.TraceID.String,
			StartedAt:        row.StartedAt.UTC(),
			FinishedAt:       row.FinishedAt,
		})
	}

	return out, nil
}
