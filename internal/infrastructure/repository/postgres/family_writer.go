package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
)

// FamilyWriter commits the league snapshot and the event log of a rebuilt
// family together. Either both are visible or neither is.
type FamilyWriter struct {
	db *sqlx.DB
}

func NewFamilyWriter(db *sqlx.DB) *FamilyWriter {
	return &FamilyWriter{db: db}
}

func (w *FamilyWriter) WriteFamily(ctx context.Context, snapshot league.Snapshot, leagueIDs []string, events []asset.Event) (int, error) {
	models, err := familyEventModels(leagueIDs, events)
	if err != nil {
		return 0, err
	}

	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx for family write: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := saveSnapshot(ctx, tx, snapshot); err != nil {
		return 0, fmt.Errorf("save league snapshot: %w", err)
	}
	if err := replaceFamilyEvents(ctx, tx, leagueIDs, models); err != nil {
		return 0, fmt.Errorf("replace family events: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit family write: %w", err)
	}

	return len(models), nil
}
