package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
	qb "github.com/riskibarqy/dynasty-lineage/internal/platform/querybuilder"
)

// assetEventInsertBatch keeps one multi-row insert well under the 65535
// bind parameter limit (16 columns per row).
const assetEventInsertBatch = 500

type AssetEventRepository struct {
	db *sqlx.DB
}

func NewAssetEventRepository(db *sqlx.DB) *AssetEventRepository {
	return &AssetEventRepository{db: db}
}

func (r *AssetEventRepository) ReplaceFamily(ctx context.Context, leagueIDs []string, events []asset.Event) (int, error) {
	models, err := familyEventModels(leagueIDs, events)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx for family replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := replaceFamilyEvents(ctx, tx, leagueIDs, models); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit family replace: %w", err)
	}

	return len(models), nil
}

// familyEventModels validates events before any statement runs.
func familyEventModels(leagueIDs []string, events []asset.Event) ([]any, error) {
	if len(leagueIDs) == 0 {
		return nil, fmt.Errorf("replace family: league ids are required")
	}

	family := make(map[string]struct{}, len(leagueIDs))
	for _, id := range leagueIDs {
		family[id] = struct{}{}
	}
	models := make([]any, 0, len(events))
	for _, ev := range events {
		if _, ok := family[ev.LeagueID]; !ok {
			return nil, fmt.Errorf("event league %s is outside the family", ev.LeagueID)
		}
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("validate event: %w", err)
		}
		model, err := newAssetEventInsertModel(ev)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, nil
}

func replaceFamilyEvents(ctx context.Context, tx *sqlx.Tx, leagueIDs []string, models []any) error {
	deleteQuery, deleteArgs, err := qb.DeleteFrom("asset_events").
		Where(qb.InStrings("league_id", leagueIDs)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete family events query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete family events: %w", err)
	}

	for start := 0; start < len(models); start += assetEventInsertBatch {
		end := min(start+assetEventInsertBatch, len(models))
		query, args, err := qb.InsertModels("asset_events", models[start:end], "")
		if err != nil {
			return fmt.Errorf("build insert asset events query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %v", asset.ErrDuplicateEvent, err)
			}
			return fmt.Errorf("insert asset events: %w", err)
		}
	}
	return nil
}

func (r *AssetEventRepository) ListByFamily(ctx context.Context, leagueIDs []string) ([]asset.Event, error) {
	return r.list(ctx, "list family events", qb.InStrings("league_id", leagueIDs))
}

func (r *AssetEventRepository) ListByAsset(ctx context.Context, leagueIDs []string, ref asset.Ref) ([]asset.Event, error) {
	conditions := []qb.Condition{
		qb.InStrings("league_id", leagueIDs),
		qb.Eq("asset_kind", string(ref.Kind)),
	}
	switch ref.Kind {
	case asset.KindPlayer:
		conditions = append(conditions, qb.Eq("player_id", ref.PlayerID))
	case asset.KindPick:
		var orig any
		if ref.Pick.Resolved() {
			orig = ref.Pick.OriginalRosterID
		}
		conditions = append(conditions,
			qb.Eq("pick_season", ref.Pick.Season),
			qb.Eq("pick_round", ref.Pick.Round),
			qb.EqOrNull("pick_original_roster_id", orig),
		)
	default:
		return nil, fmt.Errorf("%w: %q", asset.ErrUnknownKind, ref.Kind)
	}

	return r.list(ctx, "list asset events", conditions...)
}

func (r *AssetEventRepository) ListByTransactions(ctx context.Context, leagueIDs []string, transactionIDs []string) ([]asset.Event, error) {
	if len(transactionIDs) == 0 {
		return []asset.Event{}, nil
	}
	return r.list(ctx, "list transaction events",
		qb.InStrings("league_id", leagueIDs),
		qb.InStrings("transaction_id", transactionIDs),
	)
}

func (r *AssetEventRepository) list(ctx context.Context, op string, conditions ...qb.Condition) ([]asset.Event, error) {
	query, args, err := qb.Select(assetEventSelectColumns...).From("asset_events").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []assetEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]asset.Event, 0, len(rows))
	for _, row := range rows {
		ev, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	lineage.SortTimeline(out)

	return out, nil
}
