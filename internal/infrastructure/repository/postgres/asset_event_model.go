package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
)

var assetEventSelectColumns = []string{
	"id",
	"league_id",
	"season",
	"week",
	"event_time",
	"event_type",
	"asset_kind",
	"player_id",
	"pick_season",
	"pick_round",
	"pick_original_roster_id",
	"from_manager_id",
	"to_manager_id",
	"from_roster_id",
	"to_roster_id",
	"transaction_id",
	"details",
}

type assetEventTableModel struct {
	ID                   int64          `db:"id"`
	LeagueID             string         `db:"league_id"`
	Season               string         `db:"season"`
	Week                 sql.NullInt64  `db:"week"`
	EventTime            time.Time      `db:"event_time"`
	EventType            string         `db:"event_type"`
	AssetKind            string         `db:"asset_kind"`
	PlayerID             sql.NullString `db:"player_id"`
	PickSeason           sql.NullString `db:"pick_season"`
	PickRound            sql.NullInt64  `db:"pick_round"`
	PickOriginalRosterID sql.NullInt64  `db:"pick_original_roster_id"`
	FromManagerID        sql.NullString `db:"from_manager_id"`
	ToManagerID          sql.NullString `db:"to_manager_id"`
	FromRosterID         sql.NullInt64  `db:"from_roster_id"`
	ToRosterID           sql.NullInt64  `db:"to_roster_id"`
	TransactionID        sql.NullString `db:"transaction_id"`
	Details              []byte         `db:"details"`
}

type assetEventInsertModel struct {
	LeagueID             string         `db:"league_id"`
	Season               string         `db:"season"`
	Week                 sql.NullInt64  `db:"week"`
	EventTime            time.Time      `db:"event_time"`
	EventType            string         `db:"event_type"`
	AssetKind            string         `db:"asset_kind"`
	PlayerID             sql.NullString `db:"player_id"`
	PickSeason           sql.NullString `db:"pick_season"`
	PickRound            sql.NullInt64  `db:"pick_round"`
	PickOriginalRosterID sql.NullInt64  `db:"pick_original_roster_id"`
	FromManagerID        sql.NullString `db:"from_manager_id"`
	ToManagerID          sql.NullString `db:"to_manager_id"`
	FromRosterID         sql.NullInt64  `db:"from_roster_id"`
	ToRosterID           sql.NullInt64  `db:"to_roster_id"`
	TransactionID        sql.NullString `db:"transaction_id"`
	Details              string         `db:"details"`
}

func newAssetEventInsertModel(ev asset.Event) (assetEventInsertModel, error) {
	details, err := encodeJSON(ev.Details, "{}")
	if err != nil {
		return assetEventInsertModel{}, fmt.Errorf("encode event details: %w", err)
	}

	orig := sql.NullInt64{}
	if ev.PickOriginalRosterID != nil {
		orig = optionalInt(*ev.PickOriginalRosterID)
	}

	return assetEventInsertModel{
		LeagueID:             ev.LeagueID,
		Season:               ev.Season,
		Week:                 optionalIntPtr(ev.Week),
		EventTime:            ev.Timestamp.UTC(),
		EventType:            string(ev.Type),
		AssetKind:            string(ev.Kind),
		PlayerID:             optionalString(ev.PlayerID),
		PickSeason:           optionalString(ev.PickSeason),
		PickRound:            optionalInt(ev.PickRound),
		PickOriginalRosterID: orig,
		FromManagerID:        optionalString(ev.FromManagerID),
		ToManagerID:          optionalString(ev.ToManagerID),
		FromRosterID:         optionalIntPtr(ev.FromRosterID),
		ToRosterID:           optionalIntPtr(ev.ToRosterID),
		TransactionID:        optionalString(ev.TransactionID),
		Details:              details,
	}, nil
}

func (m assetEventTableModel) toDomain() (asset.Event, error) {
	details, err := decodeJSONObject(m.Details)
	if err != nil {
		return asset.Event{}, fmt.Errorf("decode details of event %d: %w", m.ID, err)
	}

	return asset.Event{
		ID:                   m.ID,
		LeagueID:             m.LeagueID,
		Season:               m.Season,
		Week:                 intPtrValue(m.Week),
		Timestamp:            m.EventTime.UTC(),
		Type:                 asset.EventType(m.EventType),
		Kind:                 asset.Kind(m.AssetKind),
		PlayerID:             m.PlayerID.String,
		PickSeason:           m.PickSeason.String,
		PickRound:            int(m.PickRound.Int64),
		PickOriginalRosterID: intPtrValue(m.PickOriginalRosterID),
		FromManagerID:        m.FromManagerID.String,
		ToManagerID:          m.ToManagerID.String,
		FromRosterID:         intPtrValue(m.FromRosterID),
		ToRosterID:           intPtrValue(m.ToRosterID),
		TransactionID:        m.TransactionID.String,
		Details:              details,
	}, nil
}
