// Package presenter shapes domain values into the JSON payloads shared by
// the HTTP API and the CLI.
package presenter

import (
	"time"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/rebuild"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
)

type AssetRef struct {
	Key              string `json:"key"`
	Kind             string `json:"kind"`
	PlayerID         string `json:"player_id,omitempty"`
	PickSeason       string `json:"pick_season,omitempty"`
	PickRound        int    `json:"pick_round,omitempty"`
	OriginalRosterID int    `json:"original_roster_id,omitempty"`
}

type AssetEvent struct {
	ID                   int64          `json:"id"`
	LeagueID             string         `json:"league_id"`
	Season               string         `json:"season"`
	Week                 *int           `json:"week"`
	Timestamp            time.Time      `json:"timestamp"`
	EventType            string         `json:"event_type"`
	AssetKind            string         `json:"asset_kind"`
	PlayerID             string         `json:"player_id,omitempty"`
	PickSeason           string         `json:"pick_season,omitempty"`
	PickRound            int            `json:"pick_round,omitempty"`
	PickOriginalRosterID *int           `json:"pick_original_roster_id"`
	FromManagerID        string         `json:"from_manager_id,omitempty"`
	ToManagerID          string         `json:"to_manager_id,omitempty"`
	FromRosterID         *int           `json:"from_roster_id"`
	ToRosterID           *int           `json:"to_roster_id"`
	TransactionID        string         `json:"transaction_id,omitempty"`
	Details              map[string]any `json:"details,omitempty"`
}

type Timeline struct {
	Asset  AssetRef     `json:"asset"`
	Events []AssetEvent `json:"events"`
}

type TreeNode struct {
	Asset      AssetRef     `json:"asset"`
	ReachedVia string       `json:"reached_via,omitempty"`
	Depth      int          `json:"depth"`
	Truncated  bool         `json:"truncated,omitempty"`
	Timeline   []AssetEvent `json:"timeline"`
	Exchanges  []Exchange   `json:"exchanges"`
}

type Exchange struct {
	TransactionID string     `json:"transaction_id"`
	Event         AssetEvent `json:"event"`
	Derived       []TreeNode `json:"derived"`
}

type NetworkNode struct {
	Asset      AssetRef `json:"asset"`
	Label      string   `json:"label"`
	Depth      int      `json:"depth"`
	Importance int      `json:"importance"`
}

type NetworkTransaction struct {
	ID        string     `json:"id"`
	LeagueID  string     `json:"league_id"`
	Season    string     `json:"season"`
	Week      *int       `json:"week"`
	Timestamp time.Time  `json:"timestamp"`
	Depth     int        `json:"depth"`
	Types     []string   `json:"types"`
	Assets    []AssetRef `json:"assets"`
}

type NetworkStats struct {
	NodeCount        int `json:"node_count"`
	TransactionCount int `json:"transaction_count"`
	PlayerCount      int `json:"player_count"`
	PickCount        int `json:"pick_count"`
	MaxDepthReached  int `json:"max_depth_reached"`
}

type Network struct {
	Focal        AssetRef             `json:"focal"`
	Depth        int                  `json:"depth"`
	Nodes        []NetworkNode        `json:"nodes"`
	Transactions []NetworkTransaction `json:"transactions"`
	Stats        NetworkStats         `json:"stats"`
}

type Warning struct {
	Code          string `json:"code"`
	LeagueID      string `json:"league_id"`
	TransactionID string `json:"transaction_id,omitempty"`
	Message       string `json:"message"`
}

type RebuildResult struct {
	RunID            string    `json:"run_id"`
	FamilyKey        string    `json:"family_key"`
	LeaguesProcessed int       `json:"leagues_processed"`
	EventsWritten    int       `json:"events_written"`
	Warnings         []Warning `json:"warnings"`
	DurationMS       int64     `json:"duration_ms"`
}

type RebuildRun struct {
	RunID            string     `json:"run_id"`
	FamilyKey        string     `json:"family_key"`
	HeadLeagueID     string     `json:"head_league_id"`
	Status           string     `json:"status"`
	Stage            string     `json:"stage,omitempty"`
	LeaguesProcessed int        `json:"leagues_processed"`
	EventsWritten    int        `json:"events_written"`
	Warnings         []string   `json:"warnings"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	TraceID          string     `json:"trace_id,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at"`
}

type SyncPlayers struct {
	Fetched int `json:"fetched"`
	Written int `json:"written"`
	Skipped int `json:"skipped"`
}

func FromAssetRef(ref asset.Ref) AssetRef {
	out := AssetRef{Key: ref.Key(), Kind: string(ref.Kind)}
	switch ref.Kind {
	case asset.KindPlayer:
		out.PlayerID = ref.PlayerID
	case asset.KindPick:
		out.PickSeason = ref.Pick.Season
		out.PickRound = ref.Pick.Round
		out.OriginalRosterID = ref.Pick.OriginalRosterID
	}
	return out
}

func FromAssetEvent(ev asset.Event) AssetEvent {
	return AssetEvent{
		ID:                   ev.ID,
		LeagueID:             ev.LeagueID,
		Season:               ev.Season,
		Week:                 ev.Week,
		Timestamp:            ev.Timestamp,
		EventType:            string(ev.Type),
		AssetKind:            string(ev.Kind),
		PlayerID:             ev.PlayerID,
		PickSeason:           ev.PickSeason,
		PickRound:            ev.PickRound,
		PickOriginalRosterID: ev.PickOriginalRosterID,
		FromManagerID:        ev.FromManagerID,
		ToManagerID:          ev.ToManagerID,
		FromRosterID:         ev.FromRosterID,
		ToRosterID:           ev.ToRosterID,
		TransactionID:        ev.TransactionID,
		Details:              ev.Details,
	}
}

func FromAssetEvents(events []asset.Event) []AssetEvent {
	out := make([]AssetEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, FromAssetEvent(ev))
	}
	return out
}

func FromTreeNode(node lineage.TreeNode) TreeNode {
	out := TreeNode{
		Asset:      FromAssetRef(node.Asset),
		ReachedVia: node.ReachedVia,
		Depth:      node.Depth,
		Truncated:  node.Truncated,
		Timeline:   FromAssetEvents(node.Timeline),
		Exchanges:  make([]Exchange, 0, len(node.Exchanges)),
	}
	for _, ex := range node.Exchanges {
		derived := make([]TreeNode, 0, len(ex.Derived))
		for _, child := range ex.Derived {
			derived = append(derived, FromTreeNode(child))
		}
		out.Exchanges = append(out.Exchanges, Exchange{
			TransactionID: ex.TransactionID,
			Event:         FromAssetEvent(ex.Event),
			Derived:       derived,
		})
	}
	return out
}

func FromNetwork(network lineage.Network) Network {
	out := Network{
		Focal:        FromAssetRef(network.Focal),
		Depth:        network.Depth,
		Nodes:        make([]NetworkNode, 0, len(network.Nodes)),
		Transactions: make([]NetworkTransaction, 0, len(network.Transactions)),
		Stats: NetworkStats{
			NodeCount:        network.Stats.NodeCount,
			TransactionCount: network.Stats.TransactionCount,
			PlayerCount:      network.Stats.PlayerCount,
			PickCount:        network.Stats.PickCount,
			MaxDepthReached:  network.Stats.MaxDepthReached,
		},
	}
	for _, node := range network.Nodes {
		out.Nodes = append(out.Nodes, NetworkNode{
			Asset:      FromAssetRef(node.Asset),
			Label:      node.Label,
			Depth:      node.Depth,
			Importance: node.Importance,
		})
	}
	for _, tx := range network.Transactions {
		types := make([]string, 0, len(tx.Types))
		for _, t := range tx.Types {
			types = append(types, string(t))
		}
		assets := make([]AssetRef, 0, len(tx.Assets))
		for _, ref := range tx.Assets {
			assets = append(assets, FromAssetRef(ref))
		}
		out.Transactions = append(out.Transactions, NetworkTransaction{
			ID:        tx.ID,
			LeagueID:  tx.LeagueID,
			Season:    tx.Season,
			Week:      tx.Week,
			Timestamp: tx.Timestamp,
			Depth:     tx.Depth,
			Types:     types,
			Assets:    assets,
		})
	}
	return out
}

func FromRebuildResult(result usecase.RebuildResult) RebuildResult {
	warnings := make([]Warning, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, Warning{
			Code:          w.Code,
			LeagueID:      w.LeagueID,
			TransactionID: w.TransactionID,
			Message:       w.Message,
		})
	}
	return RebuildResult{
		RunID:            result.RunID,
		FamilyKey:        result.FamilyKey,
		LeaguesProcessed: result.LeaguesProcessed,
		EventsWritten:    result.EventsWritten,
		Warnings:         warnings,
		DurationMS:       result.Duration.Milliseconds(),
	}
}

func FromRebuildRun(run rebuild.Run) RebuildRun {
	warnings := run.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return RebuildRun{
		RunID:            run.ID,
		FamilyKey:        run.FamilyKey,
		HeadLeagueID:     run.HeadLeagueID,
		Status:           string(run.Status),
		Stage:            run.Stage,
		LeaguesProcessed: run.LeaguesProcessed,
		EventsWritten:    run.EventsWritten,
		Warnings:         warnings,
		ErrorMessage:     run.ErrorMessage,
		TraceID:          run.TraceID,
		StartedAt:        run.StartedAt,
		FinishedAt:       run.FinishedAt,
	}
}

func NewTimeline(ref asset.Ref, events []asset.Event) Timeline {
	return Timeline{Asset: FromAssetRef(ref), Events: FromAssetEvents(events)}
}

func FromRebuildRuns(runs []rebuild.Run) []RebuildRun {
	out := make([]RebuildRun, 0, len(runs))
	for _, run := range runs {
		out = append(out, FromRebuildRun(run))
	}
	return out
}

func FromSyncPlayers(result usecase.SyncPlayersResult) SyncPlayers {
	return SyncPlayers{
		Fetched: result.Fetched,
		Written: result.Written,
		Skipped: result.Skipped,
	}
}
