package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/player"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/transaction"
)

// LeagueDataProvider is the upstream platform as seen by the rebuild. Lookups
// of unknown resources fail with ErrNotFound, transport failures with
// ErrDependencyUnavailable.
type LeagueDataProvider interface {
	GetLeague(ctx context.Context, leagueID string) (league.League, error)
	GetRosters(ctx context.Context, leagueID string) ([]league.Roster, error)
	GetUsers(ctx context.Context, leagueID string) ([]league.Manager, error)
	GetTransactions(ctx context.Context, leagueID string, week int) ([]transaction.Transaction, error)
	GetLeagueTradedPicks(ctx context.Context, leagueID string) ([]transaction.TradedPick, error)
	GetDrafts(ctx context.Context, leagueID string) ([]transaction.Draft, error)
	GetDraftPicks(ctx context.Context, draftID string) ([]transaction.DraftSelection, error)
	GetDraftTradedPicks(ctx context.Context, draftID string) ([]transaction.TradedPick, error)
	GetPlayers(ctx context.Context) ([]player.Player, error)
}

// ResponseFlusher is implemented by providers that cache upstream responses.
// A rebuild flushes the cache once it holds the family lock so every run
// reads current data.
type ResponseFlusher interface {
	ClearCache()
}

// FamilyWriter stores the league snapshot and the events of a rebuilt family
// atomically. Without one, the rebuild writes the snapshot and then replaces
// the events, and only the event replace is atomic.
type FamilyWriter interface {
	WriteFamily(ctx context.Context, snapshot league.Snapshot, leagueIDs []string, events []asset.Event) (int, error)
}

// LeagueSource answers single league lookups for the family resolver.
type LeagueSource interface {
	GetLeague(ctx context.Context, leagueID string) (league.League, error)
}

// RebuildLocker grants one rebuild per family key at a time. Acquire reports
// false without error when the key is already held.
type RebuildLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// RepositoryLeagueSource resolves families from persisted leagues.
type RepositoryLeagueSource struct {
	repo league.Repository
}

func NewRepositoryLeagueSource(repo league.Repository) *RepositoryLeagueSource {
	return &RepositoryLeagueSource{repo: repo}
}

func (s *RepositoryLeagueSource) GetLeague(ctx context.Context, leagueID string) (league.League, error) {
	item, exists, err := s.repo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, err
	}
	if !exists {
		return league.League{}, ErrNotFound
	}
	return item, nil
}
