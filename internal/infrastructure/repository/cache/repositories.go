package cache

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/player"
	basecache "github.com/riskibarqy/dynasty-lineage/internal/platform/cache"
)

const (
	assetPrefix  = "asset:"
	leaguePrefix = "league:"
	playerPrefix = "player:"
)

type familyWriter interface {
	WriteFamily(ctx context.Context, snapshot league.Snapshot, leagueIDs []string, events []asset.Event) (int, error)
}

// FamilyWriter drops cached league and event reads after every family write.
type FamilyWriter struct {
	next  familyWriter
	cache *basecache.Store
}

func NewFamilyWriter(next familyWriter, cache *basecache.Store) *FamilyWriter {
	return &FamilyWriter{next: next, cache: cache}
}

func (w *FamilyWriter) WriteFamily(ctx context.Context, snapshot league.Snapshot, leagueIDs []string, events []asset.Event) (int, error) {
	written, err := w.next.WriteFamily(ctx, snapshot, leagueIDs, events)
	w.cache.DeletePrefix(ctx, assetPrefix)
	w.cache.DeletePrefix(ctx, leaguePrefix)
	return written, err
}

// AssetEventRepository caches family reads. Any replace drops every cached
// read, since a family can be addressed by several league id sets.
type AssetEventRepository struct {
	next  asset.Repository
	cache *basecache.Store
}

func NewAssetEventRepository(next asset.Repository, cache *basecache.Store) *AssetEventRepository {
	return &AssetEventRepository{next: next, cache: cache}
}

func (r *AssetEventRepository) ReplaceFamily(ctx context.Context, leagueIDs []string, events []asset.Event) (int, error) {
	written, err := r.next.ReplaceFamily(ctx, leagueIDs, events)
	r.cache.DeletePrefix(ctx, assetPrefix)
	return written, err
}

func (r *AssetEventRepository) ListByFamily(ctx context.Context, leagueIDs []string) ([]asset.Event, error) {
	key := assetPrefix + "family:" + idsKey(leagueIDs)
	return r.load(ctx, key, func(ctx context.Context) ([]asset.Event, error) {
		return r.next.ListByFamily(ctx, leagueIDs)
	})
}

func (r *AssetEventRepository) ListByAsset(ctx context.Context, leagueIDs []string, ref asset.Ref) ([]asset.Event, error) {
	key := assetPrefix + "ref:" + idsKey(leagueIDs) + ":" + ref.Key()
	return r.load(ctx, key, func(ctx context.Context) ([]asset.Event, error) {
		return r.next.ListByAsset(ctx, leagueIDs, ref)
	})
}

func (r *AssetEventRepository) ListByTransactions(ctx context.Context, leagueIDs []string, transactionIDs []string) ([]asset.Event, error) {
	key := assetPrefix + "tx:" + idsKey(leagueIDs) + ":" + idsKey(transactionIDs)
	return r.load(ctx, key, func(ctx context.Context) ([]asset.Event, error) {
		return r.next.ListByTransactions(ctx, leagueIDs, transactionIDs)
	})
}

func (r *AssetEventRepository) load(ctx context.Context, key string, loader func(context.Context) ([]asset.Event, error)) ([]asset.Event, error) {
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]asset.Event, error) {
		items, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return append([]asset.Event(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]asset.Event(nil), items...), nil
}

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	key := leaguePrefix + "id:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeagueByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeagueByID)
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) ListRosters(ctx context.Context, leagueID string) ([]league.Roster, error) {
	key := leaguePrefix + "rosters:" + leagueID
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]league.Roster, error) {
		items, err := r.next.ListRosters(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return append([]league.Roster(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]league.Roster(nil), items...), nil
}

func (r *LeagueRepository) SaveSnapshot(ctx context.Context, snapshot league.Snapshot) error {
	if err := r.next.SaveSnapshot(ctx, snapshot); err != nil {
		return err
	}
	for _, item := range snapshot.Leagues {
		r.cache.Delete(ctx, leaguePrefix+"id:"+item.ID)
		r.cache.Delete(ctx, leaguePrefix+"rosters:"+item.ID)
	}
	for _, item := range snapshot.Rosters {
		r.cache.Delete(ctx, leaguePrefix+"rosters:"+item.LeagueID)
	}
	return nil
}

type cachedLeagueByID struct {
	value  league.League
	exists bool
}

type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	key := playerPrefix + "ids:" + idsKey(playerIDs)
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]player.Player, error) {
		items, err := r.next.GetByIDs(ctx, playerIDs)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]player.Player(nil), items...), nil
}

func (r *PlayerRepository) UpsertPlayers(ctx context.Context, items []player.Player) error {
	if err := r.next.UpsertPlayers(ctx, items); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, playerPrefix)
	return nil
}

// idsKey is order independent.
func idsKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
