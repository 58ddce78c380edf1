package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
)

// AssetEventRepository keeps events in insertion order and enforces the
// business key the same way the asset_events unique index does.
type AssetEventRepository struct {
	mu     sync.RWMutex
	nextID int64
	events []asset.Event
}

func NewAssetEventRepository() *AssetEventRepository {
	return &AssetEventRepository{}
}

func (r *AssetEventRepository) ReplaceFamily(_ context.Context, leagueIDs []string, events []asset.Event) (int, error) {
	family := toSet(leagueIDs)
	for _, ev := range events {
		if _, ok := family[ev.LeagueID]; !ok {
			return 0, fmt.Errorf("event league %s is outside the family", ev.LeagueID)
		}
		if err := ev.Validate(); err != nil {
			return 0, fmt.Errorf("validate event: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]asset.Event, 0, len(r.events))
	keys := make(map[string]struct{}, len(r.events)+len(events))
	for _, ev := range r.events {
		if _, ok := family[ev.LeagueID]; ok {
			continue
		}
		kept = append(kept, ev)
		keys[ev.BusinessKey()] = struct{}{}
	}

	nextID := r.nextID
	for _, ev := range events {
		key := ev.BusinessKey()
		if _, ok := keys[key]; ok {
			return 0, fmt.Errorf("%w: %s", asset.ErrDuplicateEvent, key)
		}
		keys[key] = struct{}{}

		nextID++
		ev.ID = nextID
		ev.Details = cloneDetails(ev.Details)
		kept = append(kept, ev)
	}

	r.events = kept
	r.nextID = nextID
	return len(events), nil
}

func (r *AssetEventRepository) ListByFamily(_ context.Context, leagueIDs []string) ([]asset.Event, error) {
	family := toSet(leagueIDs)
	return r.filter(func(ev asset.Event) bool {
		_, ok := family[ev.LeagueID]
		return ok
	}), nil
}

func (r *AssetEventRepository) ListByAsset(_ context.Context, leagueIDs []string, ref asset.Ref) ([]asset.Event, error) {
	family := toSet(leagueIDs)
	key := ref.Key()
	return r.filter(func(ev asset.Event) bool {
		_, ok := family[ev.LeagueID]
		return ok && ev.Ref().Key() == key
	}), nil
}

func (r *AssetEventRepository) ListByTransactions(_ context.Context, leagueIDs []string, txIDs []string) ([]asset.Event, error) {
	family := toSet(leagueIDs)
	txs := toSet(txIDs)
	return r.filter(func(ev asset.Event) bool {
		if _, ok := family[ev.LeagueID]; !ok {
			return false
		}
		_, ok := txs[ev.TransactionID]
		return ok && ev.TransactionID != ""
	}), nil
}

func (r *AssetEventRepository) filter(match func(asset.Event) bool) []asset.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]asset.Event, 0)
	for _, ev := range r.events {
		if !match(ev) {
			continue
		}
		ev.Details = cloneDetails(ev.Details)
		out = append(out, ev)
	}
	lineage.SortTimeline(out)
	return out
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func cloneDetails(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
