package lineage

import (
	"context"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
)

// EventSource answers the two lookups the lineage walkers need.
type EventSource interface {
	AssetEvents(ctx context.Context, ref asset.Ref) ([]asset.Event, error)
	TransactionEvents(ctx context.Context, transactionID string) ([]asset.Event, error)
}

// EventIndex is an in-memory EventSource over the events of one family.
type EventIndex struct {
	byAsset map[string][]asset.Event
	byTx    map[string][]asset.Event
}

func NewEventIndex(events []asset.Event) *EventIndex {
	idx := &EventIndex{
		byAsset: make(map[string][]asset.Event),
		byTx:    make(map[string][]asset.Event),
	}
	for _, ev := range events {
		key := ev.Ref().Key()
		idx.byAsset[key] = append(idx.byAsset[key], ev)
		if ev.TransactionID != "" {
			idx.byTx[ev.TransactionID] = append(idx.byTx[ev.TransactionID], ev)
		}
	}
	for key := range idx.byAsset {
		SortTimeline(idx.byAsset[key])
	}
	return idx
}

func (i *EventIndex) AssetEvents(_ context.Context, ref asset.Ref) ([]asset.Event, error) {
	return i.byAsset[ref.Key()], nil
}

func (i *EventIndex) TransactionEvents(_ context.Context, transactionID string) ([]asset.Event, error) {
	return i.byTx[transactionID], nil
}

// linkedRefs returns the distinct assets moved by linking events of one
// transaction, in first-seen order.
func linkedRefs(events []asset.Event) []asset.Ref {
	seen := make(map[string]struct{}, len(events))
	out := make([]asset.Ref, 0, len(events))
	for _, ev := range events {
		if !ev.Type.Links() {
			continue
		}
		ref := ev.Ref()
		if _, ok := seen[ref.Key()]; ok {
			continue
		}
		seen[ref.Key()] = struct{}{}
		out = append(out, ref)
	}
	return out
}
