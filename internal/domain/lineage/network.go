package lineage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
)

const (
	MinNetworkDepth = 1
	MaxNetworkDepth = 5

	minImportance = 1
	maxImportance = 10
)

var ErrInvalidDepth = errors.New("invalid network depth")

// NetworkNode is an asset reached by the network walk.
type NetworkNode struct {
	Asset      asset.Ref
	Label      string
	Depth      int
	Importance int
}

// NetworkTransaction is a linking transaction included in the network.
type NetworkTransaction struct {
	ID        string
	LeagueID  string
	Season    string
	Week      *int
	Timestamp time.Time
	Depth     int
	Types     []asset.EventType
	Assets    []asset.Ref
}

type NetworkStats struct {
	NodeCount        int
	TransactionCount int
	PlayerCount      int
	PickCount        int
	MaxDepthReached  int
}

type Network struct {
	Focal        asset.Ref
	Depth        int
	Nodes        []NetworkNode
	Transactions []NetworkTransaction
	Stats        NetworkStats
}

func ValidateDepth(depth int) error {
	if depth < MinNetworkDepth || depth > MaxNetworkDepth {
		return fmt.Errorf("%w: %d, must be between %d and %d", ErrInvalidDepth, depth, MinNetworkDepth, MaxNetworkDepth)
	}
	return nil
}

// BuildNetwork walks breadth first from focal. Level n holds every asset that
// shares a linking transaction with an asset first reached at level n-1. An
// asset keeps the level it was first reached at.
func BuildNetwork(ctx context.Context, src EventSource, focal asset.Ref, depth int) (Network, error) {
	if err := ValidateDepth(depth); err != nil {
		return Network{}, err
	}

	depthOf := map[string]int{focal.Key(): 0}
	refs := map[string]asset.Ref{focal.Key(): focal}
	included := make(map[string]*NetworkTransaction)
	frontier := []asset.Ref{focal}

	for level := 1; level <= depth && len(frontier) > 0; level++ {
		var next []asset.Ref
		for _, ref := range frontier {
			events, err := src.AssetEvents(ctx, ref)
			if err != nil {
				return Network{}, fmt.Errorf("load events of %s: %w", ref.Key(), err)
			}
			for _, ev := range events {
				if !ev.Type.Links() || ev.TransactionID == "" {
					continue
				}
				if _, ok := included[ev.TransactionID]; ok {
					continue
				}
				if err := ctx.Err(); err != nil {
					return Network{}, err
				}

				txEvents, err := src.TransactionEvents(ctx, ev.TransactionID)
				if err != nil {
					return Network{}, fmt.Errorf("load transaction %s: %w", ev.TransactionID, err)
				}
				tx := newNetworkTransaction(ev, txEvents, level)
				included[ev.TransactionID] = tx

				for _, other := range tx.Assets {
					if _, seen := depthOf[other.Key()]; seen {
						continue
					}
					depthOf[other.Key()] = level
					refs[other.Key()] = other
					next = append(next, other)
				}
			}
		}
		frontier = next
	}

	return assembleNetwork(focal, depth, depthOf, refs, included), nil
}

func newNetworkTransaction(ev asset.Event, txEvents []asset.Event, level int) *NetworkTransaction {
	tx := &NetworkTransaction{
		ID:        ev.TransactionID,
		LeagueID:  ev.LeagueID,
		Season:    ev.Season,
		Week:      ev.Week,
		Timestamp: ev.Timestamp,
		Depth:     level,
		Assets:    linkedRefs(txEvents),
	}
	types := make(map[asset.EventType]struct{})
	for _, e := range txEvents {
		if !e.Type.Links() {
			continue
		}
		if _, ok := types[e.Type]; ok {
			continue
		}
		types[e.Type] = struct{}{}
		tx.Types = append(tx.Types, e.Type)
	}
	return tx
}

func assembleNetwork(focal asset.Ref, depth int, depthOf map[string]int, refs map[string]asset.Ref, included map[string]*NetworkTransaction) Network {
	refCount := make(map[string]int, len(depthOf))
	txs := make([]NetworkTransaction, 0, len(included))
	for _, tx := range included {
		for _, ref := range tx.Assets {
			refCount[ref.Key()]++
		}
		txs = append(txs, *tx)
	}
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if a.Season != b.Season {
			return seasonLess(a.Season, b.Season)
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})

	net := Network{Focal: focal, Depth: depth, Transactions: txs}
	for key, level := range depthOf {
		ref := refs[key]
		net.Nodes = append(net.Nodes, NetworkNode{
			Asset:      ref,
			Label:      DefaultLabel(ref),
			Depth:      level,
			Importance: clamp(refCount[key], minImportance, maxImportance),
		})
		switch ref.Kind {
		case asset.KindPlayer:
			net.Stats.PlayerCount++
		case asset.KindPick:
			net.Stats.PickCount++
		}
		if level > net.Stats.MaxDepthReached {
			net.Stats.MaxDepthReached = level
		}
	}
	sort.SliceStable(net.Nodes, func(i, j int) bool {
		if net.Nodes[i].Depth != net.Nodes[j].Depth {
			return net.Nodes[i].Depth < net.Nodes[j].Depth
		}
		return net.Nodes[i].Asset.Key() < net.Nodes[j].Asset.Key()
	})
	net.Stats.NodeCount = len(net.Nodes)
	net.Stats.TransactionCount = len(net.Transactions)
	return net
}

// DefaultLabel names an asset when nothing better is known.
func DefaultLabel(ref asset.Ref) string {
	if ref.Kind == asset.KindPick {
		return ref.Pick.Label()
	}
	return ref.PlayerID
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
