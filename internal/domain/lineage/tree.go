package lineage

import (
	"context"
	"fmt"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
)

// TreeNode is one asset in a trade tree together with its timeline and
// everything it was exchanged alongside.
type TreeNode struct {
	Asset      asset.Ref
	ReachedVia string
	Depth      int
	Timeline   []asset.Event
	Exchanges  []Exchange
	Truncated  bool
}

// Exchange is one linking transaction of a node and the assets derived from it.
type Exchange struct {
	TransactionID string
	Event         asset.Event
	Derived       []TreeNode
}

// Size counts the nodes of the tree.
func (n TreeNode) Size() int {
	total := 1
	for _, ex := range n.Exchanges {
		for _, child := range ex.Derived {
			total += child.Size()
		}
	}
	return total
}

// BuildTradeTree expands root recursively through linking transactions.
// A branch never revisits its own ancestors nor the transaction it came
// through; the same asset may still appear on unrelated branches.
// maxDepth of zero means unlimited.
func BuildTradeTree(ctx context.Context, src EventSource, root asset.Ref, maxDepth int) (TreeNode, error) {
	b := treeBuilder{src: src, maxDepth: maxDepth}
	return b.build(ctx, root, "", 0, map[string]struct{}{})
}

type treeBuilder struct {
	src      EventSource
	maxDepth int
}

func (b treeBuilder) build(ctx context.Context, ref asset.Ref, via string, depth int, path map[string]struct{}) (TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return TreeNode{}, err
	}

	timeline, err := b.src.AssetEvents(ctx, ref)
	if err != nil {
		return TreeNode{}, fmt.Errorf("load events of %s: %w", ref.Key(), err)
	}
	node := TreeNode{Asset: ref, ReachedVia: via, Depth: depth, Timeline: timeline}

	path[ref.Key()] = struct{}{}
	defer delete(path, ref.Key())

	seenTx := make(map[string]struct{})
	for _, ev := range timeline {
		if !ev.Type.Links() || ev.TransactionID == "" || ev.TransactionID == via {
			continue
		}
		if _, ok := seenTx[ev.TransactionID]; ok {
			continue
		}
		seenTx[ev.TransactionID] = struct{}{}

		if b.maxDepth > 0 && depth >= b.maxDepth {
			node.Truncated = true
			break
		}

		txEvents, err := b.src.TransactionEvents(ctx, ev.TransactionID)
		if err != nil {
			return TreeNode{}, fmt.Errorf("load transaction %s: %w", ev.TransactionID, err)
		}

		ex := Exchange{TransactionID: ev.TransactionID, Event: ev}
		for _, other := range linkedRefs(txEvents) {
			if _, onPath := path[other.Key()]; onPath {
				continue
			}
			child, err := b.build(ctx, other, ev.TransactionID, depth+1, path)
			if err != nil {
				return TreeNode{}, err
			}
			ex.Derived = append(ex.Derived, child)
		}
		node.Exchanges = append(node.Exchanges, ex)
	}

	return node, nil
}
