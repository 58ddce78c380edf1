package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/player"
	"github.com/riskibarqy/dynasty-lineage/internal/infrastructure/repository/memory"
	assetmock "github.com/riskibarqy/dynasty-lineage/internal/mocks/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newLineageHarness rebuilds the scenario family and serves queries from the
// persisted leagues, the way the API does.
func newLineageHarness(t *testing.T, maxDepth int) *LineageService {
	t.Helper()

	h := newRebuildHarness(t, nil)
	_, err := h.service.RebuildFamily(context.Background(), "L2024")
	require.NoError(t, err)

	players := memory.NewPlayerRepository(h.provider.players)
	return NewLineageService(
		NewFamilyResolver(NewRepositoryLeagueSource(h.leagues), logging.NewNop()),
		h.events,
		players,
		LineageConfig{TradeTreeMaxDepth: maxDepth},
		logging.NewNop(),
	)
}

func TestLineageService_GetTimeline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newLineageHarness(t, 0)

	timeline, err := service.GetTimeline(ctx, "A", "L2024")
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	require.Equal(t, asset.EventTrade, timeline[0].Type)
	require.Equal(t, "X", timeline[0].FromManagerID)
	require.Equal(t, "Y", timeline[0].ToManagerID)

	pick, err := service.GetTimeline(ctx, "pick:2024:1:5", "L2024")
	require.NoError(t, err)
	require.Len(t, pick, 2)
	require.Equal(t, asset.EventPickTrade, pick[0].Type)
	require.Equal(t, asset.EventPickSelected, pick[1].Type)

	drafted, err := service.GetTimeline(ctx, "player:B", "L2024")
	require.NoError(t, err)
	require.Len(t, drafted, 1)
	require.Equal(t, asset.EventDraftSelected, drafted[0].Type)
	require.Equal(t, "Y", drafted[0].ToManagerID)
}

func TestLineageService_GetTimeline_IsStableAcrossCalls(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newLineageHarness(t, 0)

	first, err := service.GetTimeline(ctx, "pick:2024:1:5", "L2024")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := service.GetTimeline(ctx, "pick:2024:1:5", "L2024")
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestLineageService_GetTimeline_InvalidInput(t *testing.T) {
	t.Parallel()

	service := newLineageHarness(t, 0)
	cases := []struct {
		name     string
		ref      string
		leagueID string
		want     error
	}{
		{name: "malformed pick", ref: "pick:2024:first:5", leagueID: "L2024", want: ErrInvalidInput},
		{name: "unknown kind", ref: "coach:7", leagueID: "L2024", want: ErrInvalidInput},
		{name: "empty league", ref: "A", leagueID: "", want: ErrInvalidInput},
		{name: "unknown league", ref: "A", leagueID: "L1999", want: ErrNotFound},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.GetTimeline(context.Background(), tc.ref, tc.leagueID)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLineageService_GetTradeTree(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newLineageHarness(t, 0)

	tree, err := service.GetTradeTree(ctx, "A", "L2024")
	require.NoError(t, err)
	require.Len(t, tree.Exchanges, 1)
	require.Equal(t, "T1", tree.Exchanges[0].TransactionID)
	require.Len(t, tree.Exchanges[0].Derived, 1)

	pickNode := tree.Exchanges[0].Derived[0]
	require.Equal(t, asset.PickRef("2024", 1, 5).Key(), pickNode.Asset.Key())

	var sawB bool
	for _, ex := range pickNode.Exchanges {
		for _, child := range ex.Derived {
			if child.Asset.Key() == asset.PlayerRef("B").Key() {
				sawB = true
			}
		}
	}
	require.True(t, sawB, "pick subtree must reach player B")
}

func TestLineageService_GetTradeTree_RespectsMaxDepth(t *testing.T) {
	t.Parallel()

	service := newLineageHarness(t, 1)
	tree, err := service.GetTradeTree(context.Background(), "A", "L2024")
	require.NoError(t, err)
	require.Len(t, tree.Exchanges, 1)

	pickNode := tree.Exchanges[0].Derived[0]
	require.True(t, pickNode.Truncated)
	require.Empty(t, pickNode.Exchanges)
}

func TestLineageService_GetNetwork(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newLineageHarness(t, 0)

	network, err := service.GetNetwork(ctx, "A", "L2024", 2)
	require.NoError(t, err)
	require.Equal(t, 3, network.Stats.NodeCount)
	require.Equal(t, 2, network.Stats.TransactionCount)
	require.Equal(t, 2, network.Stats.MaxDepthReached)

	labels := map[string]string{}
	for _, node := range network.Nodes {
		labels[node.Asset.Key()] = node.Label
	}
	require.Equal(t, "Player Alpha", labels[asset.PlayerRef("A").Key()])
	require.Equal(t, "Player Bravo", labels[asset.PlayerRef("B").Key()])
	require.Equal(t, lineage.DefaultLabel(asset.PickRef("2024", 1, 5)), labels[asset.PickRef("2024", 1, 5).Key()])
}

func TestLineageService_GetNetwork_RejectsDepth(t *testing.T) {
	t.Parallel()

	service := NewLineageService(nil, assetmock.NewRepository(t), nil, LineageConfig{}, logging.NewNop())
	for _, depth := range []int{0, 6, -1} {
		_, err := service.GetNetwork(context.Background(), "A", "L2024", depth)
		if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, lineage.ErrInvalidDepth) {
			t.Fatalf("depth %d: expected invalid depth, got %v", depth, err)
		}
	}
}

func TestLineageService_GetTimeline_RepositoryFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newRebuildHarness(t, nil)
	_, err := h.service.RebuildFamily(ctx, "L2024")
	require.NoError(t, err)

	events := assetmock.NewRepository(t)
	events.On("ListByAsset", mock.Anything, mock.Anything, asset.PlayerRef("A")).Return(nil, errors.New("connection reset")).Once()

	service := NewLineageService(
		NewFamilyResolver(NewRepositoryLeagueSource(h.leagues), logging.NewNop()),
		events,
		nil,
		LineageConfig{},
		logging.NewNop(),
	)
	_, err = service.GetTimeline(ctx, "A", "L2024")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestLineageService_UnknownAssetIsTypedError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newLineageHarness(t, 0)

	for _, ref := range []string{"player:nope", "pick:2031:1:5", "pick:2024:1:9", "pick:2019:1:2"} {
		_, err := service.GetTimeline(ctx, ref, "L2024")
		if !errors.Is(err, ErrAssetNotFound) || !errors.Is(err, ErrNotFound) {
			t.Fatalf("timeline %s: expected ErrAssetNotFound, got %v", ref, err)
		}
	}

	_, err := service.GetTradeTree(ctx, "player:nope", "L2024")
	require.ErrorIs(t, err, ErrAssetNotFound)

	_, err = service.GetNetwork(ctx, "player:nope", "L2024", 2)
	require.ErrorIs(t, err, ErrAssetNotFound)
}

func TestLineageService_KnownAssetWithoutEventsIsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newRebuildHarness(t, nil)
	_, err := h.service.RebuildFamily(ctx, "L2024")
	require.NoError(t, err)

	catalog := append([]player.Player{{ID: "Q", FullName: "Player Quiet", Position: "TE"}}, h.provider.players...)
	service := NewLineageService(
		NewFamilyResolver(NewRepositoryLeagueSource(h.leagues), logging.NewNop()),
		h.events,
		memory.NewPlayerRepository(catalog),
		LineageConfig{},
		logging.NewNop(),
	)

	timeline, err := service.GetTimeline(ctx, "player:Q", "L2024")
	require.NoError(t, err)
	require.Empty(t, timeline)

	// An untraded future pick still belongs to its original roster.
	timeline, err = service.GetTimeline(ctx, "pick:2026:2:3", "L2024")
	require.NoError(t, err)
	require.Empty(t, timeline)

	tree, err := service.GetTradeTree(ctx, "player:Q", "L2024")
	require.NoError(t, err)
	require.Empty(t, tree.Exchanges)

	network, err := service.GetNetwork(ctx, "pick:2024:2:3", "L2024", 1)
	require.NoError(t, err)
	require.Len(t, network.Nodes, 1)
}
