package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/rebuild"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/transaction"
	"github.com/riskibarqy/dynasty-lineage/internal/infrastructure/lock"
	"github.com/riskibarqy/dynasty-lineage/internal/infrastructure/repository/memory"
	assetmock "github.com/riskibarqy/dynasty-lineage/internal/mocks/domain/asset"
	leaguemock "github.com/riskibarqy/dynasty-lineage/internal/mocks/domain/league"
	rebuildmock "github.com/riskibarqy/dynasty-lineage/internal/mocks/domain/rebuild"
	usecasemock "github.com/riskibarqy/dynasty-lineage/internal/mocks/usecase"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/id"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type rebuildHarness struct {
	provider *fakeProvider
	leagues  *memory.LeagueRepository
	events   *memory.AssetEventRepository
	runs     *memory.RebuildRunRepository
	service  *RebuildService
}

func newRebuildHarness(t *testing.T, idGen id.Generator) *rebuildHarness {
	t.Helper()

	provider := newScenarioProvider()
	h := &rebuildHarness{
		provider: provider,
		leagues:  memory.NewLeagueRepository(nil),
		events:   memory.NewAssetEventRepository(),
		runs:     memory.NewRebuildRunRepository(),
	}
	h.service = NewRebuildService(
		provider,
		NewFamilyResolver(provider, logging.NewNop()),
		h.leagues,
		h.events,
		h.runs,
		lock.NewMemoryLocker(),
		idGen,
		RebuildConfig{MaxWeek: 6, FetchConcurrency: 2, Workers: 2},
		logging.NewNop(),
	)
	return h
}

func familyKeys(t *testing.T, repo asset.Repository) []string {
	t.Helper()

	events, err := repo.ListByFamily(context.Background(), []string{"L2024", "L2023", "L2022"})
	require.NoError(t, err)
	keys := make([]string, 0, len(events))
	for _, ev := range events {
		keys = append(keys, ev.BusinessKey())
	}
	sort.Strings(keys)
	return keys
}

func TestRebuildService_RebuildFamily_Scenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newRebuildHarness(t, id.Static("run-1"))

	result, err := h.service.RebuildFamily(ctx, "L2024")
	require.NoError(t, err)
	require.Equal(t, "run-1", result.RunID)
	require.Equal(t, "L2022", result.FamilyKey)
	require.Equal(t, 3, result.LeaguesProcessed)
	// F1 add, T1 trade + pick_trade, three draft_selected, one pick_selected.
	require.Equal(t, 7, result.EventsWritten)
	require.Empty(t, result.Warnings)

	family := []string{"L2024", "L2023", "L2022"}
	pick, err := h.events.ListByAsset(ctx, family, asset.PickRef("2024", 1, 5))
	require.NoError(t, err)
	require.Len(t, pick, 2)
	require.Equal(t, asset.EventPickTrade, pick[0].Type)
	require.Equal(t, asset.EventPickSelected, pick[1].Type)
	require.Equal(t, "B", pick[1].Details["player_id"])
	require.Equal(t, "X", pick[1].Details["original_manager_id"])

	rosters, err := h.leagues.ListRosters(ctx, "L2024")
	require.NoError(t, err)
	require.Len(t, rosters, 6)

	runs, err := h.runs.ListRecent(ctx, "L2022", 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, rebuild.StatusSucceeded, runs[0].Status)
	require.Equal(t, 7, runs[0].EventsWritten)
	require.NotNil(t, runs[0].FinishedAt)
}

func TestRebuildService_RebuildFamily_IsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newRebuildHarness(t, nil)

	first, err := h.service.RebuildFamily(ctx, "L2024")
	require.NoError(t, err)
	firstKeys := familyKeys(t, h.events)

	second, err := h.service.RebuildFamily(ctx, "L2024")
	require.NoError(t, err)
	require.Equal(t, first.EventsWritten, second.EventsWritten)
	require.Equal(t, firstKeys, familyKeys(t, h.events))
	require.NotEqual(t, first.RunID, second.RunID)
}

func TestRebuildService_RebuildFamily_RefetchesUpstreamEachRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := newScenarioProvider()
	provider := newCachingProvider(inner)
	events := memory.NewAssetEventRepository()
	service := NewRebuildService(
		provider,
		NewFamilyResolver(provider, logging.NewNop()),
		memory.NewLeagueRepository(nil),
		events,
		nil,
		lock.NewMemoryLocker(),
		nil,
		RebuildConfig{MaxWeek: 6, FetchConcurrency: 1, Workers: 1},
		logging.NewNop(),
	)
	leagueIDs := []string{"L2024", "L2023", "L2022"}

	first, err := service.RebuildFamily(ctx, "L2024")
	require.NoError(t, err)

	inner.transactions["L2024"] = map[int][]transaction.Transaction{
		1: {{
			ID: "T2", LeagueID: "L2024", Type: transaction.TypeTrade, Status: transaction.StatusComplete,
			Leg: 1, Created: 1_720_000_000_000, StatusUpdated: 1_720_000_100_000,
			RosterIDs: []int{1, 3},
			Adds:      map[string]int{"P1": 3},
			Drops:     map[string]int{"P1": 1},
		}},
	}

	second, err := service.RebuildFamily(ctx, "L2024")
	require.NoError(t, err)
	require.Equal(t, 2, provider.clears)
	require.Equal(t, first.EventsWritten+1, second.EventsWritten)

	traded, err := events.ListByTransactions(ctx, leagueIDs, []string{"T2"})
	require.NoError(t, err)
	require.Len(t, traded, 1)
	require.Equal(t, "P1", traded[0].PlayerID)
	require.Equal(t, "M1", traded[0].FromManagerID)
	require.Equal(t, "M3", traded[0].ToManagerID)
}

func TestRebuildService_RebuildFamily_FetchFailureKeepsPriorData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newRebuildHarness(t, nil)

	_, err := h.service.RebuildFamily(ctx, "L2024")
	require.NoError(t, err)
	before := familyKeys(t, h.events)

	h.provider.transactionErr = fmt.Errorf("%w: upstream status 503", ErrDependencyUnavailable)
	_, err = h.service.RebuildFamily(ctx, "L2024")
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	stage, ok := FailedStage(err)
	if !ok || stage != StageFetch {
		t.Fatalf("expected fetch stage, got %q (ok=%v)", stage, ok)
	}
	require.Equal(t, before, familyKeys(t, h.events))

	runs, err := h.runs.ListRecent(ctx, "L2022", 1)
	require.NoError(t, err)
	require.Equal(t, rebuild.StatusFailed, runs[0].Status)
	require.Equal(t, string(StageFetch), runs[0].Stage)
}

func TestRebuildService_RebuildFamily_MissingWeekIsWarning(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newRebuildHarness(t, nil)
	h.provider.transactionErr = ErrNotFound

	result, err := h.service.RebuildFamily(ctx, "L2024")
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)
	// Without the trade every selection resolves to a natal pick, so only
	// the three draft_selected events remain.
	require.Equal(t, 3, result.EventsWritten)
}

func TestRebuildService_RebuildFamily_PersistFailureReportsStage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newScenarioProvider()
	events := assetmock.NewRepository(t)
	events.
		On("ReplaceFamily", mock.Anything, []string{"L2024", "L2023", "L2022"}, mock.Anything).
		Return(0, fmt.Errorf("%w: key", asset.ErrDuplicateEvent)).
		Once()

	service := NewRebuildService(
		provider,
		NewFamilyResolver(provider, logging.NewNop()),
		memory.NewLeagueRepository(nil),
		events,
		memory.NewRebuildRunRepository(),
		lock.NewMemoryLocker(),
		nil,
		RebuildConfig{MaxWeek: 4},
		logging.NewNop(),
	)

	_, err := service.RebuildFamily(ctx, "L2024")
	if !errors.Is(err, asset.ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent, got %v", err)
	}
	if stage, _ := FailedStage(err); stage != StagePersist {
		t.Fatalf("expected persist stage, got %q", stage)
	}
}

func TestRebuildService_RebuildFamily_RejectsConcurrentRebuild(t *testing.T) {
	t.Parallel()

	provider := newScenarioProvider()
	locker := usecasemock.NewRebuildLocker(t)
	locker.On("Acquire", mock.Anything, "L2022", mock.Anything).Return(nil, false, nil).Once()

	service := NewRebuildService(
		provider,
		NewFamilyResolver(provider, logging.NewNop()),
		memory.NewLeagueRepository(nil),
		memory.NewAssetEventRepository(),
		nil,
		locker,
		nil,
		RebuildConfig{},
		logging.NewNop(),
	)

	_, err := service.RebuildFamily(context.Background(), "L2024")
	if !errors.Is(err, ErrAlreadyRebuilding) {
		t.Fatalf("expected ErrAlreadyRebuilding, got %v", err)
	}
}

func TestRebuildService_RebuildFamily_UnknownLeague(t *testing.T) {
	t.Parallel()

	h := newRebuildHarness(t, nil)
	_, err := h.service.RebuildFamily(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, ok := FailedStage(err); ok {
		t.Fatalf("unknown league must not be reported as a stage failure")
	}
}

func TestRebuildService_DisabledTieBreakFallsBackToStableOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newScenarioProvider()
	events := memory.NewAssetEventRepository()
	service := NewRebuildService(
		provider,
		NewFamilyResolver(provider, logging.NewNop()),
		memory.NewLeagueRepository(nil),
		events,
		nil,
		lock.NewMemoryLocker(),
		nil,
		RebuildConfig{MaxWeek: 4, DisableTieBreak: true},
		logging.NewNop(),
	)

	_, err := service.RebuildFamily(ctx, "L2024")
	require.NoError(t, err)

	// Without the heuristic B takes Y's natal pick (lowest original roster)
	// and C is left with the traded-in one.
	pick, err := events.ListByAsset(ctx, []string{"L2024", "L2023", "L2022"}, asset.PickRef("2024", 1, 5))
	require.NoError(t, err)
	require.Len(t, pick, 2)
	require.Equal(t, "C", pick[1].Details["player_id"])
	require.Equal(t, "single_unused", pick[1].Details["rule"])
}

func TestRebuildService_ListRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newRebuildHarness(t, nil)
	_, err := h.service.RebuildFamily(ctx, "L2024")
	require.NoError(t, err)

	runs, err := h.service.ListRuns(ctx, "L2023", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "L2024", runs[0].HeadLeagueID)
}

func TestRebuildService_RebuildFamily_SnapshotFailureSkipsEventReplace(t *testing.T) {
	t.Parallel()

	provider := newScenarioProvider()
	leagues := leaguemock.NewRepository(t)
	leagues.On("SaveSnapshot", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()
	// no expectations: ReplaceFamily must not be reached
	events := assetmock.NewRepository(t)

	service := NewRebuildService(
		provider,
		NewFamilyResolver(provider, logging.NewNop()),
		leagues,
		events,
		nil,
		lock.NewMemoryLocker(),
		nil,
		RebuildConfig{MaxWeek: 4},
		logging.NewNop(),
	)

	_, err := service.RebuildFamily(context.Background(), "L2024")
	require.Error(t, err)
	if stage, _ := FailedStage(err); stage != StagePersist {
		t.Fatalf("expected persist stage, got %q", stage)
	}
}

func TestRebuildService_RebuildFamily_FamilyWriterPersistsInOneCall(t *testing.T) {
	t.Parallel()

	provider := newScenarioProvider()
	// no expectations: the writer replaces both repository writes
	leagues := leaguemock.NewRepository(t)
	events := assetmock.NewRepository(t)
	writer := usecasemock.NewFamilyWriter(t)
	writer.On("WriteFamily", mock.Anything,
		mock.MatchedBy(func(s league.Snapshot) bool { return len(s.Leagues) == 3 && len(s.Rosters) == 18 }),
		[]string{"L2024", "L2023", "L2022"},
		mock.MatchedBy(func(evs []asset.Event) bool { return len(evs) == 7 }),
	).Return(7, nil).Once()

	service := NewRebuildService(
		provider,
		NewFamilyResolver(provider, logging.NewNop()),
		leagues,
		events,
		nil,
		lock.NewMemoryLocker(),
		nil,
		RebuildConfig{MaxWeek: 6},
		logging.NewNop(),
	).WithFamilyWriter(writer)

	result, err := service.RebuildFamily(context.Background(), "L2024")
	require.NoError(t, err)
	require.Equal(t, 7, result.EventsWritten)
}

func TestRebuildService_RebuildFamily_FamilyWriterFailureReportsPersistStage(t *testing.T) {
	t.Parallel()

	provider := newScenarioProvider()
	writer := usecasemock.NewFamilyWriter(t)
	writer.On("WriteFamily", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0, fmt.Errorf("%w: key", asset.ErrDuplicateEvent)).Once()

	service := NewRebuildService(
		provider,
		NewFamilyResolver(provider, logging.NewNop()),
		leaguemock.NewRepository(t),
		assetmock.NewRepository(t),
		nil,
		lock.NewMemoryLocker(),
		nil,
		RebuildConfig{MaxWeek: 6},
		logging.NewNop(),
	).WithFamilyWriter(writer)

	_, err := service.RebuildFamily(context.Background(), "L2024")
	require.ErrorIs(t, err, asset.ErrDuplicateEvent)
	if stage, _ := FailedStage(err); stage != StagePersist {
		t.Fatalf("expected persist stage, got %q", stage)
	}
}

func TestRebuildService_RebuildFamily_RunAuditFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	provider := newScenarioProvider()
	runs := rebuildmock.NewRepository(t)
	runs.On("Start", mock.Anything, mock.MatchedBy(func(run rebuild.Run) bool {
		return run.ID == "run-7" && run.FamilyKey == "L2022" && run.HeadLeagueID == "L2024" && run.Status == rebuild.StatusRunning
	})).Return(errors.New("table missing")).Once()
	runs.On("Finish", mock.Anything, mock.MatchedBy(func(run rebuild.Run) bool {
		return run.ID == "run-7" && run.Status == rebuild.StatusSucceeded && run.FinishedAt != nil
	})).Return(errors.New("table missing")).Once()

	service := NewRebuildService(
		provider,
		NewFamilyResolver(provider, logging.NewNop()),
		memory.NewLeagueRepository(nil),
		memory.NewAssetEventRepository(),
		runs,
		lock.NewMemoryLocker(),
		id.Static("run-7"),
		RebuildConfig{MaxWeek: 4},
		logging.NewNop(),
	)

	result, err := service.RebuildFamily(context.Background(), "L2024")
	require.NoError(t, err)
	require.Equal(t, "run-7", result.RunID)
}

func TestRebuildService_ListRuns_ClampsLimit(t *testing.T) {
	t.Parallel()

	provider := newScenarioProvider()
	runs := rebuildmock.NewRepository(t)
	runs.On("ListRecent", mock.Anything, "L2022", 20).Return([]rebuild.Run{{ID: "run-1"}}, nil).Once()

	service := NewRebuildService(
		provider,
		NewFamilyResolver(provider, logging.NewNop()),
		memory.NewLeagueRepository(nil),
		memory.NewAssetEventRepository(),
		runs,
		lock.NewMemoryLocker(),
		nil,
		RebuildConfig{},
		logging.NewNop(),
	)

	got, err := service.ListRuns(context.Background(), "L2024", 500)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
