package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/rebuild"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
	"github.com/stretchr/testify/require"
)

type stubRebuildService struct {
	result    usecase.RebuildResult
	err       error
	runs      []rebuild.Run
	gotLeague string
	gotLimit  int
}

func (s *stubRebuildService) RebuildFamily(_ context.Context, leagueID string) (usecase.RebuildResult, error) {
	s.gotLeague = leagueID
	return s.result, s.err
}

func (s *stubRebuildService) ListRuns(_ context.Context, leagueID string, limit int) ([]rebuild.Run, error) {
	s.gotLeague = leagueID
	s.gotLimit = limit
	return s.runs, s.err
}

type stubLineageService struct {
	events   []asset.Event
	tree     lineage.TreeNode
	network  lineage.Network
	err      error
	gotRef   string
	gotDepth int
}

func (s *stubLineageService) GetTimeline(_ context.Context, assetRef, _ string) ([]asset.Event, error) {
	s.gotRef = assetRef
	return s.events, s.err
}

func (s *stubLineageService) GetTradeTree(_ context.Context, assetRef, _ string) (lineage.TreeNode, error) {
	s.gotRef = assetRef
	return s.tree, s.err
}

func (s *stubLineageService) GetNetwork(_ context.Context, assetRef, _ string, depth int) (lineage.Network, error) {
	s.gotRef = assetRef
	s.gotDepth = depth
	return s.network, s.err
}

type stubPlayerService struct {
	result usecase.SyncPlayersResult
	err    error
}

func (s *stubPlayerService) SyncPlayers(context.Context) (usecase.SyncPlayersResult, error) {
	return s.result, s.err
}

type testAPI struct {
	rebuild *stubRebuildService
	lineage *stubLineageService
	players *stubPlayerService
	router  http.Handler
}

func newTestAPI() *testAPI {
	api := &testAPI{
		rebuild: &stubRebuildService{},
		lineage: &stubLineageService{},
		players: &stubPlayerService{},
	}
	handler := NewHandler(api.rebuild, api.lineage, api.players, logging.NewNop())
	api.router = NewRouter(handler, logging.NewNop(), true, nil)
	return api
}

func (a *testAPI) do(t *testing.T, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func errorReason(t *testing.T, body map[string]any) string {
	t.Helper()

	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error object, got %v", body)
	items, ok := errObj["errors"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, items)
	reason, _ := items[0].(map[string]any)["reason"].(string)
	return reason
}

func TestHealthz(t *testing.T) {
	api := newTestAPI()
	rec, body := api.do(t, http.MethodGet, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := body["data"].(map[string]any)
	require.Equal(t, "ok", data["status"])
}

func TestRebuildFamily(t *testing.T) {
	api := newTestAPI()
	api.rebuild.result = usecase.RebuildResult{
		RunID:            "run-1",
		FamilyKey:        "L2022",
		LeaguesProcessed: 3,
		EventsWritten:    7,
		Warnings:         []lineage.Warning{{Code: lineage.WarnMissingUpstream, LeagueID: "L2023", Message: "week 3"}},
		Duration:         1500 * time.Millisecond,
	}

	rec, body := api.do(t, http.MethodPost, "/v1/leagues/L2024/rebuild")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "L2024", api.rebuild.gotLeague)
	data, _ := body["data"].(map[string]any)
	require.Equal(t, float64(7), data["events_written"])
	require.Equal(t, float64(3), data["leagues_processed"])
	require.Equal(t, float64(1500), data["duration_ms"])
	warnings, _ := data["warnings"].([]any)
	require.Len(t, warnings, 1)
}

func TestRebuildFamilyErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{
			name:       "already rebuilding",
			err:        fmt.Errorf("family L2022: %w", usecase.ErrAlreadyRebuilding),
			wantStatus: http.StatusConflict,
			wantReason: "alreadyRebuilding",
		},
		{
			name:       "unknown league",
			err:        fmt.Errorf("%w: league L9", usecase.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantReason: "notFound",
		},
		{
			name:       "cycle",
			err:        usecase.ErrCycleDetected,
			wantStatus: http.StatusUnprocessableEntity,
			wantReason: "familyCycle",
		},
		{
			name:       "upstream down",
			err:        &usecase.StageError{Stage: usecase.StageFetch, Err: usecase.ErrDependencyUnavailable},
			wantStatus: http.StatusServiceUnavailable,
			wantReason: "dependencyUnavailable",
		},
		{
			name:       "duplicate event",
			err:        &usecase.StageError{Stage: usecase.StagePersist, Err: asset.ErrDuplicateEvent},
			wantStatus: http.StatusInternalServerError,
			wantReason: "duplicateEvent",
		},
		{
			name:       "unexpected",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantReason: "internalError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.rebuild.err = tt.err

			rec, body := api.do(t, http.MethodPost, "/v1/leagues/L2024/rebuild")
			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.wantReason, errorReason(t, body))
		})
	}
}

func TestListRebuildRuns(t *testing.T) {
	api := newTestAPI()
	finished := time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)
	api.rebuild.runs = []rebuild.Run{{
		ID:         "run-1",
		FamilyKey:  "L2022",
		Status:     rebuild.StatusSucceeded,
		StartedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		FinishedAt: &finished,
	}}

	rec, body := api.do(t, http.MethodGet, "/v1/leagues/L2024/rebuilds?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, api.rebuild.gotLimit)
	items, _ := body["data"].([]any)
	require.Len(t, items, 1)
	item, _ := items[0].(map[string]any)
	require.Equal(t, "succeeded", item["status"])

	rec, _ = api.do(t, http.MethodGet, "/v1/leagues/L2024/rebuilds")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, defaultRunsLimit, api.rebuild.gotLimit)

	rec, body = api.do(t, http.MethodGet, "/v1/leagues/L2024/rebuilds?limit=500")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalidInput", errorReason(t, body))
}

func TestGetTimeline(t *testing.T) {
	api := newTestAPI()
	api.lineage.events = []asset.Event{{
		ID:                   1,
		LeagueID:             "L2023",
		Season:               "2023",
		Type:                 asset.EventPickTrade,
		Kind:                 asset.KindPick,
		PickSeason:           "2024",
		PickRound:            1,
		PickOriginalRosterID: asset.IntPtr(5),
		TransactionID:        "T1",
	}}

	rec, body := api.do(t, http.MethodGet, "/v1/leagues/L2024/assets/pick:2024:1:5/timeline")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pick:2024:1:5", api.lineage.gotRef)
	data, _ := body["data"].(map[string]any)
	ref, _ := data["asset"].(map[string]any)
	require.Equal(t, "pick:2024:1:5", ref["key"])
	events, _ := data["events"].([]any)
	require.Len(t, events, 1)
	ev, _ := events[0].(map[string]any)
	require.Equal(t, "pick_trade", ev["event_type"])
	require.Nil(t, ev["week"])
}

func TestGetTimelineUnknownAsset(t *testing.T) {
	api := newTestAPI()
	api.lineage.err = fmt.Errorf("%w: player:nope", usecase.ErrAssetNotFound)

	for _, view := range []string{"timeline", "trade-tree", "network"} {
		rec, body := api.do(t, http.MethodGet, "/v1/leagues/L2024/assets/player:nope/"+view)
		require.Equal(t, http.StatusNotFound, rec.Code, view)
		require.Equal(t, "assetNotFound", errorReason(t, body), view)
	}
}

func TestGetTimelineInvalidRef(t *testing.T) {
	api := newTestAPI()
	api.lineage.err = fmt.Errorf("%w: %w", usecase.ErrInvalidInput, asset.ErrInvalidRef)

	rec, body := api.do(t, http.MethodGet, "/v1/leagues/L2024/assets/pick:2024/timeline")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalidAssetRef", errorReason(t, body))
}

func TestGetTradeTree(t *testing.T) {
	api := newTestAPI()
	api.lineage.tree = lineage.TreeNode{
		Asset: asset.PlayerRef("A"),
		Exchanges: []lineage.Exchange{{
			TransactionID: "T1",
			Derived:       []lineage.TreeNode{{Asset: asset.PickRef("2024", 1, 5), ReachedVia: "T1", Depth: 1}},
		}},
	}

	rec, body := api.do(t, http.MethodGet, "/v1/leagues/L2024/assets/player:A/trade-tree")

	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := body["data"].(map[string]any)
	exchanges, _ := data["exchanges"].([]any)
	require.Len(t, exchanges, 1)
	derived, _ := exchanges[0].(map[string]any)["derived"].([]any)
	require.Len(t, derived, 1)
	child, _ := derived[0].(map[string]any)
	require.Equal(t, "T1", child["reached_via"])
}

func TestGetNetworkDepth(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantDepth  int
	}{
		{name: "default depth", query: "", wantStatus: http.StatusOK, wantDepth: defaultNetworkDepth},
		{name: "explicit depth", query: "?depth=5", wantStatus: http.StatusOK, wantDepth: 5},
		{name: "depth zero", query: "?depth=0", wantStatus: http.StatusBadRequest},
		{name: "depth six", query: "?depth=6", wantStatus: http.StatusBadRequest},
		{name: "not a number", query: "?depth=deep", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.lineage.network = lineage.Network{Focal: asset.PlayerRef("A"), Depth: tt.wantDepth}

			rec, _ := api.do(t, http.MethodGet, "/v1/leagues/L2024/assets/A/network"+tt.query)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.Equal(t, tt.wantDepth, api.lineage.gotDepth)
			}
		})
	}
}

func TestGetNetworkInvalidDepthFromService(t *testing.T) {
	api := newTestAPI()
	api.lineage.err = fmt.Errorf("%w: %w", usecase.ErrInvalidInput, lineage.ErrInvalidDepth)

	rec, body := api.do(t, http.MethodGet, "/v1/leagues/L2024/assets/A/network?depth=3")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalidDepth", errorReason(t, body))
}

func TestSyncPlayers(t *testing.T) {
	api := newTestAPI()
	api.players.result = usecase.SyncPlayersResult{Fetched: 3, Written: 2, Skipped: 1}

	rec, body := api.do(t, http.MethodPost, "/v1/players/sync")
	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := body["data"].(map[string]any)
	require.Equal(t, float64(2), data["written"])
}

func TestOpenAPIServed(t *testing.T) {
	api := newTestAPI()
	rec, _ := api.do(t, http.MethodGet, "/openapi.yaml")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/v1/leagues/{leagueID}/assets/{assetRef}/network")
	require.Equal(t, openAPIETag, rec.Header().Get("ETag"))

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	req.Header.Set("If-None-Match", openAPIETag)
	revalidated := httptest.NewRecorder()
	api.router.ServeHTTP(revalidated, req)
	require.Equal(t, http.StatusNotModified, revalidated.Code)
}

func TestSwaggerUIServed(t *testing.T) {
	api := newTestAPI()
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/openapi.yaml")
}

func TestRecoverPanic(t *testing.T) {
	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
