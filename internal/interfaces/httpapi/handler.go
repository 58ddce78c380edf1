package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/rebuild"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
)

const (
	defaultNetworkDepth = 2
	defaultRunsLimit    = 20
)

type RebuildService interface {
	RebuildFamily(ctx context.Context, leagueID string) (usecase.RebuildResult, error)
	ListRuns(ctx context.Context, leagueID string, limit int) ([]rebuild.Run, error)
}

type LineageService interface {
	GetTimeline(ctx context.Context, assetRef, leagueID string) ([]asset.Event, error)
	GetTradeTree(ctx context.Context, assetRef, leagueID string) (lineage.TreeNode, error)
	GetNetwork(ctx context.Context, assetRef, leagueID string, depth int) (lineage.Network, error)
}

type PlayerService interface {
	SyncPlayers(ctx context.Context) (usecase.SyncPlayersResult, error)
}

type Handler struct {
	rebuildService RebuildService
	lineageService LineageService
	playerService  PlayerService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	rebuildService RebuildService,
	lineageService LineageService,
	playerService PlayerService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		rebuildService: rebuildService,
		lineageService: lineageService,
		playerService:  playerService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

type leagueParams struct {
	LeagueID string `validate:"required,max=64"`
}

type assetParams struct {
	LeagueID string `validate:"required,max=64"`
	AssetRef string `validate:"required,max=128"`
}

type networkParams struct {
	LeagueID string `validate:"required,max=64"`
	AssetRef string `validate:"required,max=128"`
	Depth    int    `validate:"min=1,max=5"`
}

type runsParams struct {
	LeagueID string `validate:"required,max=64"`
	Limit    int    `validate:"min=1,max=100"`
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func assetParamsFromRequest(r *http.Request) assetParams {
	return assetParams{
		LeagueID: strings.TrimSpace(r.PathValue("leagueID")),
		AssetRef: strings.TrimSpace(r.PathValue("assetRef")),
	}
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return value, nil
}
