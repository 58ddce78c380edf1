package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/riskibarqy/dynasty-lineage/internal/interfaces/presenter"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
)

func (h *Handler) RebuildFamily(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RebuildFamily")
	defer span.End()

	params := leagueParams{LeagueID: strings.TrimSpace(r.PathValue("leagueID"))}
	if err := h.validateRequest(ctx, params); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.rebuildService.RebuildFamily(ctx, params.LeagueID)
	if err != nil {
		stage, _ := usecase.FailedStage(err)
		if errors.Is(err, usecase.ErrAlreadyRebuilding) {
			h.logger.InfoContext(ctx, "rebuild rejected", "league_id", params.LeagueID, "error", err)
		} else {
			h.logger.ErrorContext(ctx, "rebuild family failed", "league_id", params.LeagueID, "stage", string(stage), "error", err)
		}
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.FromRebuildResult(result))
}

func (h *Handler) ListRebuildRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRebuildRuns")
	defer span.End()

	limit, err := queryInt(r, "limit", defaultRunsLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	params := runsParams{LeagueID: strings.TrimSpace(r.PathValue("leagueID")), Limit: limit}
	if err := h.validateRequest(ctx, params); err != nil {
		writeError(ctx, w, err)
		return
	}

	runs, err := h.rebuildService.ListRuns(ctx, params.LeagueID, params.Limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list rebuild runs failed", "league_id", params.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.FromRebuildRuns(runs))
}
