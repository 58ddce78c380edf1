package httpapi

import (
	"net/http"

	"github.com/riskibarqy/dynasty-lineage/internal/interfaces/presenter"
)

func (h *Handler) SyncPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncPlayers")
	defer span.End()

	result, err := h.playerService.SyncPlayers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "sync players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.FromSyncPlayers(result))
}
