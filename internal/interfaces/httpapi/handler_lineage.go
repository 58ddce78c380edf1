package httpapi

import (
	"net/http"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/interfaces/presenter"
)

func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTimeline")
	defer span.End()

	params := assetParamsFromRequest(r)
	if err := h.validateRequest(ctx, params); err != nil {
		writeError(ctx, w, err)
		return
	}

	events, err := h.lineageService.GetTimeline(ctx, params.AssetRef, params.LeagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get timeline failed", "league_id", params.LeagueID, "asset", params.AssetRef, "error", err)
		writeError(ctx, w, err)
		return
	}

	// validated by the service above
	ref, _ := asset.ParseRef(params.AssetRef)
	writeSuccess(ctx, w, http.StatusOK, presenter.NewTimeline(ref, events))
}

func (h *Handler) GetTradeTree(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTradeTree")
	defer span.End()

	params := assetParamsFromRequest(r)
	if err := h.validateRequest(ctx, params); err != nil {
		writeError(ctx, w, err)
		return
	}

	tree, err := h.lineageService.GetTradeTree(ctx, params.AssetRef, params.LeagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get trade tree failed", "league_id", params.LeagueID, "asset", params.AssetRef, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.FromTreeNode(tree))
}

func (h *Handler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetNetwork")
	defer span.End()

	depth, err := queryInt(r, "depth", defaultNetworkDepth)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	base := assetParamsFromRequest(r)
	params := networkParams{LeagueID: base.LeagueID, AssetRef: base.AssetRef, Depth: depth}
	if err := h.validateRequest(ctx, params); err != nil {
		writeError(ctx, w, err)
		return
	}

	network, err := h.lineageService.GetNetwork(ctx, params.AssetRef, params.LeagueID, params.Depth)
	if err != nil {
		h.logger.WarnContext(ctx, "get network failed", "league_id", params.LeagueID, "asset", params.AssetRef, "depth", params.Depth, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, presenter.FromNetwork(network))
}
