package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerRebuildRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/leagues/{leagueID}/rebuild", handler.RebuildFamily)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/rebuilds", handler.ListRebuildRuns)
}

func registerLineageRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/assets/{assetRef}/timeline", handler.GetTimeline)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/assets/{assetRef}/trade-tree", handler.GetTradeTree)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/assets/{assetRef}/network", handler.GetNetwork)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/players/sync", handler.SyncPlayers)
}
