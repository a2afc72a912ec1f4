package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics == nil {
		return
	}

	mux.Handle("GET /metrics", metrics)
}

func registerPredictionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("POST /v1/predictions", handler.SubmitPrediction)
	mux.HandleFunc("GET /v1/matches/{matchID}/predictions", handler.ListMatchPredictions)
	mux.HandleFunc("GET /v1/users/{username}/predictions", handler.ListUserPredictions)
}

func registerLeaderboardRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/users/{username}/stats", handler.GetUserStats)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("GET /v1/admin/listener/status", RequireAdminToken(adminToken, http.HandlerFunc(handler.GetListenerStatus)))
	mux.Handle("POST /v1/admin/listener/start", RequireAdminToken(adminToken, http.HandlerFunc(handler.StartListener)))
	mux.Handle("POST /v1/admin/listener/stop", RequireAdminToken(adminToken, http.HandlerFunc(handler.StopListener)))
	mux.Handle("POST /v1/admin/listener/force-check", RequireAdminToken(adminToken, http.HandlerFunc(handler.ForceCheck)))
	// Scores every finished match in the current snapshot; safe to repeat.
	mux.Handle("POST /v1/admin/listener/reconcile", RequireAdminToken(adminToken, http.HandlerFunc(handler.Reconcile)))
	mux.Handle("POST /v1/admin/matches/{matchID}/score", RequireAdminToken(adminToken, http.HandlerFunc(handler.ScoreMatch)))
	mux.Handle("DELETE /v1/admin/matches/{matchID}/predictions", RequireAdminToken(adminToken, http.HandlerFunc(handler.PurgeMatchPredictions)))
}
