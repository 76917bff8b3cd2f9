package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"slack-chess/internal/middleware"
)

// Limits are the per-IP request budgets for the expensive endpoints
type Limits struct {
	GamesPerMinute   int
	ImportsPerMinute int
}

// NewRouter wires every HTTP and websocket route
func NewRouter(gameHandler *GameHandler, wsHandler *WebSocketHandler, rl *middleware.RateLimiter, limits Limits) *mux.Router {
	router := mux.NewRouter()

	gameCreationLimit := middleware.PerMinute("games", limits.GamesPerMinute)
	importLimit := middleware.PerMinute("imports", limits.ImportsPerMinute)

	// WebSocket routes
	router.HandleFunc("/ws/games/{sessionId}",
		rl.IPRateLimitHandler(middleware.WebSocketUpgradeLimit, wsHandler.HandleWebSocket))

	// Game routes
	gameApi := router.PathPrefix("/api/games").Subrouter()
	gameApi.HandleFunc("", rl.IPRateLimitHandler(gameCreationLimit, gameHandler.CreateGame)).Methods("POST")
	gameApi.HandleFunc("/{sessionId}", gameHandler.GetGame).Methods("GET")
	gameApi.HandleFunc("/{sessionId}/move", gameHandler.MakeMove).Methods("POST")
	gameApi.HandleFunc("/{sessionId}/targets", gameHandler.GetTargets).Methods("GET")
	gameApi.HandleFunc("/{sessionId}/envelope", gameHandler.GetEnvelope).Methods("GET")
	gameApi.HandleFunc("/{sessionId}/import", rl.IPRateLimitHandler(importLimit, gameHandler.ImportGame)).Methods("POST")
	gameApi.HandleFunc("/{sessionId}/reset", gameHandler.ResetGame).Methods("POST")
	gameApi.HandleFunc("/{sessionId}/moves", gameHandler.GetMoves).Methods("GET")
	gameApi.HandleFunc("/{sessionId}/replay/{index}", gameHandler.GetReplay).Methods("GET")
	gameApi.HandleFunc("/{sessionId}/pgn", gameHandler.ExportPGN).Methods("GET")
	gameApi.HandleFunc("/{sessionId}/share", gameHandler.ShareGame).Methods("POST")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}
