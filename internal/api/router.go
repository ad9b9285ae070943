package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/drawblin/drawblin/internal/api/handler"
	apimiddleware "github.com/drawblin/drawblin/internal/api/middleware"
	"github.com/drawblin/drawblin/internal/registry"
	"github.com/drawblin/drawblin/internal/services/session"
	"github.com/drawblin/drawblin/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Sessions *session.Service
	Registry *registry.Registry
	Store    storage.Storage
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(cfg.Sessions)
	roomHandler := handler.NewRoomHandler(cfg.Registry, cfg.Logger)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Store)

	authMiddleware := apimiddleware.Auth(cfg.Sessions)
	loggingMiddleware := apimiddleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Session issue needs no auth; everything else does
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)

	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)

	roomsProtected := api.PathPrefix("/rooms").Subrouter()
	roomsProtected.Use(authMiddleware)
	roomsProtected.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	roomsProtected.HandleFunc("/{target}", roomHandler.Get).Methods(http.MethodGet)

	// Websocket join: quick play without a target, or a specific room
	// by id or invite code
	play := api.PathPrefix("/play").Subrouter()
	play.Use(authMiddleware)
	play.HandleFunc("", roomHandler.Join).Methods(http.MethodGet)

	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
