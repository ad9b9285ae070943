package handler

import (
	"net/http"
	"strconv"

	"github.com/drawblin/drawblin/internal/api/apierr"
	"github.com/drawblin/drawblin/internal/api/response"
	"github.com/drawblin/drawblin/internal/storage"
)

const (
	defaultLeaderboardSize = 20
	maxLeaderboardSize     = 100
)

// LeaderboardHandler serves the aggregated public leaderboard
type LeaderboardHandler struct {
	store storage.Storage
}

// NewLeaderboardHandler creates a leaderboard handler
func NewLeaderboardHandler(store storage.Storage) *LeaderboardHandler {
	return &LeaderboardHandler{store: store}
}

// Get handles GET /leaderboard
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			apierr.WriteError(w, apierr.NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = min(n, maxLeaderboardSize)
	}

	entries, err := h.store.TopPlayers(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(entries))
}
