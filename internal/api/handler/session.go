package handler

import (
	"encoding/json"
	"net/http"

	"github.com/drawblin/drawblin/internal/api/apierr"
	"github.com/drawblin/drawblin/internal/api/request"
	"github.com/drawblin/drawblin/internal/api/response"
	"github.com/drawblin/drawblin/internal/services/session"
)

// SessionHandler issues and revokes player sessions
type SessionHandler struct {
	sessions *session.Service
}

// NewSessionHandler creates a session handler
func NewSessionHandler(sessions *session.Service) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create handles POST /sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid JSON body"))
		return
	}

	sess, err := h.sessions.Create(req.DisplayName, req.Avatar, req.PayoutAddress)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(sess))
}
