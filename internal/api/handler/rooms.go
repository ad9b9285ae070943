package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/drawblin/drawblin/internal/api/apierr"
	"github.com/drawblin/drawblin/internal/api/middleware"
	"github.com/drawblin/drawblin/internal/api/request"
	"github.com/drawblin/drawblin/internal/api/response"
	"github.com/drawblin/drawblin/internal/game"
	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/registry"
	"github.com/drawblin/drawblin/internal/ws"
)

// RoomHandler serves room creation, listing and the websocket join
type RoomHandler struct {
	registry *registry.Registry
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewRoomHandler creates a room handler
func NewRoomHandler(reg *registry.Registry, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		registry: reg,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Game clients are served from anywhere; the session token
			// is the authentication boundary, not the Origin header
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Create handles POST /rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustGetSession(r.Context())

	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid JSON body"))
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}
	if req.PrizePool < 0 {
		apierr.WriteError(w, apierr.NewInvalidRequestError("prize pool cannot be negative"))
		return
	}

	room, err := h.registry.CreatePrivateRoom(sess.PlayerID, req.Language, req.PrizePool)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.RoomFromInfo(room.Info())
	resp.InviteCode = string(room.InviteCode())
	response.JSON(w, http.StatusCreated, resp)
}

// List handles GET /rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	infos := h.registry.ListPublic()
	list := response.RoomList{Rooms: make([]response.Room, 0, len(infos))}
	for _, info := range infos {
		list.Rooms = append(list.Rooms, response.RoomFromInfo(info))
	}
	response.JSON(w, http.StatusOK, list)
}

// Get handles GET /rooms/{target}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	target := mux.Vars(r)["target"]
	room, err := h.registry.Resolve(target)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	resp := response.RoomFromInfo(room.Info())
	if room.Kind() == model.RoomPrivate {
		resp.InviteCode = string(room.InviteCode())
	}
	response.JSON(w, http.StatusOK, resp)
}

// Join handles GET /play, upgrading to a websocket and attaching the
// session's player to a room. Query parameters:
//
//	target   room id or invite code; empty means public matchmaking
//	language word list for matchmaking, default "en"
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustGetSession(r.Context())

	target := r.URL.Query().Get("target")
	language := r.URL.Query().Get("language")
	if language == "" {
		language = "en"
	}

	// Matchmaking happens after the upgrade so a stale offer can be
	// retried; only the language is checked while HTTP errors can
	// still be written.
	var room *game.Room
	if target != "" {
		var err error
		room, err = h.registry.Resolve(target)
		if err != nil {
			apierr.WriteError(w, err)
			return
		}
	} else if !h.registry.HasLanguage(language) {
		apierr.WriteError(w, model.ErrLanguageUnknown)
		return
	}

	if err := h.registry.AcquireWallet(sess.PayoutAddress, sess.PlayerID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		h.registry.ReleaseWallet(sess.PayoutAddress, sess.PlayerID)
		return
	}

	client := ws.NewClient(conn, sess.PlayerID, h.logger)
	player := game.NewPlayer(sess.PlayerID, sess.DisplayName, sess.Avatar, sess.PayoutAddress, client)

	if room != nil {
		err = room.RequestJoin(player)
	} else {
		room, err = h.registry.JoinPublic(language, player)
	}
	if err != nil {
		h.registry.ReleaseWallet(sess.PayoutAddress, sess.PlayerID)
		// Past the upgrade, rejections travel over the socket. The
		// pumps are not running yet so write directly.
		env := model.NewEnvelope(model.EventJoinRejected, model.JoinRejectedPayload{
			Code:    apierr.CodeFor(err),
			Message: err.Error(),
		})
		_ = conn.WriteJSON(env)
		client.Close(err.Error())
		return
	}

	client.Run(room)
}
