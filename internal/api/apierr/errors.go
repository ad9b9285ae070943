package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/drawblin/drawblin/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidName         = "INVALID_NAME"
	CodeInvalidAvatar       = "INVALID_AVATAR"
	CodeInvalidAddress      = "INVALID_ADDRESS"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeRoomFull            = "ROOM_FULL"
	CodeBanned              = "BANNED"
	CodeWalletInUse         = "WALLET_IN_USE"
	CodeGameInProgress      = "GAME_IN_PROGRESS"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeLanguageUnknown     = "LANGUAGE_UNKNOWN"
	CodeNoReward            = "NO_REWARD"
	CodeAlreadyClaimed      = "ALREADY_CLAIMED"
	CodePayoutFailed        = "PAYOUT_FAILED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// CodeFor returns the wire code for an error, for transports that
// cannot carry an HTTP status
func CodeFor(err error) string {
	return toHTTPError(err).apiError.Code
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, model.ErrInvalidName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidName, "Display name must be 1-16 characters"}}
	case errors.Is(err, model.ErrInvalidAvatar):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidAvatar, "Invalid avatar"}}
	case errors.Is(err, model.ErrInvalidAddress):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidAddress, "Invalid payout address"}}
	case errors.Is(err, model.ErrRoomNotFound), errors.Is(err, model.ErrInvalidCode):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrBanned):
		return &httpError{http.StatusForbidden, APIError{CodeBanned, "You are banned from this room"}}
	case errors.Is(err, model.ErrWalletInUse):
		return &httpError{http.StatusConflict, APIError{CodeWalletInUse, "This wallet is already active in another session"}}
	case errors.Is(err, model.ErrGameInProgress):
		return &httpError{http.StatusConflict, APIError{CodeGameInProgress, "Game is in progress"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientPlayers, "Not enough players to start"}}
	case errors.Is(err, model.ErrLanguageUnknown):
		return &httpError{http.StatusBadRequest, APIError{CodeLanguageUnknown, "Unknown word list language"}}
	case errors.Is(err, model.ErrNoReward), errors.Is(err, model.ErrClaimNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNoReward, "No reward available"}}
	case errors.Is(err, model.ErrAlreadyClaimed):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyClaimed, "Reward already claimed"}}
	case errors.Is(err, model.ErrPayoutFailed):
		return &httpError{http.StatusBadGateway, APIError{CodePayoutFailed, "Payout failed, try again"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
