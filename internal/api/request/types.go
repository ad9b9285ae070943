package request

import "github.com/drawblin/drawblin/internal/model"

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	DisplayName   string       `json:"display_name"`
	Avatar        model.Avatar `json:"avatar"`
	PayoutAddress string       `json:"payout_address,omitempty"`
}

// CreateRoomRequest is the request body for creating a private room
type CreateRoomRequest struct {
	Language  string  `json:"language"`
	PrizePool float64 `json:"prize_pool,omitempty"`
}
