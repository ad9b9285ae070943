package response

import (
	"time"

	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/services/session"
)

// Session represents an issued session in API responses
type Session struct {
	Token       string       `json:"token"`
	PlayerID    string       `json:"player_id"`
	DisplayName string       `json:"display_name"`
	Avatar      model.Avatar `json:"avatar"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// SessionFromModel converts a session to its response form
func SessionFromModel(s *session.Session) Session {
	return Session{
		Token:       s.Token,
		PlayerID:    string(s.PlayerID),
		DisplayName: s.DisplayName,
		Avatar:      s.Avatar,
		ExpiresAt:   s.ExpiresAt,
	}
}

// Room represents a room in API responses
type Room struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	InviteCode  string `json:"invite_code,omitempty"`
	Language    string `json:"language"`
	Phase       string `json:"phase"`
	PlayerCount int    `json:"player_count"`
	MaxSlots    int    `json:"max_slots"`
}

// RoomFromInfo converts room listing info to its response form
func RoomFromInfo(info model.RoomInfo) Room {
	return Room{
		ID:          string(info.ID),
		Kind:        string(info.Kind),
		Language:    info.Language,
		Phase:       string(info.Phase),
		PlayerCount: info.PlayerCount,
		MaxSlots:    info.MaxSlots,
	}
}

// RoomList is a list of rooms
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// LeaderboardEntry is one row of the public leaderboard
type LeaderboardEntry struct {
	DisplayName string `json:"display_name"`
	TotalScore  int    `json:"total_score"`
}

// Leaderboard is the aggregated public leaderboard
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardFromModel converts leaderboard rows to their response form
func LeaderboardFromModel(entries []model.LeaderboardEntry) Leaderboard {
	out := Leaderboard{Entries: make([]LeaderboardEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, LeaderboardEntry{
			DisplayName: e.DisplayName,
			TotalScore:  e.TotalScore,
		})
	}
	return out
}
