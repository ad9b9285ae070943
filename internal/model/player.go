package model

import "time"

// PlayerID uniquely identifies a player across the system.
// IDs are connection-scoped: a player who disconnects and rejoins
// gets a fresh one.
type PlayerID string

// MaxDisplayNameLength is the longest display name accepted at join
const MaxDisplayNameLength = 16

// Avatar describes a player's appearance as palette indices chosen
// client-side. The server treats it as opaque beyond range checks.
type Avatar struct {
	Body  int `json:"body"`
	Face  int `json:"face"`
	Color int `json:"color"`
}

// Player represents a game participant within a room
type Player struct {
	ID            PlayerID  `json:"id"`
	DisplayName   string    `json:"displayName"` // at most MaxDisplayNameLength characters
	Avatar        Avatar    `json:"avatar"`
	Score         int       `json:"score"` // committed score, only changes at round-end commit
	GuessedRound  bool      `json:"guessedRound"`
	IsAdmin       bool      `json:"isAdmin"`
	PayoutAddress string    `json:"-"` // optional, opaque chain address
	JoinedAt      time.Time `json:"-"`
}
