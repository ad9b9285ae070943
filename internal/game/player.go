package game

import (
	"time"

	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/services/abuse"
)

// Player is a room's view of one connected participant. All fields
// are owned by the room goroutine.
type Player struct {
	ID            model.PlayerID
	DisplayName   string
	Avatar        model.Avatar
	PayoutAddress string
	JoinedAt      time.Time

	Score        int  // committed; only changes at round-end commit
	GuessedRound bool // guessed correctly this round
	IsAdmin      bool

	conn Conn
	spam *abuse.SpamDetector
}

// NewPlayer builds a player ready to be offered to a room
func NewPlayer(id model.PlayerID, name string, avatar model.Avatar, payoutAddress string, conn Conn) *Player {
	return &Player{
		ID:            id,
		DisplayName:   name,
		Avatar:        avatar,
		PayoutAddress: payoutAddress,
		conn:          conn,
	}
}

// Snapshot converts the player to its wire representation
func (p *Player) Snapshot() model.Player {
	return model.Player{
		ID:           p.ID,
		DisplayName:  p.DisplayName,
		Avatar:       p.Avatar,
		Score:        p.Score,
		GuessedRound: p.GuessedRound,
		IsAdmin:      p.IsAdmin,
	}
}

// send queues an event for this player only
func (p *Player) send(env model.Envelope) {
	p.conn.Send(env)
}
