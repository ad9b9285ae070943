package game

import "github.com/drawblin/drawblin/internal/model"

// Conn is the outbound side of a player's connection. Implementations
// must not block: the room goroutine calls Send for every broadcast
// and a stalled client cannot be allowed to stall the room.
type Conn interface {
	// Send queues an event for delivery, dropping it if the client
	// cannot keep up
	Send(env model.Envelope)
	// Close tears down the connection with a reason code
	Close(reason string)
}

// nopConn discards everything; used for players whose connection is
// already gone while the room finishes processing them
type nopConn struct{}

func (nopConn) Send(model.Envelope) {}
func (nopConn) Close(string)        {}

// NopConn returns a connection that discards everything
func NopConn() Conn {
	return nopConn{}
}
