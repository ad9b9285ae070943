package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/drawblin/drawblin/internal/game"
	"github.com/drawblin/drawblin/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBufferSize = 256

	// Read throttle. Stroke batches dominate legitimate traffic; the
	// chat-level spam ladder lives in the room, this only protects the
	// decode path.
	eventsPerSecond = 30
	eventBurst      = 60
)

// Client pumps one websocket connection in and out of a room. It
// implements game.Conn for the outbound side.
type Client struct {
	conn     *websocket.Conn
	room     *game.Room
	playerID model.PlayerID
	logger   *slog.Logger

	send    chan model.Envelope
	limiter *rate.Limiter

	closeOnce sync.Once
	closed    chan struct{}
}

var _ game.Conn = (*Client)(nil)

// NewClient wraps an upgraded websocket connection. Run must be
// called after the client's player has been admitted to the room.
func NewClient(conn *websocket.Conn, playerID model.PlayerID, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		playerID: playerID,
		logger:   logger.With(slog.String("player_id", string(playerID))),
		send:     make(chan model.Envelope, sendBufferSize),
		limiter:  rate.NewLimiter(rate.Limit(eventsPerSecond), eventBurst),
		closed:   make(chan struct{}),
	}
}

// Send queues an event for the client. If the client cannot drain its
// buffer the event is dropped; a stalled socket must never stall the
// room goroutine.
func (c *Client) Send(env model.Envelope) {
	select {
	case c.send <- env:
	case <-c.closed:
	default:
		c.logger.Warn("send buffer full, dropping event",
			slog.String("event", string(env.Type)))
	}
}

// Close tears the connection down, sending the reason as the close
// message when one is given
func (c *Client) Close(reason string) {
	c.closeOnce.Do(func() {
		close(c.closed)
		if reason != "" {
			msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		}
		_ = c.conn.Close()
	})
}

// Run attaches the client to its room and pumps until the connection
// drops. Blocks until the read side finishes.
func (c *Client) Run(room *game.Room) {
	c.room = room
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.room.Disconnect(c.playerID)
		c.Close("")
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env model.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
		if !c.limiter.Allow() {
			continue
		}
		c.room.Deliver(c.playerID, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.Close("")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close("")
				return
			}
		case <-c.closed:
			return
		}
	}
}
