package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/drawblin/drawblin/internal/dependencies/clock"
	"github.com/drawblin/drawblin/internal/dependencies/random"
	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/services/abuse"
	"github.com/drawblin/drawblin/internal/services/rewards"
	"github.com/drawblin/drawblin/internal/services/words"
)

// Phase timing constants
const (
	roundStartDelay  = 2 * time.Second
	wordChoiceTime   = 15 * time.Second
	roundEndPause    = 3 * time.Second
	gameEndCountdown = 7 * time.Second

	// First correct guess clamps remaining time down to this when the
	// round still has more than this left and at least minClampPlayers
	// are present
	clampSeconds    = 32
	minClampPlayers = 3

	// Hint checkpoints in remaining seconds
	firstHintMark  = 44
	secondHintMark = 25
)

// ResultSink consumes finished public games for leaderboard aggregation
type ResultSink interface {
	RecordGameResult(ctx context.Context, result *model.GameResult) error
}

// Deps are the collaborators a room needs
type Deps struct {
	Words   *words.Service
	Ledger  *rewards.Ledger
	Results ResultSink
	Clock   clock.Clock
	Random  random.Random
	Logger  *slog.Logger

	// OnEmpty is called (from the room goroutine) when the last player
	// leaves and the room should be destroyed
	OnEmpty func(model.RoomID)

	// OnLeave is called (from the room goroutine) for every player
	// that leaves, whatever the reason
	OnLeave func(playerID model.PlayerID, payoutAddress string)
}

// joinRequest asks the room goroutine to admit a player
type joinRequest struct {
	player  *Player
	errChan chan error
}

// playerEvent is one inbound client event routed to the room
type playerEvent struct {
	from model.PlayerID
	env  model.Envelope
}

// leaveRequest reports a disconnect to the room goroutine
type leaveRequest struct {
	playerID model.PlayerID
}

// Room is a single game room. All state below the channel fields is
// owned exclusively by the goroutine running Run; external callers
// talk to it through RequestJoin, Deliver, Disconnect and Tick.
type Room struct {
	id         model.RoomID
	kind       model.RoomKind
	inviteCode model.InviteCode
	deps       Deps
	logger     *slog.Logger

	// Communication
	inbox  chan playerEvent
	joins  chan joinRequest
	leaves chan leaveRequest
	ticks  chan time.Time
	done   chan struct{}

	// Cached listing info, readable without entering the actor
	info atomic.Pointer[model.RoomInfo]

	// Actor-owned state
	settings    model.Settings
	gameSeq     int // increments on every game start; keys claim records
	ownerID     model.PlayerID
	players     []*Player // insertion order = drawer rotation order
	phase       model.Phase
	round       int
	drawerID    model.PlayerID
	word        string
	wordChoices []string
	comboStage  int      // combination mode: 0 inactive, 1 first pick made
	comboFirst  string   // first word of a combination pick
	customWords []string // cleaned custom word list for this game
	revealed    map[int]bool
	hintMarks   []int // remaining-second checkpoints not yet fired
	hintsGiven  int
	strokes     *StrokeLog
	pending     map[model.PlayerID]int
	guessOrder  int // number of correct guesses this round
	ratingUp    int
	ratingDown  int
	ratedBy     map[model.PlayerID]bool
	ballots     *abuse.VoteKickTracker
	bannedIDs   map[model.PlayerID]bool
	bannedAddrs map[string]bool

	prizePool  float64
	poolFrozen bool
	rewards    []model.RewardEntry

	// Deadlines; zero means inactive. Checked on each tick.
	phaseDeadline time.Time
	lastTickSec   int // last remaining-seconds value broadcast
}

// Config describes a room to create
type Config struct {
	ID         model.RoomID
	Kind       model.RoomKind
	InviteCode model.InviteCode
	OwnerID    model.PlayerID
	Settings   model.Settings
	PrizePool  float64
}

// NewRoom creates a room in the lobby phase. Run must be called for
// the room to process anything.
func NewRoom(cfg Config, deps Deps) *Room {
	r := &Room{
		id:          cfg.ID,
		kind:        cfg.Kind,
		inviteCode:  cfg.InviteCode,
		deps:        deps,
		logger:      deps.Logger.With(slog.String("room_id", string(cfg.ID))),
		inbox:       make(chan playerEvent, 256),
		joins:       make(chan joinRequest),
		leaves:      make(chan leaveRequest, 64),
		ticks:       make(chan time.Time, 4),
		done:        make(chan struct{}),
		settings:    cfg.Settings,
		ownerID:     cfg.OwnerID,
		phase:       model.PhaseLobby,
		strokes:     NewStrokeLog(),
		revealed:    make(map[int]bool),
		pending:     make(map[model.PlayerID]int),
		ratedBy:     make(map[model.PlayerID]bool),
		ballots:     abuse.NewVoteKickTracker(deps.Clock),
		bannedIDs:   make(map[model.PlayerID]bool),
		bannedAddrs: make(map[string]bool),
		prizePool:   cfg.PrizePool,
	}
	r.publishInfo()
	return r
}

// ID returns the room's identifier
func (r *Room) ID() model.RoomID {
	return r.id
}

// Kind returns whether the room is public or private
func (r *Room) Kind() model.RoomKind {
	return r.kind
}

// InviteCode returns the room's invite code, empty for public rooms
func (r *Room) InviteCode() model.InviteCode {
	return r.inviteCode
}

// Info returns the cached listing snapshot. Safe from any goroutine.
func (r *Room) Info() model.RoomInfo {
	return *r.info.Load()
}

// RequestJoin asks the room to admit a player and blocks for the
// verdict. Returns a join error, or nil once the player is in and has
// received the room snapshot.
func (r *Room) RequestJoin(p *Player) error {
	req := joinRequest{player: p, errChan: make(chan error, 1)}
	select {
	case r.joins <- req:
		return <-req.errChan
	case <-r.done:
		return model.ErrRoomNotFound
	}
}

// Deliver routes an inbound client event into the room. Events for
// unknown players are dropped by the actor.
func (r *Room) Deliver(from model.PlayerID, env model.Envelope) {
	select {
	case r.inbox <- playerEvent{from: from, env: env}:
	case <-r.done:
	default:
		// Inbox full: shed load rather than block the network layer
		r.logger.Warn("room inbox full, dropping event",
			slog.String("player_id", string(from)),
			slog.String("event", string(env.Type)))
	}
}

// Disconnect reports that a player's connection is gone. Processed
// with the same serialization as every other room event.
func (r *Room) Disconnect(playerID model.PlayerID) {
	select {
	case r.leaves <- leaveRequest{playerID: playerID}:
	case <-r.done:
	}
}

// Tick drives the room's timers. The registry calls this once per
// second for every live room; tests call it directly.
func (r *Room) Tick(now time.Time) {
	select {
	case r.ticks <- now:
	case <-r.done:
	default:
	}
}

// Run processes the room's events until Stop is called or the room
// empties. Must be run on its own goroutine.
func (r *Room) Run() {
	r.logger.Info("room started", slog.String("kind", string(r.kind)))
	for {
		select {
		case req := <-r.joins:
			r.guardJoin(req)
		case ev := <-r.inbox:
			r.guard(func() { r.handleEvent(ev) })
		case req := <-r.leaves:
			r.guard(func() { r.handleLeave(req.playerID, "") })
		case now := <-r.ticks:
			r.guard(func() { r.handleTick(now) })
		case <-r.done:
			r.logger.Info("room stopped")
			return
		}
	}
}

// Stop terminates the room's goroutine. Called by the registry after
// the room reports itself empty, or at server shutdown.
func (r *Room) Stop() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

// guard contains a panic from a single handler so one bad event
// cannot take down the room, let alone the process
func (r *Room) guard(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic in room handler",
				slog.Any("panic", rec),
				slog.String("phase", string(r.phase)))
		}
	}()
	fn()
}

// guardJoin is guard for admissions. The joining goroutine blocks on
// the request's error channel, so a join that panics must still send
// an answer.
func (r *Room) guardJoin(req joinRequest) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic admitting player",
				slog.Any("panic", rec),
				slog.String("player_id", string(req.player.ID)))
			select {
			case req.errChan <- model.ErrJoinFailed:
			default:
			}
		}
	}()
	req.errChan <- r.handleJoin(req.player)
}

// gameID keys ledger records for the game currently or most recently
// played in this room
func (r *Room) gameID() model.GameID {
	return model.GameID(fmt.Sprintf("%s#%d", r.id, r.gameSeq))
}

// publishInfo refreshes the lock-free listing snapshot
func (r *Room) publishInfo() {
	info := model.RoomInfo{
		ID:          r.id,
		Kind:        r.kind,
		Language:    r.settings.Language,
		Phase:       r.phase,
		PlayerCount: len(r.players),
		MaxSlots:    r.settings.MaxSlots,
	}
	r.info.Store(&info)
}

// broadcast queues an event for every connected player
func (r *Room) broadcast(env model.Envelope) {
	for _, p := range r.players {
		p.send(env)
	}
}

// broadcastExcept queues an event for everyone but one player
func (r *Room) broadcastExcept(except model.PlayerID, env model.Envelope) {
	for _, p := range r.players {
		if p.ID != except {
			p.send(env)
		}
	}
}

// systemChat broadcasts a system chat line
func (r *Room) systemChat(text string) {
	r.broadcast(model.NewEnvelope(model.EventChatMessage, model.ChatMessagePayload{Text: text}))
}

// findPlayer returns the player with the given id, or nil
func (r *Room) findPlayer(id model.PlayerID) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// drawer returns the current drawer, or nil outside drawing phases
func (r *Room) drawer() *Player {
	if r.drawerID == "" {
		return nil
	}
	return r.findPlayer(r.drawerID)
}

// remainingSeconds reports whole seconds until the phase deadline,
// clamped at zero
func (r *Room) remainingSeconds() int {
	if r.phaseDeadline.IsZero() {
		return 0
	}
	d := r.deps.Clock.Until(r.phaseDeadline)
	if d <= 0 {
		return 0
	}
	// Round up so a deadline 79.5s away reads as 80
	return int((d + time.Second - 1) / time.Second)
}
