package registry

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drawblin/drawblin/internal/dependencies/clock"
	"github.com/drawblin/drawblin/internal/dependencies/random"
	"github.com/drawblin/drawblin/internal/game"
	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/services/rewards"
	"github.com/drawblin/drawblin/internal/services/words"
)

// inviteAlphabet avoids characters that read ambiguously in chat
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const inviteCodeLength = 8

// quickplayAttempts bounds matchmaking retries when an offered room
// fills or starts before the join lands
const quickplayAttempts = 3

// Registry owns every live room: creation, lookup by id or invite
// code, public matchmaking, the shared tick loop and teardown.
type Registry struct {
	words   *words.Service
	ledger  *rewards.Ledger
	results game.ResultSink
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu    sync.RWMutex
	rooms map[model.RoomID]*game.Room
	codes map[model.InviteCode]model.RoomID

	// One live connection per payout address across all rooms
	walletMu sync.Mutex
	wallets  map[string]model.PlayerID

	stopTicker chan struct{}
	tickerDone chan struct{}
}

// New creates an empty registry
func New(
	wordsSvc *words.Service,
	ledger *rewards.Ledger,
	results game.ResultSink,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		words:      wordsSvc,
		ledger:     ledger,
		results:    results,
		clock:      clk,
		random:     rnd,
		logger:     logger,
		rooms:      make(map[model.RoomID]*game.Room),
		codes:      make(map[model.InviteCode]model.RoomID),
		wallets:    make(map[string]model.PlayerID),
		stopTicker: make(chan struct{}),
		tickerDone: make(chan struct{}),
	}
}

// StartTicking runs the shared one-second tick loop until Shutdown.
// Every live room receives every tick; rooms without an active
// deadline treat it as a no-op.
func (r *Registry) StartTicking() {
	go func() {
		defer close(r.tickerDone)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				for _, room := range r.snapshotRooms() {
					room.Tick(now)
				}
			case <-r.stopTicker:
				return
			}
		}
	}()
}

// Shutdown stops the tick loop and every room
func (r *Registry) Shutdown(ctx context.Context) error {
	close(r.stopTicker)
	select {
	case <-r.tickerDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.mu.Lock()
	rooms := make([]*game.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.rooms = make(map[model.RoomID]*game.Room)
	r.codes = make(map[model.InviteCode]model.RoomID)
	r.mu.Unlock()

	for _, room := range rooms {
		room.Stop()
	}
	return nil
}

// CreatePrivateRoom creates and starts a private room owned by the
// given player
func (r *Registry) CreatePrivateRoom(ownerID model.PlayerID, language string, prizePool float64) (*game.Room, error) {
	if !r.words.HasLanguage(language) {
		return nil, model.ErrLanguageUnknown
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.uniqueInviteCode()
	room := game.NewRoom(game.Config{
		ID:         newRoomID(),
		Kind:       model.RoomPrivate,
		InviteCode: code,
		OwnerID:    ownerID,
		Settings:   model.DefaultPrivateSettings(language),
		PrizePool:  prizePool,
	}, r.roomDeps())

	r.rooms[room.ID()] = room
	r.codes[code] = room.ID()
	go room.Run()

	r.logger.Info("private room created",
		slog.String("room_id", string(room.ID())),
		slog.String("owner_id", string(ownerID)))
	return room, nil
}

// FindOrCreatePublicRoom returns a joinable public room for the
// language, creating one when every existing room is full or mid-game
func (r *Registry) FindOrCreatePublicRoom(language string) (*game.Room, error) {
	if !r.words.HasLanguage(language) {
		return nil, model.ErrLanguageUnknown
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Prefer the fullest joinable room so games fill and start sooner
	var best *game.Room
	bestCount := -1
	for _, room := range r.rooms {
		info := room.Info()
		if info.Kind != model.RoomPublic || info.Language != language {
			continue
		}
		if info.Phase != model.PhaseLobby || info.PlayerCount >= info.MaxSlots {
			continue
		}
		if info.PlayerCount > bestCount {
			best = room
			bestCount = info.PlayerCount
		}
	}
	if best != nil {
		return best, nil
	}

	room := game.NewRoom(game.Config{
		ID:       newRoomID(),
		Kind:     model.RoomPublic,
		Settings: model.DefaultPublicSettings(language),
	}, r.roomDeps())
	r.rooms[room.ID()] = room
	go room.Run()

	r.logger.Info("public room created",
		slog.String("room_id", string(room.ID())),
		slog.String("language", language))
	return room, nil
}

// HasLanguage reports whether matchmaking can serve the language
func (r *Registry) HasLanguage(language string) bool {
	return r.words.HasLanguage(language)
}

// JoinPublic matchmakes the player into a public room and admits them.
// Room listings are lock-free snapshots, so an offered room can fill
// or start between the match and the join; a stale offer is retried
// rather than surfaced to the player.
func (r *Registry) JoinPublic(language string, p *game.Player) (*game.Room, error) {
	var lastErr error
	for attempt := 0; attempt < quickplayAttempts; attempt++ {
		room, err := r.FindOrCreatePublicRoom(language)
		if err != nil {
			return nil, err
		}
		lastErr = room.RequestJoin(p)
		if lastErr == nil {
			return room, nil
		}
		if !staleOffer(lastErr) {
			return nil, lastErr
		}
		r.logger.Debug("matchmaking offer went stale",
			slog.String("room_id", string(room.ID())),
			slog.String("error", lastErr.Error()))
	}
	return nil, lastErr
}

// staleOffer reports whether a join rejection means the room moved on
// after it was offered, as opposed to the player being unwelcome
func staleOffer(err error) bool {
	return errors.Is(err, model.ErrRoomFull) ||
		errors.Is(err, model.ErrGameInProgress) ||
		errors.Is(err, model.ErrRoomNotFound)
}

// Resolve finds a room by id or invite code
func (r *Registry) Resolve(target string) (*game.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if room, ok := r.rooms[model.RoomID(target)]; ok {
		return room, nil
	}
	code := model.InviteCode(strings.ToUpper(strings.TrimSpace(target)))
	if id, ok := r.codes[code]; ok {
		if room, ok := r.rooms[id]; ok {
			return room, nil
		}
	}
	return nil, model.ErrRoomNotFound
}

// Get returns a room by id
func (r *Registry) Get(id model.RoomID) (*game.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// ListPublic returns listing info for public rooms, fullest first
func (r *Registry) ListPublic() []model.RoomInfo {
	infos := make([]model.RoomInfo, 0)
	for _, room := range r.snapshotRooms() {
		info := room.Info()
		if info.Kind == model.RoomPublic {
			infos = append(infos, info)
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].PlayerCount != infos[j].PlayerCount {
			return infos[i].PlayerCount > infos[j].PlayerCount
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// Count returns the number of live rooms
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// AcquireWallet claims a payout address ahead of a room join. A second
// connection for the same address is rejected until the first leaves.
// Players without a payout address are not tracked.
func (r *Registry) AcquireWallet(address string, playerID model.PlayerID) error {
	if address == "" {
		return nil
	}
	r.walletMu.Lock()
	defer r.walletMu.Unlock()
	if _, ok := r.wallets[address]; ok {
		return model.ErrWalletInUse
	}
	r.wallets[address] = playerID
	return nil
}

// ReleaseWallet frees a payout address claimed by AcquireWallet.
// Called from room goroutines via the OnLeave hook.
func (r *Registry) ReleaseWallet(address string, playerID model.PlayerID) {
	if address == "" {
		return
	}
	r.walletMu.Lock()
	defer r.walletMu.Unlock()
	if r.wallets[address] == playerID {
		delete(r.wallets, address)
	}
}

// remove drops a room that reported itself empty. Called from the
// room's own goroutine via the OnEmpty hook.
func (r *Registry) remove(id model.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return
	}
	delete(r.rooms, id)
	if code := room.InviteCode(); code != "" {
		delete(r.codes, code)
	}
	r.logger.Info("room removed", slog.String("room_id", string(id)))
}

func (r *Registry) roomDeps() game.Deps {
	return game.Deps{
		Words:   r.words,
		Ledger:  r.ledger,
		Results: r.results,
		Clock:   r.clock,
		Random:  r.random,
		Logger:  r.logger,
		OnEmpty: r.remove,
		OnLeave: func(playerID model.PlayerID, payoutAddress string) {
			r.ReleaseWallet(payoutAddress, playerID)
		},
	}
}

// uniqueInviteCode draws codes until one is free. Callers hold the lock.
func (r *Registry) uniqueInviteCode() model.InviteCode {
	for {
		raw := r.random.String(inviteCodeLength, inviteAlphabet)
		if raw == "" {
			raw = strings.ToUpper(uuid.NewString()[:inviteCodeLength])
		}
		code := model.InviteCode(raw)
		if _, taken := r.codes[code]; !taken {
			return code
		}
	}
}

func (r *Registry) snapshotRooms() []*game.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*game.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func newRoomID() model.RoomID {
	return model.RoomID("r_" + uuid.NewString())
}
