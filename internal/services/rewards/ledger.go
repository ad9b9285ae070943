package rewards

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/storage"
)

// PayoutExecutor moves funds for a claimed reward. The real executor
// lives outside this process; the ledger only computes amounts and
// records claim state.
type PayoutExecutor interface {
	Execute(ctx context.Context, address string, amount float64, roomID model.RoomID) (txRef string, err error)
}

// LoggingExecutor is the default executor for deployments without a
// payout backend: it logs the transfer and reports a synthetic tx ref.
type LoggingExecutor struct {
	Logger *slog.Logger
}

// Execute logs the would-be payout
func (e LoggingExecutor) Execute(ctx context.Context, address string, amount float64, roomID model.RoomID) (string, error) {
	e.Logger.Info("simulated payout",
		slog.String("address", address),
		slog.Float64("amount", amount),
		slog.String("room_id", string(roomID)))
	return "sim-" + string(roomID), nil
}

// addressPattern matches base58-encoded chain addresses (32-44 chars)
var addressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// ValidAddress reports whether an address passes the target chain's
// format check
func ValidAddress(address string) bool {
	return addressPattern.MatchString(address)
}

// Ledger tracks reward claim state for finished games
type Ledger struct {
	storage  storage.Storage
	executor PayoutExecutor
	logger   *slog.Logger
}

// NewLedger creates a reward ledger
func NewLedger(store storage.Storage, executor PayoutExecutor, logger *slog.Logger) *Ledger {
	return &Ledger{
		storage:  store,
		executor: executor,
		logger:   logger.With(slog.String("component", "rewards")),
	}
}

// Record persists unclaimed reward entries for a finished game.
// Called exactly once per game instance, from a frozen prize pool.
func (l *Ledger) Record(ctx context.Context, roomID model.RoomID, gameID model.GameID, entries []model.RewardEntry) error {
	for _, e := range entries {
		rec := &model.ClaimRecord{
			RoomID:   roomID,
			GameID:   gameID,
			PlayerID: e.PlayerID,
			Amount:   e.Amount,
		}
		if err := l.storage.SaveClaim(ctx, rec); err != nil {
			return err
		}
	}
	l.logger.Info("rewards recorded",
		slog.String("game_id", string(gameID)),
		slog.Int("entries", len(entries)))
	return nil
}

// Claim validates the address, marks the player's reward claimed and
// delegates fund movement to the payout executor. Each reward can be
// claimed once; executor failures leave the record unclaimed so the
// player may retry.
func (l *Ledger) Claim(ctx context.Context, gameID model.GameID, playerID model.PlayerID, address string) (string, error) {
	rec, err := l.storage.GetClaim(ctx, gameID, playerID)
	if err != nil {
		return "", model.ErrNoReward
	}
	if rec.Claimed || rec.Buyback {
		return "", model.ErrAlreadyClaimed
	}
	if !ValidAddress(address) {
		return "", model.ErrInvalidAddress
	}

	txRef, err := l.executor.Execute(ctx, address, rec.Amount, rec.RoomID)
	if err != nil {
		// Propagate the collaborator's failure untouched
		return "", err
	}

	rec.Claimed = true
	rec.TxRef = txRef
	if err := l.storage.SaveClaim(ctx, rec); err != nil {
		l.logger.Error("claim recorded on chain but not persisted",
			slog.String("game_id", string(gameID)),
			slog.String("player_id", string(playerID)),
			slog.String("tx_ref", txRef),
			slog.String("error", err.Error()))
		return txRef, nil
	}
	return txRef, nil
}

// Buyback consumes an unclaimed reward as a buy-in toward the
// player's next game instead of paying it out
func (l *Ledger) Buyback(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (float64, error) {
	rec, err := l.storage.GetClaim(ctx, gameID, playerID)
	if err != nil {
		return 0, model.ErrNoReward
	}
	if rec.Claimed || rec.Buyback {
		return 0, model.ErrAlreadyClaimed
	}
	rec.Buyback = true
	if err := l.storage.SaveClaim(ctx, rec); err != nil {
		return 0, err
	}
	return rec.Amount, nil
}
