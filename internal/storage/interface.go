package storage

import (
	"context"

	"github.com/drawblin/drawblin/internal/model"
)

// Storage defines the interface for data the core persists beyond a
// room's lifetime: reward claim records and the aggregated public
// leaderboard. Live room state never touches storage; each room
// goroutine owns it outright.
type Storage interface {
	// Claim operations, keyed per game instance so a room's next game
	// never disturbs earlier records
	SaveClaim(ctx context.Context, rec *model.ClaimRecord) error
	GetClaim(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.ClaimRecord, error)
	ClaimsForGame(ctx context.Context, gameID model.GameID) ([]*model.ClaimRecord, error)

	// Leaderboard sink for finished public games
	RecordGameResult(ctx context.Context, result *model.GameResult) error
	TopPlayers(ctx context.Context, n int) ([]model.LeaderboardEntry, error)
}
