package redis

import (
	"fmt"

	"github.com/drawblin/drawblin/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "drawblin"

// claimKey returns the Redis key for a reward claim record
func claimKey(gameID model.GameID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:claim:%s:%s", keyPrefix, gameID, playerID)
}

// claimsForGameIndexKey returns the Redis key for the SET of claims in a game
func claimsForGameIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:claims_for_game:%s", keyPrefix, gameID)
}

// leaderboardKey returns the Redis key for the leaderboard sorted set
func leaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", keyPrefix)
}
