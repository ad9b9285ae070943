package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Claim operations

func (s *Storage) SaveClaim(ctx context.Context, rec *model.ClaimRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	key := claimKey(rec.GameID, rec.PlayerID)
	if err := s.client.Set(ctx, key, data, s.cfg.ClaimTTL).Err(); err != nil {
		return err
	}

	idxKey := claimsForGameIndexKey(rec.GameID)
	if err := s.client.SAdd(ctx, idxKey, string(rec.PlayerID)).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, idxKey, s.cfg.ClaimTTL).Err()
}

func (s *Storage) GetClaim(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.ClaimRecord, error) {
	data, err := s.client.Get(ctx, claimKey(gameID, playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrClaimNotFound
		}
		return nil, err
	}

	var rec model.ClaimRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Storage) ClaimsForGame(ctx context.Context, gameID model.GameID) ([]*model.ClaimRecord, error) {
	playerIDs, err := s.client.SMembers(ctx, claimsForGameIndexKey(gameID)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*model.ClaimRecord, 0, len(playerIDs))
	for _, pid := range playerIDs {
		rec, err := s.GetClaim(ctx, gameID, model.PlayerID(pid))
		if err != nil {
			if errors.Is(err, model.ErrClaimNotFound) {
				// Claim expired after the index entry; skip
				continue
			}
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Leaderboard operations

func (s *Storage) RecordGameResult(ctx context.Context, result *model.GameResult) error {
	key := leaderboardKey()
	pipe := s.client.Pipeline()
	for _, p := range result.Players {
		pipe.ZIncrBy(ctx, key, float64(p.Score), p.DisplayName)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) TopPlayers(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	results, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(results))
	for _, r := range results {
		name, _ := r.Member.(string)
		entries = append(entries, model.LeaderboardEntry{
			DisplayName: name,
			TotalScore:  int(r.Score),
		})
	}
	return entries, nil
}
