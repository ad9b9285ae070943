package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	claims      map[claimKey]*model.ClaimRecord
	leaderboard map[string]int // display name -> total score
}

type claimKey struct {
	gameID   model.GameID
	playerID model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		claims:      make(map[claimKey]*model.ClaimRecord),
		leaderboard: make(map[string]int),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Claim operations

func (s *Storage) SaveClaim(ctx context.Context, rec *model.ClaimRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.claims[claimKey{rec.GameID, rec.PlayerID}] = &cp
	return nil
}

func (s *Storage) GetClaim(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.claims[claimKey{gameID, playerID}]
	if !ok {
		return nil, model.ErrClaimNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *Storage) ClaimsForGame(ctx context.Context, gameID model.GameID) ([]*model.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.ClaimRecord
	for key, rec := range s.claims {
		if key.gameID == gameID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

// Leaderboard operations

func (s *Storage) RecordGameResult(ctx context.Context, result *model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range result.Players {
		s.leaderboard[p.DisplayName] += p.Score
	}
	return nil
}

func (s *Storage) TopPlayers(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.LeaderboardEntry, 0, len(s.leaderboard))
	for name, score := range s.leaderboard {
		entries = append(entries, model.LeaderboardEntry{DisplayName: name, TotalScore: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}
