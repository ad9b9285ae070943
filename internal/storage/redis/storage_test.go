package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/drawblin/drawblin/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

// Claim tests

func (s *StorageSuite) TestSaveAndGetClaim() {
	rec := &model.ClaimRecord{
		RoomID:   "room-1",
		GameID:   "room-1#1",
		PlayerID: "player-1",
		Amount:   5.5,
	}
	s.Require().NoError(s.storage.SaveClaim(s.ctx, rec))

	got, err := s.storage.GetClaim(s.ctx, "room-1#1", "player-1")
	s.Require().NoError(err)
	s.Equal(rec.Amount, got.Amount)
	s.False(got.Claimed)
}

func (s *StorageSuite) TestGetClaimNotFound() {
	_, err := s.storage.GetClaim(s.ctx, "room-1#1", "nobody")
	s.ErrorIs(err, model.ErrClaimNotFound)
}

func (s *StorageSuite) TestSaveClaimOverwrites() {
	rec := &model.ClaimRecord{RoomID: "room-1", GameID: "room-1#1", PlayerID: "player-1", Amount: 5}
	s.Require().NoError(s.storage.SaveClaim(s.ctx, rec))

	rec.Claimed = true
	rec.TxRef = "tx-123"
	s.Require().NoError(s.storage.SaveClaim(s.ctx, rec))

	got, err := s.storage.GetClaim(s.ctx, "room-1#1", "player-1")
	s.Require().NoError(err)
	s.True(got.Claimed)
	s.Equal("tx-123", got.TxRef)
}

func (s *StorageSuite) TestClaimsForGame() {
	s.Require().NoError(s.storage.SaveClaim(s.ctx, &model.ClaimRecord{RoomID: "room-1", GameID: "room-1#1", PlayerID: "a", Amount: 5}))
	s.Require().NoError(s.storage.SaveClaim(s.ctx, &model.ClaimRecord{RoomID: "room-1", GameID: "room-1#1", PlayerID: "b", Amount: 3}))
	s.Require().NoError(s.storage.SaveClaim(s.ctx, &model.ClaimRecord{RoomID: "room-1", GameID: "room-1#2", PlayerID: "c", Amount: 2}))

	claims, err := s.storage.ClaimsForGame(s.ctx, "room-1#1")
	s.Require().NoError(err)
	s.Len(claims, 2)
}

// Leaderboard tests

func (s *StorageSuite) TestRecordGameResultAccumulates() {
	s.Require().NoError(s.storage.RecordGameResult(s.ctx, &model.GameResult{
		RoomID: "room-1",
		Players: []model.PlayerResult{
			{DisplayName: "alice", Score: 100},
			{DisplayName: "bob", Score: 50},
		},
	}))
	s.Require().NoError(s.storage.RecordGameResult(s.ctx, &model.GameResult{
		RoomID: "room-2",
		Players: []model.PlayerResult{
			{DisplayName: "bob", Score: 80},
		},
	}))

	top, err := s.storage.TopPlayers(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal("bob", top[0].DisplayName)
	s.Equal(130, top[0].TotalScore)
	s.Equal("alice", top[1].DisplayName)
	s.Equal(100, top[1].TotalScore)
}

func (s *StorageSuite) TestTopPlayersLimits() {
	s.Require().NoError(s.storage.RecordGameResult(s.ctx, &model.GameResult{
		RoomID: "room-1",
		Players: []model.PlayerResult{
			{DisplayName: "a", Score: 3},
			{DisplayName: "b", Score: 2},
			{DisplayName: "c", Score: 1},
		},
	}))

	top, err := s.storage.TopPlayers(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(top, 2)
}
