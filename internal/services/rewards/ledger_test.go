package rewards

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/storage/memory"
	"github.com/drawblin/drawblin/internal/testutil"
)

const testAddress = "4Nd1mYvhGV2ZSzrAvj3eLtA5dW3hYkUJpSgzV4qTkCdQ"

// stubExecutor is a payout executor that records calls and returns
// queued results
type stubExecutor struct {
	calls []float64
	err   error
}

func (e *stubExecutor) Execute(ctx context.Context, address string, amount float64, roomID model.RoomID) (string, error) {
	e.calls = append(e.calls, amount)
	if e.err != nil {
		return "", e.err
	}
	return fmt.Sprintf("tx-%d", len(e.calls)), nil
}

type LedgerSuite struct {
	suite.Suite
	storage  *memory.Storage
	executor *stubExecutor
	ledger   *Ledger
	ctx      context.Context
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.storage = memory.New()
	s.executor = &stubExecutor{}
	s.ledger = NewLedger(s.storage, s.executor, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *LedgerSuite) recordReward(gameID model.GameID, playerID model.PlayerID, amount float64) {
	err := s.ledger.Record(s.ctx, "room-1", gameID, []model.RewardEntry{
		{PlayerID: playerID, Rank: 1, Amount: amount},
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestClaimSucceeds() {
	s.recordReward("room-1#1", "player-1", 5)

	txRef, err := s.ledger.Claim(s.ctx, "room-1#1", "player-1", testAddress)
	s.Require().NoError(err)
	s.Equal("tx-1", txRef)
	s.Equal([]float64{5}, s.executor.calls)

	rec, err := s.storage.GetClaim(s.ctx, "room-1#1", "player-1")
	s.Require().NoError(err)
	s.True(rec.Claimed)
	s.Equal("tx-1", rec.TxRef)
}

func (s *LedgerSuite) TestClaimWithoutRewardFails() {
	_, err := s.ledger.Claim(s.ctx, "room-1#1", "nobody", testAddress)
	s.ErrorIs(err, model.ErrNoReward)
}

func (s *LedgerSuite) TestSecondClaimRejected() {
	s.recordReward("room-1#1", "player-1", 5)

	_, err := s.ledger.Claim(s.ctx, "room-1#1", "player-1", testAddress)
	s.Require().NoError(err)

	_, err = s.ledger.Claim(s.ctx, "room-1#1", "player-1", testAddress)
	s.ErrorIs(err, model.ErrAlreadyClaimed)
	s.Len(s.executor.calls, 1)
}

func (s *LedgerSuite) TestInvalidAddressRejectedBeforeExecutor() {
	s.recordReward("room-1#1", "player-1", 5)

	_, err := s.ledger.Claim(s.ctx, "room-1#1", "player-1", "not-an-address")
	s.ErrorIs(err, model.ErrInvalidAddress)
	s.Empty(s.executor.calls)
}

func (s *LedgerSuite) TestExecutorFailurePropagatesAndAllowsRetry() {
	s.recordReward("room-1#1", "player-1", 5)

	boom := errors.New("chain unavailable")
	s.executor.err = boom

	_, err := s.ledger.Claim(s.ctx, "room-1#1", "player-1", testAddress)
	s.ErrorIs(err, boom)

	// Record stays unclaimed so the player can retry
	s.executor.err = nil
	txRef, err := s.ledger.Claim(s.ctx, "room-1#1", "player-1", testAddress)
	s.Require().NoError(err)
	s.NotEmpty(txRef)
}

func (s *LedgerSuite) TestSecondGameKeepsEarlierGameClaims() {
	s.recordReward("room-1#1", "player-1", 5)

	_, err := s.ledger.Claim(s.ctx, "room-1#1", "player-1", testAddress)
	s.Require().NoError(err)

	// The same player wins again in the room's next game
	s.recordReward("room-1#2", "player-1", 3)

	// The first game stays claimed and the new reward stays claimable
	_, err = s.ledger.Claim(s.ctx, "room-1#1", "player-1", testAddress)
	s.ErrorIs(err, model.ErrAlreadyClaimed)

	txRef, err := s.ledger.Claim(s.ctx, "room-1#2", "player-1", testAddress)
	s.Require().NoError(err)
	s.NotEmpty(txRef)
	s.Equal([]float64{5, 3}, s.executor.calls)
}

func (s *LedgerSuite) TestBuybackConsumesReward() {
	s.recordReward("room-1#1", "player-1", 5)

	amount, err := s.ledger.Buyback(s.ctx, "room-1#1", "player-1")
	s.Require().NoError(err)
	s.Equal(5.0, amount)

	// Consumed rewards cannot also be claimed
	_, err = s.ledger.Claim(s.ctx, "room-1#1", "player-1", testAddress)
	s.ErrorIs(err, model.ErrAlreadyClaimed)
}
