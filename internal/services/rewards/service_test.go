package rewards

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/drawblin/drawblin/internal/model"
)

type ServiceSuite struct {
	suite.Suite
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// ComputeRanks tests

func (s *ServiceSuite) TestRanksDistinctScores() {
	ranked := ComputeRanks([]Standing{
		{PlayerID: "a", Score: 10},
		{PlayerID: "b", Score: 30},
		{PlayerID: "c", Score: 20},
	})

	s.Equal(model.PlayerID("b"), ranked[0].PlayerID)
	s.Equal(1, ranked[0].Rank)
	s.Equal(model.PlayerID("c"), ranked[1].PlayerID)
	s.Equal(2, ranked[1].Rank)
	s.Equal(model.PlayerID("a"), ranked[2].PlayerID)
	s.Equal(3, ranked[2].Rank)
}

func (s *ServiceSuite) TestRanksTiesShareRank() {
	ranked := ComputeRanks([]Standing{
		{PlayerID: "a", Score: 30},
		{PlayerID: "b", Score: 30},
		{PlayerID: "c", Score: 10},
	})

	s.Equal(1, ranked[0].Rank)
	s.Equal(1, ranked[1].Rank)
	// Two players ahead, so the next distinct score ranks third
	s.Equal(3, ranked[2].Rank)
}

func (s *ServiceSuite) TestRanksStableForTies() {
	ranked := ComputeRanks([]Standing{
		{PlayerID: "first", Score: 30},
		{PlayerID: "second", Score: 30},
	})

	s.Equal(model.PlayerID("first"), ranked[0].PlayerID)
	s.Equal(model.PlayerID("second"), ranked[1].PlayerID)
}

// SplitPool tests

func rewardAmounts(entries []model.RewardEntry) map[model.PlayerID]float64 {
	out := make(map[model.PlayerID]float64, len(entries))
	for _, e := range entries {
		out[e.PlayerID] = e.Amount
	}
	return out
}

func (s *ServiceSuite) TestSplitDistinctScores() {
	ranked := ComputeRanks([]Standing{
		{PlayerID: "a", Score: 30},
		{PlayerID: "b", Score: 20},
		{PlayerID: "c", Score: 10},
	})
	amounts := rewardAmounts(SplitPool(10, ranked))

	s.Equal(5.0, amounts["a"])
	s.Equal(3.0, amounts["b"])
	s.Equal(2.0, amounts["c"])
}

func (s *ServiceSuite) TestSplitTieForFirstSkipsSecondSlot() {
	ranked := ComputeRanks([]Standing{
		{PlayerID: "a", Score: 30},
		{PlayerID: "b", Score: 30},
		{PlayerID: "c", Score: 10},
	})
	amounts := rewardAmounts(SplitPool(10, ranked))

	s.Equal(2.5, amounts["a"])
	s.Equal(2.5, amounts["b"])
	s.Equal(2.0, amounts["c"])
}

func (s *ServiceSuite) TestSplitNothingPastThird() {
	ranked := ComputeRanks([]Standing{
		{PlayerID: "a", Score: 40},
		{PlayerID: "b", Score: 30},
		{PlayerID: "c", Score: 20},
		{PlayerID: "d", Score: 10},
	})
	amounts := rewardAmounts(SplitPool(10, ranked))

	s.Len(amounts, 3)
	s.NotContains(amounts, model.PlayerID("d"))
}

func (s *ServiceSuite) TestSplitTwoPlayers() {
	ranked := ComputeRanks([]Standing{
		{PlayerID: "a", Score: 20},
		{PlayerID: "b", Score: 10},
	})
	amounts := rewardAmounts(SplitPool(10, ranked))

	s.Equal(5.0, amounts["a"])
	s.Equal(3.0, amounts["b"])
	s.Len(amounts, 2)
}

func (s *ServiceSuite) TestSplitEmptyPool() {
	ranked := ComputeRanks([]Standing{{PlayerID: "a", Score: 10}})
	s.Nil(SplitPool(0, ranked))
}

// Address validation

func (s *ServiceSuite) TestValidAddress() {
	s.True(ValidAddress("4Nd1mYvhGV2ZSzrAvj3eLtA5dW3hYkUJpSgzV4qTkCdQ"))
	s.False(ValidAddress(""))
	s.False(ValidAddress("short"))
	s.False(ValidAddress("0x52908400098527886E0F7030069857D2E4169EE7")) // wrong alphabet
	s.False(ValidAddress("contains0and-invalid-chars-but-long-enough!!"))
}
