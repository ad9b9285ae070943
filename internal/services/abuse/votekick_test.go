package abuse

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/drawblin/drawblin/internal/dependencies/mocks"
	"github.com/drawblin/drawblin/internal/model"
)

type VoteKickSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	tracker *VoteKickTracker
}

func TestVoteKickSuite(t *testing.T) {
	suite.Run(t, new(VoteKickSuite))
}

func (s *VoteKickSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.tracker = NewVoteKickTracker(s.clock)
}

func (s *VoteKickSuite) TestRequiredVotesScale() {
	s.Equal(5, RequiredVotes(8))
	s.Equal(5, RequiredVotes(12))
	s.Equal(2, RequiredVotes(2))
	s.Equal(2, RequiredVotes(3))
	s.Equal(3, RequiredVotes(4)) // ceil(2.4)
	s.Equal(3, RequiredVotes(5))
	s.Equal(4, RequiredVotes(6)) // ceil(3.6)
	s.Equal(5, RequiredVotes(7)) // ceil(4.2)
}

func (s *VoteKickSuite) TestEightPlayerRoomNeedsFiveVotes() {
	target := model.PlayerID("target")
	for i := 0; i < 4; i++ {
		voter := model.PlayerID(fmt.Sprintf("voter-%d", i))
		_, _, kicked := s.tracker.Cast(voter, target, 8)
		s.False(kicked)
	}

	count, required, kicked := s.tracker.Cast("voter-4", target, 8)
	s.Equal(5, count)
	s.Equal(5, required)
	s.True(kicked)
}

func (s *VoteKickSuite) TestDuplicateVoteDoesNotDoubleCount() {
	target := model.PlayerID("target")
	s.tracker.Cast("voter-1", target, 8)
	count, _, _ := s.tracker.Cast("voter-1", target, 8)
	s.Equal(1, count)
}

func (s *VoteKickSuite) TestBallotsExpireAfterThirtySeconds() {
	target := model.PlayerID("target")
	s.tracker.Cast("voter-1", target, 8)
	s.tracker.Cast("voter-2", target, 8)

	s.clock.Advance(31 * time.Second)
	s.Equal(0, s.tracker.Count(target))
}

func (s *VoteKickSuite) TestKickClearsBallotsForTarget() {
	target := model.PlayerID("target")
	other := model.PlayerID("other")
	s.tracker.Cast("voter-1", target, 8)
	s.tracker.Cast("voter-1", other, 8)
	s.tracker.Cast(target, other, 8)

	s.tracker.ClearTarget(target)

	s.Equal(0, s.tracker.Count(target))
	// The kicked player's own ballot against others is gone too
	s.Equal(1, s.tracker.Count(other))
}

func (s *VoteKickSuite) TestRevoteRefreshesExpiry() {
	target := model.PlayerID("target")
	s.tracker.Cast("voter-1", target, 8)
	s.clock.Advance(20 * time.Second)
	s.tracker.Cast("voter-1", target, 8)
	s.clock.Advance(20 * time.Second)

	// First ballot would have expired; the refresh keeps it alive
	s.Equal(1, s.tracker.Count(target))
}
