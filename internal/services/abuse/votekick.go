package abuse

import (
	"math"
	"time"

	"github.com/drawblin/drawblin/internal/dependencies/clock"
	"github.com/drawblin/drawblin/internal/model"
)

// BallotTTL is how long a cast vote remains valid
const BallotTTL = 30 * time.Second

// VoteKickTracker counts vote-kick ballots for one room.
// Not safe for concurrent use; the owning room serializes access.
type VoteKickTracker struct {
	clock   clock.Clock
	ballots map[model.PlayerID]map[model.PlayerID]time.Time // target -> voter -> cast time
}

// NewVoteKickTracker creates a tracker for a single room
func NewVoteKickTracker(clk clock.Clock) *VoteKickTracker {
	return &VoteKickTracker{
		clock:   clk,
		ballots: make(map[model.PlayerID]map[model.PlayerID]time.Time),
	}
}

// RequiredVotes returns the ballot threshold for a room of the given size
func RequiredVotes(playerCount int) int {
	switch {
	case playerCount >= 8:
		return 5
	case playerCount <= 3:
		return 2
	default:
		return int(math.Ceil(0.6 * float64(playerCount)))
	}
}

// Cast records one ballot. Re-voting refreshes the voter's existing
// ballot. Returns the live count for the target and whether the
// threshold for the given room size has been reached.
func (t *VoteKickTracker) Cast(voter, target model.PlayerID, playerCount int) (count, required int, kicked bool) {
	t.expire()

	votes, ok := t.ballots[target]
	if !ok {
		votes = make(map[model.PlayerID]time.Time)
		t.ballots[target] = votes
	}
	votes[voter] = t.clock.Now()

	required = RequiredVotes(playerCount)
	count = len(votes)
	return count, required, count >= required
}

// Count returns the live ballot count for a target
func (t *VoteKickTracker) Count(target model.PlayerID) int {
	t.expire()
	return len(t.ballots[target])
}

// ClearTarget removes every ballot referencing the target, both as
// target and as voter
func (t *VoteKickTracker) ClearTarget(target model.PlayerID) {
	delete(t.ballots, target)
	for _, votes := range t.ballots {
		delete(votes, target)
	}
}

// ClearAll drops every ballot in the room
func (t *VoteKickTracker) ClearAll() {
	t.ballots = make(map[model.PlayerID]map[model.PlayerID]time.Time)
}

// Expire drops ballots older than BallotTTL. The room calls this on
// its tick so counts broadcast to clients stay accurate.
func (t *VoteKickTracker) Expire() {
	t.expire()
}

func (t *VoteKickTracker) expire() {
	cutoff := t.clock.Now().Add(-BallotTTL)
	for target, votes := range t.ballots {
		for voter, at := range votes {
			if at.Before(cutoff) {
				delete(votes, voter)
			}
		}
		if len(votes) == 0 {
			delete(t.ballots, target)
		}
	}
}
