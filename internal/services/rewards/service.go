package rewards

import (
	"sort"

	"github.com/drawblin/drawblin/internal/model"
)

// Reward slot percentages for 1st, 2nd and 3rd place. Slots beyond
// third receive nothing.
var slotShares = []float64{0.5, 0.3, 0.2}

// Standing is a player's final score line entering reward computation
type Standing struct {
	PlayerID model.PlayerID
	Score    int
}

// Ranked is a standing with its tie-aware rank assigned
type Ranked struct {
	PlayerID model.PlayerID
	Score    int
	Rank     int // 1-indexed; equal scores share a rank
}

// ComputeRanks sorts standings by score descending (stable) and
// assigns tie-aware ranks: equal scores share the rank of their first
// position, and the next distinct score resumes at its position.
func ComputeRanks(standings []Standing) []Ranked {
	sorted := make([]Standing, len(standings))
	copy(sorted, standings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	out := make([]Ranked, len(sorted))
	for i, st := range sorted {
		rank := i + 1
		if i > 0 && st.Score == sorted[i-1].Score {
			rank = out[i-1].Rank
		}
		out[i] = Ranked{PlayerID: st.PlayerID, Score: st.Score, Rank: rank}
	}
	return out
}

// SplitPool distributes a frozen prize pool across the reward slots.
// Players tied for a slot's rank split that slot's share equally;
// slots whose rank no player holds go unpaid.
func SplitPool(pool float64, ranked []Ranked) []model.RewardEntry {
	if pool <= 0 || len(ranked) == 0 {
		return nil
	}

	byRank := make(map[int][]Ranked)
	for _, r := range ranked {
		byRank[r.Rank] = append(byRank[r.Rank], r)
	}

	var out []model.RewardEntry
	for slot, share := range slotShares {
		rank := slot + 1
		holders, ok := byRank[rank]
		if !ok {
			continue
		}
		each := pool * share / float64(len(holders))
		for _, h := range holders {
			out = append(out, model.RewardEntry{
				PlayerID: h.PlayerID,
				Rank:     h.Rank,
				Amount:   each,
			})
		}
	}
	return out
}
