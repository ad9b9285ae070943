package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/services/guess"
	"github.com/drawblin/drawblin/internal/services/rewards"
)

// startGame begins a fresh game run from the lobby
func (r *Room) startGame(customWords []string) {
	r.gameSeq++
	r.customWords = customWords
	for _, p := range r.players {
		p.Score = 0
	}
	r.toRoundStart(1)
}

// toRoundStart enters ROUND_START for the given round number
func (r *Room) toRoundStart(round int) {
	r.phase = model.PhaseRoundStart
	r.round = round
	r.clearRoundState()
	r.phaseDeadline = r.deps.Clock.Now().Add(roundStartDelay)
	r.lastTickSec = -1

	r.broadcast(model.NewEnvelope(model.EventStateTransition, model.StateTransitionPayload{
		Phase:     model.PhaseRoundStart,
		Round:     round,
		Remaining: int(roundStartDelay / time.Second),
		Scores:    r.scoreboard(),
	}))
	r.publishInfo()
}

// toWordChoice selects the round's drawer and offers word choices
func (r *Room) toWordChoice() {
	r.phase = model.PhaseWordChoice
	r.comboStage = 0
	r.comboFirst = ""

	// Round-robin over insertion order
	idx := (r.round - 1) % len(r.players)
	drawer := r.players[idx]
	r.drawerID = drawer.ID

	choices, err := r.deps.Words.DrawMixed(
		r.settings.Language,
		r.settings.WordsPerChoice,
		r.customWords,
		r.settings.CustomWordsOnly,
	)
	if err != nil {
		r.logger.Error("word draw failed", slog.String("error", err.Error()))
		choices = []string{"mystery"}
	}
	r.wordChoices = choices

	r.phaseDeadline = r.deps.Clock.Now().Add(wordChoiceTime)
	r.lastTickSec = -1

	// The drawer sees the words; everyone else only learns who draws
	drawer.send(model.NewEnvelope(model.EventWordChoices, model.WordChoicesPayload{Words: choices}))
	r.broadcast(model.NewEnvelope(model.EventStateTransition, model.StateTransitionPayload{
		Phase:     model.PhaseWordChoice,
		Round:     r.round,
		Remaining: int(wordChoiceTime / time.Second),
		DrawerID:  drawer.ID,
	}))
	r.publishInfo()
}

// restartWordChoice re-runs drawer selection after the drawer left
// mid-choice
func (r *Room) restartWordChoice() {
	r.drawerID = ""
	r.wordChoices = nil
	r.toWordChoice()
}

// toDrawing enters the drawing phase with the chosen secret word
func (r *Room) toDrawing(word string) {
	r.phase = model.PhaseDrawing
	r.word = word
	r.wordChoices = nil
	r.revealed = make(map[int]bool)
	r.hintsGiven = 0
	r.buildHintMarks()
	r.strokes.Clear()
	r.guessOrder = 0
	for _, p := range r.players {
		p.GuessedRound = false
	}

	total := r.settings.DrawTimeSeconds
	r.phaseDeadline = r.deps.Clock.Now().Add(time.Duration(total) * time.Second)
	r.lastTickSec = -1

	mask := guess.Mask(word, nil)
	drawer := r.drawer()
	for _, p := range r.players {
		payload := model.StateTransitionPayload{
			Phase:     model.PhaseDrawing,
			Round:     r.round,
			Remaining: total,
			DrawerID:  r.drawerID,
			WordMask:  mask,
		}
		if drawer != nil && p.ID == drawer.ID {
			payload.Word = word
		}
		p.send(model.NewEnvelope(model.EventStateTransition, payload))
	}
	r.publishInfo()
}

// endRound commits pending scores and enters ROUND_END
func (r *Room) endRound(reason model.EndReason) {
	r.phase = model.PhaseRoundEnd

	// Atomic commit: pending points become permanent in one step
	deltas := make(map[model.PlayerID]int, len(r.pending))
	for _, p := range r.players {
		if delta := r.pending[p.ID]; delta != 0 {
			p.Score += delta
			deltas[p.ID] = delta
		}
	}
	r.pending = make(map[model.PlayerID]int)

	// drawerID stays set through ROUND_END so late ratings still apply
	word := r.word

	r.broadcast(model.NewEnvelope(model.EventStateTransition, model.StateTransitionPayload{
		Phase:        model.PhaseRoundEnd,
		Round:        r.round,
		Remaining:    int(roundEndPause / time.Second),
		Word:         word,
		EndReason:    reason,
		Scores:       r.scoreboard(),
		Deltas:       deltas,
		DrawerRating: r.ratingUp - r.ratingDown,
	}))

	if r.round >= r.settings.TotalRounds {
		r.toGameEnd()
		return
	}
	r.phaseDeadline = r.deps.Clock.Now().Add(roundEndPause)
	r.lastTickSec = -1
	r.publishInfo()
}

// toGameEnd freezes the prize pool, computes rankings and rewards,
// and starts the end-screen countdown
func (r *Room) toGameEnd() {
	r.phase = model.PhaseGameEnd
	r.poolFrozen = true
	r.drawerID = ""
	r.word = ""

	standings := make([]rewards.Standing, 0, len(r.players))
	for _, p := range r.players {
		standings = append(standings, rewards.Standing{PlayerID: p.ID, Score: p.Score})
	}
	ranked := rewards.ComputeRanks(standings)
	r.rewards = rewards.SplitPool(r.prizePool, ranked)

	rankOf := make(map[model.PlayerID]int, len(ranked))
	for _, rk := range ranked {
		rankOf[rk.PlayerID] = rk.Rank
	}

	ctx := context.Background()
	if len(r.rewards) > 0 {
		if err := r.deps.Ledger.Record(ctx, r.id, r.gameID(), r.rewards); err != nil {
			r.logger.Error("failed to record rewards", slog.String("error", err.Error()))
		}
	}

	// Public games feed the leaderboard sink
	if r.kind == model.RoomPublic {
		result := &model.GameResult{RoomID: r.id}
		for _, p := range r.players {
			result.Players = append(result.Players, model.PlayerResult{
				PlayerID:    p.ID,
				DisplayName: p.DisplayName,
				Score:       p.Score,
				Rank:        rankOf[p.ID],
			})
		}
		if err := r.deps.Results.RecordGameResult(ctx, result); err != nil {
			r.logger.Error("failed to record game result", slog.String("error", err.Error()))
		}
	}

	rewardAmounts := make(map[model.PlayerID]float64, len(r.rewards))
	for _, e := range r.rewards {
		rewardAmounts[e.PlayerID] = e.Amount
	}

	lines := make([]model.ScoreLine, 0, len(ranked))
	for _, rk := range ranked {
		p := r.findPlayer(rk.PlayerID)
		if p == nil {
			continue
		}
		lines = append(lines, model.ScoreLine{
			PlayerID: rk.PlayerID,
			Name:     p.DisplayName,
			Score:    rk.Score,
			Rank:     rk.Rank,
		})
	}

	r.broadcast(model.NewEnvelope(model.EventGameSummary, model.GameSummaryPayload{
		Scores:    lines,
		PrizePool: r.prizePool,
		Rewards:   rewardAmounts,
		Countdown: int(gameEndCountdown / time.Second),
	}))

	r.phaseDeadline = r.deps.Clock.Now().Add(gameEndCountdown)
	r.lastTickSec = -1
	r.publishInfo()
}

// resetToLobby returns a private room to its pre-game state
func (r *Room) resetToLobby() {
	r.phase = model.PhaseLobby
	r.round = 0
	r.clearRoundState()
	r.word = ""
	r.drawerID = ""
	r.poolFrozen = false
	r.rewards = nil
	r.customWords = nil
	r.phaseDeadline = time.Time{}
	for _, p := range r.players {
		p.Score = 0
		p.GuessedRound = false
	}

	r.broadcast(model.NewEnvelope(model.EventStateTransition, model.StateTransitionPayload{
		Phase:  model.PhaseLobby,
		Scores: r.scoreboard(),
	}))
	r.publishInfo()
}

// clearRoundState resets everything scoped to a single round
func (r *Room) clearRoundState() {
	r.word = ""
	r.wordChoices = nil
	r.comboStage = 0
	r.comboFirst = ""
	r.drawerID = ""
	r.revealed = make(map[int]bool)
	r.hintMarks = nil
	r.hintsGiven = 0
	r.strokes.Clear()
	r.pending = make(map[model.PlayerID]int)
	r.guessOrder = 0
	r.ratingUp = 0
	r.ratingDown = 0
	r.ratedBy = make(map[model.PlayerID]bool)
	for _, p := range r.players {
		p.GuessedRound = false
	}
}

// scoreboard builds the broadcast score list in rank order
func (r *Room) scoreboard() []model.ScoreLine {
	standings := make([]rewards.Standing, 0, len(r.players))
	for _, p := range r.players {
		standings = append(standings, rewards.Standing{PlayerID: p.ID, Score: p.Score})
	}
	ranked := rewards.ComputeRanks(standings)

	lines := make([]model.ScoreLine, 0, len(ranked))
	for _, rk := range ranked {
		p := r.findPlayer(rk.PlayerID)
		if p == nil {
			continue
		}
		lines = append(lines, model.ScoreLine{
			PlayerID: rk.PlayerID,
			Name:     p.DisplayName,
			Score:    rk.Score,
			Rank:     rk.Rank,
		})
	}
	return lines
}

// buildHintMarks precomputes the remaining-second checkpoints at which
// hints fire. The first hint fires at 44s remaining, the second at 25s,
// and any further configured hints are spread evenly below 25s.
func (r *Room) buildHintMarks() {
	r.hintMarks = nil
	count := r.settings.HintCount
	if count <= 0 {
		return
	}
	r.hintMarks = append(r.hintMarks, firstHintMark)
	if count >= 2 {
		r.hintMarks = append(r.hintMarks, secondHintMark)
	}
	extra := count - 2
	if extra > 0 {
		interval := secondHintMark / (extra + 1)
		for i := 1; i <= extra; i++ {
			mark := secondHintMark - i*interval
			if mark < 1 {
				mark = 1
			}
			r.hintMarks = append(r.hintMarks, mark)
		}
	}
}

// fireDueHints reveals every hint whose checkpoint has been reached.
// Called on each tick and immediately after a timer clamp so a
// checkpoint crossed by the clamp still fires.
func (r *Room) fireDueHints(remaining int) {
	for len(r.hintMarks) > 0 && remaining <= r.hintMarks[0] {
		r.hintMarks = r.hintMarks[1:]
		if r.hintsGiven >= r.settings.HintCount {
			return
		}
		positions := guess.HintablePositions(r.word, r.revealed)
		if len(positions) == 0 {
			return
		}
		idx := positions[r.deps.Random.Intn(len(positions))]
		r.revealed[idx] = true
		r.hintsGiven++

		char := string([]rune(r.word)[idx])
		if r.settings.WordMode == model.WordModeHidden {
			// Hidden mode reveals the position but never the letter
			char = "_"
		}
		r.broadcastExcept(r.drawerID, model.NewEnvelope(model.EventHintRevealed, model.HintRevealedPayload{
			Index: idx,
			Char:  char,
		}))
	}
}

// handleTick applies timer progress for the room
func (r *Room) handleTick(now time.Time) {
	r.ballots.Expire()

	// Safety-net stroke flush; appends normally relay immediately
	if r.phase == model.PhaseDrawing {
		if batch := r.strokes.Flush(); len(batch) > 0 {
			r.broadcastExcept(r.drawerID, model.NewEnvelope(model.EventStrokeBatch, model.StrokeBatchPayload{Commands: batch}))
		}
	}

	if r.phaseDeadline.IsZero() {
		return
	}

	remaining := r.remainingSeconds()
	if r.phase == model.PhaseDrawing {
		r.fireDueHints(remaining)
	}

	if remaining != r.lastTickSec {
		r.lastTickSec = remaining
		r.broadcast(model.NewEnvelope(model.EventTimerTick, model.TimerTickPayload{Remaining: remaining}))
	}

	if remaining > 0 {
		return
	}

	// Deadline reached: advance the phase
	r.phaseDeadline = time.Time{}
	switch r.phase {
	case model.PhaseRoundStart:
		r.toWordChoice()
	case model.PhaseWordChoice:
		r.autoChooseWord()
	case model.PhaseDrawing:
		r.endRound(model.EndTimeUp)
	case model.PhaseRoundEnd:
		r.toRoundStart(r.round + 1)
	case model.PhaseGameEnd:
		if r.kind == model.RoomPrivate {
			r.resetToLobby()
		}
		// Public rooms stay on the end screen until everyone leaves
	}
}

// autoChooseWord picks for a drawer who let the choice timer expire
func (r *Room) autoChooseWord() {
	if len(r.wordChoices) == 0 {
		r.endRound(model.EndTimeUp)
		return
	}
	word := r.wordChoices[0]
	if r.settings.WordMode == model.WordModeCombination {
		if r.comboStage == 1 && r.comboFirst != "" {
			word = r.comboFirst + " " + r.wordChoices[0]
		} else if len(r.wordChoices) >= 2 {
			word = r.wordChoices[0] + " " + r.wordChoices[1]
		}
	}
	r.toDrawing(word)
}
