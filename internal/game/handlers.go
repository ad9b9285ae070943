package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/services/abuse"
	"github.com/drawblin/drawblin/internal/services/guess"
	"github.com/drawblin/drawblin/internal/services/words"
)

// handleJoin admits a player or reports why they cannot enter
func (r *Room) handleJoin(p *Player) error {
	if r.bannedIDs[p.ID] || (p.PayoutAddress != "" && r.bannedAddrs[p.PayoutAddress]) {
		return model.ErrBanned
	}
	if r.findPlayer(p.ID) != nil {
		return model.ErrWalletInUse
	}
	if len(r.players) >= r.settings.MaxSlots {
		return model.ErrRoomFull
	}
	if r.kind == model.RoomPublic && r.phase != model.PhaseLobby {
		return model.ErrGameInProgress
	}

	p.spam = abuse.NewSpamDetector(r.deps.Clock)
	p.JoinedAt = r.deps.Clock.Now()
	r.players = append(r.players, p)

	p.send(model.NewEnvelope(model.EventRoomSnapshot, r.snapshot(p.ID)))
	r.broadcastExcept(p.ID, model.NewEnvelope(model.EventPlayerJoined, model.PlayerJoinedPayload{Player: p.Snapshot()}))
	r.systemChat(p.DisplayName + " joined the room")
	r.publishInfo()

	r.logger.Info("player joined",
		slog.String("player_id", string(p.ID)),
		slog.Int("players", len(r.players)))

	// Matchmade rooms start the moment they fill
	if r.kind == model.RoomPublic && r.phase == model.PhaseLobby && len(r.players) == r.settings.MaxSlots {
		r.startGame(nil)
	}
	return nil
}

// snapshot builds the full-state payload sent to a joining player
func (r *Room) snapshot(forPlayer model.PlayerID) model.RoomSnapshotPayload {
	snap := model.RoomSnapshotPayload{
		RoomID:    r.id,
		Kind:      r.kind,
		OwnerID:   r.ownerID,
		YourID:    forPlayer,
		Settings:  r.settings,
		Phase:     r.phase,
		Round:     r.round,
		DrawerID:  r.drawerID,
		Remaining: r.remainingSeconds(),
		PrizePool: r.prizePool,
	}
	if r.kind == model.RoomPrivate {
		snap.InviteCode = r.inviteCode
	}
	for _, p := range r.players {
		snap.Players = append(snap.Players, p.Snapshot())
	}
	if r.phase == model.PhaseDrawing {
		snap.WordMask = guess.Mask(r.word, r.revealed)
		snap.Strokes = r.strokes.Snapshot()
	}
	return snap
}

// handleLeave removes a player from the room. An empty reason means a
// plain disconnect; otherwise it is one of "kicked", "banned", "spam"
// or "votekick".
func (r *Room) handleLeave(playerID model.PlayerID, reason string) {
	p := r.findPlayer(playerID)
	if p == nil {
		return
	}
	wasDrawer := playerID == r.drawerID &&
		(r.phase == model.PhaseWordChoice || r.phase == model.PhaseDrawing)

	for i, q := range r.players {
		if q.ID == playerID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	r.ballots.ClearTarget(playerID)
	delete(r.pending, playerID)
	delete(r.ratedBy, playerID)

	// Ownership settles before the leaver's socket goes down
	ownerChanged := false
	if r.ownerID == playerID && r.kind == model.RoomPrivate && len(r.players) > 0 {
		r.ownerID = r.players[0].ID
		ownerChanged = true
	}
	p.conn.Close(reason)
	if r.deps.OnLeave != nil {
		r.deps.OnLeave(p.ID, p.PayoutAddress)
	}

	r.logger.Info("player left",
		slog.String("player_id", string(playerID)),
		slog.String("reason", reason),
		slog.Int("players", len(r.players)))

	if len(r.players) == 0 {
		r.destroy()
		return
	}

	r.broadcast(model.NewEnvelope(model.EventPlayerLeft, model.PlayerLeftPayload{
		PlayerID: playerID,
		Reason:   reason,
	}))
	switch reason {
	case "kicked":
		r.systemChat(p.DisplayName + " was kicked")
	case "banned":
		r.systemChat(p.DisplayName + " was banned")
	case "spam":
		r.systemChat(p.DisplayName + " was kicked for spamming")
	case "votekick":
		r.systemChat(p.DisplayName + " was voted out")
	default:
		r.systemChat(p.DisplayName + " left the room")
	}

	if ownerChanged {
		r.broadcast(model.NewEnvelope(model.EventOwnerChanged, model.OwnerChangedPayload{OwnerID: r.ownerID}))
	}

	inGame := r.phase != model.PhaseLobby && r.phase != model.PhaseGameEnd
	if inGame && len(r.players) < 2 {
		if r.kind == model.RoomPublic {
			// A matchmade room cannot limp on solo; the survivor goes
			// back through matchmaking
			for _, q := range r.players {
				q.conn.Close("room_closed")
				if r.deps.OnLeave != nil {
					r.deps.OnLeave(q.ID, q.PayoutAddress)
				}
			}
			r.players = nil
			r.destroy()
			return
		}
		r.toGameEnd()
		return
	}

	if inGame && wasDrawer {
		if r.phase == model.PhaseWordChoice {
			r.restartWordChoice()
		} else {
			r.endRound(model.EndDrawerLeft)
		}
		return
	}

	// The leaver may have been the last holdout
	if r.phase == model.PhaseDrawing && r.allGuessed() {
		r.endRound(model.EndAllGuessed)
		return
	}
	r.publishInfo()
}

// destroy tears the room down from inside its own goroutine
func (r *Room) destroy() {
	r.publishInfo()
	if r.deps.OnEmpty != nil {
		r.deps.OnEmpty(r.id)
	}
	r.Stop()
}

// allGuessed reports whether every non-drawer has guessed the word
func (r *Room) allGuessed() bool {
	if len(r.players) < 2 {
		return false
	}
	for _, p := range r.players {
		if p.ID == r.drawerID {
			continue
		}
		if !p.GuessedRound {
			return false
		}
	}
	return true
}

// handleEvent dispatches one inbound client event
func (r *Room) handleEvent(ev playerEvent) {
	p := r.findPlayer(ev.from)
	if p == nil {
		return
	}

	switch ev.env.Type {
	case model.EventLeaveRoom:
		r.handleLeave(p.ID, "")
	case model.EventStartGame:
		var payload model.StartGamePayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleStartGame(p, payload)
	case model.EventUpdateSetting:
		var payload model.UpdateSettingPayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleUpdateSetting(p, payload)
	case model.EventChooseWord:
		var payload model.ChooseWordPayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleChooseWord(p, payload)
	case model.EventStrokeAppend:
		var payload model.StrokeBatchPayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleStrokeAppend(p, payload.Commands)
	case model.EventStrokeUndo:
		r.handleStrokeUndo(p)
	case model.EventStrokeClear:
		r.handleStrokeClear(p)
	case model.EventGuess:
		var payload model.GuessPayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleGuess(p, payload.Text)
	case model.EventChat:
		var payload model.ChatPayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleChat(p, payload.Text)
	case model.EventRateDrawing:
		var payload model.RateDrawingPayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleRateDrawing(p, payload.Up)
	case model.EventKickPlayer:
		var payload model.TargetPlayerPayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleKick(p, payload.Target)
	case model.EventBanPlayer:
		var payload model.TargetPlayerPayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleBan(p, payload.Target)
	case model.EventVoteKick:
		var payload model.TargetPlayerPayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleVoteKick(p, payload.Target)
	case model.EventMutePlayer:
		// Muting is applied client side; the server just acknowledges
		p.send(model.NewEnvelope(model.EventActionAck, model.AckPayload{Of: model.EventMutePlayer}))
	case model.EventReportPlayer:
		var payload model.ReportPayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleReport(p, payload)
	case model.EventClaimReward:
		var payload model.ClaimRewardPayload
		if json.Unmarshal(ev.env.Data, &payload) != nil {
			return
		}
		r.handleClaimReward(p, payload.Address)
	case model.EventRewardBuyback:
		r.handleBuyback(p)
	default:
		r.logger.Debug("unknown event type dropped", slog.String("event", string(ev.env.Type)))
	}
}

func (r *Room) handleStartGame(p *Player, payload model.StartGamePayload) {
	if r.kind != model.RoomPrivate || p.ID != r.ownerID || r.phase != model.PhaseLobby {
		return
	}
	if len(r.players) < 2 {
		p.send(model.NewEnvelope(model.EventChatMessage, model.ChatMessagePayload{
			Text: "at least 2 players are needed to start",
		}))
		return
	}
	custom := words.CleanCustomWords(payload.CustomWords)
	if r.settings.CustomWordsOnly && len(custom) < words.MinCustomWords {
		p.send(model.NewEnvelope(model.EventChatMessage, model.ChatMessagePayload{
			Text: fmt.Sprintf("custom-words-only games need at least %d words", words.MinCustomWords),
		}))
		return
	}
	r.startGame(custom)
}

func (r *Room) handleUpdateSetting(p *Player, payload model.UpdateSettingPayload) {
	if r.kind != model.RoomPrivate || p.ID != r.ownerID || r.phase != model.PhaseLobby {
		return
	}

	next := r.settings
	switch payload.Key {
	case "language":
		if !r.deps.Words.HasLanguage(payload.Value) {
			return
		}
		next.Language = payload.Value
	case "maxSlots":
		n, err := strconv.Atoi(payload.Value)
		if err != nil || n < len(r.players) {
			return
		}
		next.MaxSlots = n
	case "drawTimeSeconds":
		n, err := strconv.Atoi(payload.Value)
		if err != nil {
			return
		}
		next.DrawTimeSeconds = n
	case "totalRounds":
		n, err := strconv.Atoi(payload.Value)
		if err != nil {
			return
		}
		next.TotalRounds = n
	case "wordsPerChoice":
		n, err := strconv.Atoi(payload.Value)
		if err != nil {
			return
		}
		next.WordsPerChoice = n
	case "hintCount":
		n, err := strconv.Atoi(payload.Value)
		if err != nil {
			return
		}
		next.HintCount = n
	case "wordMode":
		next.WordMode = model.WordMode(payload.Value)
	case "customWordsOnly":
		b, err := strconv.ParseBool(payload.Value)
		if err != nil {
			return
		}
		next.CustomWordsOnly = b
	default:
		return
	}

	if next.Validate() != nil {
		return
	}
	r.settings = next
	r.broadcast(model.NewEnvelope(model.EventSettingsChanged, model.SettingsChangedPayload{Settings: next}))
	r.publishInfo()
}

func (r *Room) handleChooseWord(p *Player, payload model.ChooseWordPayload) {
	if r.phase != model.PhaseWordChoice || p.ID != r.drawerID {
		return
	}
	for _, i := range payload.Indices {
		if i < 0 || i >= len(r.wordChoices) {
			return
		}
	}
	if len(payload.Indices) == 0 {
		return
	}

	if r.settings.WordMode == model.WordModeCombination {
		switch {
		case r.comboStage == 1:
			r.toDrawing(r.comboFirst + " " + r.wordChoices[payload.Indices[0]])
		case len(payload.Indices) >= 2:
			r.toDrawing(r.wordChoices[payload.Indices[0]] + " " + r.wordChoices[payload.Indices[1]])
		default:
			// First word locked in; offer a fresh list for the second
			r.comboFirst = r.wordChoices[payload.Indices[0]]
			r.comboStage = 1
			choices, err := r.deps.Words.DrawMixed(
				r.settings.Language,
				r.settings.WordsPerChoice,
				r.customWords,
				r.settings.CustomWordsOnly,
			)
			if err != nil || len(choices) == 0 {
				r.toDrawing(r.comboFirst)
				return
			}
			r.wordChoices = choices
			r.phaseDeadline = r.deps.Clock.Now().Add(wordChoiceTime)
			r.lastTickSec = -1
			p.send(model.NewEnvelope(model.EventWordChoices, model.WordChoicesPayload{Words: choices, Stage: 2}))
		}
		return
	}
	r.toDrawing(r.wordChoices[payload.Indices[0]])
}

func (r *Room) handleStrokeAppend(p *Player, commands []model.StrokeCommand) {
	if r.phase != model.PhaseDrawing || p.ID != r.drawerID {
		return
	}
	for _, cmd := range commands {
		r.strokes.Append(cmd)
	}
	if batch := r.strokes.Flush(); len(batch) > 0 {
		r.broadcastExcept(r.drawerID, model.NewEnvelope(model.EventStrokeBatch, model.StrokeBatchPayload{Commands: batch}))
	}
}

func (r *Room) handleStrokeUndo(p *Player) {
	if r.phase != model.PhaseDrawing || p.ID != r.drawerID {
		return
	}
	surviving := r.strokes.Undo()
	r.broadcastExcept(r.drawerID, model.NewEnvelope(model.EventCanvasCleared, nil))
	if len(surviving) > 0 {
		r.broadcastExcept(r.drawerID, model.NewEnvelope(model.EventStrokeBatch, model.StrokeBatchPayload{Commands: surviving}))
	}
}

func (r *Room) handleStrokeClear(p *Player) {
	if r.phase != model.PhaseDrawing || p.ID != r.drawerID {
		return
	}
	r.strokes.Clear()
	r.broadcastExcept(r.drawerID, model.NewEnvelope(model.EventCanvasCleared, nil))
}

func (r *Room) handleGuess(p *Player, text string) {
	if text == "" {
		return
	}
	if r.checkSpam(p) {
		return
	}
	// Guesses outside the drawing phase, from the drawer, or from a
	// player who already has it are plain chat
	if r.phase != model.PhaseDrawing || p.ID == r.drawerID || p.GuessedRound {
		r.relayChatGuarded(p, text)
		return
	}

	switch guess.Evaluate(text, r.word) {
	case guess.Exact:
		r.applyCorrectGuess(p)
	case guess.Close:
		p.send(model.NewEnvelope(model.EventCloseGuess, model.CloseGuessPayload{Text: text}))
	default:
		r.relayChat(p, text)
	}
}

// applyCorrectGuess credits a correct guess and handles the timer
// clamp and round completion
func (r *Room) applyCorrectGuess(p *Player) {
	p.GuessedRound = true
	r.guessOrder++

	remaining := r.remainingSeconds()
	total := r.settings.DrawTimeSeconds
	wordLength := len(guess.HintablePositions(r.word, nil))

	score := guess.Score(remaining, total, wordLength, r.guessOrder)
	r.pending[p.ID] += score
	r.pending[r.drawerID] += guess.DrawerShare(score, r.guessOrder)

	result := model.GuessResultPayload{PlayerID: p.ID, Position: r.guessOrder}
	r.broadcastExcept(p.ID, model.NewEnvelope(model.EventGuessResult, result))
	result.Word = r.word
	p.send(model.NewEnvelope(model.EventGuessResult, result))

	if r.allGuessed() {
		r.endRound(model.EndAllGuessed)
		return
	}

	// First correct guess compresses the rest of the round
	if r.guessOrder == 1 && remaining > clampSeconds && len(r.players) >= minClampPlayers {
		r.phaseDeadline = r.deps.Clock.Now().Add(clampSeconds * time.Second)
		r.lastTickSec = clampSeconds
		r.broadcast(model.NewEnvelope(model.EventTimerTick, model.TimerTickPayload{Remaining: clampSeconds}))
		r.fireDueHints(clampSeconds)
	}
}

func (r *Room) handleChat(p *Player, text string) {
	if text == "" {
		return
	}
	if r.checkSpam(p) {
		return
	}
	r.relayChatGuarded(p, text)
}

// relayChatGuarded keeps the current word out of chat mid-round. The
// drawer's mentions of it are dropped; a player who already guessed it
// reaches only the drawer and the other players who have it.
func (r *Room) relayChatGuarded(p *Player, text string) {
	if r.phase == model.PhaseDrawing && guess.Evaluate(text, r.word) != guess.Wrong {
		if p.ID == r.drawerID {
			return
		}
		if p.GuessedRound {
			env := model.NewEnvelope(model.EventChatMessage, model.ChatMessagePayload{
				PlayerID: p.ID,
				Name:     p.DisplayName,
				Text:     text,
			})
			for _, q := range r.players {
				if q.ID == p.ID || q.ID == r.drawerID || q.GuessedRound {
					q.send(env)
				}
			}
			return
		}
	}
	r.relayChat(p, text)
}

func (r *Room) relayChat(p *Player, text string) {
	r.broadcast(model.NewEnvelope(model.EventChatMessage, model.ChatMessagePayload{
		PlayerID: p.ID,
		Name:     p.DisplayName,
		Text:     text,
	}))
}

// checkSpam records a message against the sender's spam ladder and
// reports whether the message must be suppressed
func (r *Room) checkSpam(p *Player) bool {
	verdict := p.spam.Record()
	if verdict.Kick {
		r.handleLeave(p.ID, "spam")
		return true
	}
	if verdict.Warn {
		p.send(model.NewEnvelope(model.EventSpamWarning, model.SpamWarningPayload{Count: verdict.Warnings}))
		return true
	}
	return false
}

func (r *Room) handleRateDrawing(p *Player, up bool) {
	if r.phase != model.PhaseDrawing && r.phase != model.PhaseRoundEnd {
		return
	}
	if r.drawerID == "" || p.ID == r.drawerID || r.ratedBy[p.ID] {
		return
	}
	r.ratedBy[p.ID] = true
	if up {
		r.ratingUp++
	} else {
		r.ratingDown++
	}
	p.send(model.NewEnvelope(model.EventActionAck, model.AckPayload{Of: model.EventRateDrawing}))
}

func (r *Room) handleKick(p *Player, target model.PlayerID) {
	if r.kind != model.RoomPrivate || p.ID != r.ownerID || target == p.ID {
		return
	}
	if r.findPlayer(target) == nil {
		return
	}
	r.handleLeave(target, "kicked")
}

func (r *Room) handleBan(p *Player, target model.PlayerID) {
	if r.kind != model.RoomPrivate || p.ID != r.ownerID || target == p.ID {
		return
	}
	t := r.findPlayer(target)
	if t == nil {
		return
	}
	r.bannedIDs[target] = true
	if t.PayoutAddress != "" {
		r.bannedAddrs[t.PayoutAddress] = true
	}
	r.handleLeave(target, "banned")
}

func (r *Room) handleVoteKick(p *Player, target model.PlayerID) {
	if target == p.ID || target == r.ownerID {
		return
	}
	if r.findPlayer(target) == nil {
		return
	}
	count, required, kicked := r.ballots.Cast(p.ID, target, len(r.players))
	r.broadcast(model.NewEnvelope(model.EventVoteProgress, model.VoteProgressPayload{
		VoterID:  p.ID,
		TargetID: target,
		Count:    count,
		Required: required,
	}))
	if kicked {
		r.ballots.ClearTarget(target)
		r.handleLeave(target, "votekick")
	}
}

func (r *Room) handleReport(p *Player, payload model.ReportPayload) {
	if r.findPlayer(payload.Target) == nil {
		return
	}
	r.logger.Warn("player reported",
		slog.String("reporter", string(p.ID)),
		slog.String("target", string(payload.Target)),
		slog.Any("reasons", payload.Reasons))
	p.send(model.NewEnvelope(model.EventActionAck, model.AckPayload{Of: model.EventReportPlayer}))
}

func (r *Room) handleClaimReward(p *Player, address string) {
	if !r.poolFrozen {
		r.sendClaimError(p, model.ErrRewardsNotReady)
		return
	}
	if address == "" {
		address = p.PayoutAddress
	}
	txRef, err := r.deps.Ledger.Claim(context.Background(), r.gameID(), p.ID, address)
	if err != nil {
		r.sendClaimError(p, err)
		return
	}
	var amount float64
	for _, e := range r.rewards {
		if e.PlayerID == p.ID {
			amount = e.Amount
		}
	}
	r.broadcast(model.NewEnvelope(model.EventRewardClaimed, model.RewardClaimedPayload{
		Amount: amount,
		TxRef:  txRef,
	}))
}

func (r *Room) handleBuyback(p *Player) {
	if r.kind != model.RoomPrivate || r.phase != model.PhaseLobby {
		return
	}
	amount, err := r.deps.Ledger.Buyback(context.Background(), r.gameID(), p.ID)
	if err != nil {
		r.sendClaimError(p, err)
		return
	}
	r.prizePool += amount
	r.systemChat(fmt.Sprintf("%s rolled %.2f of their reward into the prize pool", p.DisplayName, amount))
	p.send(model.NewEnvelope(model.EventActionAck, model.AckPayload{Of: model.EventRewardBuyback}))
}

func (r *Room) sendClaimError(p *Player, err error) {
	p.send(model.NewEnvelope(model.EventClaimError, model.ClaimErrorPayload{
		Code:    claimErrorCode(err),
		Message: err.Error(),
	}))
}

func claimErrorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrClaimNotFound), errors.Is(err, model.ErrNoReward):
		return "no_reward"
	case errors.Is(err, model.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, model.ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, model.ErrPayoutFailed):
		return "payout_failed"
	case errors.Is(err, model.ErrRewardsNotReady):
		return "rewards_not_ready"
	default:
		return "claim_failed"
	}
}
