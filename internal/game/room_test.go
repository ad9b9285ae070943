package game

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/drawblin/drawblin/internal/dependencies/mocks"
	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/services/rewards"
	"github.com/drawblin/drawblin/internal/services/words"
	"github.com/drawblin/drawblin/internal/storage/memory"
	"github.com/drawblin/drawblin/internal/testutil"
)

// recordConn captures everything a room sends to one player
type recordConn struct {
	sent        []model.Envelope
	closed      bool
	closeReason string
}

func (c *recordConn) Send(env model.Envelope) { c.sent = append(c.sent, env) }
func (c *recordConn) Close(reason string) {
	c.closed = true
	c.closeReason = reason
}

func (c *recordConn) reset() { c.sent = nil }

// lastOfType returns the most recent envelope of the given type, or nil
func (c *recordConn) lastOfType(t model.EventType) *model.Envelope {
	for i := len(c.sent) - 1; i >= 0; i-- {
		if c.sent[i].Type == t {
			return &c.sent[i]
		}
	}
	return nil
}

func (c *recordConn) countOfType(t model.EventType) int {
	n := 0
	for _, env := range c.sent {
		if env.Type == t {
			n++
		}
	}
	return n
}

type nullExecutor struct{}

func (nullExecutor) Execute(ctx context.Context, address string, amount float64, roomID model.RoomID) (string, error) {
	return "tx-test", nil
}

type nullSink struct {
	results []*model.GameResult
}

func (s *nullSink) RecordGameResult(ctx context.Context, result *model.GameResult) error {
	s.results = append(s.results, result)
	return nil
}

type RoomSuite struct {
	suite.Suite

	clock   *mocks.MockClock
	random  *mocks.MockRandom
	sink    *nullSink
	room    *Room
	emptied []model.RoomID
}

func TestRoomSuite(t *testing.T) {
	suite.Run(t, new(RoomSuite))
}

func (s *RoomSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.sink = &nullSink{}
	s.emptied = nil

	wordsSvc := words.New(s.random)
	s.Require().NoError(wordsSvc.LoadWords("en", []string{
		"apple", "banana", "cherry", "dragon", "engine",
		"falcon", "guitar", "hammer", "island", "jacket",
	}))

	ledger := rewards.NewLedger(memory.New(), nullExecutor{}, testutil.NopLogger())

	s.room = NewRoom(Config{
		ID:         "room-1",
		Kind:       model.RoomPrivate,
		InviteCode: "ABCD1234",
		OwnerID:    "p1",
		Settings:   model.DefaultPrivateSettings("en"),
	}, Deps{
		Words:   wordsSvc,
		Ledger:  ledger,
		Results: s.sink,
		Clock:   s.clock,
		Random:  s.random,
		Logger:  testutil.NopLogger(),
		OnEmpty: func(id model.RoomID) { s.emptied = append(s.emptied, id) },
	})
}

// join admits a player directly through the handler, bypassing the
// goroutine so tests stay fully synchronous
func (s *RoomSuite) join(id model.PlayerID, name string) (*Player, *recordConn) {
	conn := &recordConn{}
	p := &Player{ID: id, DisplayName: name, conn: conn}
	s.Require().NoError(s.room.handleJoin(p))
	return p, conn
}

func (s *RoomSuite) deliver(from model.PlayerID, t model.EventType, payload any) {
	s.room.handleEvent(playerEvent{from: from, env: model.NewEnvelope(t, payload)})
}

// tickSeconds advances the clock one second at a time, ticking the
// room after each step the way the registry does
func (s *RoomSuite) tickSeconds(n int) {
	for i := 0; i < n; i++ {
		s.clock.Advance(time.Second)
		s.room.handleTick(s.clock.Now())
	}
}

// startTwoPlayerGame gets the room to the DRAWING phase with p1
// drawing "apple" and p2 guessing
func (s *RoomSuite) startTwoPlayerGame() (*recordConn, *recordConn) {
	_, c1 := s.join("p1", "alice")
	_, c2 := s.join("p2", "bob")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.Equal(model.PhaseRoundStart, s.room.phase)
	s.tickSeconds(2)
	s.Equal(model.PhaseWordChoice, s.room.phase)
	s.Equal(model.PlayerID("p1"), s.room.drawerID)
	s.deliver("p1", model.EventChooseWord, model.ChooseWordPayload{Indices: []int{0}})
	s.Equal(model.PhaseDrawing, s.room.phase)
	s.Equal("apple", s.room.word)
	c1.reset()
	c2.reset()
	return c1, c2
}

func (s *RoomSuite) TestJoinSendsSnapshotAndNotifiesOthers() {
	_, c1 := s.join("p1", "alice")
	_, c2 := s.join("p2", "bob")

	env := c2.lastOfType(model.EventRoomSnapshot)
	s.Require().NotNil(env)
	var snap model.RoomSnapshotPayload
	s.Require().NoError(json.Unmarshal(env.Data, &snap))
	s.Equal(model.RoomID("room-1"), snap.RoomID)
	s.Equal(model.PlayerID("p2"), snap.YourID)
	s.Equal(model.InviteCode("ABCD1234"), snap.InviteCode)
	s.Len(snap.Players, 2)

	s.NotNil(c1.lastOfType(model.EventPlayerJoined))
	s.Nil(c2.lastOfType(model.EventPlayerJoined))
}

func (s *RoomSuite) TestJoinRejectsWhenFull() {
	s.room.settings.MaxSlots = 2
	s.join("p1", "alice")
	s.join("p2", "bob")

	p3 := &Player{ID: "p3", DisplayName: "carol", conn: &recordConn{}}
	s.ErrorIs(s.room.handleJoin(p3), model.ErrRoomFull)
}

func (s *RoomSuite) TestJoinRejectsBannedPlayer() {
	s.room.bannedIDs["p9"] = true
	p := &Player{ID: "p9", DisplayName: "mallory", conn: &recordConn{}}
	s.ErrorIs(s.room.handleJoin(p), model.ErrBanned)
}

func (s *RoomSuite) TestStartGameRequiresOwnerAndTwoPlayers() {
	s.join("p1", "alice")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.Equal(model.PhaseLobby, s.room.phase)

	s.join("p2", "bob")
	s.deliver("p2", model.EventStartGame, model.StartGamePayload{})
	s.Equal(model.PhaseLobby, s.room.phase)

	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.Equal(model.PhaseRoundStart, s.room.phase)
	s.Equal(1, s.room.round)
}

func (s *RoomSuite) TestDrawerRotatesInJoinOrder() {
	s.join("p1", "alice")
	s.join("p2", "bob")
	s.join("p3", "carol")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})

	s.tickSeconds(2)
	s.Equal(model.PlayerID("p1"), s.room.drawerID)

	s.room.round = 2
	s.room.toWordChoice()
	s.Equal(model.PlayerID("p2"), s.room.drawerID)

	s.room.round = 4
	s.room.toWordChoice()
	s.Equal(model.PlayerID("p1"), s.room.drawerID)
}

func (s *RoomSuite) TestWordChoicesGoOnlyToDrawer() {
	_, c1 := s.join("p1", "alice")
	_, c2 := s.join("p2", "bob")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.tickSeconds(2)

	s.NotNil(c1.lastOfType(model.EventWordChoices))
	s.Nil(c2.lastOfType(model.EventWordChoices))

	env := c1.lastOfType(model.EventWordChoices)
	var payload model.WordChoicesPayload
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	s.Equal([]string{"apple", "banana", "cherry"}, payload.Words)
}

func (s *RoomSuite) TestWordChoiceTimeoutAutoPicks() {
	s.join("p1", "alice")
	s.join("p2", "bob")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.tickSeconds(2)
	s.Equal(model.PhaseWordChoice, s.room.phase)

	s.tickSeconds(15)
	s.Equal(model.PhaseDrawing, s.room.phase)
	s.Equal("apple", s.room.word)
}

func (s *RoomSuite) TestDrawingMaskHidesWordFromGuessers() {
	s.startTwoPlayerGame()

	_, c3 := s.join("p3", "carol")
	env := c3.lastOfType(model.EventRoomSnapshot)
	s.Require().NotNil(env)
	var snap model.RoomSnapshotPayload
	s.Require().NoError(json.Unmarshal(env.Data, &snap))
	s.Equal("_____", snap.WordMask)
}

func (s *RoomSuite) TestCorrectGuessCommitsOnlyAtRoundEnd() {
	s.join("p1", "alice")
	s.join("p2", "bob")
	s.join("p3", "carol")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.tickSeconds(2)
	s.deliver("p1", model.EventChooseWord, model.ChooseWordPayload{Indices: []int{0}})
	s.Require().Equal(model.PhaseDrawing, s.room.phase)

	s.clock.Advance(time.Second)
	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "apple"})

	p2 := s.room.findPlayer("p2")
	s.True(p2.GuessedRound)
	s.Zero(p2.Score)
	s.Positive(s.room.pending["p2"])
	s.Positive(s.room.pending["p1"])

	pending := s.room.pending["p2"]
	s.deliver("p3", model.EventGuess, model.GuessPayload{Text: "apple"})
	s.Equal(model.PhaseRoundEnd, s.room.phase)
	s.Equal(pending, p2.Score)
	s.Empty(s.room.pending)
}

func (s *RoomSuite) TestFirstGuessClampsTimerWithThreePlayers() {
	s.join("p1", "alice")
	s.join("p2", "bob")
	s.join("p3", "carol")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.tickSeconds(2)
	s.deliver("p1", model.EventChooseWord, model.ChooseWordPayload{Indices: []int{0}})

	s.Equal(80, s.room.remainingSeconds())
	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "apple"})
	s.Equal(32, s.room.remainingSeconds())
}

func (s *RoomSuite) TestFirstGuessDoesNotClampWithTwoPlayers() {
	s.startTwoPlayerGame()
	// Two players: the only guesser ends the round outright
	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "apple"})
	s.Equal(model.PhaseRoundEnd, s.room.phase)
}

func (s *RoomSuite) TestClampFiresSkippedHintCheckpoint() {
	s.join("p1", "alice")
	s.join("p2", "bob")
	s.join("p3", "carol")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.tickSeconds(2)
	s.deliver("p1", model.EventChooseWord, model.ChooseWordPayload{Indices: []int{0}})

	// Clamp at 80s remaining jumps past the 44s checkpoint
	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "apple"})
	s.Equal(32, s.room.remainingSeconds())
	s.Equal(1, s.room.hintsGiven)
}

func (s *RoomSuite) TestCloseGuessNotifiesOnlyGuesser() {
	c1, c2 := s.startTwoPlayerGame()

	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "aple"})
	s.NotNil(c2.lastOfType(model.EventCloseGuess))
	s.Nil(c1.lastOfType(model.EventCloseGuess))
	s.Nil(c1.lastOfType(model.EventChatMessage))
}

func (s *RoomSuite) TestWrongGuessBroadcastsAsChat() {
	c1, _ := s.startTwoPlayerGame()

	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "zebra"})
	env := c1.lastOfType(model.EventChatMessage)
	s.Require().NotNil(env)
	var msg model.ChatMessagePayload
	s.Require().NoError(json.Unmarshal(env.Data, &msg))
	s.Equal("zebra", msg.Text)
	s.Equal(model.PlayerID("p2"), msg.PlayerID)
}

func (s *RoomSuite) TestDrawerCannotLeakWordInChat() {
	_, c2 := s.startTwoPlayerGame()

	s.deliver("p1", model.EventChat, model.ChatPayload{Text: "apple"})
	s.Nil(c2.lastOfType(model.EventChatMessage))

	s.clock.Advance(time.Second)
	s.deliver("p1", model.EventChat, model.ChatPayload{Text: "good luck"})
	s.NotNil(c2.lastOfType(model.EventChatMessage))
}

func (s *RoomSuite) TestGuessedPlayerCannotEchoWordToGuessers() {
	s.join("p1", "alice")
	_, c2 := s.join("p2", "bob")
	_, c3 := s.join("p3", "carol")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.tickSeconds(2)
	s.deliver("p1", model.EventChooseWord, model.ChooseWordPayload{Indices: []int{0}})

	s.clock.Advance(time.Second)
	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "apple"})
	c2.reset()
	c3.reset()

	// p2 has the word; repeating it through chat or guess must not
	// reach p3, who is still guessing
	s.clock.Advance(time.Second)
	s.deliver("p2", model.EventChat, model.ChatPayload{Text: "apple"})
	s.clock.Advance(time.Second)
	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "apple"})
	s.Nil(c3.lastOfType(model.EventChatMessage))
	s.Equal(2, c2.countOfType(model.EventChatMessage))

	// Ordinary chat still reaches everyone
	s.clock.Advance(time.Second)
	s.deliver("p2", model.EventChat, model.ChatPayload{Text: "that was tough"})
	s.NotNil(c3.lastOfType(model.EventChatMessage))
}

func (s *RoomSuite) TestGuessedWordNeverBroadcastToOthers() {
	s.join("p1", "alice")
	s.join("p2", "bob")
	_, c3 := s.join("p3", "carol")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.tickSeconds(2)
	s.deliver("p1", model.EventChooseWord, model.ChooseWordPayload{Indices: []int{0}})
	c3.reset()

	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "apple"})
	env := c3.lastOfType(model.EventGuessResult)
	s.Require().NotNil(env)
	var result model.GuessResultPayload
	s.Require().NoError(json.Unmarshal(env.Data, &result))
	s.Empty(result.Word)
	s.Equal(1, result.Position)
}

func (s *RoomSuite) TestStrokesRelayToGuessersOnly() {
	c1, c2 := s.startTwoPlayerGame()

	s.deliver("p1", model.EventStrokeAppend, model.StrokeBatchPayload{Commands: []model.StrokeCommand{
		{Kind: model.StrokeDraw, Tool: model.ToolPen, X1: 10, Y1: 10, X2: 20, Y2: 20},
	}})
	s.NotNil(c2.lastOfType(model.EventStrokeBatch))
	s.Nil(c1.lastOfType(model.EventStrokeBatch))
}

func (s *RoomSuite) TestOutOfBoundsStrokesDropped() {
	s.startTwoPlayerGame()

	s.deliver("p1", model.EventStrokeAppend, model.StrokeBatchPayload{Commands: []model.StrokeCommand{
		{Kind: model.StrokeDraw, Tool: model.ToolPen, X1: 900, Y1: 10, X2: 905, Y2: 12},
	}})
	s.Zero(s.room.strokes.Len())
}

func (s *RoomSuite) TestNonDrawerCannotDraw() {
	s.startTwoPlayerGame()

	s.deliver("p2", model.EventStrokeAppend, model.StrokeBatchPayload{Commands: []model.StrokeCommand{
		{Kind: model.StrokeDraw, Tool: model.ToolPen, X1: 10, Y1: 10, X2: 20, Y2: 20},
	}})
	s.Zero(s.room.strokes.Len())
}

func (s *RoomSuite) TestUndoResendsSurvivingCanvas() {
	_, c2 := s.startTwoPlayerGame()

	s.deliver("p1", model.EventStrokeAppend, model.StrokeBatchPayload{Commands: []model.StrokeCommand{
		{Kind: model.StrokeDraw, Tool: model.ToolPen, X1: 1, Y1: 1, X2: 2, Y2: 2},
		{Kind: model.StrokeDraw, Tool: model.ToolPen, X1: 2, Y1: 2, X2: 3, Y2: 3},
	}})
	c2.reset()

	s.deliver("p1", model.EventStrokeUndo, nil)
	s.NotNil(c2.lastOfType(model.EventCanvasCleared))
	s.Zero(s.room.strokes.Len())
}

func (s *RoomSuite) TestRoundTimeoutEndsRound() {
	_, c2 := s.startTwoPlayerGame()

	s.tickSeconds(80)
	s.Equal(model.PhaseRoundEnd, s.room.phase)

	env := c2.lastOfType(model.EventStateTransition)
	s.Require().NotNil(env)
	var st model.StateTransitionPayload
	s.Require().NoError(json.Unmarshal(env.Data, &st))
	s.Equal(model.EndTimeUp, st.EndReason)
	s.Equal("apple", st.Word)
}

func (s *RoomSuite) TestGameEndsAfterConfiguredRounds() {
	s.room.settings.TotalRounds = 1
	s.startTwoPlayerGame()

	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "apple"})
	s.Equal(model.PhaseGameEnd, s.room.phase)

	// Private rooms return to the lobby after the end screen
	s.tickSeconds(7)
	s.Equal(model.PhaseLobby, s.room.phase)
	s.Zero(s.room.findPlayer("p1").Score)
	s.Zero(s.room.findPlayer("p2").Score)
}

func (s *RoomSuite) TestDrawerLeavingEndsRound() {
	_, c2 := s.startTwoPlayerGame()
	s.join("p3", "carol")

	s.room.handleLeave("p1", "")
	s.Equal(model.PhaseRoundEnd, s.room.phase)

	env := c2.lastOfType(model.EventStateTransition)
	s.Require().NotNil(env)
	var st model.StateTransitionPayload
	s.Require().NoError(json.Unmarshal(env.Data, &st))
	s.Equal(model.EndDrawerLeft, st.EndReason)
}

func (s *RoomSuite) TestDrawerLeavingDuringWordChoiceRestartsChoice() {
	s.join("p1", "alice")
	s.join("p2", "bob")
	s.join("p3", "carol")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.tickSeconds(2)
	s.Equal(model.PlayerID("p1"), s.room.drawerID)

	s.room.handleLeave("p1", "")
	s.Equal(model.PhaseWordChoice, s.room.phase)
	s.NotEqual(model.PlayerID("p1"), s.room.drawerID)
	s.NotEmpty(s.room.drawerID)
}

func (s *RoomSuite) TestSoloSurvivorMidGameSeesGameEnd() {
	s.startTwoPlayerGame()

	s.room.handleLeave("p2", "")
	s.Equal(model.PhaseGameEnd, s.room.phase)
}

func (s *RoomSuite) TestOwnershipTransfersOnOwnerLeave() {
	s.join("p1", "alice")
	s.join("p2", "bob")

	s.room.handleLeave("p1", "")
	s.Equal(model.PlayerID("p2"), s.room.ownerID)
}

// captureOwnerConn snapshots the room's owner at close time
type captureOwnerConn struct {
	recordConn
	room         *Room
	ownerAtClose model.PlayerID
}

func (c *captureOwnerConn) Close(reason string) {
	c.ownerAtClose = c.room.ownerID
	c.recordConn.Close(reason)
}

func (s *RoomSuite) TestOwnershipSettlesBeforeLeaverSocketCloses() {
	conn := &captureOwnerConn{room: s.room}
	p := &Player{ID: "p1", DisplayName: "alice", conn: conn}
	s.Require().NoError(s.room.handleJoin(p))
	_, c2 := s.join("p2", "bob")

	s.room.handleLeave("p1", "")

	s.True(conn.closed)
	s.Equal(model.PlayerID("p2"), conn.ownerAtClose)
	s.NotNil(c2.lastOfType(model.EventOwnerChanged))
}

func (s *RoomSuite) TestEmptyRoomReportsItself() {
	s.join("p1", "alice")
	s.room.handleLeave("p1", "")
	s.Equal([]model.RoomID{"room-1"}, s.emptied)
}

func (s *RoomSuite) TestOwnerCanKickAndBan() {
	s.join("p1", "alice")
	_, c2 := s.join("p2", "bob")
	s.join("p3", "carol")

	s.deliver("p1", model.EventKickPlayer, model.TargetPlayerPayload{Target: "p2"})
	s.True(c2.closed)
	s.Equal("kicked", c2.closeReason)
	s.Nil(s.room.findPlayer("p2"))

	s.deliver("p1", model.EventBanPlayer, model.TargetPlayerPayload{Target: "p3"})
	s.Nil(s.room.findPlayer("p3"))

	// A banned player cannot rejoin
	p3 := &Player{ID: "p3", DisplayName: "carol", conn: &recordConn{}}
	s.ErrorIs(s.room.handleJoin(p3), model.ErrBanned)
}

func (s *RoomSuite) TestNonOwnerCannotKick() {
	s.join("p1", "alice")
	s.join("p2", "bob")

	s.deliver("p2", model.EventKickPlayer, model.TargetPlayerPayload{Target: "p1"})
	s.NotNil(s.room.findPlayer("p1"))
}

func (s *RoomSuite) TestVoteKickRemovesTargetAtThreshold() {
	for _, id := range []model.PlayerID{"p1", "p2", "p3", "p4"} {
		s.join(id, string(id))
	}
	// 4 players: ceil(0.6 * 4) = 3 votes
	s.deliver("p1", model.EventVoteKick, model.TargetPlayerPayload{Target: "p4"})
	s.NotNil(s.room.findPlayer("p4"))
	s.deliver("p2", model.EventVoteKick, model.TargetPlayerPayload{Target: "p4"})
	s.NotNil(s.room.findPlayer("p4"))
	s.deliver("p3", model.EventVoteKick, model.TargetPlayerPayload{Target: "p4"})
	s.Nil(s.room.findPlayer("p4"))
}

func (s *RoomSuite) TestVoteKickCannotTargetOwner() {
	s.join("p1", "alice")
	s.join("p2", "bob")
	s.join("p3", "carol")

	s.deliver("p2", model.EventVoteKick, model.TargetPlayerPayload{Target: "p1"})
	s.deliver("p3", model.EventVoteKick, model.TargetPlayerPayload{Target: "p1"})
	s.NotNil(s.room.findPlayer("p1"))
}

func (s *RoomSuite) TestSpamLadderKicksAfterThreeWarnings() {
	s.startTwoPlayerGame()

	// Three instant messages earn the first warning, then every
	// further instant message escalates
	for i := 0; i < 2; i++ {
		s.clock.Advance(100 * time.Millisecond)
		s.deliver("p2", model.EventChat, model.ChatPayload{Text: "x"})
	}
	for i := 0; i < 3; i++ {
		s.clock.Advance(100 * time.Millisecond)
		s.deliver("p2", model.EventChat, model.ChatPayload{Text: "x"})
	}
	s.clock.Advance(100 * time.Millisecond)
	s.deliver("p2", model.EventChat, model.ChatPayload{Text: "x"})
	s.Nil(s.room.findPlayer("p2"))
}

func (s *RoomSuite) TestRateDrawingOncePerPlayer() {
	s.join("p1", "alice")
	s.join("p2", "bob")
	s.join("p3", "carol")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.tickSeconds(2)
	s.deliver("p1", model.EventChooseWord, model.ChooseWordPayload{Indices: []int{0}})

	s.deliver("p2", model.EventRateDrawing, model.RateDrawingPayload{Up: true})
	s.deliver("p2", model.EventRateDrawing, model.RateDrawingPayload{Up: true})
	s.deliver("p3", model.EventRateDrawing, model.RateDrawingPayload{Up: false})
	s.deliver("p1", model.EventRateDrawing, model.RateDrawingPayload{Up: true})

	s.Equal(1, s.room.ratingUp)
	s.Equal(1, s.room.ratingDown)
}

func (s *RoomSuite) TestSettingsChangeOnlyInLobbyByOwner() {
	s.join("p1", "alice")
	s.join("p2", "bob")

	s.deliver("p2", model.EventUpdateSetting, model.UpdateSettingPayload{Key: "totalRounds", Value: "3"})
	s.Equal(8, s.room.settings.TotalRounds)

	s.deliver("p1", model.EventUpdateSetting, model.UpdateSettingPayload{Key: "totalRounds", Value: "3"})
	s.Equal(3, s.room.settings.TotalRounds)

	s.deliver("p1", model.EventUpdateSetting, model.UpdateSettingPayload{Key: "totalRounds", Value: "999"})
	s.Equal(3, s.room.settings.TotalRounds)

	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.deliver("p1", model.EventUpdateSetting, model.UpdateSettingPayload{Key: "totalRounds", Value: "5"})
	s.Equal(3, s.room.settings.TotalRounds)
}

func (s *RoomSuite) TestHintsRevealAtCheckpoints() {
	_, c2 := s.startTwoPlayerGame()

	// 80s round, hints at 44s and 25s remaining
	s.tickSeconds(35)
	s.Equal(0, c2.countOfType(model.EventHintRevealed))
	s.tickSeconds(1)
	s.Equal(1, c2.countOfType(model.EventHintRevealed))
	s.tickSeconds(19)
	s.Equal(2, c2.countOfType(model.EventHintRevealed))
}

func (s *RoomSuite) TestGameSummaryCarriesRanksAndPool() {
	s.room.prizePool = 10
	s.room.settings.TotalRounds = 1
	s.join("p1", "alice")
	_, c2 := s.join("p2", "bob")
	s.join("p3", "carol")
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.tickSeconds(2)
	s.deliver("p1", model.EventChooseWord, model.ChooseWordPayload{Indices: []int{0}})

	s.clock.Advance(time.Second)
	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "apple"})
	s.deliver("p3", model.EventGuess, model.GuessPayload{Text: "apple"})
	s.Require().Equal(model.PhaseGameEnd, s.room.phase)

	env := c2.lastOfType(model.EventGameSummary)
	s.Require().NotNil(env)
	var summary model.GameSummaryPayload
	s.Require().NoError(json.Unmarshal(env.Data, &summary))
	s.Len(summary.Scores, 3)
	s.Equal(1, summary.Scores[0].Rank)
	s.InDelta(10.0, summary.PrizePool, 0.001)
	s.InDelta(5.0, summary.Rewards[summary.Scores[0].PlayerID], 0.001)
}

func (s *RoomSuite) TestRematchRewardClaimableAfterEarlierClaim() {
	const address = "4Nd1mYvhGV2ZSzrAvj3eLtA5dW3hYkUJpSgzV4qTkCdQ"
	s.room.prizePool = 10
	s.room.settings.TotalRounds = 1
	_, c2 := s.startTwoPlayerGame()

	s.clock.Advance(time.Second)
	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: "apple"})
	s.Require().Equal(model.PhaseGameEnd, s.room.phase)
	s.deliver("p2", model.EventClaimReward, model.ClaimRewardPayload{Address: address})
	s.Require().NotNil(c2.lastOfType(model.EventRewardClaimed))

	// End screen runs out and the lobby hosts a rematch
	s.tickSeconds(8)
	s.Require().Equal(model.PhaseLobby, s.room.phase)
	s.deliver("p1", model.EventStartGame, model.StartGamePayload{})
	s.tickSeconds(2)
	s.Require().Equal(model.PhaseWordChoice, s.room.phase)
	s.Require().Equal(model.PlayerID("p1"), s.room.drawerID)
	s.deliver("p1", model.EventChooseWord, model.ChooseWordPayload{Indices: []int{0}})
	s.clock.Advance(time.Second)
	s.deliver("p2", model.EventGuess, model.GuessPayload{Text: s.room.word})
	s.Require().Equal(model.PhaseGameEnd, s.room.phase)

	// The earlier claim belongs to the earlier game
	c2.reset()
	s.deliver("p2", model.EventClaimReward, model.ClaimRewardPayload{Address: address})
	s.Nil(c2.lastOfType(model.EventClaimError))
	s.NotNil(c2.lastOfType(model.EventRewardClaimed))
}

// panicConn blows up on its first send
type panicConn struct{ recordConn }

func (c *panicConn) Send(model.Envelope) { panic("send exploded") }

func (s *RoomSuite) TestJoinAnsweredWhenAdmissionPanics() {
	go s.room.Run()
	defer s.room.Stop()

	p := &Player{ID: "px", DisplayName: "mallory", conn: &panicConn{}}
	errCh := make(chan error, 1)
	go func() { errCh <- s.room.RequestJoin(p) }()

	select {
	case err := <-errCh:
		s.ErrorIs(err, model.ErrJoinFailed)
	case <-time.After(time.Second):
		s.Fail("join request never answered")
	}
}

func (s *RoomSuite) TestPublicRoomAutoStartsWhenFull() {
	ledger := rewards.NewLedger(memory.New(), nullExecutor{}, testutil.NopLogger())
	settings := model.DefaultPublicSettings("en")
	settings.MaxSlots = 2

	wordsSvc := words.New(s.random)
	s.Require().NoError(wordsSvc.LoadWords("en", []string{"apple", "banana", "cherry"}))

	pub := NewRoom(Config{
		ID:       "pub-1",
		Kind:     model.RoomPublic,
		Settings: settings,
	}, Deps{
		Words:   wordsSvc,
		Ledger:  ledger,
		Results: s.sink,
		Clock:   s.clock,
		Random:  s.random,
		Logger:  testutil.NopLogger(),
	})

	s.Require().NoError(pub.handleJoin(&Player{ID: "p1", DisplayName: "alice", conn: &recordConn{}}))
	s.Equal(model.PhaseLobby, pub.phase)
	s.Require().NoError(pub.handleJoin(&Player{ID: "p2", DisplayName: "bob", conn: &recordConn{}}))
	s.Equal(model.PhaseRoundStart, pub.phase)

	// Mid-game joins bounce back to matchmaking
	err := pub.handleJoin(&Player{ID: "p3", DisplayName: "carol", conn: &recordConn{}})
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *RoomSuite) TestPublicGameFeedsLeaderboardSink() {
	ledger := rewards.NewLedger(memory.New(), nullExecutor{}, testutil.NopLogger())
	settings := model.DefaultPublicSettings("en")
	settings.MaxSlots = 2
	settings.TotalRounds = 1

	wordsSvc := words.New(s.random)
	s.Require().NoError(wordsSvc.LoadWords("en", []string{"apple", "banana", "cherry"}))

	pub := NewRoom(Config{
		ID:       "pub-2",
		Kind:     model.RoomPublic,
		Settings: settings,
	}, Deps{
		Words:   wordsSvc,
		Ledger:  ledger,
		Results: s.sink,
		Clock:   s.clock,
		Random:  s.random,
		Logger:  testutil.NopLogger(),
	})
	s.Require().NoError(pub.handleJoin(&Player{ID: "p1", DisplayName: "alice", conn: &recordConn{}}))
	s.Require().NoError(pub.handleJoin(&Player{ID: "p2", DisplayName: "bob", conn: &recordConn{}}))

	for i := 0; i < 2; i++ {
		s.clock.Advance(time.Second)
		pub.handleTick(s.clock.Now())
	}
	pub.handleEvent(playerEvent{from: "p1", env: model.NewEnvelope(model.EventChooseWord, model.ChooseWordPayload{Indices: []int{0}})})
	s.clock.Advance(time.Second)
	pub.handleEvent(playerEvent{from: "p2", env: model.NewEnvelope(model.EventGuess, model.GuessPayload{Text: "apple"})})

	s.Require().Len(s.sink.results, 1)
	s.Equal(model.RoomID("pub-2"), s.sink.results[0].RoomID)
	s.Len(s.sink.results[0].Players, 2)
}
