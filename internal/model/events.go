package model

import "encoding/json"

// EventType identifies the type of a websocket event
type EventType string

// Inbound events (client -> server)
const (
	EventJoinRoom      EventType = "join_room"
	EventLeaveRoom     EventType = "leave_room"
	EventStartGame     EventType = "start_game"
	EventUpdateSetting EventType = "update_setting"
	EventChooseWord    EventType = "choose_word"
	EventStrokeAppend  EventType = "stroke_append"
	EventStrokeUndo    EventType = "stroke_undo"
	EventStrokeClear   EventType = "stroke_clear"
	EventGuess         EventType = "guess"
	EventChat          EventType = "chat"
	EventRateDrawing   EventType = "rate_drawing"
	EventKickPlayer    EventType = "kick"
	EventBanPlayer     EventType = "ban"
	EventVoteKick      EventType = "votekick"
	EventMutePlayer    EventType = "mute"
	EventReportPlayer  EventType = "report"
	EventClaimReward   EventType = "claim_reward"
	EventRewardBuyback EventType = "use_reward_as_buyback"
)

// Outbound events (server -> client)
const (
	EventRoomSnapshot    EventType = "room_snapshot"
	EventPlayerJoined    EventType = "player_joined"
	EventPlayerLeft      EventType = "player_left"
	EventOwnerChanged    EventType = "owner_changed"
	EventSettingsChanged EventType = "settings_changed"
	EventStateTransition EventType = "state_transition"
	EventTimerTick       EventType = "timer_tick"
	EventHintRevealed    EventType = "hint_revealed"
	EventWordChoices     EventType = "word_choices"
	EventStrokeBatch     EventType = "stroke_batch"
	EventCanvasCleared   EventType = "canvas_cleared"
	EventGuessResult     EventType = "guess_result"
	EventCloseGuess      EventType = "close_guess"
	EventChatMessage     EventType = "chat_message"
	EventSpamWarning     EventType = "spam_warning"
	EventVoteProgress    EventType = "vote_progress"
	EventGameSummary     EventType = "game_summary"
	EventRewardClaimed   EventType = "reward_claimed"
	EventClaimError      EventType = "claim_error"
	EventActionAck       EventType = "ack"
	EventJoinRejected    EventType = "join_rejected"
)

// Envelope is the wire format for all websocket traffic
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals a payload into an envelope. Marshal failures
// are programming errors and yield an envelope with empty data.
func NewEnvelope(t EventType, payload any) Envelope {
	if payload == nil {
		return Envelope{Type: t}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{Type: t}
	}
	return Envelope{Type: t, Data: data}
}

// Inbound payloads

type JoinRoomPayload struct {
	Name          string `json:"name"`
	Avatar        Avatar `json:"avatar"`
	Target        string `json:"target"` // room id, invite code, or "" for quick play
	Language      string `json:"language"`
	PayoutAddress string `json:"payoutAddress,omitempty"`
}

type StartGamePayload struct {
	CustomWords []string `json:"customWords,omitempty"`
}

type UpdateSettingPayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type ChooseWordPayload struct {
	// One index normally, two in combination mode
	Indices []int `json:"indices"`
}

type GuessPayload struct {
	Text string `json:"text"`
}

type ChatPayload struct {
	Text string `json:"text"`
}

type RateDrawingPayload struct {
	Up bool `json:"up"`
}

type TargetPlayerPayload struct {
	Target PlayerID `json:"target"`
}

type ReportPayload struct {
	Target  PlayerID `json:"target"`
	Reasons []string `json:"reasons"`
}

type ClaimRewardPayload struct {
	Address string `json:"address,omitempty"`
}

// Outbound payloads

// RoomSnapshotPayload carries full room state for a newly joined client
type RoomSnapshotPayload struct {
	RoomID     RoomID          `json:"roomId"`
	Kind       RoomKind        `json:"kind"`
	InviteCode InviteCode      `json:"inviteCode,omitempty"`
	OwnerID    PlayerID        `json:"ownerId,omitempty"`
	YourID     PlayerID        `json:"yourId"`
	Settings   Settings        `json:"settings"`
	Phase      Phase           `json:"phase"`
	Round      int             `json:"round"`
	DrawerID   PlayerID        `json:"drawerId,omitempty"`
	WordMask   string          `json:"wordMask,omitempty"`
	Remaining  int             `json:"remainingSeconds"`
	Players    []Player        `json:"players"`
	Strokes    []StrokeCommand `json:"strokes,omitempty"`
	PrizePool  float64         `json:"prizePool"`
}

type PlayerJoinedPayload struct {
	Player Player `json:"player"`
}

type PlayerLeftPayload struct {
	PlayerID PlayerID `json:"playerId"`
	Reason   string   `json:"reason,omitempty"` // "", "kicked", "banned", "spam", "votekick"
}

type OwnerChangedPayload struct {
	OwnerID PlayerID `json:"ownerId"`
}

type SettingsChangedPayload struct {
	Settings Settings `json:"settings"`
}

// StateTransitionPayload announces a phase change along with the data
// the new phase references
type StateTransitionPayload struct {
	Phase     Phase            `json:"phase"`
	Round     int              `json:"round"`
	Remaining int              `json:"remainingSeconds"`
	DrawerID  PlayerID         `json:"drawerId,omitempty"`
	WordMask  string           `json:"wordMask,omitempty"`
	Word      string           `json:"word,omitempty"` // drawer during DRAWING; everyone at ROUND_END
	EndReason EndReason        `json:"endReason,omitempty"`
	Scores    []ScoreLine      `json:"scores,omitempty"`
	Deltas    map[PlayerID]int `json:"deltas,omitempty"`
	// Net up/down rating of the finished drawing, only at ROUND_END
	DrawerRating int `json:"drawerRating,omitempty"`
}

// ScoreLine is one row of a broadcast scoreboard
type ScoreLine struct {
	PlayerID PlayerID `json:"playerId"`
	Name     string   `json:"name"`
	Score    int      `json:"score"`
	Rank     int      `json:"rank,omitempty"`
}

type TimerTickPayload struct {
	Remaining int `json:"remainingSeconds"`
}

type HintRevealedPayload struct {
	Index int    `json:"index"`
	Char  string `json:"char"`
}

type WordChoicesPayload struct {
	Words []string `json:"words"`
	Stage int      `json:"stage,omitempty"` // combination mode: 1 or 2
}

type StrokeBatchPayload struct {
	Commands []StrokeCommand `json:"commands"`
}

type GuessResultPayload struct {
	PlayerID PlayerID `json:"playerId"`
	Position int      `json:"position"` // 1-indexed correct-guess order
	Word     string   `json:"correctWord,omitempty"` // set only on the copy sent to the guesser
}

type CloseGuessPayload struct {
	Text string `json:"text"`
}

type ChatMessagePayload struct {
	PlayerID PlayerID `json:"playerId,omitempty"` // empty for system messages
	Name     string   `json:"name,omitempty"`
	Text     string   `json:"text"`
}

type SpamWarningPayload struct {
	Count int `json:"count"`
}

type VoteProgressPayload struct {
	VoterID  PlayerID `json:"voterId,omitempty"`
	TargetID PlayerID `json:"targetId"`
	Count    int      `json:"count"`
	Required int      `json:"required"`
}

// GameSummaryPayload carries final rankings and computed rewards
type GameSummaryPayload struct {
	Scores    []ScoreLine          `json:"scores"`
	PrizePool float64              `json:"prizePool"`
	Rewards   map[PlayerID]float64 `json:"rewards,omitempty"`
	Countdown int                  `json:"countdownSeconds"`
}

type RewardClaimedPayload struct {
	Amount float64 `json:"amount"`
	TxRef  string  `json:"txRef"`
}

type ClaimErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type JoinRejectedPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AckPayload struct {
	Of EventType `json:"of"`
}
