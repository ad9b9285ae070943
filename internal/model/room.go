package model

// RoomID uniquely identifies a room
type RoomID string

// InviteCode is the 8-character join code for private rooms
type InviteCode string

// InviteCodeLength is the length of generated invite codes
const InviteCodeLength = 8

// RoomKind distinguishes matchmade lobbies from invite-only rooms
type RoomKind string

const (
	RoomPublic  RoomKind = "public"
	RoomPrivate RoomKind = "private"
)

// Phase represents the current state of a room's game loop
type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseRoundStart Phase = "round_start"
	PhaseWordChoice Phase = "word_choice"
	PhaseDrawing    Phase = "drawing"
	PhaseRoundEnd   Phase = "round_end"
	PhaseGameEnd    Phase = "game_end"
)

// WordMode controls how the secret word is presented and chosen
type WordMode string

const (
	// WordModeNormal shows underscores with letter hints
	WordModeNormal WordMode = "normal"
	// WordModeHidden shows underscores and hints reveal positions only
	WordModeHidden WordMode = "hidden"
	// WordModeCombination has the drawer pick two words joined together
	WordModeCombination WordMode = "combination"
)

// Settings holds the configurable parameters of a room.
// Public rooms always run with DefaultPublicSettings; private room
// owners may change any field while in the lobby.
type Settings struct {
	Language        string   `json:"language"`
	MaxSlots        int      `json:"maxSlots"`
	DrawTimeSeconds int      `json:"drawTimeSeconds"`
	TotalRounds     int      `json:"totalRounds"`
	WordsPerChoice  int      `json:"wordsPerChoice"`
	HintCount       int      `json:"hintCount"`
	WordMode        WordMode `json:"wordMode"`
	CustomWordsOnly bool     `json:"customWordsOnly"`
}

// DefaultPublicSettings returns the fixed settings used by matchmade rooms
func DefaultPublicSettings(language string) Settings {
	return Settings{
		Language:        language,
		MaxSlots:        8,
		DrawTimeSeconds: 80,
		TotalRounds:     8,
		WordsPerChoice:  3,
		HintCount:       2,
		WordMode:        WordModeNormal,
	}
}

// DefaultPrivateSettings returns the initial settings for a new private room
func DefaultPrivateSettings(language string) Settings {
	s := DefaultPublicSettings(language)
	s.MaxSlots = 12
	return s
}

// Validate checks that settings are within accepted ranges
func (s Settings) Validate() error {
	if s.MaxSlots < 2 || s.MaxSlots > 24 {
		return ErrInvalidSettings
	}
	if s.DrawTimeSeconds < 20 || s.DrawTimeSeconds > 240 {
		return ErrInvalidSettings
	}
	if s.TotalRounds < 1 || s.TotalRounds > 20 {
		return ErrInvalidSettings
	}
	if s.WordsPerChoice < 1 || s.WordsPerChoice > 5 {
		return ErrInvalidSettings
	}
	if s.HintCount < 0 || s.HintCount > 6 {
		return ErrInvalidSettings
	}
	switch s.WordMode {
	case WordModeNormal, WordModeHidden, WordModeCombination:
	default:
		return ErrInvalidSettings
	}
	return nil
}

// EndReason explains why a drawing round ended
type EndReason string

const (
	EndAllGuessed EndReason = "all_guessed"
	EndTimeUp     EndReason = "time_up"
	EndDrawerLeft EndReason = "drawer_left"
)

// RoomInfo is the public listing entry for a room
type RoomInfo struct {
	ID          RoomID   `json:"id"`
	Kind        RoomKind `json:"kind"`
	Language    string   `json:"language"`
	Phase       Phase    `json:"phase"`
	PlayerCount int      `json:"playerCount"`
	MaxSlots    int      `json:"maxSlots"`
}

// GameResult is emitted for completed public games and consumed by
// the leaderboard sink
type GameResult struct {
	RoomID  RoomID
	Players []PlayerResult
}

// PlayerResult is one player's final line in a completed game
type PlayerResult struct {
	PlayerID    PlayerID
	DisplayName string
	Score       int
	Rank        int
}

// LeaderboardEntry is one row of the aggregated public leaderboard
type LeaderboardEntry struct {
	DisplayName string `json:"displayName"`
	TotalScore  int    `json:"totalScore"`
}

// RewardEntry is a computed payout owed to a player from a frozen prize pool
type RewardEntry struct {
	PlayerID PlayerID
	Rank     int
	Amount   float64
}

// GameID identifies one played game. Private rooms replay from the
// lobby, so claim state is keyed per game instance, not per room.
type GameID string

// ClaimRecord tracks the claim state of a player's reward
type ClaimRecord struct {
	RoomID   RoomID
	GameID   GameID
	PlayerID PlayerID
	Amount   float64
	Claimed  bool
	Buyback  bool // consumed as a next-game buy-in instead of paid out
	TxRef    string
}
