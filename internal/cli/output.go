package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case Room:
		o.printRoom(v)
	case RoomList:
		o.printRoomList(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Session response type (matches API)
type Session struct {
	Token       string `json:"token"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Avatar      Avatar `json:"avatar"`
	ExpiresAt   string `json:"expires_at"`
}

// Avatar response type
type Avatar struct {
	Body  int `json:"body"`
	Face  int `json:"face"`
	Color int `json:"color"`
}

// Room response type
type Room struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	InviteCode  string `json:"invite_code,omitempty"`
	Language    string `json:"language"`
	Phase       string `json:"phase"`
	PlayerCount int    `json:"player_count"`
	MaxSlots    int    `json:"max_slots"`
}

// RoomList response type
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	DisplayName string `json:"display_name"`
	TotalScore  int    `json:"total_score"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Player: %s (%s)\n", s.DisplayName, s.PlayerID)
	fmt.Printf("Avatar: body=%d face=%d color=%d\n", s.Avatar.Body, s.Avatar.Face, s.Avatar.Color)
	fmt.Printf("Expires: %s\n", s.ExpiresAt)
	fmt.Printf("Token: %s\n", s.Token)
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.ID)
	fmt.Printf("Kind: %s\n", r.Kind)
	if r.InviteCode != "" {
		fmt.Printf("Invite Code: %s\n", r.InviteCode)
	}
	fmt.Printf("Language: %s\n", r.Language)
	fmt.Printf("Phase: %s\n", r.Phase)
	fmt.Printf("Players: %d/%d\n", r.PlayerCount, r.MaxSlots)
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No public rooms")
		return
	}
	fmt.Printf("Rooms (%d):\n", len(l.Rooms))
	for _, r := range l.Rooms {
		fmt.Printf("  - %s [%s] %s %d/%d\n", r.ID, r.Language, r.Phase, r.PlayerCount, r.MaxSlots)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Entries) == 0 {
		fmt.Println("Leaderboard is empty")
		return
	}
	for i, e := range l.Entries {
		fmt.Printf("%3d. %s - %d points\n", i+1, e.DisplayName, e.TotalScore)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
