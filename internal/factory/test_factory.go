package factory

import (
	"context"
	"time"

	"github.com/drawblin/drawblin/internal/dependencies/mocks"
	"github.com/drawblin/drawblin/internal/model"
	"github.com/drawblin/drawblin/internal/services/session"
	"github.com/drawblin/drawblin/internal/storage/memory"
	"github.com/drawblin/drawblin/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock    *mocks.MockClock
	MockRandom   *mocks.MockRandom
	TestExecutor *TestExecutor
}

// TestExecutor records payout calls and returns a fixed tx ref
type TestExecutor struct {
	Calls []TestPayout
	Err   error
}

// TestPayout is one recorded executor call
type TestPayout struct {
	Address string
	Amount  float64
	RoomID  model.RoomID
}

// Execute records the call
func (e *TestExecutor) Execute(ctx context.Context, address string, amount float64, roomID model.RoomID) (string, error) {
	e.Calls = append(e.Calls, TestPayout{Address: address, Amount: amount, RoomID: roomID})
	if e.Err != nil {
		return "", e.Err
	}
	return "tx-test", nil
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	executor := &TestExecutor{}

	app, err := newWithDependencies(
		store, mockClock, mockRandom, session.DefaultConfig(), executor, testutil.NopLogger(),
	)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:          app,
		MockClock:    mockClock,
		MockRandom:   mockRandom,
		TestExecutor: executor,
	}
}

// LoadTestWords installs a small deterministic word list
func (t *TestApp) LoadTestWords(language string) error {
	return t.Words.LoadWords(language, []string{
		"apple", "banana", "cherry", "dragon", "engine",
		"falcon", "guitar", "hammer", "island", "jacket",
	})
}
