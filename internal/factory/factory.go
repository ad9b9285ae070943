package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/drawblin/drawblin/internal/dependencies/clock"
	"github.com/drawblin/drawblin/internal/dependencies/random"
	"github.com/drawblin/drawblin/internal/registry"
	"github.com/drawblin/drawblin/internal/services/rewards"
	"github.com/drawblin/drawblin/internal/services/session"
	"github.com/drawblin/drawblin/internal/services/words"
	"github.com/drawblin/drawblin/internal/storage"
	"github.com/drawblin/drawblin/internal/storage/memory"
	redisstorage "github.com/drawblin/drawblin/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Words    *words.Service
	Sessions *session.Service
	Ledger   *rewards.Ledger
	Registry *registry.Registry
}

// Config holds configuration for the application factory
type Config struct {
	// WordListPaths optionally overrides or extends the built-in word
	// lists, keyed by language code, each value a path to a file with
	// one word per line
	WordListPaths map[string]string
	// SessionConfig holds configuration for the session service (optional)
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// PayoutExecutor handles reward payouts (optional)
	// If nil, payouts are logged but not executed
	PayoutExecutor rewards.PayoutExecutor
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	sessionCfg := cfg.SessionConfig
	if sessionCfg.SessionDuration == 0 {
		sessionCfg = session.DefaultConfig()
	}

	executor := cfg.PayoutExecutor
	if executor == nil {
		executor = rewards.LoggingExecutor{Logger: logger}
	}

	app, err := newWithDependencies(store, clk, rnd, sessionCfg, executor, logger)
	if err != nil {
		return nil, err
	}

	for lang, path := range cfg.WordListPaths {
		if err := app.Words.LoadFromFile(lang, path); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	sessionCfg session.Config,
	executor rewards.PayoutExecutor,
	logger *slog.Logger,
) (*App, error) {
	wordsSvc := words.New(rnd)
	sessions := session.New(clk, sessionCfg)
	ledger := rewards.NewLedger(store, executor, logger)
	reg := registry.New(wordsSvc, ledger, store, clk, rnd, logger)

	return &App{
		Storage:  store,
		Clock:    clk,
		Random:   rnd,
		Words:    wordsSvc,
		Sessions: sessions,
		Ledger:   ledger,
		Registry: reg,
	}, nil
}
