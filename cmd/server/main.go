package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/drawblin/drawblin/internal/api"
	"github.com/drawblin/drawblin/internal/factory"
	redisstorage "github.com/drawblin/drawblin/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:        logger,
		StorageType:   os.Getenv("STORAGE_TYPE"),
		WordListPaths: parseWordListPaths(os.Getenv("WORD_LISTS")),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start the room tick loop
	app.Registry.StartTicking()

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Sessions: app.Sessions,
		Registry: app.Registry,
		Store:    app.Storage,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := app.Registry.Shutdown(shutdownCtx); err != nil {
			logger.Error("registry shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// parseWordListPaths parses WORD_LISTS, a comma-separated list of
// lang=path pairs, e.g. "en=data/en.txt,de=data/de.txt"
func parseWordListPaths(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	paths := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		lang, path, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && lang != "" && path != "" {
			paths[lang] = path
		}
	}
	return paths
}
