package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/guildpulse/dashboard/internal/botapi"
	"github.com/guildpulse/dashboard/internal/config"
	"github.com/guildpulse/dashboard/internal/platform/logging"
	"github.com/guildpulse/dashboard/internal/platform/version"
	"github.com/guildpulse/dashboard/internal/server"
	"github.com/guildpulse/dashboard/internal/session"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupSessionStore picks the session backend: Redis when REDIS_URL is set,
// the in-process store otherwise. The returned client is nil for the
// in-process store.
func setupSessionStore(cfg *config.Config, clock clockwork.Clock) (session.Store, *goredis.Client) {
	if cfg.RedisURL == "" {
		return session.NewMemoryStore(clock), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := session.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return session.NewRedisStore(client), client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Version)

	store, redisClient := setupSessionStore(cfg, clock)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	botClient := botapi.New(cfg.BotAPIURL, cfg.BotAPIKey)

	srv, err := server.NewServer(cfg, botClient, store, redisClient)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
