package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hongminglow/civic-engine/internal/config"
	"github.com/hongminglow/civic-engine/internal/economy"
	"github.com/hongminglow/civic-engine/internal/server"
	"github.com/hongminglow/civic-engine/internal/storage"
	"github.com/hongminglow/civic-engine/internal/storage/memory"
	"github.com/hongminglow/civic-engine/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg.LogLevel)
	ctx := context.Background()

	store, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	defer closeStore()

	engine := economy.New(store, log)
	if err := engine.EnsureJobCatalog(ctx, economy.DefaultJobs); err != nil {
		log.Fatal().Err(err).Msg("seed job catalog")
	}

	srv := server.New(cfg, engine, log)

	go func() {
		log.Info().Str("addr", cfg.HTTPAddress()).Msg("civic engine listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
}

func newStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (storage.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set; using in-memory store, state is not persisted")
		return memory.New(), func() {}, nil
	}
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(parsed).With().Timestamp().Logger()
}

func loadLocalEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}
	// No .env file; rely on the existing environment.
}
