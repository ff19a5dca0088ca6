package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crawlingsloth/lonumirus/internal/auth"
	"github.com/crawlingsloth/lonumirus/internal/batch"
	"github.com/crawlingsloth/lonumirus/internal/boat"
	"github.com/crawlingsloth/lonumirus/internal/config"
	"github.com/crawlingsloth/lonumirus/internal/db"
	"github.com/crawlingsloth/lonumirus/internal/handler"
	"github.com/crawlingsloth/lonumirus/internal/order"
	"github.com/crawlingsloth/lonumirus/internal/seed"
	"github.com/crawlingsloth/lonumirus/internal/user"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "lonumirus").Logger()

	log.Info().Msg("Lonumirus starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	pg, err := db.New(context.Background(), cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	if err := db.ApplyMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	userRepo := user.NewRepository(pg.Pool)
	boatRepo := boat.NewRepository(pg.Pool)
	orderRepo := order.NewRepository(pg.Pool)
	batchRepo := batch.NewRepository(pg.Pool)

	if err := seed.New(userRepo, boatRepo, orderRepo, batchRepo).Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed database")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	router := handler.NewRouter(handler.Services{
		Auth:    auth.NewService(userRepo, tokens),
		Users:   user.NewService(userRepo),
		Boats:   boat.NewService(boatRepo),
		Orders:  order.NewService(orderRepo, order.NewShortCodeAllocator(pg.Pool)),
		Batches: batch.NewService(batchRepo, orderRepo, boatRepo),
		Tokens:  tokens,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
