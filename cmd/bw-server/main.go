package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/MondherWebDev/bw-server/internal/config"
	"github.com/MondherWebDev/bw-server/internal/game"
	"github.com/MondherWebDev/bw-server/internal/gateway"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	clock := clockwork.NewRealClock()
	directory := game.NewDirectory(clock, cfg.DefaultMaxPlayers)
	registry := gateway.NewRegistry()

	gwCfg := gateway.DefaultConfig()
	gwCfg.SendBuffer = cfg.SendBuffer
	gwCfg.MaxMessageBytes = cfg.MaxMessageBytes
	gwCfg.WriteTimeout = time.Duration(cfg.WriteTimeoutSeconds) * time.Second
	gwCfg.HeartbeatInterval = time.Duration(cfg.HeartbeatSeconds) * time.Second
	gwCfg.RateCapacity = cfg.RateCapacity
	gwCfg.RateRefillPerSec = cfg.RateRefillPerSec

	svc := gateway.NewService(gwCfg, clock, directory, registry)
	sweeper := gateway.NewSweeper(registry, clock, gwCfg.HeartbeatInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      svc.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Int("defaultMaxPlayers", cfg.DefaultMaxPlayers).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// Shutdown does not touch hijacked connections; close them explicitly so
	// clients see a proper close frame.
	cancel()
	registry.CloseAll("server shutting down")
	time.Sleep(time.Second)

	log.Info().Msg("shutdown complete")
}
