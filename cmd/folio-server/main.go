package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sambrennan/folio/internal/app"
	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/server"
)

func main() {
	// Load .env if present so FOLIO_* overrides apply before config load
	godotenv.Load()

	configPath := os.Getenv("FOLIO_CONFIG")

	a, err := app.NewApp(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	common.PrintBanner(a.Config, a.Logger)

	if err := a.StartScheduler(); err != nil {
		a.Logger.Error().Err(err).Msg("Scheduler failed to start")
		a.Close()
		os.Exit(1)
	}

	srv := server.NewServer(a)

	shutdownChan := make(chan struct{}, 1)
	srv.SetShutdownChannel(shutdownChan)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			a.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	a.Logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)).
		Msg("Server ready")

	// Wait for interrupt signal or HTTP-triggered shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		a.Logger.Info().Msg("Shutdown signal received")
	case <-shutdownChan:
		a.Logger.Info().Msg("Shutdown requested via API")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	a.Close()
	common.PrintShutdownBanner(a.Logger)
}
