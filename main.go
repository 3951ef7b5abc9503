package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/card-scorekeeper/app"
	"github.com/Black-And-White-Club/card-scorekeeper/config"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	obs, err := observability.Init(ctx, config.ToObsConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}
	logger := obs.Logger

	application, err := app.NewApp(ctx, cfg, obs)
	if err != nil {
		logger.Error("Failed to initialize app", attr.Error(err))
		os.Exit(1)
	}

	runErr := application.Start(ctx)

	if err := application.Close(); err != nil {
		logger.Error("Error during shutdown", attr.Error(err))
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to flush traces", attr.Error(err))
	}

	if runErr != nil {
		logger.Error("Application stopped with error", attr.Error(runErr))
		os.Exit(1)
	}
	logger.Info("Application shut down gracefully")
}
