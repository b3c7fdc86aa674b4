// Command server runs the prediction pool API, event consumers and the
// recompute queue.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/betting-pool/app"
	"github.com/Black-And-White-Club/betting-pool/config"
	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/observability"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	migrate := flag.Bool("migrate", true, "Apply pending migrations on startup")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		bootstrapFatal("Failed to load configuration", err)
	}

	obs, err := observability.New(observability.Config{
		Environment: cfg.Observability.Environment,
		LogLevel:    cfg.Observability.LogLevel,
	})
	if err != nil {
		bootstrapFatal("Failed to initialize observability", err)
	}
	logger := obs.Logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg, obs, app.Options{Migrate: *migrate})
	if err != nil {
		logger.Error("Failed to initialize application", attr.Error(err))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Application stopped with error", attr.Error(err))
		os.Exit(1)
	}
}

// bootstrapFatal reports failures that happen before the configured logger
// exists.
func bootstrapFatal(msg string, err error) {
	slog.Error(msg, attr.Error(err))
	os.Exit(1)
}
