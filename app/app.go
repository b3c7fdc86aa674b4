// Package app wires the modules, transports and background workers of the
// prediction pool server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/betting-pool/app/api"
	"github.com/Black-And-White-Club/betting-pool/app/eventbus"
	"github.com/Black-And-White-Club/betting-pool/app/modules/competition"
	"github.com/Black-And-White-Club/betting-pool/app/modules/leaderboard"
	"github.com/Black-And-White-Club/betting-pool/app/modules/prediction"
	"github.com/Black-And-White-Club/betting-pool/app/modules/standings"
	"github.com/Black-And-White-Club/betting-pool/config"
	"github.com/Black-And-White-Club/betting-pool/db/bundb"
	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/jwt"
	"github.com/Black-And-White-Club/betting-pool/pkg/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// App holds every long-lived component of the server.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      *eventbus.EventBus
	Router        *message.Router

	CompetitionModule *competition.Module
	StandingsModule   *standings.Module
	PredictionModule  *prediction.Module
	LeaderboardModule *leaderboard.Module

	httpServer    *http.Server
	metricsServer *http.Server
}

// Options tunes startup.
type Options struct {
	// Migrate applies pending schema migrations before modules start.
	Migrate bool
}

// New connects to Postgres and NATS and builds every module.
func New(ctx context.Context, cfg *config.Config, obs *observability.Observability, opts Options) (*App, error) {
	logger := obs.Logger

	db, err := bundb.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}

	if opts.Migrate {
		if err := bundb.Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
		n, err := bundb.MigrateRiver(ctx, cfg.Postgres.DSN)
		if err != nil {
			db.Close()
			return nil, err
		}
		logger.InfoContext(ctx, "River migrations applied", attr.Int("versions", n))
	}

	loc, err := cfg.Import.Location()
	if err != nil {
		db.Close()
		return nil, err
	}

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	a := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		EventBus:      bus,
		Router:        router,
	}

	a.CompetitionModule = competition.NewCompetitionModule(ctx, db, obs, bus, loc)
	a.StandingsModule = standings.NewStandingsModule(ctx, db, obs, a.CompetitionModule.Repository)

	a.PredictionModule, err = prediction.NewPredictionModule(ctx, cfg, db, obs, prediction.Deps{
		Fixtures:  a.CompetitionModule.Repository,
		Snapshots: a.StandingsModule.Snapshots,
	}, router, bus, bus)
	if err != nil {
		bus.Close()
		db.Close()
		return nil, err
	}

	a.LeaderboardModule = leaderboard.NewLeaderboardModule(ctx, db, obs,
		a.CompetitionModule.Repository,
		a.PredictionModule.Repository,
		a.StandingsModule.Snapshots,
	)
	a.PredictionModule.Service.SetDeadlineResolver(a.LeaderboardModule.Service)
	a.CompetitionModule.Service.WithRecomputeFallback(a.PredictionModule.Queue)

	handlers := api.NewHandlers(
		a.CompetitionModule.Service,
		a.PredictionModule.Service,
		a.StandingsModule.Service,
		a.LeaderboardModule.Service,
		logger,
	)
	a.httpServer = &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: api.NewRouter(handlers, api.RouterOptions{
			Tokens:         jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL),
			Tracer:         obs.Tracer,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if cfg.Observability.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", obs.MetricsHandler())
		a.metricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return a, nil
}

// Run serves HTTP, consumes events and runs the recompute queue until ctx is
// cancelled or one of them fails. It shuts everything down before returning.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Logger
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Router.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("watermill router: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// handlers are only subscribed once the router is running
		select {
		case <-a.Router.Running():
		case <-gCtx.Done():
			return nil
		}
		return a.PredictionModule.Run(gCtx, nil)
	})

	g.Go(func() error {
		logger.InfoContext(gCtx, "Starting HTTP server", attr.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.metricsServer != nil {
		g.Go(func() error {
			logger.InfoContext(gCtx, "Starting metrics server", attr.String("addr", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down...")
		return a.shutdownServers()
	})

	err := g.Wait()
	if closeErr := a.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (a *App) shutdownServers() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close releases the queue, event bus and database in reverse start order.
func (a *App) Close() error {
	logger := a.Observability.Logger
	var errs []error

	if a.PredictionModule != nil {
		if err := a.PredictionModule.Close(shutdownTimeout); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.Router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close router: %w", err))
	}
	if err := a.EventBus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close event bus: %w", err))
	}
	if err := a.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		logger.Error("Shutdown finished with errors", attr.Error(err))
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}
