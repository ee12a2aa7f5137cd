package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"jobscout/internal/config"
	"jobscout/internal/docgen"
	"jobscout/internal/events"
	"jobscout/internal/llm"
	"jobscout/internal/llm/gateway"
	"jobscout/internal/pipeline"
	"jobscout/internal/scheduler"
	"jobscout/internal/search"
	"jobscout/internal/server"
	"jobscout/internal/store"
	"jobscout/internal/store/schema"
	"jobscout/internal/telemetry"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return zap.NewProduction()
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := store.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

func newLLMClient(cfg *config.Config, logger *zap.Logger) llm.Client {
	return gateway.New(cfg.CompletionAPIKey, cfg.CompletionBaseURL, cfg.CompletionModel, cfg.CompletionTimeout, logger)
}

func newPipeline(searchClient search.Client, llmClient llm.Client, profiles *store.ProfileStore, listings *store.ListingStore, logger *zap.Logger, cfg *config.Config) *pipeline.Pipeline {
	return pipeline.New(searchClient, llmClient, profiles, listings, logger, cfg)
}

func newGenerator(llmClient llm.Client, profiles *store.ProfileStore, listings *store.ListingStore, logger *zap.Logger) *docgen.Generator {
	return docgen.New(llmClient, profiles, listings, logger)
}

func newNATS(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	conn, err := events.NewConn(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func newPublisher(conn *nats.Conn, logger *zap.Logger) events.Publisher {
	return events.NewPublisher(conn, logger)
}

func newHandler(logger *zap.Logger, conn *nats.Conn, p *pipeline.Pipeline, runs *store.RunStore) *events.Handler {
	return events.NewHandler(logger, conn, p, runs)
}

func newScheduler(profiles *store.ProfileStore, runs *store.RunStore, publisher events.Publisher, logger *zap.Logger, cfg *config.Config) *scheduler.ScanScheduler {
	return scheduler.NewScanScheduler(profiles, runs, publisher, logger, cfg)
}

func newServer(logger *zap.Logger, cfg *config.Config, profiles *store.ProfileStore, listings *store.ListingStore, runs *store.RunStore, publisher events.Publisher, generator *docgen.Generator) *server.Server {
	return server.New(logger, cfg, profiles, listings, runs, publisher, generator)
}

func main() {
	app := fx.New(
		fx.Provide(
			config.Load,
			newLogger,
			newDatabase,
			newNATS,
			newPublisher,
			store.NewProfileStore,
			store.NewListingStore,
			store.NewRunStore,
			search.NewClient,
			newLLMClient,
			newPipeline,
			newGenerator,
			newHandler,
			newScheduler,
			newServer,
		),
		fx.Invoke(
			initTelemetry,
			applyMigrations,
			registerSubscriptions,
			startScheduler,
			startServer,
		),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}

func initTelemetry(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	if cfg.TraceCollectorURL == "" {
		return nil
	}
	shutdown, err := telemetry.InitTracer(context.Background(), "jobscout", cfg.TraceCollectorURL)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			shutdown()
			return nil
		},
	})
	logger.Info("tracing enabled", zap.String("collector", cfg.TraceCollectorURL))
	return nil
}

func applyMigrations(pool *pgxpool.Pool, logger *zap.Logger) error {
	return schema.NewMigrator(pool, logger).Apply(context.Background())
}

func registerSubscriptions(handler *events.Handler, lc fx.Lifecycle) error {
	return handler.RegisterSubscriptions(lc)
}

func startScheduler(lc fx.Lifecycle, sched *scheduler.ScanScheduler, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := sched.Start(ctx); err != nil && err != context.Canceled {
					logger.Error("scheduler stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			sched.Stop()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, srv *server.Server, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Listen(":" + cfg.Port); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			logger.Info("http server listening", zap.String("port", cfg.Port))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
