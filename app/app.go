// Package app boots the process: configuration, observability, storage,
// the event bus, and the quiz module, then runs until told to stop.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel/trace"

	"github.com/Blind-Test-Club/songquiz-bot/app/modules/bonus"
	"github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog"
	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz"
	"github.com/Blind-Test-Club/songquiz-bot/config"
	"github.com/Blind-Test-Club/songquiz-bot/internal/eventbus"
	"github.com/Blind-Test-Club/songquiz-bot/internal/observability"

	catalogdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/infrastructure/repositories"
	quizdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/repositories"
	quizservice "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/application"
)

// App owns every process-level resource.
type App struct {
	Config     *config.Config
	QuizModule *quiz.Module

	logger          *slog.Logger
	db              *bun.DB
	bus             eventbus.EventBus
	natsConn        *nats.Conn
	redisClient     *redis.Client
	router          *message.Router
	registry        *prometheus.Registry
	tracerProvider  trace.TracerProvider
	tracingShutdown func(context.Context) error
}

// Initialize builds the application from configuration.
func (a *App) Initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a.Config = cfg
	a.logger = logger
	a.registry = prometheus.NewRegistry()

	tracerProvider, tracingShutdown, err := observability.InitTracing(ctx,
		cfg.Observability.OTLPEndpoint,
		cfg.Observability.Environment,
		cfg.Observability.TraceSampleRate,
		cfg.Observability.OTLPInsecure,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tracerProvider
	a.tracingShutdown = tracingShutdown
	tracer := tracerProvider.Tracer("songquiz")

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	a.db = bun.NewDB(sqldb, pgdialect.New())
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	catalogRepo := &catalogdb.CatalogDBImpl{DB: a.db}
	cat, err := catalog.Load(ctx, catalogRepo)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.InfoContext(ctx, "catalog loaded", slog.Int("songs", cat.Size()))

	quizRepo := &quizdb.QuizDBImpl{DB: a.db}

	var bonusStore bonus.Store = bonus.NoopStore{}
	if cfg.Redis.Addr != "" {
		a.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		bonusStore = bonus.NewRedisStore(a.redisClient, logger)
	}

	wmLogger := watermill.NewSlogLogger(logger)
	if cfg.NATS.URL != "" {
		jsBus, err := eventbus.NewJetStream(cfg.NATS.URL, cfg.NATS.NKeySeed, wmLogger)
		if err != nil {
			return fmt.Errorf("failed to connect event bus: %w", err)
		}
		a.bus = jsBus

		nc, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			logger.WarnContext(ctx, "presence connection failed, sessions start with empty rosters",
				slog.Any("error", err))
		} else {
			a.natsConn = nc
		}
	} else {
		a.bus = eventbus.NewInMemory(wmLogger)
	}

	a.router, err = message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	metrics := observability.NewQuizMetrics(a.registry)
	module, err := quiz.NewModule(ctx, quiz.Deps{
		Catalog:     cat,
		CatalogRepo: catalogRepo,
		QuizRepo:    quizRepo,
		BonusStore:  bonusStore,
		Bus:         a.bus,
		NATSConn:    a.natsConn,
		Router:      a.router,
		Logger:      logger,
		Metrics:     metrics,
		Tracer:      tracer,
		Registry:    a.registry,
		Tunables: quizservice.Tunables{
			RoundStartDelay:  time.Duration(cfg.Quiz.RoundStartDelayMS) * time.Millisecond,
			MultiGuessWindow: time.Duration(cfg.Quiz.MultiGuessWindowMS) * time.Millisecond,
			PowerHours:       cfg.Quiz.PowerHours,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to build quiz module: %w", err)
	}
	a.QuizModule = module
	return nil
}

// Run starts the router, the metrics endpoint, and the quiz module, then
// blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := observability.ServeMetrics(ctx, a.Config.Observability.MetricsAddress, a.registry, a.logger); err != nil {
			a.logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()

	wg.Add(1)
	go a.QuizModule.Run(ctx, &wg)

	if err := a.router.Run(ctx); err != nil {
		return fmt.Errorf("router stopped: %w", err)
	}
	wg.Wait()
	return nil
}

// Close releases every resource in reverse initialization order.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if a.QuizModule != nil {
		if err := a.QuizModule.Close(); err != nil {
			a.logger.Error("failed to close quiz module", slog.Any("error", err))
		}
	}
	if a.router != nil {
		if err := a.router.Close(); err != nil {
			a.logger.Error("failed to close router", slog.Any("error", err))
		}
	}
	if closer, ok := a.bus.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			a.logger.Error("failed to close event bus", slog.Any("error", err))
		}
	}
	if a.natsConn != nil {
		a.natsConn.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("failed to close redis client", slog.Any("error", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", slog.Any("error", err))
		}
	}
	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(ctx); err != nil {
			a.logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}
}
