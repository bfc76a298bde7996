// Package quiz assembles the quiz module: session service, message router,
// and outbound adapters.
package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/Blind-Test-Club/songquiz-bot/app/modules/bonus"
	"github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog"
	"github.com/Blind-Test-Club/songquiz-bot/internal/eventbus"
	"github.com/Blind-Test-Club/songquiz-bot/internal/observability"

	catalogdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/infrastructure/repositories"
	quizservice "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/application"
	quizadapters "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/adapters"
	quizdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/repositories"
	quizrouter "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/router"
)

// Module is the assembled quiz module.
type Module struct {
	Service    quizservice.Service
	QuizRouter *quizrouter.QuizRouter

	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// Deps carries everything the module needs from the application shell.
type Deps struct {
	Catalog     *catalog.Catalog
	CatalogRepo catalogdb.Repository
	QuizRepo    quizdb.Repository
	BonusStore  bonus.Store
	Bus         eventbus.EventBus
	// NATSConn is optional; without it voice presence falls back to an
	// empty roster and sessions track members from activity alone.
	NATSConn *nats.Conn
	Router   *message.Router
	Logger   *slog.Logger
	Metrics  *observability.QuizMetrics
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Tunables quizservice.Tunables
}

// NewModule wires the quiz module and registers its handlers on the router.
func NewModule(ctx context.Context, deps Deps) (*Module, error) {
	var presence quizservice.VoicePresence
	if deps.NATSConn != nil {
		presence = quizadapters.NewNATSPresence(deps.NATSConn)
	} else {
		presence = &quizadapters.StaticPresence{}
	}

	service := quizservice.NewSessionService(
		deps.Catalog,
		deps.CatalogRepo,
		deps.QuizRepo,
		deps.BonusStore,
		quizadapters.NewBusPlayback(deps.Bus),
		presence,
		deps.Bus,
		deps.Logger,
		deps.Metrics,
		deps.Tracer,
		deps.Tunables,
	)

	router := quizrouter.NewQuizRouter(deps.Logger, deps.Router, deps.Bus, deps.Tracer, deps.Registry)
	if err := router.Configure(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to configure quiz router: %w", err)
	}

	return &Module{
		Service:    service,
		QuizRouter: router,
		logger:     deps.Logger,
	}, nil
}

// Run blocks until the context is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.Info("starting quiz module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("quiz module stopped")
}

// Close ends every live session and stops the module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.Service.Shutdown(context.Background())
	return nil
}
