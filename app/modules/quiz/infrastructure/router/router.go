// Package quizrouter wires the quiz handlers onto a watermill router with
// the shared middleware chain.
package quizrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
	"github.com/Blind-Test-Club/songquiz-bot/internal/eventbus"

	quizservice "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/application"
	quizhandlers "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/handlers"
)

const (
	testEnvironmentFlag  = "APP_ENV"
	testEnvironmentValue = "test"
)

// QuizRouter owns the handler registrations for the quiz module.
type QuizRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     eventbus.EventBus
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewQuizRouter creates the router wrapper. Router metrics are skipped in
// the test environment and when no registry is provided.
func NewQuizRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	tracer trace.Tracer,
	registry *prometheus.Registry,
) *QuizRouter {
	inTestEnv := os.Getenv(testEnvironmentFlag) == testEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(registry, "", "")
		metricsBuilder = &builder
	}
	return &QuizRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure adds the middleware chain and registers every quiz handler.
func (r *QuizRouter) Configure(ctx context.Context, service quizservice.Service) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	handlers := quizhandlers.NewQuizHandlers(service, r.logger, r.tracer)
	if err := r.RegisterHandlers(ctx, handlers); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	return nil
}

// RegisterHandlers binds every inbound topic to its handler.
func (r *QuizRouter) RegisterHandlers(ctx context.Context, handlers quizhandlers.Handlers) error {
	eventsToHandlers := map[string]func(msg *message.Message) error{
		sharedevents.SessionStartRequested: handlers.HandleSessionStartRequested,
		sharedevents.GuessReceived:         handlers.HandleGuessReceived,
		sharedevents.SkipRequested:         handlers.HandleSkipRequested,
		sharedevents.HintRequested:         handlers.HandleHintRequested,
		sharedevents.BookmarkRequested:     handlers.HandleBookmarkRequested,
		sharedevents.TeamJoinRequested:     handlers.HandleTeamJoinRequested,
		sharedevents.SessionEndRequested:   handlers.HandleSessionEndRequested,
		sharedevents.ConfigUpdated:         handlers.HandleConfigUpdated,
		sharedevents.VoiceMemberLeft:       handlers.HandleVoiceMemberLeft,
		sharedevents.PlaybackEnded:         handlers.HandlePlaybackEnded,
		sharedevents.PlaybackErrored:       handlers.HandlePlaybackErrored,
	}

	for topic, handlerFunc := range eventsToHandlers {
		handlerName := fmt.Sprintf("quiz.%s", topic)
		r.Router.AddNoPublisherHandler(
			handlerName,
			topic,
			r.subscriber,
			handlerFunc,
		)
	}
	return nil
}

// Close stops the underlying router.
func (r *QuizRouter) Close() error {
	return r.Router.Close()
}
