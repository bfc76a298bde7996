package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// QuizMetrics holds every counter and gauge the quiz core reports.
type QuizMetrics struct {
	SessionsActive    prometheus.Gauge
	SessionsEnded     *prometheus.CounterVec
	RoundsPlayed      prometheus.Counter
	GuessesEvaluated  prometheus.Counter
	CorrectGuesses    prometheus.Counter
	ExpAwarded        prometheus.Counter
	PlaybackRetries   prometheus.Counter
	SelectionFailures prometheus.Counter
}

// NewQuizMetrics registers the quiz collectors on the given registry.
func NewQuizMetrics(reg prometheus.Registerer) *QuizMetrics {
	m := &QuizMetrics{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "songquiz_sessions_active",
			Help: "Number of live quiz sessions.",
		}),
		SessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "songquiz_sessions_ended_total",
			Help: "Sessions ended, labelled by reason.",
		}, []string{"reason"}),
		RoundsPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "songquiz_rounds_played_total",
			Help: "Rounds completed across all sessions.",
		}),
		GuessesEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "songquiz_guesses_evaluated_total",
			Help: "Guesses run through the evaluator.",
		}),
		CorrectGuesses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "songquiz_guesses_correct_total",
			Help: "Guesses that matched an accepted answer.",
		}),
		ExpAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "songquiz_exp_awarded_total",
			Help: "Total EXP granted to players.",
		}),
		PlaybackRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "songquiz_playback_retries_total",
			Help: "Rounds retried after a playback error.",
		}),
		SelectionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "songquiz_selection_failures_total",
			Help: "Sessions ended because no song matched the filters.",
		}),
	}
	reg.MustRegister(
		m.SessionsActive,
		m.SessionsEnded,
		m.RoundsPlayed,
		m.GuessesEvaluated,
		m.CorrectGuesses,
		m.ExpAwarded,
		m.PlaybackRetries,
		m.SelectionFailures,
	)
	return m
}

// ServeMetrics exposes /metrics and /healthz until the context is cancelled.
func ServeMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) error {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("metrics server listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
