// Package quizhandlers adapts inbound watermill messages to the session
// service. Handlers only decode and delegate; every game decision lives in
// the application layer.
package quizhandlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
	"github.com/Blind-Test-Club/songquiz-bot/internal/eventutil"

	quizservice "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/application"
)

// Handlers is the set registered on the quiz router.
type Handlers interface {
	HandleSessionStartRequested(msg *message.Message) error
	HandleGuessReceived(msg *message.Message) error
	HandleSkipRequested(msg *message.Message) error
	HandleHintRequested(msg *message.Message) error
	HandleBookmarkRequested(msg *message.Message) error
	HandleTeamJoinRequested(msg *message.Message) error
	HandleSessionEndRequested(msg *message.Message) error
	HandleConfigUpdated(msg *message.Message) error
	HandleVoiceMemberLeft(msg *message.Message) error
	HandlePlaybackEnded(msg *message.Message) error
	HandlePlaybackErrored(msg *message.Message) error
}

// QuizHandlers decodes payloads and delegates to the session service.
type QuizHandlers struct {
	service quizservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

var _ Handlers = (*QuizHandlers)(nil)

// NewQuizHandlers creates the handler set.
func NewQuizHandlers(service quizservice.Service, logger *slog.Logger, tracer trace.Tracer) *QuizHandlers {
	return &QuizHandlers{service: service, logger: logger, tracer: tracer}
}

// handle wraps one handler with tracing and timing. Decode failures are
// logged and swallowed: a malformed message never requeues.
func handle[T any](h *QuizHandlers, name string, msg *message.Message, fn func(ctx context.Context, payload T) error) error {
	ctx, span := h.tracer.Start(msg.Context(), name,
		trace.WithAttributes(attribute.String("message_id", msg.UUID)))
	defer span.End()

	payload, err := eventutil.UnmarshalPayload[T](msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to decode payload",
			slog.String("handler", name),
			slog.Any("error", err),
		)
		return nil
	}

	start := time.Now()
	if err := fn(ctx, payload); err != nil {
		h.logger.ErrorContext(ctx, "handler failed",
			slog.String("handler", name),
			slog.Duration("took", time.Since(start)),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

func (h *QuizHandlers) HandleSessionStartRequested(msg *message.Message) error {
	return handle(h, "quiz.session_start", msg, func(ctx context.Context, p sharedevents.SessionStartRequestedPayload) error {
		err := h.service.CreateSession(ctx, quizservice.CreateSessionRequest{
			GuildID:        p.GuildID,
			OwnerID:        p.UserID,
			TextChannelID:  p.TextChannelID,
			VoiceChannelID: p.VoiceChannelID,
			Kind:           p.Kind,
		})
		switch err {
		case nil:
			return nil
		case quizservice.ErrSessionExists, quizservice.ErrNoMatchingSongs:
			// User-facing conditions, not processing failures; do not requeue.
			h.logger.InfoContext(ctx, "session not created",
				slog.String("guild_id", p.GuildID.String()),
				slog.Any("reason", err),
			)
			return nil
		default:
			return err
		}
	})
}

func (h *QuizHandlers) HandleGuessReceived(msg *message.Message) error {
	return handle(h, "quiz.guess", msg, func(ctx context.Context, p sharedevents.GuessReceivedPayload) error {
		return h.service.HandleGuess(ctx, p)
	})
}

func (h *QuizHandlers) HandleSkipRequested(msg *message.Message) error {
	return handle(h, "quiz.skip", msg, func(ctx context.Context, p sharedevents.SkipRequestedPayload) error {
		return h.service.HandleSkip(ctx, p)
	})
}

func (h *QuizHandlers) HandleHintRequested(msg *message.Message) error {
	return handle(h, "quiz.hint", msg, func(ctx context.Context, p sharedevents.HintRequestedPayload) error {
		return h.service.HandleHint(ctx, p)
	})
}

func (h *QuizHandlers) HandleBookmarkRequested(msg *message.Message) error {
	return handle(h, "quiz.bookmark", msg, func(ctx context.Context, p sharedevents.BookmarkRequestedPayload) error {
		return h.service.HandleBookmark(ctx, p)
	})
}

func (h *QuizHandlers) HandleTeamJoinRequested(msg *message.Message) error {
	return handle(h, "quiz.team_join", msg, func(ctx context.Context, p sharedevents.TeamJoinRequestedPayload) error {
		return h.service.HandleTeamJoin(ctx, p)
	})
}

func (h *QuizHandlers) HandleSessionEndRequested(msg *message.Message) error {
	return handle(h, "quiz.session_end", msg, func(ctx context.Context, p sharedevents.SessionEndRequestedPayload) error {
		return h.service.HandleSessionEndRequested(ctx, p)
	})
}

func (h *QuizHandlers) HandleConfigUpdated(msg *message.Message) error {
	return handle(h, "quiz.config_updated", msg, func(ctx context.Context, p sharedevents.ConfigUpdatedPayload) error {
		return h.service.HandleConfigUpdated(ctx, p)
	})
}

func (h *QuizHandlers) HandleVoiceMemberLeft(msg *message.Message) error {
	return handle(h, "quiz.voice_member_left", msg, func(ctx context.Context, p sharedevents.VoiceMemberLeftPayload) error {
		return h.service.HandleVoiceMemberLeft(ctx, p)
	})
}

func (h *QuizHandlers) HandlePlaybackEnded(msg *message.Message) error {
	return handle(h, "quiz.playback_ended", msg, func(ctx context.Context, p sharedevents.PlaybackEndedPayload) error {
		return h.service.HandlePlaybackEnded(ctx, p)
	})
}

func (h *QuizHandlers) HandlePlaybackErrored(msg *message.Message) error {
	return handle(h, "quiz.playback_errored", msg, func(ctx context.Context, p sharedevents.PlaybackErroredPayload) error {
		return h.service.HandlePlaybackErrored(ctx, p)
	})
}
