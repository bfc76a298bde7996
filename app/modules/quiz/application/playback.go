package quizservice

import (
	"context"
	"log/slog"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"

	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

// HandlePlaybackEnded reacts to the voice node finishing a round's audio.
// Clip rounds replay the excerpt up to the configured cap while unguessed;
// other rounds resolve as played out. Stale reports against an older round
// are dropped.
func (svc *SessionService) HandlePlaybackEnded(ctx context.Context, payload sharedevents.PlaybackEndedPayload) error {
	s, ok := svc.session(payload.GuildID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.round == nil || s.round.ID != payload.RoundID {
		return nil
	}

	round := s.round
	s.playbackFailures = 0

	if round.Kind == quiztypes.RoundClip && !round.Finished() && round.ClipReplays < s.cfg.ClipReplayCap {
		round.ClipReplays++
		svc.dispatchPlayback(ctx, s, round)
		return nil
	}

	svc.resolveRound(ctx, s, roundOutcome{})
	return nil
}

// HandlePlaybackErrored reacts to a playback failure. The round is retried
// once with a fresh song and without counting against the round tally; a
// second consecutive failure ends the session as an error.
func (svc *SessionService) HandlePlaybackErrored(ctx context.Context, payload sharedevents.PlaybackErroredPayload) error {
	s, ok := svc.session(payload.GuildID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.round == nil || s.round.ID != payload.RoundID {
		return nil
	}

	s.playbackFailures++
	svc.logger.WarnContext(ctx, "playback errored",
		slog.String("guild_id", s.guildID.String()),
		slog.String("round_id", payload.RoundID.String()),
		slog.Int("consecutive_failures", s.playbackFailures),
		slog.String("error", payload.Error),
	)

	if s.playbackFailures >= 2 {
		svc.endSession(ctx, s, ReasonPlaybackFailure, true)
		return nil
	}

	// Discard the broken round without counting it and pull a fresh song.
	s.stopTimers()
	s.round.Finish()
	s.round = nil
	s.roundsPlayed--
	svc.metrics.PlaybackRetries.Inc()
	svc.scheduleRound(s, 0)
	return nil
}
