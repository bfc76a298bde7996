package quizservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"

	quizdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/repositories"
)

// Session end reasons, published verbatim in SessionEndedPayload and used as
// the metrics label.
const (
	ReasonGoalReached     = "goal_reached"
	ReasonDuration        = "duration_elapsed"
	ReasonRequested       = "requested"
	ReasonAbandoned       = "abandoned"
	ReasonElimination     = "elimination_finished"
	ReasonNoSongs         = "no_matching_songs"
	ReasonPlaybackFailure = "playback_failure"
	ReasonShutdown        = "shutdown"
)

// HandleSessionEndRequested ends a session on explicit command.
func (svc *SessionService) HandleSessionEndRequested(ctx context.Context, payload sharedevents.SessionEndRequestedPayload) error {
	s, ok := svc.session(payload.GuildID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	svc.endSession(ctx, s, ReasonRequested, false)
	return nil
}

// endSession tears a session down exactly once: close the live round, stop
// playback, announce the ending, deregister, and flush everything the
// session accumulated. The session lock is held; racing end paths are
// serialized by the ended flag.
func (svc *SessionService) endSession(ctx context.Context, s *Session, reason string, isError bool) {
	if s.ended {
		return
	}
	s.ended = true
	s.stopTimers()
	if s.round != nil {
		s.round.Finish()
		s.lastRound = s.round
		s.round = nil
	}

	svc.mu.Lock()
	delete(svc.sessions, s.guildID)
	svc.mu.Unlock()

	if err := svc.playback.Stop(ctx, s.guildID); err != nil {
		svc.logger.WarnContext(ctx, "failed to stop playback",
			slog.String("guild_id", s.guildID.String()),
			slog.Any("error", err),
		)
	}

	svc.publish(ctx, sharedevents.SessionEnded, sharedevents.SessionEndedPayload{
		GuildID:      s.guildID,
		Reason:       reason,
		IsError:      isError,
		RoundsPlayed: s.roundsPlayed,
		FinalScores:  s.scoreEntries(),
	})

	svc.metrics.SessionsActive.Dec()
	svc.metrics.SessionsEnded.WithLabelValues(reason).Inc()
	svc.logger.InfoContext(ctx, "session ended",
		slog.String("guild_id", s.guildID.String()),
		slog.String("reason", reason),
		slog.Bool("is_error", isError),
		slog.Int("rounds_played", s.roundsPlayed),
	)

	svc.persistSessionEnd(s, reason, isError, time.Now())
}

// persistSessionEnd flushes games-played increments, the session record, and
// any bookmarks in the background.
func (svc *SessionService) persistSessionEnd(s *Session, reason string, isError bool, endedAt time.Time) {
	updates := make([]quizdb.PlayerStatsUpdate, 0, len(s.participants))
	for id := range s.participants {
		updates = append(updates, quizdb.PlayerStatsUpdate{UserID: id, GamesPlayed: 1})
	}
	record := quizdb.SessionStats{
		GuildID:      s.guildID.String(),
		Kind:         string(s.kind),
		RoundsPlayed: s.roundsPlayed,
		StartedAt:    s.startedAt,
		EndedAt:      endedAt,
		Reason:       reason,
		IsError:      isError,
	}
	guildID := s.guildID
	bookmarks := s.bookmarks
	s.bookmarks = nil

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if len(updates) > 0 {
			if err := svc.repo.UpsertPlayerStats(ctx, updates); err != nil {
				svc.logger.ErrorContext(ctx, "failed to persist games played", slog.Any("error", err))
			}
		}
		if err := svc.repo.IncrementGuildStats(ctx, guildID, 1, 0); err != nil {
			svc.logger.ErrorContext(ctx, "failed to persist guild games", slog.Any("error", err))
		}
		if err := svc.repo.InsertSessionStats(ctx, record); err != nil {
			svc.logger.ErrorContext(ctx, "failed to persist session record", slog.Any("error", err))
		}
		if len(bookmarks) > 0 {
			if err := svc.repo.SaveBookmarks(ctx, bookmarks); err != nil {
				svc.logger.ErrorContext(ctx, "failed to persist bookmarks", slog.Any("error", err))
			}
		}
	}()
}
