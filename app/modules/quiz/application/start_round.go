package quizservice

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"

	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

// clipLengthSec is the audible excerpt of a clip round. The voice node cuts
// the stream with the transcoder; the core only states the length.
const clipLengthSec = 10

// scheduleRound queues the next round after the given extra delay, debounced
// by the session's rate limiter so back-to-back resolutions cannot stack
// rounds. The session lock is held.
func (svc *SessionService) scheduleRound(s *Session, extra time.Duration) {
	delay := s.limiter.Reserve().Delay()
	if extra > delay {
		delay = extra
	}
	guildID := s.guildID
	time.AfterFunc(delay, func() {
		svc.beginRound(context.Background(), guildID)
	})
}

// beginRound starts one round: liveness checks, song selection, playback
// dispatch, and the guess timer. It runs from timer callbacks, never inline
// with a command.
func (svc *SessionService) beginRound(ctx context.Context, guildID sharedtypes.GuildID) {
	s, ok := svc.session(guildID)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	if s.round != nil {
		// A round is already live; a duplicate timer fire must not stack a
		// second one on top of it.
		return
	}

	now := time.Now()
	if s.durationElapsed(now) {
		svc.endSession(ctx, s, ReasonDuration, false)
		return
	}
	if len(s.voiceMembers) == 0 {
		svc.endSession(ctx, s, ReasonAbandoned, false)
		return
	}

	song := s.selector.QueryRandomSong()
	if song == nil && s.selector.CheckUniqueSongQueue() {
		// Unique shuffle exhausted the set; the history reset reopens it.
		song = s.selector.QueryRandomSong()
	}
	if song == nil {
		svc.metrics.SelectionFailures.Inc()
		svc.endSession(ctx, s, ReasonNoSongs, true)
		return
	}

	round := quiztypes.NewRound(s.behavior.RoundKind(), song, now)
	round.SeekSeconds = seekOffset(s.cfg.Seek, round.Kind, song.DurationSec, s.rng)
	s.round = round
	s.roundsPlayed++

	svc.publishRoundStarted(ctx, s, round)
	svc.dispatchPlayback(ctx, s, round)
	if s.behavior.ScoringEnabled() {
		svc.armGuessTimer(s, round.ID)
	} else {
		// Listening rounds run until the voice node reports the song over;
		// the timer is only a backstop against a node that never reports.
		svc.armBackstopTimer(s, round.ID, round.Song.DurationSec)
	}

	svc.logger.InfoContext(ctx, "round started",
		slog.String("guild_id", s.guildID.String()),
		slog.String("round_id", round.ID.String()),
		slog.Int("round_number", s.roundsPlayed),
		slog.String("song_id", song.ID.String()),
	)
}

// seekOffset decides where playback begins. Listening rounds always play
// from the top regardless of the configured seek.
func seekOffset(kind quiztypes.SeekKind, roundKind quiztypes.RoundKind, durationSec float64, rng *rand.Rand) float64 {
	if roundKind == quiztypes.RoundListening {
		return 0
	}
	switch kind {
	case quiztypes.SeekBeginning:
		return 0
	case quiztypes.SeekMiddle:
		return (0.4 + rng.Float64()*0.2) * durationSec
	default:
		return rng.Float64() * 0.6 * durationSec
	}
}

func (svc *SessionService) publishRoundStarted(ctx context.Context, s *Session, round *quiztypes.Round) {
	svc.publish(ctx, sharedevents.RoundStarted, sharedevents.RoundStartedPayload{
		GuildID:     s.guildID,
		RoundID:     round.ID,
		RoundNumber: s.roundsPlayed,
		StartedAt:   round.StartedAt,
	})
}

// dispatchPlayback asks the voice node to stream the round's song. Clip
// rounds carry a transcoder cut so only the excerpt is audible.
func (svc *SessionService) dispatchPlayback(ctx context.Context, s *Session, round *quiztypes.Round) {
	payload := sharedevents.PlaybackPlayPayload{
		GuildID:        s.guildID,
		VoiceChannelID: s.voiceChannelID,
		RoundID:        round.ID,
		SongID:         round.Song.ID,
		SeekSeconds:    round.SeekSeconds,
	}
	if round.Kind == quiztypes.RoundClip {
		payload.TranscodeArgs = []string{"-t", strconv.Itoa(clipLengthSec)}
	}
	if err := svc.playback.Play(ctx, payload); err != nil {
		svc.logger.ErrorContext(ctx, "failed to dispatch playback",
			slog.String("guild_id", s.guildID.String()),
			slog.String("round_id", round.ID.String()),
			slog.Any("error", err),
		)
	}
}

// armGuessTimer starts the round inactivity timeout. The callback carries the
// round ID; a stale fire against a newer round is ignored.
func (svc *SessionService) armGuessTimer(s *Session, roundID sharedtypes.RoundID) {
	s.stopTimers()
	guildID := s.guildID
	s.guessTimer = time.AfterFunc(s.cfg.GuessTimeout(), func() {
		svc.handleGuessTimeout(context.Background(), guildID, roundID)
	})
}

// armBackstopTimer covers listening rounds against a voice node that never
// reports playback end.
func (svc *SessionService) armBackstopTimer(s *Session, roundID sharedtypes.RoundID, durationSec float64) {
	s.stopTimers()
	guildID := s.guildID
	backstop := time.Duration(durationSec)*time.Second + 30*time.Second
	s.guessTimer = time.AfterFunc(backstop, func() {
		svc.handleGuessTimeout(context.Background(), guildID, roundID)
	})
}
