package quizservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// HandleGuess evaluates one free-text guess against the live round.
//
// The first correct guess resolves the round immediately unless multi-guess
// is on, in which case a short grace window stays open so near-simultaneous
// correct guesses still score; the window closing resolves the round.
func (svc *SessionService) HandleGuess(ctx context.Context, payload sharedevents.GuessReceivedPayload) error {
	s, ok := svc.session(payload.GuildID)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.round == nil {
		return nil
	}
	if !s.behavior.ScoringEnabled() {
		return nil
	}

	s.rememberParticipant(payload.UserID, payload.UserName, payload.AvatarURL)

	round := s.round
	if round.Finished() {
		return nil
	}
	if round.GuessedCorrectly(payload.UserID) {
		return nil
	}

	receivedAt := payload.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	elapsed := receivedAt.Sub(round.StartedAt)

	svc.metrics.GuessesEvaluated.Inc()
	points := round.CheckGuess(payload.Text, s.cfg.GuessMode, s.cfg.TypoTolerance)
	if points <= 0 {
		round.StoreGuess(payload.UserID, payload.Text, false, 0, elapsed)
		return nil
	}

	points = round.HintPenalty(payload.UserID, points)
	firstCorrect := len(round.CorrectGuessers()) == 0
	round.StoreGuess(payload.UserID, payload.Text, true, points, elapsed)
	svc.metrics.CorrectGuesses.Inc()

	svc.logger.DebugContext(ctx, "correct guess",
		slog.String("guild_id", s.guildID.String()),
		slog.String("round_id", round.ID.String()),
		slog.String("user_id", payload.UserID.String()),
		slog.Duration("elapsed", elapsed),
	)

	if !firstCorrect {
		return nil
	}
	if s.cfg.MultiGuess {
		svc.armGraceTimer(s, round.ID)
		return nil
	}
	svc.resolveRound(ctx, s, roundOutcome{Guessed: true})
	return nil
}

// armGraceTimer opens the multi-guess window. Only the first correct guess
// arms it; the window never extends.
func (svc *SessionService) armGraceTimer(s *Session, roundID sharedtypes.RoundID) {
	guildID := s.guildID
	s.graceTimer = time.AfterFunc(svc.tunables.MultiGuessWindow, func() {
		svc.closeGraceWindow(context.Background(), guildID, roundID)
	})
}

func (svc *SessionService) closeGraceWindow(ctx context.Context, guildID sharedtypes.GuildID, roundID sharedtypes.RoundID) {
	s, ok := svc.session(guildID)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.round == nil || s.round.ID != roundID {
		return
	}
	svc.resolveRound(ctx, s, roundOutcome{Guessed: true})
}
