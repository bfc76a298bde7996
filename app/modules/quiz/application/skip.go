package quizservice

import (
	"context"
	"log/slog"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
)

// HandleSkip registers one skip vote against the live round. The round skips
// once at least half of the voice channel has voted; the session owner's
// vote skips immediately.
func (svc *SessionService) HandleSkip(ctx context.Context, payload sharedevents.SkipRequestedPayload) error {
	s, ok := svc.session(payload.GuildID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.round == nil || s.round.Finished() {
		return nil
	}

	votes := s.round.AddSkipVote(payload.UserID)
	needed := (len(s.voiceMembers) + 1) / 2
	if needed < 1 {
		needed = 1
	}
	if payload.UserID != s.ownerID && votes < needed {
		svc.logger.DebugContext(ctx, "skip vote recorded",
			slog.String("guild_id", s.guildID.String()),
			slog.Int("votes", votes),
			slog.Int("needed", needed),
		)
		return nil
	}

	svc.resolveRound(ctx, s, roundOutcome{Skipped: true})
	return nil
}
