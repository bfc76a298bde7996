package quizservice

import (
	"context"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// handleGuessTimeout fires when a round sees no resolution before the
// configured timeout. The round ID gates stale fires: a timer armed for an
// earlier round does nothing once a newer round is live.
func (svc *SessionService) handleGuessTimeout(ctx context.Context, guildID sharedtypes.GuildID, roundID sharedtypes.RoundID) {
	s, ok := svc.session(guildID)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.round == nil || s.round.ID != roundID {
		return
	}
	svc.resolveRound(ctx, s, roundOutcome{TimedOut: true})
}
