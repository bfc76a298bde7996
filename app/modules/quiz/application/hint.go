package quizservice

import (
	"context"
	"strings"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
)

// HandleHint marks a hint for the user on the live round and publishes the
// structured hint. A hint-assisted correct guess earns half points.
func (svc *SessionService) HandleHint(ctx context.Context, payload sharedevents.HintRequestedPayload) error {
	s, ok := svc.session(payload.GuildID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.round == nil || s.round.Finished() {
		return nil
	}
	if !s.cfg.HintsAllowed {
		return nil
	}

	round := s.round
	round.UseHint(payload.UserID)

	words := strings.Fields(round.Song.Name)
	lengths := make([]int, 0, len(words))
	for _, w := range words {
		lengths = append(lengths, len([]rune(w)))
	}
	initial := ""
	if runes := []rune(round.Song.ArtistName); len(runes) > 0 {
		initial = string(runes[0])
	}

	svc.publish(ctx, sharedevents.HintIssued, sharedevents.HintIssuedPayload{
		GuildID:       s.guildID,
		RoundID:       round.ID,
		UserID:        payload.UserID,
		WordLengths:   lengths,
		ArtistInitial: initial,
	})
	return nil
}
