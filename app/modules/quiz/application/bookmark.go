package quizservice

import (
	"context"
	"time"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"

	quizdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/repositories"
)

// HandleBookmark remembers the current song for the user, falling back to
// the just-finished round between rounds. Bookmarks accumulate in memory and
// flush once at session end.
func (svc *SessionService) HandleBookmark(ctx context.Context, payload sharedevents.BookmarkRequestedPayload) error {
	s, ok := svc.session(payload.GuildID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil
	}

	round := s.round
	if round == nil {
		round = s.lastRound
	}
	if round == nil {
		return nil
	}

	s.bookmarks = append(s.bookmarks, quizdb.Bookmark{
		UserID:    payload.UserID.String(),
		GuildID:   payload.GuildID.String(),
		SongID:    round.Song.ID.String(),
		CreatedAt: time.Now(),
	})
	return nil
}
