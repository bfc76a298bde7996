package quizservice

import (
	"context"
	"log/slog"
	"slices"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// HandleVoiceMemberLeft drops a member from the session's voice tally. An
// emptied channel ends the session between rounds; a departing owner hands
// the session to a random remaining member so end and config commands keep
// working.
func (svc *SessionService) HandleVoiceMemberLeft(ctx context.Context, payload sharedevents.VoiceMemberLeftPayload) error {
	s, ok := svc.session(payload.GuildID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil
	}

	delete(s.voiceMembers, payload.UserID)

	if len(s.voiceMembers) == 0 {
		svc.endSession(ctx, s, ReasonAbandoned, false)
		return nil
	}

	if payload.UserID == s.ownerID {
		remaining := make([]sharedtypes.UserID, 0, len(s.voiceMembers))
		for id := range s.voiceMembers {
			remaining = append(remaining, id)
		}
		slices.Sort(remaining)
		s.ownerID = remaining[s.rng.Intn(len(remaining))]
		svc.logger.InfoContext(ctx, "session ownership transferred",
			slog.String("guild_id", s.guildID.String()),
			slog.String("new_owner_id", s.ownerID.String()),
		)
	}
	return nil
}
