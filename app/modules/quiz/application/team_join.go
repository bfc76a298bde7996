package quizservice

import (
	"context"
	"log/slog"

	"github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/scoreboard"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
)

// HandleTeamJoin assigns a user to a team in a team session. Joining again
// switches teams; switching forfeits the score and EXP earned on the old
// team.
func (svc *SessionService) HandleTeamJoin(ctx context.Context, payload sharedevents.TeamJoinRequestedPayload) error {
	s, ok := svc.session(payload.GuildID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.teams == nil || payload.Team == "" {
		return nil
	}

	s.rememberParticipant(payload.UserID, payload.UserName, payload.AvatarURL)
	s.teams.AddPlayer(payload.Team, scoreboard.Player{
		ID:        payload.UserID,
		Name:      payload.UserName,
		AvatarURL: payload.AvatarURL,
	})

	svc.logger.InfoContext(ctx, "player joined team",
		slog.String("guild_id", s.guildID.String()),
		slog.String("user_id", payload.UserID.String()),
		slog.String("team", payload.Team.String()),
	)
	return nil
}
