package quizservice

import (
	"context"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"

	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

// Service is the session orchestration contract consumed by the message
// handlers. One implementation, SessionService, owns every live session.
type Service interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) error

	HandleGuess(ctx context.Context, payload sharedevents.GuessReceivedPayload) error
	HandleSkip(ctx context.Context, payload sharedevents.SkipRequestedPayload) error
	HandleHint(ctx context.Context, payload sharedevents.HintRequestedPayload) error
	HandleBookmark(ctx context.Context, payload sharedevents.BookmarkRequestedPayload) error
	HandleTeamJoin(ctx context.Context, payload sharedevents.TeamJoinRequestedPayload) error
	HandleSessionEndRequested(ctx context.Context, payload sharedevents.SessionEndRequestedPayload) error
	HandleConfigUpdated(ctx context.Context, payload sharedevents.ConfigUpdatedPayload) error
	HandleVoiceMemberLeft(ctx context.Context, payload sharedevents.VoiceMemberLeftPayload) error
	HandlePlaybackEnded(ctx context.Context, payload sharedevents.PlaybackEndedPayload) error
	HandlePlaybackErrored(ctx context.Context, payload sharedevents.PlaybackErroredPayload) error

	SessionCount() int
	Shutdown(ctx context.Context)
}

// CreateSessionRequest carries everything needed to open a session.
type CreateSessionRequest struct {
	GuildID        sharedtypes.GuildID
	OwnerID        sharedtypes.UserID
	TextChannelID  sharedtypes.ChannelID
	VoiceChannelID sharedtypes.ChannelID
	Kind           quiztypes.SessionKind
}
