package quizservice

import (
	"context"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// Playback is the session core's view of the voice nodes. The core decides
// which song plays, from which offset, and when to stop; everything below
// that (transcoding, buffering, the voice connection itself) lives behind
// this port.
type Playback interface {
	Play(ctx context.Context, payload sharedevents.PlaybackPlayPayload) error
	Stop(ctx context.Context, guildID sharedtypes.GuildID) error
}

// VoicePresence answers "who is in this voice channel right now". It is
// consulted once at session start; afterwards the member set is maintained
// from voice.member.left events and from guess activity.
type VoicePresence interface {
	Members(ctx context.Context, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID) ([]sharedtypes.UserID, error)
}
