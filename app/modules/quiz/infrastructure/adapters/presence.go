package quizadapters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"

	quizservice "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/application"
)

// presenceSubjectPrefix is the request/reply subject the gateway answers
// with the current voice channel roster.
const presenceSubjectPrefix = "voice.presence."

type presenceRequest struct {
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
}

type presenceReply struct {
	Members []sharedtypes.UserID `json:"members"`
}

// NATSPresence asks the gateway who is in a voice channel over NATS
// request/reply. Presence is point-in-time advice; the session maintains its
// own roster afterwards.
type NATSPresence struct {
	nc *nats.Conn
}

var _ quizservice.VoicePresence = (*NATSPresence)(nil)

// NewNATSPresence wraps a NATS connection.
func NewNATSPresence(nc *nats.Conn) *NATSPresence {
	return &NATSPresence{nc: nc}
}

// Members requests the roster of one voice channel.
func (p *NATSPresence) Members(ctx context.Context, guildID sharedtypes.GuildID, channelID sharedtypes.ChannelID) ([]sharedtypes.UserID, error) {
	data, err := json.Marshal(presenceRequest{ChannelID: channelID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal presence request: %w", err)
	}
	msg, err := p.nc.RequestWithContext(ctx, presenceSubjectPrefix+guildID.String(), data)
	if err != nil {
		return nil, fmt.Errorf("presence request failed for guild %s: %w", guildID, err)
	}
	var reply presenceReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("invalid presence reply for guild %s: %w", guildID, err)
	}
	return reply.Members, nil
}

// StaticPresence returns a fixed roster; used by tests and single-process
// deployments without a gateway.
type StaticPresence struct {
	Roster []sharedtypes.UserID
}

var _ quizservice.VoicePresence = (*StaticPresence)(nil)

func (p *StaticPresence) Members(context.Context, sharedtypes.GuildID, sharedtypes.ChannelID) ([]sharedtypes.UserID, error) {
	return p.Roster, nil
}
