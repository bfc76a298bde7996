// Package quizadapters implements the session service's outbound ports on
// the event bus and NATS.
package quizadapters

import (
	"context"
	"fmt"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedevents"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
	"github.com/Blind-Test-Club/songquiz-bot/internal/eventbus"
	"github.com/Blind-Test-Club/songquiz-bot/internal/eventutil"

	quizservice "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/application"
)

// BusPlayback publishes playback commands on the event bus; whichever voice
// node holds the guild's connection acts on them.
type BusPlayback struct {
	bus eventbus.EventBus
}

var _ quizservice.Playback = (*BusPlayback)(nil)

// NewBusPlayback wraps the bus.
func NewBusPlayback(bus eventbus.EventBus) *BusPlayback {
	return &BusPlayback{bus: bus}
}

// Play publishes a playback.play command.
func (p *BusPlayback) Play(ctx context.Context, payload sharedevents.PlaybackPlayPayload) error {
	msg, err := eventutil.NewMessage(payload)
	if err != nil {
		return fmt.Errorf("failed to build play command: %w", err)
	}
	msg.SetContext(ctx)
	if err := p.bus.Publish(sharedevents.PlaybackPlay, msg); err != nil {
		return fmt.Errorf("failed to publish play command: %w", err)
	}
	return nil
}

// Stop publishes a playback.stop command.
func (p *BusPlayback) Stop(ctx context.Context, guildID sharedtypes.GuildID) error {
	msg, err := eventutil.NewMessage(sharedevents.PlaybackStopPayload{GuildID: guildID})
	if err != nil {
		return fmt.Errorf("failed to build stop command: %w", err)
	}
	msg.SetContext(ctx)
	if err := p.bus.Publish(sharedevents.PlaybackStop, msg); err != nil {
		return fmt.Errorf("failed to publish stop command: %w", err)
	}
	return nil
}
