// Package eventbus abstracts the message transport behind the watermill
// publisher/subscriber pair. Production uses NATS JetStream; tests use the
// in-memory gochannel bus.
package eventbus

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventBus is the transport contract consumed by every module router and
// service.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// NewInMemory returns a process-local bus. Used by unit tests and by
// single-process deployments that run the voice node in the same binary.
func NewInMemory(logger watermill.LoggerAdapter) EventBus {
	return gochannel.NewGoChannel(gochannel.Config{}, logger)
}
