// Package eventutil provides the JSON payload helpers used by every
// watermill handler and publisher in the repository.
package eventutil

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// NewMessage marshals a payload into a fresh watermill message.
func NewMessage(payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return message.NewMessage(watermill.NewUUID(), data), nil
}

// UnmarshalPayload decodes a message payload into T. Unknown fields are
// dropped, matching the lenient normalization policy for stored snapshots.
func UnmarshalPayload[T any](msg *message.Message) (T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("invalid payload on message %s: %w", msg.UUID, err)
	}
	return payload, nil
}
