package eventutil

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestNewMessageRoundTrip(t *testing.T) {
	msg, err := NewMessage(testPayload{Name: "hello", Count: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.UUID)

	got, err := UnmarshalPayload[testPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, testPayload{Name: "hello", Count: 3}, got)
}

func TestNewMessageRejectsUnmarshalable(t *testing.T) {
	_, err := NewMessage(make(chan int))
	assert.Error(t, err)
}

func TestUnmarshalPayloadDropsUnknownFields(t *testing.T) {
	msg := message.NewMessage("id-1", []byte(`{"name":"x","count":1,"extra":"ignored"}`))
	got, err := UnmarshalPayload[testPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
}

func TestUnmarshalPayloadInvalidJSON(t *testing.T) {
	msg := message.NewMessage("id-2", []byte(`{not json`))
	_, err := UnmarshalPayload[testPayload](msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id-2")
}
