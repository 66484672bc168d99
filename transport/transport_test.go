package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInboundPayload(t *testing.T) {
	msg := Inbound{
		ID:        "msg-77",
		ChannelID: "chan-9",
		Author:    "alice",
		Content:   "hi bot",
		Timestamp: "2024-05-10T12:30:00Z",
	}

	payload := msg.Payload()

	assert.Equal(t, map[string]any{
		"id":        "msg-77",
		"channelId": "chan-9",
		"author":    "alice",
		"content":   "hi bot",
		"timestamp": "2024-05-10T12:30:00Z",
	}, payload)
}

func TestInboundPayloadOmitsEmptyTimestamp(t *testing.T) {
	msg := Inbound{ID: "msg-1", ChannelID: "chan-1", Author: "bob", Content: "hello"}

	payload := msg.Payload()

	assert.NotContains(t, payload, "timestamp")
}

func TestInboundPayloadReturnsFreshMap(t *testing.T) {
	msg := Inbound{ID: "msg-1", ChannelID: "chan-1", Author: "bob", Content: "hello"}

	first := msg.Payload()
	first["content"] = "mutated"

	assert.Equal(t, "hello", msg.Payload()["content"])
}
