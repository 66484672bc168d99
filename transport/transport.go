// Package transport defines the outbound chat transport boundary used by the
// channel exchange routine (typing indicator + message send) and the Inbound
// message shape arriving from the transport. The Discord implementation
// lives in transport/discord; tests use a recording fake.
package transport

import "context"

// Messenger sends replies back over the chat transport.
type Messenger interface {
	// Typing triggers the typing indicator in a channel.
	Typing(ctx context.Context, channelID string) error
	// Send posts content to a channel.
	Send(ctx context.Context, channelID, content string) error
}

// Inbound is one message received from the transport. Its ID is the
// transport's own message identifier; the memory layer remaps it away from
// the store's reserved identifier field before persistence.
type Inbound struct {
	ID        string
	ChannelID string
	Author    string
	Content   string
	Timestamp string // RFC 3339; empty means stamped at persistence time
}

// Payload returns the structured entry persisted for this message. A fresh
// map is allocated on every call.
func (m Inbound) Payload() map[string]any {
	p := map[string]any{
		"id":        m.ID,
		"channelId": m.ChannelID,
		"author":    m.Author,
		"content":   m.Content,
	}
	if m.Timestamp != "" {
		p["timestamp"] = m.Timestamp
	}
	return p
}
