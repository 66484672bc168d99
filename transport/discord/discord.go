// Package discord implements the transport boundary over the Discord REST
// API using discordgo. Only REST calls are made; no gateway connection is
// opened by this package.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/hupe1980/recallmesh/transport"
)

// Messenger sends typing indicators and messages through a Discord bot session.
type Messenger struct {
	session *discordgo.Session
}

var _ transport.Messenger = (*Messenger)(nil)

// New creates a Messenger from a bot token.
func New(botToken string) (*Messenger, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Messenger{session: session}, nil
}

// NewFromSession wraps an existing session, for bots that already maintain a
// gateway connection and want to reuse it for sends.
func NewFromSession(session *discordgo.Session) *Messenger {
	return &Messenger{session: session}
}

// Typing triggers the typing indicator in the channel.
func (m *Messenger) Typing(ctx context.Context, channelID string) error {
	if err := m.session.ChannelTyping(channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("typing indicator for channel %s: %w", channelID, err)
	}
	return nil
}

// Send posts content to the channel.
func (m *Messenger) Send(ctx context.Context, channelID, content string) error {
	if _, err := m.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send message to channel %s: %w", channelID, err)
	}
	return nil
}
