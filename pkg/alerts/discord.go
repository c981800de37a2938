package alerts

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// discordMessageLimit is the maximum content length Discord accepts per message.
const discordMessageLimit = 2000

// MessageSender is the subset of *discordgo.Session used for delivery.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts messages to a Discord text channel with a bot token.
type DiscordNotifier struct {
	sender    MessageSender
	channelID string
}

// NewDiscordNotifier opens a REST-only session for the bot.
func NewDiscordNotifier(botToken, channelID string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return NewDiscordNotifierWithSender(session, channelID), nil
}

// NewDiscordNotifierWithSender wraps an existing session.
func NewDiscordNotifierWithSender(sender MessageSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{sender: sender, channelID: channelID}
}

func (d *DiscordNotifier) Name() string { return "discord" }

func (d *DiscordNotifier) Send(ctx context.Context, message string) error {
	if runes := []rune(message); len(runes) > discordMessageLimit {
		message = string(runes[:discordMessageLimit-1]) + "…"
	}

	if _, err := d.sender.ChannelMessageSend(d.channelID, message, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}
