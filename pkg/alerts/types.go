package alerts

import (
	"context"
	"errors"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
)

// ErrNotConfigured is returned by New when the selected channel lacks credentials.
var ErrNotConfigured = errors.New("notifier credentials not configured")

// Notifier delivers a rendered message to an external channel.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers a message. Implementations must be safe for concurrent use.
	Send(ctx context.Context, message string) error
}

// AlertNotifier is implemented by notifiers that carry alert fields in
// structured form alongside the rendered message.
type AlertNotifier interface {
	Notifier
	SendAlert(ctx context.Context, alert model.Alert) error
}

// Config selects and configures one notification channel.
type Config struct {
	Channel  string         `mapstructure:"channel"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Discord  DiscordConfig  `mapstructure:"discord"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

type WebhookConfig struct {
	URL    string `mapstructure:"url"`
	Secret string `mapstructure:"secret"`
}

type DiscordConfig struct {
	BotToken  string `mapstructure:"bot_token"`
	ChannelID string `mapstructure:"channel_id"`
}

// Channels lists the supported channel names.
var Channels = []string{"telegram", "slack", "webhook", "discord"}

// IsKnownChannel reports whether name is a supported channel.
func IsKnownChannel(name string) bool {
	for _, c := range Channels {
		if c == name {
			return true
		}
	}
	return false
}
