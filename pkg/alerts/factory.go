package alerts

import "fmt"

// New builds the notifier selected by cfg.Channel. It returns ErrNotConfigured
// when the channel is known but its credentials are empty.
func New(cfg Config) (Notifier, error) {
	switch cfg.Channel {
	case "telegram":
		if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
			return nil, fmt.Errorf("telegram: %w", ErrNotConfigured)
		}
		n := NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if cfg.Telegram.APIBase != "" {
			n.WithAPIBase(cfg.Telegram.APIBase)
		}
		return n, nil
	case "slack":
		if cfg.Slack.WebhookURL == "" {
			return nil, fmt.Errorf("slack: %w", ErrNotConfigured)
		}
		return NewSlackNotifier(cfg.Slack.WebhookURL, cfg.Slack.Channel), nil
	case "webhook":
		if cfg.Webhook.URL == "" {
			return nil, fmt.Errorf("webhook: %w", ErrNotConfigured)
		}
		return NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Secret), nil
	case "discord":
		if cfg.Discord.BotToken == "" || cfg.Discord.ChannelID == "" {
			return nil, fmt.Errorf("discord: %w", ErrNotConfigured)
		}
		n, err := NewDiscordNotifier(cfg.Discord.BotToken, cfg.Discord.ChannelID)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notifier channel %q", cfg.Channel)
	}
}
