package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ogulcanaydogan/viraltrack/pkg/alerts"
	"github.com/ogulcanaydogan/viraltrack/pkg/classifier"
	"github.com/ogulcanaydogan/viraltrack/pkg/eligibility"
	"github.com/ogulcanaydogan/viraltrack/pkg/providers"
	"github.com/ogulcanaydogan/viraltrack/pkg/source"
	"github.com/ogulcanaydogan/viraltrack/pkg/tracker"
	"github.com/spf13/viper"
)

// Config holds all viraltrack configuration.
type Config struct {
	Server      ServerConfig           `mapstructure:"server"`
	Tracker     TrackerConfig          `mapstructure:"tracker"`
	Thresholds  eligibility.Thresholds `mapstructure:"thresholds"`
	Source      source.Config          `mapstructure:"source"`
	Classifier  ClassifierConfig       `mapstructure:"classifier"`
	Notifier    alerts.Config          `mapstructure:"notifier"`
	Language    LanguageConfig         `mapstructure:"language"`
	Logging     LoggingConfig          `mapstructure:"logging"`
	Credentials CredentialsConfig      `mapstructure:"credentials"`
}

// ServerConfig defines the HTTP entry points.
type ServerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Listen       string        `mapstructure:"listen"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// TrackerConfig defines loop cadence and the category taxonomy.
type TrackerConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PacingDelay     time.Duration `mapstructure:"pacing_delay"`
	AnnounceStartup bool          `mapstructure:"announce_startup"`
	StartupMessage  string        `mapstructure:"startup_message"`
	Hashtags        []string      `mapstructure:"hashtags"`
	Categories      []string      `mapstructure:"categories"`
}

// ClassifierConfig defines the completion backend used for labelling.
type ClassifierConfig struct {
	Provider        string        `mapstructure:"provider"`
	Model           string        `mapstructure:"model"`
	Endpoint        string        `mapstructure:"endpoint"`
	APIKey          string        `mapstructure:"api_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxPromptTokens int           `mapstructure:"max_prompt_tokens"`
}

// LanguageConfig tunes language detection.
type LanguageConfig struct {
	MinRelativeDistance float64 `mapstructure:"min_relative_distance"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CredentialsConfig collects provider keys read from their conventional
// environment variables.
type CredentialsConfig struct {
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".vtrack"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("VTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names take effect when the prefixed form is unset
	bindings := map[string]string{
		"notifier.telegram.bot_token":   "TELEGRAM_BOT_TOKEN",
		"notifier.telegram.chat_id":     "TELEGRAM_CHAT_ID",
		"notifier.discord.bot_token":    "DISCORD_BOT_TOKEN",
		"credentials.openai_api_key":    "OPENAI_API_KEY",
		"credentials.anthropic_api_key": "ANTHROPIC_API_KEY",
	}
	for key, env := range bindings {
		prefixed := "VTRACK_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyCredentials()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	th := eligibility.DefaultThresholds()

	v.SetDefault("server.enabled", true)
	v.SetDefault("server.listen", ":8000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")

	v.SetDefault("tracker.poll_interval", "5m")
	v.SetDefault("tracker.pacing_delay", "3s")
	v.SetDefault("tracker.announce_startup", true)
	v.SetDefault("tracker.startup_message", tracker.DefaultStartupMessage)
	v.SetDefault("tracker.hashtags", []string{"news", "usa", "uk", "event"})
	v.SetDefault("tracker.categories", classifier.DefaultCategories)

	v.SetDefault("thresholds.max_followers", th.MaxFollowers)
	v.SetDefault("thresholds.max_plays", th.MaxPlays)
	v.SetDefault("thresholds.min_likes", th.MinLikes)
	v.SetDefault("thresholds.min_shares", th.MinShares)
	v.SetDefault("thresholds.max_comments", th.MaxComments)

	v.SetDefault("source.kind", "file")
	v.SetDefault("source.path", "captions.json")
	v.SetDefault("source.url", "")
	v.SetDefault("source.db_path", "")
	v.SetDefault("source.timeout", "15s")
	v.SetDefault("source.limit", 20)

	v.SetDefault("classifier.provider", "openai")
	v.SetDefault("classifier.model", "")
	v.SetDefault("classifier.endpoint", "")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.timeout", "20s")
	v.SetDefault("classifier.max_tokens", 64)
	v.SetDefault("classifier.temperature", 0.0)
	v.SetDefault("classifier.max_prompt_tokens", 512)

	v.SetDefault("notifier.channel", "telegram")
	v.SetDefault("notifier.telegram.bot_token", "")
	v.SetDefault("notifier.telegram.chat_id", "")
	v.SetDefault("notifier.telegram.api_base", "")
	v.SetDefault("notifier.slack.webhook_url", "")
	v.SetDefault("notifier.slack.channel", "")
	v.SetDefault("notifier.webhook.url", "")
	v.SetDefault("notifier.webhook.secret", "")
	v.SetDefault("notifier.discord.bot_token", "")
	v.SetDefault("notifier.discord.channel_id", "")

	v.SetDefault("language.min_relative_distance", 0.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("credentials.openai_api_key", "")
	v.SetDefault("credentials.anthropic_api_key", "")
}

// applyCredentials fills the classifier key from the provider's
// conventional variable when no explicit key is configured.
func (c *Config) applyCredentials() {
	if c.Classifier.APIKey == "" {
		c.Classifier.APIKey = c.CredentialFor(c.Classifier.Provider)
	}
}

// CredentialFor returns the conventional API key for a provider, if any.
func (c *Config) CredentialFor(provider string) string {
	switch provider {
	case "openai":
		return c.Credentials.OpenAIAPIKey
	case "anthropic":
		return c.Credentials.AnthropicAPIKey
	}
	return ""
}

// Validate reports the first configuration problem that must abort startup.
func (c *Config) Validate() error {
	if c.Tracker.PollInterval <= 0 {
		return fmt.Errorf("tracker.poll_interval must be positive, got %s", c.Tracker.PollInterval)
	}
	if c.Tracker.PacingDelay < 0 {
		return fmt.Errorf("tracker.pacing_delay must not be negative, got %s", c.Tracker.PacingDelay)
	}
	if len(c.categories()) == 0 {
		return fmt.Errorf("tracker.categories must list at least one category")
	}

	th := c.Thresholds
	if th.MaxFollowers < 0 || th.MaxPlays < 0 || th.MinLikes < 0 || th.MinShares < 0 || th.MaxComments < 0 {
		return fmt.Errorf("thresholds must not be negative")
	}

	if !alerts.IsKnownChannel(c.Notifier.Channel) {
		return fmt.Errorf("unknown notifier.channel %q (want one of %s)", c.Notifier.Channel, strings.Join(alerts.Channels, ", "))
	}
	if !providers.IsKnown(c.Classifier.Provider) {
		return fmt.Errorf("unknown classifier.provider %q (want one of %s)", c.Classifier.Provider, strings.Join(providers.Known, ", "))
	}
	if c.Classifier.Timeout < 0 {
		return fmt.Errorf("classifier.timeout must not be negative, got %s", c.Classifier.Timeout)
	}

	switch c.Source.Kind {
	case "file":
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for the file source")
		}
	case "http":
		if c.Source.URL == "" {
			return fmt.Errorf("source.url is required for the http source")
		}
	case "sqlite":
		if c.Source.DBPath == "" {
			return fmt.Errorf("source.db_path is required for the sqlite source")
		}
	default:
		return fmt.Errorf("unknown source.kind %q (want one of %s)", c.Source.Kind, strings.Join(source.Kinds, ", "))
	}

	if c.Language.MinRelativeDistance < 0 || c.Language.MinRelativeDistance >= 0.99 {
		return fmt.Errorf("language.min_relative_distance must be in [0, 0.99), got %v", c.Language.MinRelativeDistance)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}

	return nil
}

func (c *Config) categories() []string {
	out := make([]string, 0, len(c.Tracker.Categories))
	for _, category := range c.Tracker.Categories {
		if s := strings.TrimSpace(category); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// TrackerConfig returns the immutable loop configuration.
func (c *Config) TrackerConfig() tracker.Config {
	return tracker.Config{
		PollInterval:    c.Tracker.PollInterval,
		PacingDelay:     c.Tracker.PacingDelay,
		AnnounceStartup: c.Tracker.AnnounceStartup,
		StartupMessage:  c.Tracker.StartupMessage,
		Hashtags:        append([]string(nil), c.Tracker.Hashtags...),
		Categories:      c.categories(),
		Thresholds:      c.Thresholds,
	}
}

// SourceConfig returns the ingestion settings with the tracker hashtags attached.
func (c *Config) SourceConfig() source.Config {
	cfg := c.Source
	if len(cfg.Hashtags) == 0 {
		cfg.Hashtags = append([]string(nil), c.Tracker.Hashtags...)
	}
	return cfg
}

// ProviderConfig returns the settings for the completion backend. An empty
// classifier key falls back to the provider's conventional credential.
func (c *Config) ProviderConfig() providers.Config {
	key := c.Classifier.APIKey
	if key == "" {
		key = c.CredentialFor(c.Classifier.Provider)
	}
	return providers.Config{
		Model:       c.Classifier.Model,
		Endpoint:    c.Classifier.Endpoint,
		APIKey:      key,
		MaxTokens:   c.Classifier.MaxTokens,
		Temperature: c.Classifier.Temperature,
		Timeout:     c.Classifier.Timeout,
	}
}

// ClassifierSettings returns prompting settings for the classifier.
// model is the resolved backend model, used to pick a tokenizer.
func (c *Config) ClassifierSettings(model string) classifier.Config {
	if model == "" {
		model = c.Classifier.Model
	}
	return classifier.Config{
		Categories:      c.categories(),
		Model:           model,
		Timeout:         c.Classifier.Timeout,
		MaxPromptTokens: c.Classifier.MaxPromptTokens,
	}
}
