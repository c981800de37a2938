package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ogulcanaydogan/viraltrack/internal/config"
	"github.com/ogulcanaydogan/viraltrack/pkg/alerts"
	"github.com/ogulcanaydogan/viraltrack/pkg/classifier"
	"github.com/ogulcanaydogan/viraltrack/pkg/eligibility"
	"github.com/ogulcanaydogan/viraltrack/pkg/providers"
	"github.com/ogulcanaydogan/viraltrack/pkg/source"
	"github.com/ogulcanaydogan/viraltrack/pkg/tracker"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "vtrack",
	Short: "viraltrack - early-virality tracker for social media captions",
	Long: `viraltrack polls a caption source on a fixed interval, keeps English posts
from small accounts whose engagement outpaces their views, labels and
summarizes them with an LLM, and sends an alert to a chat channel.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.vtrack/config.yaml)")
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// providerConfigFor returns backend settings for name. The configured
// provider gets the full classifier section; the others only their keys.
func providerConfigFor(cfg *config.Config, name string) providers.Config {
	if name == cfg.Classifier.Provider {
		return cfg.ProviderConfig()
	}

	return providers.Config{
		APIKey:    cfg.CredentialFor(name),
		MaxTokens: cfg.Classifier.MaxTokens,
		Timeout:   cfg.Classifier.Timeout,
	}
}

// initRegistry registers every backend that can be built from config.
func initRegistry(cfg *config.Config, logger *slog.Logger) *providers.Registry {
	registry := providers.NewRegistry()

	for _, name := range providers.Known {
		p, err := providers.New(name, providerConfigFor(cfg, name))
		if err != nil {
			logger.Debug("provider unavailable", "provider", name, "error", err)
			continue
		}
		if err := registry.Register(p); err != nil {
			logger.Warn("register provider", "provider", name, "error", err)
		}
	}

	return registry
}

// initClassifier wires the configured provider. Without one the classifier
// still runs and yields sentinel results.
func initClassifier(cfg *config.Config, registry *providers.Registry, logger *slog.Logger) *classifier.Classifier {
	completer, err := registry.Get(cfg.Classifier.Provider)
	if err != nil {
		logger.Warn("classification provider not configured, alerts will carry sentinel values",
			"provider", cfg.Classifier.Provider)
		return classifier.New(nil, cfg.ClassifierSettings(""), logger)
	}

	model := ""
	if m, ok := completer.(modeler); ok {
		model = m.Model()
	}
	return classifier.New(completer, cfg.ClassifierSettings(model), logger)
}

// initDispatcher wires the notifier. Missing credentials yield a dispatcher
// that reports every message as skipped.
func initDispatcher(cfg *config.Config, logger *slog.Logger) (*alerts.Dispatcher, error) {
	n, err := alerts.New(cfg.Notifier)
	if err != nil && !errors.Is(err, alerts.ErrNotConfigured) {
		return nil, fmt.Errorf("init notifier: %w", err)
	}

	d := alerts.NewDispatcher(n, cfg.Notifier.Channel, logger)
	if d.Enabled() {
		logger.Info("notifier ready", "channel", d.Channel())
	} else {
		logger.Warn("notifier credentials missing, notifications will be skipped", "channel", d.Channel())
	}
	return d, nil
}

// initFilter builds the eligibility filter with the lingua detector.
func initFilter(cfg *config.Config) *eligibility.Filter {
	detector := eligibility.NewLinguaDetector(cfg.Language.MinRelativeDistance)
	return eligibility.NewFilter(cfg.Thresholds, detector)
}

// initTracker creates a fully wired tracker. The returned func releases the source.
func initTracker(cfg *config.Config, logger *slog.Logger) (*tracker.Tracker, func(), error) {
	src, err := source.New(cfg.SourceConfig(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init source: %w", err)
	}
	cleanup := func() {
		if c, ok := src.(io.Closer); ok {
			_ = c.Close()
		}
	}

	dispatcher, err := initDispatcher(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	registry := initRegistry(cfg, logger)

	t, err := tracker.New(cfg.TrackerConfig(), tracker.Deps{
		Source:     src,
		Filter:     initFilter(cfg),
		Classifier: initClassifier(cfg, registry, logger),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return t, cleanup, nil
}
