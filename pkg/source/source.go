// Package source provides the ingestion side of the tracker: each Source
// returns the current batch of candidate items when asked.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
)

// Source yields batches of candidate items.
type Source interface {
	// Name identifies the source kind in logs.
	Name() string

	// Fetch returns the current batch. An error means the batch is unavailable.
	Fetch(ctx context.Context) ([]model.CandidateItem, error)
}

// Backlog is implemented by sources that queue items between fetches.
type Backlog interface {
	// Pending returns the number of queued items not yet fetched.
	Pending(ctx context.Context) (int64, error)
}

// Config selects and configures one Source.
type Config struct {
	Kind     string        `mapstructure:"kind"`
	Path     string        `mapstructure:"path"`
	URL      string        `mapstructure:"url"`
	DBPath   string        `mapstructure:"db_path"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Hashtags []string      `mapstructure:"hashtags"`
	Limit    int           `mapstructure:"limit"`
}

// Kinds lists the supported source kinds.
var Kinds = []string{"file", "http", "sqlite"}

// IsKnownKind reports whether kind is a supported source kind.
func IsKnownKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// New builds the Source selected by cfg.Kind.
func New(cfg Config, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "source", "kind", cfg.Kind)

	switch cfg.Kind {
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file source: path is required")
		}
		return NewFile(cfg.Path, logger), nil
	case "http":
		if cfg.URL == "" {
			return nil, fmt.Errorf("http source: url is required")
		}
		return NewHTTP(cfg.URL, cfg.Hashtags, cfg.Limit, cfg.Timeout, logger), nil
	case "sqlite":
		if cfg.DBPath == "" {
			return nil, fmt.Errorf("sqlite source: db_path is required")
		}
		s, err := NewSQLite(cfg.DBPath, cfg.Limit, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
