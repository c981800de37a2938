package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
)

// File re-reads a JSON or YAML batch file on every fetch.
type File struct {
	path   string
	logger *slog.Logger
}

// NewFile creates a file source. Files ending in .yaml or .yml are parsed as
// YAML, everything else as JSON.
func NewFile(path string, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.Default()
	}
	return &File{path: path, logger: logger}
}

func (f *File) Name() string { return "file" }

func (f *File) Fetch(ctx context.Context) ([]model.CandidateItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read batch file %s: %w", f.path, err)
	}

	var records []record
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".yaml", ".yml":
		records, err = decodeYAML(data)
	default:
		records, err = decodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse batch file %s: %w", f.path, err)
	}

	return normalize(records, f.logger), nil
}
