// Package classifier labels and summarizes captions through a text
// completion provider, substituting fixed sentinels whenever a call fails.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
	"github.com/ogulcanaydogan/viraltrack/pkg/providers"
	"github.com/ogulcanaydogan/viraltrack/pkg/tokenizer"
)

// Step names one of the two provider calls made per caption.
type Step string

const (
	StepCategory Step = "category"
	StepSummary  Step = "summary"
)

// DefaultCategories is the taxonomy used when none is configured.
var DefaultCategories = []string{"News", "Event", "Phenomenon"}

// ErrNoProvider is returned when the classifier was built without a backend.
var ErrNoProvider = errors.New("no classification provider configured")

// ClassifierError records which step failed and why.
type ClassifierError struct {
	Step Step
	Err  error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("classify %s: %v", e.Step, e.Err)
}

func (e *ClassifierError) Unwrap() error { return e.Err }

// Config controls prompting.
type Config struct {
	Categories      []string
	Model           string
	Timeout         time.Duration
	MaxPromptTokens int
}

// Classifier wraps a Completer behind a call that never fails.
type Classifier struct {
	completer providers.Completer
	cfg       Config
	logger    *slog.Logger
}

// New creates a Classifier. A nil completer yields sentinel results for every caption.
func New(completer providers.Completer, cfg Config, logger *slog.Logger) *Classifier {
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		completer: completer,
		cfg:       cfg,
		logger:    logger.With("component", "classifier"),
	}
}

// Categories returns the taxonomy offered to the provider.
func (c *Classifier) Categories() []string {
	return append([]string(nil), c.cfg.Categories...)
}

// Classify returns a category and a summary for text. Each field falls back
// to its sentinel independently when the corresponding call fails.
func (c *Classifier) Classify(ctx context.Context, text string) model.ClassificationResult {
	text = c.truncate(text)

	result := model.ClassificationResult{
		Category: model.UnknownCategory,
		Summary:  model.NoSummary,
	}

	if category, err := c.Categorize(ctx, text); err != nil {
		c.logger.Warn("classification failed", "step", StepCategory, "error", err)
	} else {
		result.Category = category
	}

	if summary, err := c.Summarize(ctx, text); err != nil {
		c.logger.Warn("classification failed", "step", StepSummary, "error", err)
	} else {
		result.Summary = summary
	}

	return result
}

// Categorize asks the provider for a single taxonomy label. The reply is
// trimmed but not checked against the taxonomy.
func (c *Classifier) Categorize(ctx context.Context, text string) (string, error) {
	return c.call(ctx, StepCategory, CategoryPrompt(c.cfg.Categories, text))
}

// Summarize asks the provider for a few-word summary.
func (c *Classifier) Summarize(ctx context.Context, text string) (string, error) {
	return c.call(ctx, StepSummary, SummaryPrompt(text))
}

// CategoryPrompt renders the labelling prompt for the given taxonomy.
func CategoryPrompt(categories []string, text string) string {
	var b strings.Builder
	b.WriteString("Classify the following social media content into one of the following categories:\n")
	for _, category := range categories {
		b.WriteString("- ")
		b.WriteString(category)
		b.WriteString("\n")
	}
	b.WriteString("\nContent: ")
	b.WriteString(text)
	b.WriteString("\n\nReply with just one word.")
	return b.String()
}

// SummaryPrompt renders the summarization prompt.
func SummaryPrompt(text string) string {
	return "Summarize this social media caption in a few words: " + text
}

func (c *Classifier) call(ctx context.Context, step Step, prompt string) (reply string, err error) {
	if c.completer == nil {
		return "", &ClassifierError{Step: step, Err: ErrNoProvider}
	}

	defer func() {
		if r := recover(); r != nil {
			reply = ""
			err = &ClassifierError{Step: step, Err: fmt.Errorf("provider panic: %v", r)}
		}
	}()

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return "", &ClassifierError{Step: step, Err: err}
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", &ClassifierError{Step: step, Err: providers.ErrEmptyCompletion}
	}

	c.logger.Debug("provider call completed",
		"step", step,
		"provider", c.completer.Name(),
		"duration", time.Since(start),
	)
	return out, nil
}

func (c *Classifier) truncate(text string) string {
	if c.cfg.MaxPromptTokens <= 0 || c.completer == nil {
		return text
	}

	provider := c.completer.Name()
	tokens, err := tokenizer.CountTokens(text, provider, c.cfg.Model)
	if err != nil {
		c.logger.Debug("prompt truncation skipped", "error", err)
		return text
	}
	if tokens <= int64(c.cfg.MaxPromptTokens) {
		return text
	}

	out, err := tokenizer.Truncate(text, provider, c.cfg.Model, c.cfg.MaxPromptTokens)
	if err != nil {
		c.logger.Debug("prompt truncation skipped", "error", err)
		return text
	}
	c.logger.Debug("caption truncated", "prompt_tokens", tokens, "max_tokens", c.cfg.MaxPromptTokens)
	return out
}
