package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

const anthropicSystemPrompt = "You label and summarize short social media captions. Answer tersely."

// Anthropic sends prompts to the Anthropic Messages API through llmkit.
type Anthropic struct {
	cfg Config
}

// NewAnthropic creates an Anthropic backend.
func NewAnthropic(cfg Config) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}
	return &Anthropic{cfg: cfg}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

// Model returns the configured model name.
func (a *Anthropic) Model() string { return a.cfg.Model }

// Complete runs the llmkit call in a goroutine so the caller's deadline is honoured.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	type result struct {
		text string
		err  error
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	done := make(chan result, 1)
	go func() {
		text, err := a.prompt(prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("anthropic request: %w", ctx.Err())
	case r := <-done:
		return r.text, r.err
	}
}

func (a *Anthropic) prompt(prompt string) (string, error) {
	settings := types.RequestSettings{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.maxTokens(),
		Temperature: a.cfg.Temperature,
	}

	resp, err := anthropic.PromptWithSettings(anthropicSystemPrompt, prompt, "", a.cfg.APIKey, settings)
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic: %w", ErrEmptyCompletion)
	}

	text := strings.TrimSpace(resp.Content[0].Text)
	if text == "" {
		return "", fmt.Errorf("anthropic: %w", ErrEmptyCompletion)
	}
	return text, nil
}
