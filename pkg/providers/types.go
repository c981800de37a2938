package providers

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrEmptyCompletion is returned when a provider answers without any text.
var ErrEmptyCompletion = errors.New("empty completion")

// ErrMissingAPIKey is returned when a hosted provider is built without credentials.
var ErrMissingAPIKey = errors.New("missing api key")

// Completer turns a prompt into a single text completion.
type Completer interface {
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string

	// Complete sends prompt to the model and returns the raw reply text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds the settings shared by every backend.
type Config struct {
	Model       string
	Endpoint    string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return 64
	}
	return c.MaxTokens
}
