package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const defaultOllamaModel = "llama3.2"

// Ollama generates completions with a local Ollama server.
type Ollama struct {
	client *api.Client
	cfg    Config
}

// NewOllama creates an Ollama backend. An empty endpoint falls back to
// OLLAMA_HOST or the default local address.
func NewOllama(cfg Config) (*Ollama, error) {
	if cfg.Model == "" {
		cfg.Model = defaultOllamaModel
	}

	var client *api.Client
	if cfg.Endpoint == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
		client = c
	} else {
		base, err := url.Parse(cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse ollama endpoint %q: %w", cfg.Endpoint, err)
		}
		client = api.NewClient(base, cfg.httpClient())
	}

	return &Ollama{client: client, cfg: cfg}, nil
}

func (o *Ollama) Name() string { return "ollama" }

// Model returns the configured model name.
func (o *Ollama) Model() string { return o.cfg.Model }

func (o *Ollama) Complete(ctx context.Context, prompt string) (string, error) {
	req := &api.GenerateRequest{
		Model:  o.cfg.Model,
		Prompt: prompt,
		Stream: new(bool),
		Options: map[string]any{
			"temperature": o.cfg.Temperature,
			"num_predict": o.cfg.maxTokens(),
		},
	}

	var out strings.Builder
	respFunc := func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	}

	if err := o.client.Generate(ctx, req, respFunc); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyCompletion)
	}
	return text, nil
}
