package tokenizer

import (
	"fmt"
	"strings"

	"github.com/tiktoken-go/tokenizer"
)

// encodingForModel maps OpenAI model names to tiktoken encoding names.
var encodingForModel = map[string]tokenizer.Encoding{
	"gpt-4o":        tokenizer.O200kBase,
	"gpt-4o-mini":   tokenizer.O200kBase,
	"gpt-4.1":       tokenizer.O200kBase,
	"gpt-4.1-mini":  tokenizer.O200kBase,
	"o3-mini":       tokenizer.O200kBase,
	"gpt-4-turbo":   tokenizer.Cl100kBase,
	"gpt-4":         tokenizer.Cl100kBase,
	"gpt-3.5-turbo": tokenizer.Cl100kBase,
}

// CountTokens returns the token count for the given text and model.
// For OpenAI models it uses tiktoken; for others it uses character-based estimation.
func CountTokens(text string, provider string, model string) (int64, error) {
	if provider == "openai" {
		ids, err := encode(text, model)
		if err != nil {
			return 0, err
		}
		return int64(len(ids)), nil
	}
	return estimateTokens(text), nil
}

// Truncate shortens text so that it fits in maxTokens for the given model.
// A non-positive maxTokens disables truncation.
func Truncate(text string, provider string, model string, maxTokens int) (string, error) {
	if maxTokens <= 0 || text == "" {
		return text, nil
	}

	if provider != "openai" {
		return truncateRunes(text, maxTokens*4), nil
	}

	codec, err := codecFor(model)
	if err != nil {
		return "", err
	}

	ids, _, err := codec.Encode(text)
	if err != nil {
		return "", fmt.Errorf("encode text: %w", err)
	}
	if len(ids) <= maxTokens {
		return text, nil
	}

	out, err := codec.Decode(ids[:maxTokens])
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return strings.ToValidUTF8(out, ""), nil
}

func encode(text, model string) ([]uint, error) {
	codec, err := codecFor(model)
	if err != nil {
		return nil, err
	}

	ids, _, err := codec.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("encode text: %w", err)
	}
	return ids, nil
}

func codecFor(model string) (tokenizer.Codec, error) {
	enc, ok := encodingForModel[model]
	if !ok {
		// Fall back to cl100k_base for unknown OpenAI models
		enc = tokenizer.Cl100kBase
	}

	codec, err := tokenizer.Get(enc)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", enc, err)
	}
	return codec, nil
}

// estimateTokens uses character-based estimation (4 chars per token on average).
func estimateTokens(text string) int64 {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return 0
	}
	return int64((len(text) + 3) / 4)
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
