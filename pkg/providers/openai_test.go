package providers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ogulcanaydogan/viraltrack/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_Complete(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini","choices":[{"message":{"role":"assistant","content":"  News\n"}}]}`))
	}))
	defer server.Close()

	p, err := providers.NewOpenAI(providers.Config{APIKey: "sk-test", Endpoint: server.URL + "/v1", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	text, err := p.Complete(context.Background(), "Classify this")
	require.NoError(t, err)
	assert.Equal(t, "News", text)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "Classify this", messages[0].(map[string]any)["content"])
}

func TestOpenAI_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer server.Close()

	p, err := providers.NewOpenAI(providers.Config{APIKey: "sk-test", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestOpenAI_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p, err := providers.NewOpenAI(providers.Config{APIKey: "sk-test", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, providers.ErrEmptyCompletion)
}

func TestOpenAI_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	p, err := providers.NewOpenAI(providers.Config{APIKey: "sk-test", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "hi")
	assert.Error(t, err)
}

func TestOpenAI_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	p, err := providers.NewOpenAI(providers.Config{APIKey: "sk-test", Endpoint: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = p.Complete(ctx, "hi")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
