package alerts_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ogulcanaydogan/viraltrack/pkg/alerts"
	"github.com/ogulcanaydogan/viraltrack/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier_Name(t *testing.T) {
	n := alerts.NewWebhookNotifier("https://example.com/webhook", "")
	assert.Equal(t, "webhook", n.Name())
}

func TestWebhookNotifier_SendNotice(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "viraltrack/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, alerts.EventNotice, r.Header.Get("X-Viraltrack-Event"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("X-Signature-256"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := alerts.NewWebhookNotifier(server.URL, "")
	require.NoError(t, n.Send(context.Background(), "tracker started"))

	assert.Equal(t, "notice", received["event"])
	assert.Equal(t, "tracker started", received["message"])
	assert.NotEmpty(t, received["timestamp"])
	assert.NotContains(t, received, "alert")
}

func TestWebhookNotifier_SendAlert(t *testing.T) {
	var received struct {
		Event   string      `json:"event"`
		Message string      `json:"message"`
		Alert   model.Alert `json:"alert"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, alerts.EventViralAlert, r.Header.Get("X-Viraltrack-Event"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	alert := model.Alert{Summary: "Downtown protest erupts", Category: "News", Text: "Massive protest breaks out downtown"}

	n := alerts.NewWebhookNotifier(server.URL, "")
	require.NoError(t, n.SendAlert(context.Background(), alert))

	assert.Equal(t, "viral_alert", received.Event)
	assert.Equal(t, alert, received.Alert)
	assert.Equal(t, alert.Message(), received.Message)
}

func TestWebhookNotifier_Send_WithHMAC(t *testing.T) {
	var signature string
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get("X-Signature-256")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := alerts.NewWebhookNotifier(server.URL, "test-secret")
	err := n.SendAlert(context.Background(), model.Alert{Summary: "s", Category: "Event", Text: "signed"})
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write(body)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), signature)
}

func TestWebhookNotifier_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := alerts.NewWebhookNotifier(server.URL, "")
	err := n.Send(context.Background(), "x")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
