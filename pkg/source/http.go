package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
)

const maxFeedBytes = 10 << 20

// HTTP fetches a JSON batch from a feed endpoint on every fetch.
type HTTP struct {
	url      string
	hashtags []string
	limit    int
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTP creates an HTTP source. Hashtags and limit are forwarded to the
// feed as repeated "hashtag" and a single "limit" query parameter.
func NewHTTP(feedURL string, hashtags []string, limit int, timeout time.Duration, logger *slog.Logger) *HTTP {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTP{
		url:      feedURL,
		hashtags: hashtags,
		limit:    limit,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (h *HTTP) Name() string { return "http" }

func (h *HTTP) Fetch(ctx context.Context) ([]model.CandidateItem, error) {
	u, err := url.Parse(h.url)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	q := u.Query()
	for _, tag := range h.hashtags {
		q.Add("hashtag", tag)
	}
	if h.limit > 0 {
		q.Set("limit", strconv.Itoa(h.limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	records, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return normalize(records, h.logger), nil
}
