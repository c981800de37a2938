package source_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
	"github.com/ogulcanaydogan/viraltrack/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const flatJSON = `[
  {"text": "Massive protest breaks out downtown", "author_verified": false, "author_follower_count": 200,
   "play_count": 300, "like_count": 50, "share_count": 15, "comment_count": 3},
  {"text": "Celebrity wedding", "author_verified": true, "author_follower_count": 2000000}
]`

const rawJSON = `[
  {"desc": "Flash flood hits the valley", "author": {"verified": false, "followerCount": 120},
   "stats": {"playCount": 250, "diggCount": 40, "shareCount": 12, "commentCount": 2}},
  {"desc": "   "},
  "Bare caption from the scraper"
]`

func TestFile_FlatJSON(t *testing.T) {
	s := source.NewFile(writeFile(t, "batch.json", flatJSON), testLogger())
	assert.Equal(t, "file", s.Name())

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, model.CandidateItem{
		Text:                "Massive protest breaks out downtown",
		AuthorFollowerCount: 200,
		PlayCount:           300,
		LikeCount:           50,
		ShareCount:          15,
		CommentCount:        3,
	}, items[0])
	assert.True(t, items[1].AuthorVerified)
	assert.Zero(t, items[1].PlayCount)
}

func TestFile_RawScraperShape(t *testing.T) {
	s := source.NewFile(writeFile(t, "captions.json", rawJSON), testLogger())

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2, "blank record is dropped")

	assert.Equal(t, model.CandidateItem{
		Text:                "Flash flood hits the valley",
		AuthorFollowerCount: 120,
		PlayCount:           250,
		LikeCount:           40,
		ShareCount:          12,
		CommentCount:        2,
	}, items[0])
	assert.Equal(t, model.CandidateItem{Text: "Bare caption from the scraper"}, items[1])
}

func TestFile_YAML(t *testing.T) {
	content := `
- text: Massive protest breaks out downtown
  author_follower_count: 200
  play_count: 300
  like_count: 50
  share_count: 15
  comment_count: 3
- desc: Raw shaped entry
  author:
    verified: true
    followerCount: 50
  stats:
    diggCount: 99
- Just a caption
`
	s := source.NewFile(writeFile(t, "batch.yaml", content), testLogger())

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int64(50), items[0].LikeCount)
	assert.True(t, items[1].AuthorVerified)
	assert.Equal(t, int64(99), items[1].LikeCount)
	assert.Equal(t, "Just a caption", items[2].Text)
}

func TestFile_NegativeCountersClamped(t *testing.T) {
	s := source.NewFile(writeFile(t, "b.json", `[{"text":"x","play_count":-5,"like_count":-1}]`), testLogger())

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Zero(t, items[0].PlayCount)
	assert.Zero(t, items[0].LikeCount)
}

func TestFile_Errors(t *testing.T) {
	_, err := source.NewFile(filepath.Join(t.TempDir(), "missing.json"), testLogger()).Fetch(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = source.NewFile(writeFile(t, "bad.json", `{"text": "not an array"}`), testLogger()).Fetch(context.Background())
	assert.Error(t, err)

	_, err = source.NewFile(writeFile(t, "bad.yaml", "text: [unclosed"), testLogger()).Fetch(context.Background())
	assert.Error(t, err)
}

func TestFile_EmptyArray(t *testing.T) {
	items, err := source.NewFile(writeFile(t, "empty.json", `[]`), testLogger()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHTTP_Fetch(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(rawJSON))
	}))
	defer server.Close()

	s := source.NewHTTP(server.URL+"/feed", []string{"news", "usa"}, 20, 0, testLogger())
	assert.Equal(t, "http", s.Name())

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, []string{"news", "usa"}, query["hashtag"])
	assert.Equal(t, []string{"20"}, query["limit"])
}

func TestHTTP_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := source.NewHTTP(server.URL, nil, 0, 0, testLogger()).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTP_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	_, err := source.NewHTTP(server.URL, nil, 0, 0, testLogger()).Fetch(context.Background())
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	s, err := source.New(source.Config{Kind: "file", Path: filepath.Join(dir, "x.json")}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "file", s.Name())

	s, err = source.New(source.Config{Kind: "http", URL: "http://localhost:9/feed"}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "http", s.Name())

	s, err = source.New(source.Config{Kind: "sqlite", DBPath: filepath.Join(dir, "c.db")}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "sqlite", s.Name())
	require.NoError(t, s.(*source.SQLite).Close())

	_, err = source.New(source.Config{Kind: "file"}, testLogger())
	assert.Error(t, err)
	_, err = source.New(source.Config{Kind: "http"}, testLogger())
	assert.Error(t, err)
	_, err = source.New(source.Config{Kind: "kafka"}, testLogger())
	assert.Error(t, err)

	assert.True(t, source.IsKnownKind("sqlite"))
	assert.False(t, source.IsKnownKind("kafka"))
}
