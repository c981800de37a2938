package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
	"gopkg.in/yaml.v3"
)

// record accepts the flat CandidateItem shape, the scraper's raw video
// shape (desc, author, stats) and bare caption strings.
type record struct {
	Text    string `json:"text" yaml:"text"`
	Desc    string `json:"desc" yaml:"desc"`
	Caption string `json:"caption" yaml:"caption"`

	AuthorVerified      bool  `json:"author_verified" yaml:"author_verified"`
	AuthorFollowerCount int64 `json:"author_follower_count" yaml:"author_follower_count"`
	PlayCount           int64 `json:"play_count" yaml:"play_count"`
	LikeCount           int64 `json:"like_count" yaml:"like_count"`
	ShareCount          int64 `json:"share_count" yaml:"share_count"`
	CommentCount        int64 `json:"comment_count" yaml:"comment_count"`

	Author *rawAuthor `json:"author" yaml:"author"`
	Stats  *rawStats  `json:"stats" yaml:"stats"`
}

type rawAuthor struct {
	Verified      bool  `json:"verified" yaml:"verified"`
	FollowerCount int64 `json:"followerCount" yaml:"followerCount"`
}

type rawStats struct {
	PlayCount    int64 `json:"playCount" yaml:"playCount"`
	DiggCount    int64 `json:"diggCount" yaml:"diggCount"`
	ShareCount   int64 `json:"shareCount" yaml:"shareCount"`
	CommentCount int64 `json:"commentCount" yaml:"commentCount"`
}

func (r record) item() model.CandidateItem {
	item := model.CandidateItem{
		Text:                firstNonEmpty(r.Text, r.Desc, r.Caption),
		AuthorVerified:      r.AuthorVerified,
		AuthorFollowerCount: r.AuthorFollowerCount,
		PlayCount:           r.PlayCount,
		LikeCount:           r.LikeCount,
		ShareCount:          r.ShareCount,
		CommentCount:        r.CommentCount,
	}
	if r.Author != nil {
		item.AuthorVerified = r.Author.Verified
		item.AuthorFollowerCount = r.Author.FollowerCount
	}
	if r.Stats != nil {
		item.PlayCount = r.Stats.PlayCount
		item.LikeCount = r.Stats.DiggCount
		item.ShareCount = r.Stats.ShareCount
		item.CommentCount = r.Stats.CommentCount
	}

	return item.Normalized()
}

// decodeJSON parses a JSON array whose elements are objects or strings.
func decodeJSON(data []byte) ([]record, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("decode json batch: %w", err)
	}

	records := make([]record, 0, len(elems))
	for i, raw := range elems {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '"' {
			var text string
			if err := json.Unmarshal(raw, &text); err != nil {
				return nil, fmt.Errorf("decode json record %d: %w", i, err)
			}
			records = append(records, record{Text: text})
			continue
		}

		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode json record %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// decodeYAML parses a YAML sequence whose elements are mappings or scalars.
func decodeYAML(data []byte) ([]record, error) {
	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("decode yaml batch: %w", err)
	}

	records := make([]record, 0, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		if node.Kind == yaml.ScalarNode {
			records = append(records, record{Text: node.Value})
			continue
		}

		var r record
		if err := node.Decode(&r); err != nil {
			return nil, fmt.Errorf("decode yaml record %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// normalize converts records to items, dropping those without text.
func normalize(records []record, logger *slog.Logger) []model.CandidateItem {
	items := make([]model.CandidateItem, 0, len(records))
	for i, r := range records {
		item := r.item()
		if strings.TrimSpace(item.Text) == "" {
			logger.Warn("dropping record without text", "index", i)
			continue
		}
		items = append(items, item)
	}
	return items
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
