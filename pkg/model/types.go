package model

import (
	"fmt"
	"strings"
)

// Sentinel values substituted when the classification provider fails.
const (
	UnknownCategory = "Unknown"
	NoSummary       = "No summary"
)

// CandidateItem is one content unit considered for alerting.
type CandidateItem struct {
	Text                string `json:"text" yaml:"text" db:"text"`
	AuthorVerified      bool   `json:"author_verified" yaml:"author_verified" db:"author_verified"`
	AuthorFollowerCount int64  `json:"author_follower_count" yaml:"author_follower_count" db:"author_follower_count"`
	PlayCount           int64  `json:"play_count" yaml:"play_count" db:"play_count"`
	LikeCount           int64  `json:"like_count" yaml:"like_count" db:"like_count"`
	ShareCount          int64  `json:"share_count" yaml:"share_count" db:"share_count"`
	CommentCount        int64  `json:"comment_count" yaml:"comment_count" db:"comment_count"`
}

// Normalized returns a copy of c with negative counters clamped to zero.
func (c CandidateItem) Normalized() CandidateItem {
	c.AuthorFollowerCount = max(c.AuthorFollowerCount, 0)
	c.PlayCount = max(c.PlayCount, 0)
	c.LikeCount = max(c.LikeCount, 0)
	c.ShareCount = max(c.ShareCount, 0)
	c.CommentCount = max(c.CommentCount, 0)
	return c
}

// Reason tags which gate decided an eligibility verdict.
type Reason string

const (
	ReasonNonEnglish    Reason = "non-english"
	ReasonNotEarlyViral Reason = "not-early-viral"
	ReasonEligible      Reason = "eligible"
)

// EligibilityVerdict is the pass/fail outcome of language and virality gating.
type EligibilityVerdict struct {
	Eligible bool   `json:"eligible"`
	Reason   Reason `json:"reason"`
	Language string `json:"language,omitempty"` // ISO 639-1, empty when detection was inconclusive
}

// ClassificationResult always carries both fields, sentinels included.
type ClassificationResult struct {
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

// Degraded reports whether either field fell back to its sentinel.
func (r ClassificationResult) Degraded() bool {
	return r.Category == UnknownCategory || r.Summary == NoSummary
}

// Alert is the composed notification for one eligible item.
type Alert struct {
	Summary  string `json:"summary"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

// NewAlert builds an alert from an item and its classification.
func NewAlert(item CandidateItem, result ClassificationResult) Alert {
	return Alert{
		Summary:  result.Summary,
		Category: result.Category,
		Text:     item.Text,
	}
}

// Message renders the alert with the fixed human-readable template.
func (a Alert) Message() string {
	var b strings.Builder
	b.WriteString("🚀 Early viral content detected!\n\n")
	fmt.Fprintf(&b, "📝 Summary: %s\n", a.Summary)
	fmt.Fprintf(&b, "🏷️ Category: %s\n\n", a.Category)
	fmt.Fprintf(&b, "💬 Original: %s", a.Text)
	return b.String()
}

// DeliveryStatus is the outcome class of a single notification attempt.
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliverySkipped DeliveryStatus = "skipped"
)

// DeliveryOutcome reports what happened to one outbound message.
type DeliveryOutcome struct {
	Status  DeliveryStatus `json:"status"`
	Channel string         `json:"channel,omitempty"`
	Detail  string         `json:"detail,omitempty"`
}

// Dispatched reports whether the message was handed to a live transport.
func (o DeliveryOutcome) Dispatched() bool {
	return o.Status == DeliverySent || o.Status == DeliveryFailed
}
