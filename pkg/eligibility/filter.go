package eligibility

import "github.com/ogulcanaydogan/viraltrack/pkg/model"

// English is the only language that passes the language gate.
const English = "en"

// Thresholds parameterizes the virality gate.
type Thresholds struct {
	MaxFollowers int64 `mapstructure:"max_followers"` // exclusive upper bound on author followers
	MaxPlays     int64 `mapstructure:"max_plays"`     // exclusive upper bound on plays
	MinLikes     int64 `mapstructure:"min_likes"`     // exclusive lower bound on likes
	MinShares    int64 `mapstructure:"min_shares"`    // inclusive lower bound on shares
	MaxComments  int64 `mapstructure:"max_comments"`  // exclusive upper bound on comments
}

// DefaultThresholds returns the early-virality heuristic used in production.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxFollowers: 10_000,
		MaxPlays:     500,
		MinLikes:     20,
		MinShares:    10,
		MaxComments:  10,
	}
}

// LanguageDetector identifies the language of a text.
// ok is false when detection is inconclusive.
type LanguageDetector interface {
	Detect(text string) (code string, ok bool)
}

// Filter decides whether a candidate item is eligible for alerting.
// It holds no mutable state; Evaluate is safe for concurrent use.
type Filter struct {
	thresholds Thresholds
	detector   LanguageDetector
}

// NewFilter creates a filter. A nil detector rejects every item as non-English.
func NewFilter(thresholds Thresholds, detector LanguageDetector) *Filter {
	return &Filter{thresholds: thresholds, detector: detector}
}

// Thresholds returns the configured virality thresholds.
func (f *Filter) Thresholds() Thresholds {
	return f.thresholds
}

// Evaluate runs the language gate, then the virality gate.
func (f *Filter) Evaluate(item model.CandidateItem) model.EligibilityVerdict {
	lang, ok := f.detect(item.Text)
	if !ok || lang != English {
		return model.EligibilityVerdict{Reason: model.ReasonNonEnglish, Language: lang}
	}

	if !IsNonInfluencer(item, f.thresholds) || !IsEarlyViral(item, f.thresholds) {
		return model.EligibilityVerdict{Reason: model.ReasonNotEarlyViral, Language: lang}
	}

	return model.EligibilityVerdict{Eligible: true, Reason: model.ReasonEligible, Language: lang}
}

func (f *Filter) detect(text string) (string, bool) {
	if f.detector == nil || text == "" {
		return "", false
	}
	return f.detector.Detect(text)
}

// IsNonInfluencer reports whether the author is unverified and below the follower ceiling.
func IsNonInfluencer(item model.CandidateItem, t Thresholds) bool {
	return !item.AuthorVerified && item.AuthorFollowerCount < t.MaxFollowers
}

// IsEarlyViral reports whether engagement outpaces reach: few plays and comments,
// many likes and shares.
func IsEarlyViral(item model.CandidateItem, t Thresholds) bool {
	return item.PlayCount < t.MaxPlays &&
		item.LikeCount > t.MinLikes &&
		item.ShareCount >= t.MinShares &&
		item.CommentCount < t.MaxComments
}
