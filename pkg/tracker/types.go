package tracker

import (
	"context"
	"time"

	"github.com/ogulcanaydogan/viraltrack/pkg/eligibility"
	"github.com/ogulcanaydogan/viraltrack/pkg/model"
)

// DefaultStartupMessage is announced once when Run begins.
const DefaultStartupMessage = "🚀 Viral tracker just started."

// TestMessage is sent by SendTest.
const TestMessage = "✅ Test message from your viral tracker bot is working."

// State is the position of the loop in its cycle.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateFilteringAndProcessing
	StateSleeping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateFilteringAndProcessing:
		return "filtering_and_processing"
	case StateSleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

// Config is fixed at startup and never mutated.
type Config struct {
	PollInterval    time.Duration
	PacingDelay     time.Duration
	AnnounceStartup bool
	StartupMessage  string
	Hashtags        []string
	Categories      []string
	Thresholds      eligibility.Thresholds
}

// Evaluator decides whether an item may produce an alert.
type Evaluator interface {
	Evaluate(item model.CandidateItem) model.EligibilityVerdict
}

// Classifier labels and summarizes an item's text. It must not fail.
type Classifier interface {
	Classify(ctx context.Context, text string) model.ClassificationResult
}

// Dispatcher delivers alerts and plain notices. It must not fail.
type Dispatcher interface {
	Send(ctx context.Context, message string) model.DeliveryOutcome
	SendAlert(ctx context.Context, alert model.Alert) model.DeliveryOutcome
}

// CycleReport summarizes one fetch-and-process pass.
type CycleReport struct {
	ID            string        `json:"id"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Fetched       int           `json:"fetched"`
	Eligible      int           `json:"eligible"`
	NonEnglish    int           `json:"non_english"`
	NotEarlyViral int           `json:"not_early_viral"`
	Sent          int           `json:"sent"`
	Failed        int           `json:"failed"`
	Skipped       int           `json:"skipped"`
	ItemErrors    int           `json:"item_errors"`
	SourceError   string        `json:"source_error,omitempty"`
	Interrupted   bool          `json:"interrupted,omitempty"`
}

// Dispatched returns the number of alerts handed to a live transport.
func (r CycleReport) Dispatched() int { return r.Sent + r.Failed }

// Stats are cumulative counters since the tracker was created.
type Stats struct {
	State         string    `json:"state"`
	Cycles        int64     `json:"cycles"`
	Fetched       int64     `json:"fetched"`
	Eligible      int64     `json:"eligible"`
	NonEnglish    int64     `json:"non_english"`
	NotEarlyViral int64     `json:"not_early_viral"`
	Sent          int64     `json:"sent"`
	Failed        int64     `json:"failed"`
	Skipped       int64     `json:"skipped"`
	ItemErrors    int64     `json:"item_errors"`
	SourceErrors  int64     `json:"source_errors"`
	LastCycleID   string    `json:"last_cycle_id,omitempty"`
	LastCycleAt   time.Time `json:"last_cycle_at,omitzero"`
}

// Analysis is the side-effect-free result of running one item through the
// filter and, when eligible, the classifier.
type Analysis struct {
	Verdict        model.EligibilityVerdict    `json:"verdict"`
	Classification *model.ClassificationResult `json:"classification,omitempty"`
	Message        string                      `json:"message,omitempty"`
}
