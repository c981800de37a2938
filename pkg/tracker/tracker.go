// Package tracker drives the polling loop: fetch a batch, filter each item,
// classify and alert on the eligible ones, pace, sleep, repeat.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/viraltrack/pkg/model"
	"github.com/ogulcanaydogan/viraltrack/pkg/source"
)

// ErrAlreadyRunning is returned by Run when another Run is in progress.
var ErrAlreadyRunning = errors.New("tracker is already running")

// Deps are the collaborators the loop drives.
type Deps struct {
	Source     source.Source
	Filter     Evaluator
	Classifier Classifier
	Dispatcher Dispatcher
	Clock      Clock
	Logger     *slog.Logger
}

// Tracker runs the fetch, filter, classify, notify pipeline.
type Tracker struct {
	cfg        Config
	source     source.Source
	filter     Evaluator
	classifier Classifier
	dispatcher Dispatcher
	clock      Clock
	logger     *slog.Logger

	state   atomic.Int32
	running atomic.Bool
	cycleMu sync.Mutex
	stats   counters
}

type counters struct {
	cycles        atomic.Int64
	fetched       atomic.Int64
	eligible      atomic.Int64
	nonEnglish    atomic.Int64
	notEarlyViral atomic.Int64
	sent          atomic.Int64
	failed        atomic.Int64
	skipped       atomic.Int64
	itemErrors    atomic.Int64
	sourceErrors  atomic.Int64

	mu          sync.Mutex
	lastCycleID string
	lastCycleAt time.Time
}

// New creates a Tracker. Clock and Logger are optional.
func New(cfg Config, deps Deps) (*Tracker, error) {
	switch {
	case deps.Source == nil:
		return nil, fmt.Errorf("tracker: source is required")
	case deps.Filter == nil:
		return nil, fmt.Errorf("tracker: filter is required")
	case deps.Classifier == nil:
		return nil, fmt.Errorf("tracker: classifier is required")
	case deps.Dispatcher == nil:
		return nil, fmt.Errorf("tracker: dispatcher is required")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("tracker: poll interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.PacingDelay < 0 {
		return nil, fmt.Errorf("tracker: pacing delay must not be negative, got %s", cfg.PacingDelay)
	}
	if cfg.StartupMessage == "" {
		cfg.StartupMessage = DefaultStartupMessage
	}

	clock := deps.Clock
	if clock == nil {
		clock = RealClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Tracker{
		cfg:        cfg,
		source:     deps.Source,
		filter:     deps.Filter,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		clock:      clock,
		logger:     logger.With("component", "tracker"),
	}, nil
}

// State returns the current loop state.
func (t *Tracker) State() State { return State(t.state.Load()) }

func (t *Tracker) setState(s State) { t.state.Store(int32(s)) }

// Stats returns a snapshot of the cumulative counters.
func (t *Tracker) Stats() Stats {
	t.stats.mu.Lock()
	lastID, lastAt := t.stats.lastCycleID, t.stats.lastCycleAt
	t.stats.mu.Unlock()

	return Stats{
		State:         t.State().String(),
		Cycles:        t.stats.cycles.Load(),
		Fetched:       t.stats.fetched.Load(),
		Eligible:      t.stats.eligible.Load(),
		NonEnglish:    t.stats.nonEnglish.Load(),
		NotEarlyViral: t.stats.notEarlyViral.Load(),
		Sent:          t.stats.sent.Load(),
		Failed:        t.stats.failed.Load(),
		Skipped:       t.stats.skipped.Load(),
		ItemErrors:    t.stats.itemErrors.Load(),
		SourceErrors:  t.stats.sourceErrors.Load(),
		LastCycleID:   lastID,
		LastCycleAt:   lastAt,
	}
}

// Run loops until ctx is cancelled. A cancelled context is a normal
// shutdown and yields a nil error.
func (t *Tracker) Run(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer t.running.Store(false)
	defer t.setState(StateIdle)

	t.logger.Info("tracker started",
		"poll_interval", t.cfg.PollInterval,
		"pacing_delay", t.cfg.PacingDelay,
		"source", t.source.Name(),
	)

	if t.cfg.AnnounceStartup {
		outcome := t.dispatcher.Send(ctx, t.cfg.StartupMessage)
		t.logger.Info("startup announcement", "status", outcome.Status)
	}

	for {
		t.RunCycle(ctx)
		if ctx.Err() != nil {
			break
		}

		t.setState(StateSleeping)
		if err := t.clock.Sleep(ctx, t.cfg.PollInterval); err != nil {
			break
		}
		t.setState(StateIdle)
	}

	t.logger.Info("tracker stopped")
	return nil
}

// RunCycle performs exactly one fetch and processes the batch. Cycles never
// overlap: concurrent callers wait for the running cycle to finish.
func (t *Tracker) RunCycle(ctx context.Context) CycleReport {
	t.cycleMu.Lock()
	defer t.cycleMu.Unlock()
	defer t.setState(StateIdle)

	report := CycleReport{
		ID:        uuid.New().String(),
		StartedAt: t.clock.Now(),
	}
	logger := t.logger.With("cycle_id", report.ID)

	t.setState(StateFetching)
	items, err := t.fetch(ctx)
	if err != nil {
		report.SourceError = err.Error()
		t.stats.sourceErrors.Add(1)
		logger.Warn("source unavailable, treating as empty batch", "source", t.source.Name(), "error", err)
	}
	report.Fetched = len(items)

	t.setState(StateFilteringAndProcessing)
	for i, item := range items {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}

		dispatched, err := t.processItem(ctx, item, &report)
		if err != nil {
			report.ItemErrors++
			logger.Error("item processing failed", "index", i, "text", item.Text, "error", err)
			continue
		}

		if dispatched && t.cfg.PacingDelay > 0 {
			if err := t.clock.Sleep(ctx, t.cfg.PacingDelay); err != nil {
				report.Interrupted = true
				break
			}
		}
	}

	report.Duration = t.clock.Now().Sub(report.StartedAt)
	t.record(report)

	logger.Info("cycle completed",
		"fetched", report.Fetched,
		"eligible", report.Eligible,
		"sent", report.Sent,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"item_errors", report.ItemErrors,
		"duration", report.Duration,
	)
	return report
}

// fetch shields the loop from a panicking source.
func (t *Tracker) fetch(ctx context.Context) (items []model.CandidateItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("source panic: %v", r)
		}
	}()
	return t.source.Fetch(ctx)
}

// processItem handles one item. It reports whether an alert reached a live
// transport, which is what pacing applies to.
func (t *Tracker) processItem(ctx context.Context, item model.CandidateItem, report *CycleReport) (dispatched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			dispatched, err = false, fmt.Errorf("panic: %v", r)
		}
	}()

	verdict := t.filter.Evaluate(item)
	switch verdict.Reason {
	case model.ReasonNonEnglish:
		report.NonEnglish++
	case model.ReasonNotEarlyViral:
		report.NotEarlyViral++
	}
	if !verdict.Eligible {
		t.logger.Debug("item rejected", "reason", verdict.Reason, "language", verdict.Language)
		return false, nil
	}
	report.Eligible++

	result := t.classifier.Classify(ctx, item.Text)
	alert := model.NewAlert(item, result)

	outcome := t.dispatcher.SendAlert(ctx, alert)
	switch outcome.Status {
	case model.DeliverySent:
		report.Sent++
	case model.DeliveryFailed:
		report.Failed++
	case model.DeliverySkipped:
		report.Skipped++
	}

	t.logger.Info("alert dispatched",
		"category", result.Category,
		"degraded", result.Degraded(),
		"status", outcome.Status,
	)
	return outcome.Dispatched(), nil
}

func (t *Tracker) record(report CycleReport) {
	t.stats.cycles.Add(1)
	t.stats.fetched.Add(int64(report.Fetched))
	t.stats.eligible.Add(int64(report.Eligible))
	t.stats.nonEnglish.Add(int64(report.NonEnglish))
	t.stats.notEarlyViral.Add(int64(report.NotEarlyViral))
	t.stats.sent.Add(int64(report.Sent))
	t.stats.failed.Add(int64(report.Failed))
	t.stats.skipped.Add(int64(report.Skipped))
	t.stats.itemErrors.Add(int64(report.ItemErrors))

	t.stats.mu.Lock()
	t.stats.lastCycleID = report.ID
	t.stats.lastCycleAt = report.StartedAt
	t.stats.mu.Unlock()
}

// SendTest sends one fixed test notification outside the cycle.
func (t *Tracker) SendTest(ctx context.Context) model.DeliveryOutcome {
	outcome := t.dispatcher.Send(ctx, TestMessage)
	t.logger.Info("test notification", "status", outcome.Status, "channel", outcome.Channel)
	return outcome
}

// Analyze runs item through the filter and, if eligible, the classifier.
// It never sends a notification.
func (t *Tracker) Analyze(ctx context.Context, item model.CandidateItem) Analysis {
	analysis := Analysis{Verdict: t.filter.Evaluate(item)}
	if !analysis.Verdict.Eligible {
		return analysis
	}

	result := t.classifier.Classify(ctx, item.Text)
	analysis.Classification = &result
	analysis.Message = model.NewAlert(item, result).Message()
	return analysis
}

// Pending reports how many items the source has queued but not yet
// returned. ok is false when the source keeps no queue or cannot tell.
func (t *Tracker) Pending(ctx context.Context) (n int64, ok bool) {
	b, isBacklog := t.source.(source.Backlog)
	if !isBacklog {
		return 0, false
	}

	n, err := b.Pending(ctx)
	if err != nil {
		t.logger.Warn("count pending items", "source", t.source.Name(), "error", err)
		return 0, false
	}
	return n, true
}
