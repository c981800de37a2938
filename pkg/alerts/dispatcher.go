package alerts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
)

// Dispatcher wraps one Notifier and reports every attempt as a DeliveryOutcome.
// A Dispatcher without a notifier reports every message as skipped.
type Dispatcher struct {
	notifier Notifier
	channel  string
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher. n may be nil when credentials are absent.
func NewDispatcher(n Notifier, channel string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if n != nil && channel == "" {
		channel = n.Name()
	}
	return &Dispatcher{
		notifier: n,
		channel:  channel,
		logger:   logger.With("component", "dispatcher", "channel", channel),
	}
}

// Enabled reports whether messages will reach a live transport.
func (d *Dispatcher) Enabled() bool { return d.notifier != nil }

// Channel returns the configured channel name.
func (d *Dispatcher) Channel() string { return d.channel }

// Send delivers message at most once. It never returns an error; failures
// are logged and reflected in the outcome.
func (d *Dispatcher) Send(ctx context.Context, message string) model.DeliveryOutcome {
	return d.deliver(func(n Notifier) error {
		return n.Send(ctx, message)
	})
}

// SendAlert delivers one alert, in structured form when the notifier
// supports it and as the rendered message otherwise.
func (d *Dispatcher) SendAlert(ctx context.Context, alert model.Alert) model.DeliveryOutcome {
	return d.deliver(func(n Notifier) error {
		if an, ok := n.(AlertNotifier); ok {
			return an.SendAlert(ctx, alert)
		}
		return n.Send(ctx, alert.Message())
	})
}

func (d *Dispatcher) deliver(send func(Notifier) error) (outcome model.DeliveryOutcome) {
	outcome.Channel = d.channel

	if d.notifier == nil {
		outcome.Status = model.DeliverySkipped
		outcome.Detail = "notifier credentials not configured"
		d.logger.Warn("notification skipped", "reason", outcome.Detail)
		return outcome
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = model.DeliveryFailed
			outcome.Detail = fmt.Sprintf("notifier panic: %v", r)
			d.logger.Error("notification failed", "error", outcome.Detail)
		}
	}()

	if err := send(d.notifier); err != nil {
		outcome.Status = model.DeliveryFailed
		outcome.Detail = err.Error()
		d.logger.Error("notification failed", "error", err)
		return outcome
	}

	outcome.Status = model.DeliverySent
	d.logger.Debug("notification sent")
	return outcome
}
