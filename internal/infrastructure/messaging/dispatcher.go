package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/stagehub/internship-hub/internal/domain/notification"
	"github.com/stagehub/internship-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION DISPATCHER
// ══════════════════════════════════════════════════════════════════════════════

// Dispatcher drains pending notifications from storage and pushes them to
// the configured live channels. Delivery is best-effort: a channel failure
// is recorded on the notification and retried on a later pass until the
// attempt budget is exhausted, but it never fails the workflow that
// produced the notification.
type Dispatcher struct {
	notifications notification.Repository
	channels      []notification.Channel
	retrier       *retry.Retrier
	logger        *slog.Logger

	pollInterval time.Duration
	batchSize    int
	maxAttempts  int

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// DispatcherConfig contains configuration for the Dispatcher.
type DispatcherConfig struct {
	// Notifications is the notification store to drain.
	Notifications notification.Repository

	// Channels are the live transports to push to. A notification is
	// considered delivered when at least one channel accepts it.
	Channels []notification.Channel

	// PollInterval is how often the store is polled for pending
	// notifications.
	PollInterval time.Duration

	// BatchSize is the maximum notifications drained per pass.
	BatchSize int

	// MaxAttempts is the delivery attempt budget per notification.
	MaxAttempts int

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultDispatcherConfig returns sensible defaults.
func DefaultDispatcherConfig(notifications notification.Repository, channels ...notification.Channel) DispatcherConfig {
	return DispatcherConfig{
		Notifications: notifications,
		Channels:      channels,
		PollInterval:  2 * time.Second,
		BatchSize:     50,
		MaxAttempts:   5,
	}
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(config DispatcherConfig) (*Dispatcher, error) {
	if config.Notifications == nil {
		return nil, errors.New("notification repository is required")
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Dispatcher{
		notifications: config.Notifications,
		channels:      config.Channels,
		retrier:       retry.DeliveryRetrier(),
		logger:        config.Logger,
		pollInterval:  config.PollInterval,
		batchSize:     config.BatchSize,
		maxAttempts:   config.MaxAttempts,
	}, nil
}

// Start launches the background polling loop. It is a no-op when the
// dispatcher is already running.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return
	}
	d.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.loop(loopCtx)

	d.logger.Info("notification dispatcher started",
		"poll_interval", d.pollInterval,
		"channels", len(d.channels),
	)
}

// Stop halts the polling loop and waits for the in-flight pass to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.started = false
	d.cancel()
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("notification dispatcher stopped")
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.DeliverPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("delivery pass failed", "error", err)
			}
		}
	}
}

// DeliverPending drains one batch of pending notifications and attempts
// delivery. It returns the number of notifications delivered.
func (d *Dispatcher) DeliverPending(ctx context.Context) (int, error) {
	pending, err := d.notifications.ListUndelivered(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, n := range pending {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if d.deliver(ctx, n) {
			delivered++
		}
	}

	return delivered, nil
}

// deliver pushes a single notification through the live channels and
// persists the delivery outcome. Returns true on success.
func (d *Dispatcher) deliver(ctx context.Context, n *notification.Notification) bool {
	now := time.Now()

	if len(d.channels) == 0 {
		// No live transport configured, nothing to push.
		n.MarkDelivered(now)
		if err := d.notifications.UpdateDelivery(ctx, n); err != nil {
			d.logger.Error("failed to persist delivery state", "notification_id", n.ID, "error", err)
		}
		return true
	}

	var lastErr error
	sent := false
	for _, ch := range d.channels {
		err := d.retrier.Do(ctx, func(ctx context.Context) error {
			if err := ch.Send(ctx, n); err != nil {
				return retry.Retryable(err)
			}
			return nil
		})
		if err != nil {
			lastErr = err
			d.logger.Warn("channel delivery failed",
				"notification_id", n.ID,
				"channel", ch.Name(),
				"error", err,
			)
			continue
		}
		sent = true
	}

	if sent {
		n.MarkDelivered(now)
	} else {
		n.RecordAttempt(lastErr, d.maxAttempts, now)
		if n.DeliveryStatus == notification.DeliveryFailed {
			d.logger.Error("notification delivery abandoned",
				"notification_id", n.ID,
				"recipient_id", n.RecipientID.String(),
				"attempts", n.Attempts,
			)
		}
	}

	if err := d.notifications.UpdateDelivery(ctx, n); err != nil {
		d.logger.Error("failed to persist delivery state", "notification_id", n.ID, "error", err)
		return false
	}

	return sent
}
