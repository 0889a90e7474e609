package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/yigit/agora/internal/pkg/metrics"
)

// ErrFeedClosed is returned when the feed hub has stopped
var ErrFeedClosed = errors.New("feed hub is closed")

// Publisher accepts events for asynchronous delivery
type Publisher interface {
	Publish(ctx context.Context, ev Event) bool
}

// Config controls the dispatcher
type Config struct {
	Workers        int
	QueueSize      int
	MaxRetries     int
	EnqueueTimeout time.Duration
	// DrainTimeout bounds delivery of events still queued at shutdown
	DrainTimeout time.Duration
}

// Dispatcher delivers events on a bounded queue with a fixed worker pool
type Dispatcher struct {
	queue    chan Event
	channels []Channel
	cfg      Config
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	// NewBackOff builds the retry policy for one delivery
	NewBackOff func() backoff.BackOff
}

var _ Publisher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. Call Run to start the workers.
func NewDispatcher(cfg Config, m *metrics.Metrics, logger zerolog.Logger, channels ...Channel) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 10 * time.Second
	}

	return &Dispatcher{
		queue:    make(chan Event, cfg.QueueSize),
		channels: channels,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
		NewBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			return b
		},
	}
}

// Publish enqueues an event. It waits at most EnqueueTimeout and drops the event on overflow.
func (d *Dispatcher) Publish(ctx context.Context, ev Event) bool {
	select {
	case d.queue <- ev:
		return true
	default:
	}

	timer := time.NewTimer(d.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case d.queue <- ev:
		return true
	case <-timer.C:
	case <-ctx.Done():
	}

	d.logger.Warn().
		Str("kind", string(ev.Kind)).
		Int("queueSize", d.cfg.QueueSize).
		Msg("Notification queue full, event dropped")
	for _, ch := range d.channels {
		d.metrics.NotificationOutcome(string(ev.Kind), ch.Name(), metrics.OutcomeDropped)
	}
	return false
}

// Run starts the workers and blocks until ctx is cancelled. Events still queued
// at that point are delivered within DrainTimeout before Run returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	deliverCtx, cancelDeliveries := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelDeliveries()

	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx, deliverCtx)
		}()
	}

	d.logger.Info().Int("workers", d.cfg.Workers).Msg("Notification dispatcher started")
	<-ctx.Done()

	if pending := len(d.queue); pending > 0 {
		d.logger.Info().Int("pending", pending).Msg("Draining notification queue")
	}
	deadline := time.AfterFunc(d.cfg.DrainTimeout, cancelDeliveries)
	defer deadline.Stop()
	wg.Wait()

	if left := len(d.queue); left > 0 {
		d.logger.Warn().Int("pending", left).Msg("Notification dispatcher stopped with pending events")
	}
	return nil
}

// work delivers on deliverCtx, which outlives ctx until the drain deadline
func (d *Dispatcher) work(ctx, deliverCtx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.drain(deliverCtx)
			return
		case ev := <-d.queue:
			d.dispatch(deliverCtx, ev)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for ctx.Err() == nil {
		select {
		case ev := <-d.queue:
			d.dispatch(ctx, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, ev Event) {
	for _, ch := range d.channels {
		for _, delivery := range ch.Deliveries(ev) {
			err := d.deliver(ctx, delivery)
			if err != nil {
				d.logger.Error().
					Err(err).
					Str("kind", string(ev.Kind)).
					Str("channel", ch.Name()).
					Msg("Notification delivery failed")
				d.metrics.NotificationOutcome(string(ev.Kind), ch.Name(), metrics.OutcomeFailed)
				continue
			}
			d.metrics.NotificationOutcome(string(ev.Kind), ch.Name(), metrics.OutcomeDelivered)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, delivery Delivery) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(d.NewBackOff(), uint64(d.cfg.MaxRetries)),
		ctx,
	)

	return backoff.RetryNotify(func() error {
		err := delivery(ctx)
		if errors.Is(err, ErrFeedClosed) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		d.metrics.NotificationRetry()
		d.logger.Debug().Err(err).Dur("wait", wait).Msg("Retrying notification delivery")
	})
}
