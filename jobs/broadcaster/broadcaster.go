// Package broadcaster drains the execution outbox to a message broker.
package broadcaster

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"matchbook/infra/outbox"
)

const (
	DefaultInterval   = 250 * time.Millisecond
	DefaultMaxRetries = 5
)

var errStopPass = errors.New("stop pass")

// Broadcaster publishes pending outbox records in sequence order. A failed
// publish ends the pass so later records never overtake earlier ones; the
// record is retried on the next tick and marked FAILED once it has used up
// its attempts.
type Broadcaster struct {
	out *outbox.Outbox
	pub Publisher
	log *zap.Logger

	interval   time.Duration
	maxRetries uint32
	prune      bool
}

type Option func(*Broadcaster)

func WithInterval(d time.Duration) Option {
	return func(b *Broadcaster) {
		if d > 0 {
			b.interval = d
		}
	}
}

func WithMaxRetries(n uint32) Option {
	return func(b *Broadcaster) {
		if n > 0 {
			b.maxRetries = n
		}
	}
}

// WithPruning deletes ACKED records after every pass.
func WithPruning(on bool) Option {
	return func(b *Broadcaster) { b.prune = on }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Broadcaster) {
		if l != nil {
			b.log = l
		}
	}
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(out *outbox.Outbox, pub Publisher, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		out:        out,
		pub:        pub,
		log:        zap.NewNop(),
		interval:   DefaultInterval,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.Named("broadcaster")
	return b
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run drains the outbox every interval until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("started", zap.Duration("interval", b.interval))

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("stopped")
			return
		case <-ticker.C:
			if _, err := b.DrainOnce(ctx); err != nil {
				b.log.Error("drain failed", zap.Error(err))
			}
		}
	}
}

// DrainOnce makes one pass over pending records and returns how many were
// acknowledged by the broker.
func (b *Broadcaster) DrainOnce(ctx context.Context) (int, error) {
	acked := 0
	err := b.out.Pending(func(rec outbox.Record) error {
		if ctx.Err() != nil {
			return errStopPass
		}

		if rec.Retries >= b.maxRetries {
			b.log.Error("giving up on execution", zap.Uint64("seq", rec.Seq), zap.Uint32("retries", rec.Retries))
			return b.out.MarkFailed(rec.Seq)
		}

		// 1. mark SENT first so a crash mid-publish still counts the attempt
		if err := b.out.MarkSent(rec.Seq); err != nil {
			return err
		}

		// 2. publish
		key := strconv.AppendUint(nil, rec.Seq, 10)
		if err := b.pub.Publish(ctx, key, rec.Payload); err != nil {
			b.log.Warn("publish failed, retrying next pass",
				zap.Uint64("seq", rec.Seq),
				zap.Uint32("attempt", rec.Retries+1),
				zap.Error(err),
			)
			return errStopPass
		}

		// 3. mark ACKED
		if err := b.out.MarkAcked(rec.Seq); err != nil {
			return err
		}
		acked++
		return nil
	})
	if err != nil && !errors.Is(err, errStopPass) {
		return acked, err
	}

	if b.prune && acked > 0 {
		if _, err := b.out.PruneAcked(); err != nil {
			return acked, err
		}
	}
	return acked, nil
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.pub.Close()
}
