package edgecache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/pkordes/webcomics/internal/domain"
)

// QueueConfig sizes the asynchronous purge queue.
type QueueConfig struct {
	Workers     int
	Size        int
	MaxRetries  uint64
	BaseBackoff time.Duration
}

// Queue moves purges off the write path. Publish never blocks: a full or
// closed queue reports domain.ErrPurgeFailed immediately. Workers retry each
// tenant's purge with exponential backoff, giving at-least-once delivery up
// to MaxRetries.
type Queue struct {
	inv  *Invalidator
	cfg  QueueConfig
	jobs chan domain.ContentEvent
	log  *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewQueue starts cfg.Workers workers delivering through inv.
func NewQueue(inv *Invalidator, cfg QueueConfig, log *slog.Logger) *Queue {
	cfg.Workers = max(cfg.Workers, 1)
	cfg.Size = max(cfg.Size, 1)
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 500 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		inv:    inv,
		cfg:    cfg,
		jobs:   make(chan domain.ContentEvent, cfg.Size),
		log:    log,
		cancel: cancel,
	}
	for range cfg.Workers {
		q.wg.Add(1)
		go q.work(ctx)
	}
	return q
}

// Publish enqueues ev.
func (q *Queue) Publish(ctx context.Context, ev domain.ContentEvent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return fmt.Errorf("edgecache.Queue.Publish: %w: queue closed", domain.ErrPurgeFailed)
	}
	select {
	case q.jobs <- ev:
		return nil
	default:
		q.log.WarnContext(ctx, "edge cache queue full, dropping purge", "entity", ev.Entity)
		return fmt.Errorf("edgecache.Queue.Publish: %w: queue full", domain.ErrPurgeFailed)
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
// When ctx ends first, in-flight retries are abandoned.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) work(ctx context.Context) {
	defer q.wg.Done()
	for ev := range q.jobs {
		q.deliver(ctx, ev)
	}
}

// deliver purges each target tenant independently so one failing zone does
// not cause repeat purges of the others.
func (q *Queue) deliver(ctx context.Context, ev domain.ContentEvent) {
	targets, err := q.inv.targets(ctx, ev)
	if err != nil {
		q.log.ErrorContext(ctx, "edge cache purge failed", "entity", ev.Entity, "error", err)
		return
	}
	scope := ScopeFor(ev)
	for _, t := range targets {
		backoff := retry.WithMaxRetries(q.cfg.MaxRetries, retry.NewExponential(q.cfg.BaseBackoff))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := q.inv.purger.Purge(ctx, t, scope); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			q.log.ErrorContext(ctx, "edge cache purge failed",
				"entity", ev.Entity,
				"tenant", t.Slug,
				"error", err,
			)
		}
	}
}
