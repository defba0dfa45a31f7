package hoot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/pkg/slogx"
)

const (
	processBackoff = time.Second
	sweepBackoff   = time.Minute
)

// processLoop drains the queue for the lifetime of the bus. An empty queue
// means a bounded idle sleep, never a busy spin. A fault in one iteration is
// logged and followed by a short backoff; the loop itself only exits on
// cancellation.
func (b *Bus) processLoop(ctx context.Context) {
	defer b.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, ok := b.queue.Get()
		if !ok {
			if !sleep(ctx, b.idleInterval) {
				return
			}
			continue
		}

		if err := b.process(ctx, msg); err != nil {
			slog.Error("message processing error", slogx.Error(err), slogx.LoggerName(b.name))
			if !sleep(ctx, processBackoff) {
				return
			}
		}
	}
}

// process routes and delivers a single message, converting panics into
// errors so the loop can absorb them.
func (b *Bus) process(ctx context.Context, msg messages.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("process %s: %v", msg.ID, r)
		}
	}()
	b.deliver(ctx, msg)
	return nil
}

// sweepLoop periodically evicts expired queue entries and purges stale
// backlog messages. Like the processing loop it absorbs iteration faults and
// keeps going until cancelled.
func (b *Bus) sweepLoop(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.sweep(); err != nil {
				slog.Error("sweep error", slogx.Error(err), slogx.LoggerName(b.name))
				if !sleep(ctx, sweepBackoff) {
					return
				}
			}
		}
	}
}

func (b *Bus) sweep() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep: %v", r)
		}
	}()

	if n := b.queue.ClearExpired(); n > 0 {
		b.expired.Add(int64(n))
		slog.Info("cleared expired messages", slog.Int("count", n), slogx.LoggerName(b.name))
	}

	if n := b.backlog.Purge(b.backlogRetention); n > 0 {
		slog.Debug("purged stale backlog entries", slog.Int("count", n), slogx.LoggerName(b.name))
	}
	return nil
}

// sleep waits for d or until ctx is cancelled, reporting false on
// cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
