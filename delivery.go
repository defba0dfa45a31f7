package hoot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/pkg/slogx"
)

// deliver fans a message out to every resolved recipient concurrently, joins
// all handlers, and returns (delivered, failed). A direct message whose
// recipient is not subscribed counts as one failure; an empty broadcast or
// group fan-out counts as nothing. Both totals flow into the bus counters.
func (b *Bus) deliver(ctx context.Context, msg messages.Message) (int, int) {
	recipients := b.resolve(ctx, msg)
	if len(recipients) == 0 {
		if b.isDirect(msg) {
			// unroutable: lumped in with callback failures in the stats,
			// callers only ever see the combined count
			b.failed.Add(1)
			slog.Warn("message unroutable",
				slog.String("id", msg.ID),
				slog.String("recipient", msg.Recipient),
				slogx.LoggerName(b.name))
			return 0, 1
		}
		return 0, 0
	}

	results := make([]bool, len(recipients))
	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, recipient string) {
			defer wg.Done()
			results[i] = b.deliverTo(ctx, recipient, msg)
		}(i, recipient)
	}
	wg.Wait()

	delivered, failed := 0, 0
	for _, ok := range results {
		if ok {
			delivered++
		} else {
			failed++
		}
	}

	b.delivered.Add(int64(delivered))
	b.failed.Add(int64(failed))
	if failed > 0 {
		slog.Warn("delivery failures",
			slog.String("id", msg.ID),
			slog.Int("failed", failed),
			slogx.LoggerName(b.name))
	}
	return delivered, failed
}

func (b *Bus) isDirect(msg messages.Message) bool {
	if msg.IsBroadcast() {
		return false
	}
	_, isGroup := msg.GroupName()
	return !isGroup
}

// deliverTo invokes one recipient's handler with a per-recipient copy of the
// message. Handler errors and panics are absorbed: the original message goes
// on the recipient's backlog for a later retry and the delivery counts as
// failed, without affecting sibling deliveries.
func (b *Bus) deliverTo(ctx context.Context, recipient string, msg messages.Message) (ok bool) {
	handler, found := b.registry.Get(recipient)
	if !found {
		// unsubscribed between resolve and delivery
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("handler panicked",
				slog.String("recipient", recipient),
				slogx.Error(fmt.Errorf("%v", r)),
				slogx.LoggerName(b.name))
			b.backlog.Append(recipient, msg)
			ok = false
		}
	}()

	if err := handler(ctx, msg.For(recipient)); err != nil {
		slog.Error("delivery failed",
			slog.String("recipient", recipient),
			slogx.Error(err),
			slogx.LoggerName(b.name))
		b.backlog.Append(recipient, msg)
		return false
	}

	slog.Debug("message delivered", slog.String("recipient", recipient), slogx.LoggerName(b.name))
	return true
}
