// Package notify defines the external notification sink the bus pings after
// every successfully queued message. Notification is fire-and-forget
// observability for live-update consumers (dashboards, websocket fan-out);
// it is independent of delivery outcome and never a delivery path.
package notify

import (
	"context"
	"sync"

	"github.com/casualjim/hoot/messages"
)

// Sink receives a notification for every message the bus accepts.
type Sink interface {
	Notify(ctx context.Context, msg messages.Message) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, msg messages.Message) error

// Notify implements Sink.
func (f SinkFunc) Notify(ctx context.Context, msg messages.Message) error {
	return f(ctx, msg)
}

// ChannelSink exposes queued messages on an in-process channel. When the
// buffer is full the notification is dropped rather than blocking the bus.
type ChannelSink struct {
	ch        chan messages.Message
	closeOnce sync.Once
}

// Channel creates a ChannelSink with the given buffer size.
func Channel(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelSink{
		ch: make(chan messages.Message, buffer),
	}
}

// Notify implements Sink.
func (c *ChannelSink) Notify(ctx context.Context, msg messages.Message) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case c.ch <- msg:
	default:
		// buffer full, drop the notification
	}
	return nil
}

// Messages returns the channel of queued-message notifications.
func (c *ChannelSink) Messages() <-chan messages.Message {
	return c.ch
}

// Close closes the notification channel. Safe to call more than once.
func (c *ChannelSink) Close() {
	c.closeOnce.Do(func() { close(c.ch) })
}
