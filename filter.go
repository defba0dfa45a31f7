package hoot

import (
	"log/slog"
	"slices"

	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/pkg/slogx"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Filter decides whether a message may enter the queue. Filters run in
// registration order and the first rejection wins.
type Filter func(msg messages.Message) bool

// AddFilter registers a filter consulted on every Send.
func (b *Bus) AddFilter(f Filter) {
	if f == nil {
		return
	}
	b.filterMu.Lock()
	b.filters = append(b.filters, f)
	count := len(b.filters)
	b.filterMu.Unlock()

	slog.Info("message filter added", slog.Int("total", count), slogx.LoggerName(b.name))
}

// allow runs the registered filters in order, short-circuiting on the first
// rejection. A panicking filter is logged and treated as a pass so one bad
// filter cannot wedge the whole bus.
func (b *Bus) allow(msg messages.Message) bool {
	b.filterMu.RLock()
	filters := b.filters
	b.filterMu.RUnlock()

	for _, f := range filters {
		if !b.applyFilter(f, msg) {
			return false
		}
	}
	return true
}

func (b *Bus) applyFilter(f Filter, msg messages.Message) (pass bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("message filter panicked", slog.Any("panic", r), slogx.LoggerName(b.name))
			pass = true
		}
	}()
	return f(msg)
}

// ContentFilter builds a filter that inspects the message content at a gjson
// path. Content that cannot be serialized passes unfiltered; the bus treats
// payloads as opaque and refuses to reject what it cannot read.
func ContentFilter(path string, match func(value gjson.Result) bool) Filter {
	return func(msg messages.Message) bool {
		data, err := json.Marshal(msg.Content)
		if err != nil {
			return true
		}
		return match(gjson.GetBytes(data, path))
	}
}

// MaxPriority builds a filter that rejects messages above the given
// priority.
func MaxPriority(p messages.Priority) Filter {
	return func(msg messages.Message) bool {
		return msg.Priority <= p
	}
}

// DenySender builds a filter that rejects messages from the listed
// addresses.
func DenySender(addresses ...string) Filter {
	return func(msg messages.Message) bool {
		return !slices.Contains(addresses, msg.Sender)
	}
}
