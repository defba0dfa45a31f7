package hoot

import (
	"time"

	"github.com/go-openapi/strfmt"
)

// Statistics is a read-only snapshot of bus activity. Computing one never
// mutates bus state; two back-to-back calls on an idle bus return the same
// numbers.
type Statistics struct {
	Name  string `json:"name"`
	State string `json:"state"`

	MessagesSent      int64 `json:"messages_sent"`
	MessagesDelivered int64 `json:"messages_delivered"`
	MessagesFailed    int64 `json:"messages_failed"`
	MessagesExpired   int64 `json:"messages_expired"`

	ActiveSubscribers    int     `json:"active_subscribers"`
	QueueSize            int     `json:"queue_size"`
	QueueCapacity        int     `json:"queue_capacity"`
	QueueUtilization     float64 `json:"queue_utilization"`
	HistorySize          int     `json:"history_size"`
	FailedDeliveryQueues int     `json:"failed_delivery_queues"`
	MessageFilters       int     `json:"message_filters"`

	StartedAt     strfmt.DateTime  `json:"started_at"`
	LastMessageAt *strfmt.DateTime `json:"last_message_at,omitempty"`
	UptimeSeconds float64          `json:"uptime_seconds"`

	// SuccessRate is delivered / max(1, sent) * 100.
	SuccessRate float64 `json:"success_rate"`
}

// Statistics returns the current snapshot.
func (b *Bus) Statistics() Statistics {
	b.filterMu.RLock()
	filterCount := len(b.filters)
	b.filterMu.RUnlock()

	sent := b.sent.Load()
	delivered := b.delivered.Load()

	stats := Statistics{
		Name:  b.name,
		State: b.State().String(),

		MessagesSent:      sent,
		MessagesDelivered: delivered,
		MessagesFailed:    b.failed.Load(),
		MessagesExpired:   b.expired.Load(),

		ActiveSubscribers:    b.registry.Len(),
		QueueSize:            b.queue.Len(),
		QueueCapacity:        b.queue.Cap(),
		HistorySize:          b.history.Len(),
		FailedDeliveryQueues: b.backlog.Len(),
		MessageFilters:       filterCount,

		StartedAt:     strfmt.DateTime(b.startedAt),
		UptimeSeconds: time.Since(b.startedAt).Seconds(),
	}

	stats.QueueUtilization = float64(stats.QueueSize) / float64(stats.QueueCapacity) * 100

	if last := b.lastMessage.Load(); last != nil {
		at := strfmt.DateTime(*last)
		stats.LastMessageAt = &at
	}

	divisor := sent
	if divisor < 1 {
		divisor = 1
	}
	stats.SuccessRate = float64(delivered) / float64(divisor) * 100

	return stats
}
