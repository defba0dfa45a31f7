package hoot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/casualjim/hoot/groups"
	"github.com/casualjim/hoot/internal/backlog"
	"github.com/casualjim/hoot/internal/history"
	"github.com/casualjim/hoot/internal/queue"
	"github.com/casualjim/hoot/internal/registry"
	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/notify"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/fogfish/opts"
)

// Handler receives a message delivered to its address. Handlers run on their
// own goroutine per delivery and may block; the bus joins all handlers for
// one message before moving to the next.
type Handler func(ctx context.Context, msg messages.Message) error

// Lifecycle errors.
var (
	ErrAlreadyRunning = errors.New("hoot: bus already running")
	ErrNotRunning     = errors.New("hoot: bus not running")
	ErrNilHandler     = errors.New("hoot: handler cannot be nil")
)

// State is the bus lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Bus is the communication core: a priority-ordered, TTL-aware message queue
// with subscriber routing, concurrent delivery, and retry of failed
// deliveries. Construct with New, then Start to begin delivering.
type Bus struct {
	name             string
	queueCapacity    int
	historyCapacity  int
	idleInterval     time.Duration
	sweepInterval    time.Duration
	backlogRetention time.Duration
	groups           groups.Resolver
	notifier         notify.Sink

	queue    *queue.Queue
	history  *history.Ring
	backlog  *backlog.Store
	registry *registry.Registry[Handler]

	filterMu sync.RWMutex
	filters  []Filter

	state  atomic.Int32
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startedAt   time.Time
	lastMessage atomic.Pointer[time.Time]

	sent      atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
	expired   atomic.Int64
}

// Options for New.
var (
	// Name identifies the bus in log output.
	Name = opts.ForName[Bus, string]("name")

	// QueueCapacity bounds the number of in-flight messages. Send fails
	// fast once the queue is full.
	QueueCapacity = opts.ForName[Bus, int]("queueCapacity")

	// HistoryCapacity bounds the message history ring; oldest entries are
	// evicted first.
	HistoryCapacity = opts.ForName[Bus, int]("historyCapacity")

	// IdleInterval is how long the processing loop sleeps when the queue
	// is empty.
	IdleInterval = opts.ForName[Bus, time.Duration]("idleInterval")

	// SweepInterval is how often expired messages and stale backlog
	// entries are evicted.
	SweepInterval = opts.ForName[Bus, time.Duration]("sweepInterval")

	// BacklogRetention is how long failed deliveries stay eligible for
	// retry before the sweep purges them.
	BacklogRetention = opts.ForName[Bus, time.Duration]("backlogRetention")

	// Groups plugs in the resolver used for "group:<name>" recipients.
	Groups = opts.ForName[Bus, groups.Resolver]("groups")

	// Notifier receives a notification for every successfully queued
	// message, independent of delivery outcome.
	Notifier = opts.ForName[Bus, notify.Sink]("notifier")
)

// New creates a bus. It panics when an option is invalid, mirroring how
// misconfiguration is a programming error rather than a runtime condition.
func New(options ...opts.Option[Bus]) *Bus {
	b := &Bus{
		name:             "hoot",
		queueCapacity:    1000,
		historyCapacity:  10000,
		idleInterval:     100 * time.Millisecond,
		sweepInterval:    5 * time.Minute,
		backlogRetention: time.Hour,
		startedAt:        time.Now(),
	}
	if err := opts.Apply(b, options); err != nil {
		panic(err)
	}

	b.queue = queue.New(b.queueCapacity)
	b.history = history.New(b.historyCapacity)
	b.backlog = backlog.New()
	b.registry = registry.New[Handler]()
	return b
}

// State returns the current lifecycle state.
func (b *Bus) State() State {
	return State(b.state.Load())
}

// Start launches the processing and sweep loops. It returns
// ErrAlreadyRunning when the bus is not stopped. The loops run until Stop is
// called or ctx is cancelled.
func (b *Bus) Start(ctx context.Context) error {
	if !b.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	b.wg.Add(2)
	go b.processLoop(runCtx)
	go b.sweepLoop(runCtx)

	b.state.Store(int32(StateRunning))
	slog.Info("bus started", slogx.LoggerName(b.name))
	return nil
}

// Stop cooperatively cancels both background loops and waits for them to
// exit, bounded by ctx. The bus ends up stopped either way; a ctx error only
// means the wait gave up before the loops acknowledged.
func (b *Bus) Stop(ctx context.Context) error {
	if !b.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return ErrNotRunning
	}
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	defer func() {
		b.state.Store(int32(StateStopped))
		slog.Info("bus stopped", slogx.LoggerName(b.name))
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send queues a message for delivery. It returns false when a filter rejects
// the message, the TTL has already elapsed, or the queue is full; the caller
// may resubmit. Sending is legal before Start, messages simply wait in the
// queue.
func (b *Bus) Send(msg messages.Message) bool {
	if !b.allow(msg) {
		slog.Debug("message filtered out", slog.String("id", msg.ID), slogx.LoggerName(b.name))
		return false
	}

	if msg.Expired() {
		b.expired.Add(1)
		slog.Warn("expired message discarded", slog.String("id", msg.ID), slogx.LoggerName(b.name))
		return false
	}

	if !b.queue.Put(msg) {
		slog.Warn("queue full, dropping message",
			slog.String("id", msg.ID),
			slog.Int("capacity", b.queue.Cap()),
			slogx.LoggerName(b.name))
		return false
	}

	b.sent.Add(1)
	now := time.Now()
	b.lastMessage.Store(&now)
	b.history.Append(msg)

	if b.notifier != nil {
		if err := b.notifier.Notify(context.Background(), msg); err != nil {
			slog.Warn("notification sink failed", slogx.Error(err), slogx.LoggerName(b.name))
		}
	}

	slog.Debug("message queued",
		slog.String("sender", msg.Sender),
		slog.String("recipient", msg.Recipient),
		slogx.LoggerName(b.name))
	return true
}

// Subscribe registers the handler for an address, replacing any previous
// subscription atomically. A synthetic status update from the system address
// confirms the subscription.
func (b *Bus) Subscribe(address string, handler Handler) error {
	if handler == nil {
		return ErrNilHandler
	}
	b.registry.Set(address, handler)
	slog.Info("subscriber registered", slog.String("address", address), slogx.LoggerName(b.name))

	welcome := messages.New(messages.System, address, map[string]any{"status": "subscribed"}).
		WithType(messages.TypeStatusUpdate)
	b.Send(welcome)
	return nil
}

// Unsubscribe removes the address's handler and discards its retry backlog.
// No-op for unknown addresses.
func (b *Bus) Unsubscribe(address string) {
	b.registry.Del(address)
	b.backlog.Drop(address)
	slog.Info("subscriber removed", slog.String("address", address), slogx.LoggerName(b.name))
}

// RetryFailedDeliveries resubmits the non-expired backlog of the given
// addresses (all addresses when none are given) through the normal send
// path and returns how many messages were requeued. The backlog is cleared
// before resubmission, so a retry that fails again cannot double up.
// Expired backlog entries are dropped silently.
func (b *Bus) RetryFailedDeliveries(addresses ...string) int {
	if len(addresses) == 0 {
		addresses = b.backlog.Addresses()
	}

	retried := 0
	for _, address := range addresses {
		for _, msg := range b.backlog.Take(address) {
			if msg.Expired() {
				continue
			}
			if b.Send(msg) {
				retried++
			}
		}
	}

	if retried > 0 {
		slog.Info("retried failed deliveries", slog.Int("count", retried), slogx.LoggerName(b.name))
	}
	return retried
}

// BroadcastSystem sends a high-priority message from the system address to
// every subscriber.
func (b *Bus) BroadcastSystem(content any, t messages.Type) bool {
	msg := messages.New(messages.System, messages.Broadcast, content).
		WithType(t).
		WithPriority(messages.PriorityHigh)
	return b.Send(msg)
}
