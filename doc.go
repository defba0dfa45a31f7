/*
Package hoot provides an in-process message bus that coordinates task dispatch
between independently addressable agents, with priority-ordered queueing,
TTL-aware expiry, broadcast and group routing, and best-effort retry of failed
deliveries.

The package implements the communication core of an agent system through a few
key abstractions:

  - Messages: immutable values carrying opaque content between addresses
  - Subscribers: per-address delivery handlers invoked concurrently
  - Routing: direct, broadcast, and pluggable group resolution
  - Backlog: per-address retry store for failed deliveries
  - Statistics: a read-only projection of bus activity

# Basic Usage

A typical setup subscribes a handler per agent address, starts the bus, and
sends prioritized messages:

	bus := hoot.New(
		hoot.QueueCapacity(1000),
		hoot.Groups(groups.Static{"reviewers": {"alice", "bob"}}),
	)

	_ = bus.Subscribe("alice", func(ctx context.Context, msg messages.Message) error {
		// handle the message
		return nil
	})

	if err := bus.Start(ctx); err != nil {
		// Handle error
	}
	defer bus.Stop(ctx)

	bus.Send(messages.New("planner", "alice", payload).
		WithPriority(messages.PriorityCritical))

# Architecture

The package is built around several core concepts:

1. Bus (hoot.go)
  - Owns the queue, registry, backlog, and history
  - Runs the Stopped -> Starting -> Running -> Stopping lifecycle
  - Accepts sends while stopped; delivery only happens while running

2. Processing loop (loop.go)
  - Drains the priority queue one message at a time
  - Fans delivery out to all resolved recipients and joins before the
    next message, so ordering stays easy to reason about
  - Absorbs per-iteration faults with a brief backoff, never terminating

3. Sweep loop (loop.go)
  - Periodically evicts expired queue entries
  - Ages stale backlog entries out of the retry store

4. Routing (router.go)
  - Direct recipients resolve to their single subscriber
  - Broadcast fans out to every subscriber except the sender
  - group:<name> recipients resolve through an optional groups.Resolver

5. Delivery (delivery.go)
  - Per-recipient message copies with the recipient rebound
  - One recipient's failure never affects its siblings
  - Failures land in the backlog for RetryFailedDeliveries

# Collaborators

The bus consumes two narrow, optional interfaces: a groups.Resolver expands
named groups into member addresses, and a notify.Sink observes every message
that enters the queue (useful for live-update fan-out). Both can be absent;
the bus then treats groups as empty and skips notification.

# Error Handling

Send reports rejection with a plain boolean: filters, an already-elapsed TTL,
and a full queue all reject without raising. Faults inside the background
loops are logged and absorbed. The only errors surfaced to callers are
lifecycle misuse (Start on a running bus, Stop on a stopped one) and a nil
subscriber handler.
*/
package hoot
