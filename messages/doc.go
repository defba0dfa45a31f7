// Package messages defines the message value type that flows through the hoot
// bus, along with the priority levels, message kinds, and reserved addresses
// used for routing.
//
// Design decisions:
//   - Immutable after construction: the fluent With* methods return copies,
//     so a message handed to Send is never mutated by the bus
//   - Opaque content: Content is any; schema validation belongs to producers
//     and consumers, not to the bus
//   - Advisory TTL: a nil TTL never expires, a zero or negative TTL expires
//     on the next sweep rather than at enqueue time
//   - Wire format: JSON with goccy/go-json, timestamps as RFC3339 via
//     go-openapi/strfmt, TTL expressed in whole seconds
//
// Key concepts:
//   - Message: the unit of delivery, identified by a UUIDv7
//   - Type: tagged kind (task, response, tool_request, ...) used for history
//     filtering, never for routing
//   - Priority: 1 (low) through 4 (critical); higher dequeues first
//   - Reserved addresses: Broadcast fans out to every subscriber except the
//     sender, Group("name") targets a named group, System is the bus itself
//
// Example usage:
//
//	msg := messages.New("planner", "executor", map[string]any{"step": 1}).
//	    WithPriority(messages.PriorityHigh).
//	    WithTTL(30 * time.Second)
//
//	if bus.Send(msg) {
//	    // queued, delivery happens on the processing loop
//	}
package messages
