package messages

import (
	"maps"
	"strings"
	"time"

	"github.com/casualjim/hoot/pkg/jsonx"
	"github.com/casualjim/hoot/pkg/uuidx"
	"github.com/go-openapi/strfmt"
)

// Type tags the kind of payload a message carries. Routing never looks at
// the type; it exists for consumers and history queries.
type Type string

const (
	TypeTask         Type = "task"
	TypeResponse     Type = "response"
	TypeToolRequest  Type = "tool_request"
	TypeToolResponse Type = "tool_response"
	TypeError        Type = "error"
	TypeBroadcast    Type = "broadcast"
	TypeHeartbeat    Type = "heartbeat"
	TypeStatusUpdate Type = "status_update"
)

// Priority orders messages in the queue. Higher values dequeue first,
// ties are broken FIFO by enqueue order.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Clamp bounds a priority to the valid [PriorityLow, PriorityCritical] range.
func (p Priority) Clamp() Priority {
	if p < PriorityLow {
		return PriorityLow
	}
	if p > PriorityCritical {
		return PriorityCritical
	}
	return p
}

// Reserved addresses understood by the router.
const (
	// Broadcast fans the message out to every subscriber except the sender.
	Broadcast = "broadcast"

	// System is the sender address the bus uses for its own messages.
	System = "system"

	// GroupPrefix marks a recipient as a named group.
	GroupPrefix = "group:"
)

// Group builds the recipient address for the named group.
func Group(name string) string {
	return GroupPrefix + name
}

// Message is the unit of delivery on the bus. Construct one with New and
// shape it with the With* methods; after Send the bus treats it as frozen.
type Message struct {
	ID        string
	Sender    string
	Recipient string
	Content   any
	Type      Type
	Timestamp strfmt.DateTime
	Meta      map[string]any
	Priority  Priority

	// TTL is the time after Timestamp at which the message expires.
	// nil means the message never expires.
	TTL *time.Duration
}

// New creates a task message from sender to recipient with low priority
// and no expiry.
func New(sender, recipient string, content any) Message {
	return Message{
		ID:        uuidx.NewString(),
		Sender:    sender,
		Recipient: recipient,
		Content:   content,
		Type:      TypeTask,
		Timestamp: strfmt.DateTime(time.Now()),
		Priority:  PriorityLow,
	}
}

// WithType returns a copy of the message with the given type.
func (m Message) WithType(t Type) Message {
	m.Type = t
	return m
}

// WithPriority returns a copy of the message with the given priority,
// clamped to the valid range.
func (m Message) WithPriority(p Priority) Message {
	m.Priority = p.Clamp()
	return m
}

// WithTTL returns a copy of the message that expires d after its timestamp.
func (m Message) WithTTL(d time.Duration) Message {
	m.TTL = &d
	return m
}

// WithMeta returns a copy of the message with the given metadata attached.
func (m Message) WithMeta(meta map[string]any) Message {
	m.Meta = meta
	return m
}

// For returns the per-recipient copy used during delivery: same id, content,
// type, timestamp, priority and ttl, with the recipient rebound and the
// metadata map cloned so handlers cannot race each other on it.
func (m Message) For(recipient string) Message {
	m.Recipient = recipient
	if m.Meta != nil {
		m.Meta = maps.Clone(m.Meta)
	}
	return m
}

// Expired reports whether the message's TTL has elapsed.
func (m Message) Expired() bool {
	if m.TTL == nil {
		return false
	}
	return time.Since(time.Time(m.Timestamp)) > *m.TTL
}

// IsBroadcast reports whether the message is addressed to every subscriber.
func (m Message) IsBroadcast() bool {
	return m.Recipient == Broadcast
}

// GroupName returns the group a message is addressed to, if any.
func (m Message) GroupName() (string, bool) {
	name, ok := strings.CutPrefix(m.Recipient, GroupPrefix)
	if !ok {
		return "", false
	}
	return name, true
}

// ContentMap returns the content as a dynamic JSON object. It fails when the
// content is not JSON-serializable or does not serialize to an object.
func (m Message) ContentMap() (map[string]any, error) {
	return jsonx.ToDynamicJSON(m.Content)
}
