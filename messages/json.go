package messages

import (
	"time"

	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
)

// wireMessage is the JSON shape of a message. TTL travels as whole seconds,
// matching how producers outside this process express it.
type wireMessage struct {
	ID        string          `json:"id"`
	Sender    string          `json:"sender"`
	Recipient string          `json:"recipient"`
	Content   any             `json:"content"`
	Type      Type            `json:"type"`
	Timestamp strfmt.DateTime `json:"timestamp"`
	Meta      map[string]any  `json:"meta,omitempty"`
	Priority  Priority        `json:"priority"`
	TTL       *int64          `json:"ttl,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (m Message) MarshalJSON() ([]byte, error) {
	w := wireMessage{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Content:   m.Content,
		Type:      m.Type,
		Timestamp: m.Timestamp,
		Meta:      m.Meta,
		Priority:  m.Priority,
	}
	if m.TTL != nil {
		secs := int64(m.TTL.Seconds())
		w.TTL = &secs
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Message{
		ID:        w.ID,
		Sender:    w.Sender,
		Recipient: w.Recipient,
		Content:   w.Content,
		Type:      w.Type,
		Timestamp: w.Timestamp,
		Meta:      w.Meta,
		Priority:  w.Priority.Clamp(),
	}
	if w.TTL != nil {
		ttl := time.Duration(*w.TTL) * time.Second
		m.TTL = &ttl
	}
	return nil
}

// ToJSON serializes the message for transport to an external sink.
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON parses a message from its wire form.
func FromJSON(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, err
	}
	return m, nil
}
