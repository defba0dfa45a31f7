package notify

import (
	"context"
	"time"

	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/pkg/natsx"
	"github.com/go-openapi/strfmt"
	"github.com/nats-io/nats.go"
	"github.com/tidwall/sjson"
)

var queuedEnvelope = []byte(`{"type":"message.queued"}`)

// NATSSink publishes an envelope for every queued message to a NATS subject.
// Remote consumers get visibility into bus traffic; delivery itself stays
// in-process.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// NATS creates a sink publishing to the given subject.
func NATS(conn *nats.Conn, subject string) *NATSSink {
	return &NATSSink{
		conn:    conn,
		subject: subject,
	}
}

// NATSFromEnv connects to the server named by the NATS_URL environment
// variable and returns a sink publishing to subject.
func NATSFromEnv(subject string) (*NATSSink, error) {
	conn, err := natsx.NewClient()
	if err != nil {
		return nil, err
	}
	return NATS(conn, subject), nil
}

// Notify implements Sink.
func (s *NATSSink) Notify(_ context.Context, msg messages.Message) error {
	payload, err := envelope(msg, time.Now())
	if err != nil {
		return err
	}
	return s.conn.Publish(s.subject, payload)
}

// envelope wraps a message in the notification wire format:
// {"type":"message.queued","message":{...},"timestamp":"..."}.
func envelope(msg messages.Message, now time.Time) ([]byte, error) {
	mb, err := msg.ToJSON()
	if err != nil {
		return nil, err
	}

	result, err := sjson.SetRawBytes(queuedEnvelope, "message", mb)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(result, "timestamp", strfmt.DateTime(now).String())
}
