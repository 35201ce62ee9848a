// Package activity defines the frontend activity events that are published
// over the message broker, and the consumer that records them.
package activity

import "time"

// Name identifies what a guest or admin did.
type Name string

const (
    PageView           Name = "page_view"
    ReservationAttempt Name = "reservation_attempt"
    PaymentUpload      Name = "payment_upload"
    UserRegistration   Name = "user_registration"
    EventView          Name = "event_view"
    CalendarAdd        Name = "calendar_add"
)

// QueueName is the durable queue activity events are routed to.
const QueueName = "frontend.activity"

// Event is one activity record.  It carries enough context for the log line
// without any lookup against the API.
type Event struct {
    Name       Name              `json:"name"`
    Path       string            `json:"path"`
    SessionID  string            `json:"session_id,omitempty"`
    Reference  string            `json:"reference,omitempty"`
    EventSlug  string            `json:"event_slug,omitempty"`
    Properties map[string]string `json:"properties,omitempty"`
    OccurredAt string            `json:"occurred_at"`
}

// New stamps an event with the current UTC time.
func New(name Name, path string) Event {
    return Event{Name: name, Path: path, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
}

// With returns a copy of e with one extra property.
func (e Event) With(key, value string) Event {
    props := make(map[string]string, len(e.Properties)+1)
    for k, v := range e.Properties {
        props[k] = v
    }
    props[key] = value
    e.Properties = props
    return e
}
