package engine

// EventKind identifies an event surfaced to the hosting application.
type EventKind string

const (
	EventMatchFound       EventKind = "match_found"
	EventLikeSent         EventKind = "like_sent"
	EventAlreadyMatched   EventKind = "already_matched"
	EventQuotaExceeded    EventKind = "quota_exceeded"
	EventSessionExhausted EventKind = "session_exhausted"
)

// Event is emitted upward by the session as decisions resolve.
type Event struct {
	Kind      EventKind
	Candidate *Candidate // set for candidate-scoped events
	Action    Action     // set for EventQuotaExceeded
}

// EventSink receives session events. Implementations must not block; the
// session publishes synchronously on its own goroutine.
type EventSink interface {
	Publish(ev Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(Event) {}

// SinkFunc adapts a function to an EventSink.
type SinkFunc func(ev Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }
