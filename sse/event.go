// Package sse is a small Server-Sent Events client used by the Quill providers.
//
// An [EventSource] sends one HTTP request, parses the response body as an
// event stream, and reports what it sees to a [Handler]. When the connection
// fails, a [ConnectionErrorHandler] decides whether to reconnect or shut down.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single parsed SSE event, delimited by a blank line
// in the byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n".
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}

// EventType returns the event type, defaulting to "message".
func (e *Event) EventType() string {
	if e.Type == "" {
		return "message"
	}
	return e.Type
}

// Handler receives connection lifecycle callbacks and events. An
// EventSource calls its Handler from a single goroutine, in stream order.
type Handler interface {
	// OnOpened is called when a response with a 2xx status arrives.
	OnOpened()

	// OnClosed is called when the response body ends without error.
	OnClosed()

	// OnMessage is called once per dispatched event.
	OnMessage(eventType, data string)

	// OnComment is called for each ":" comment line.
	OnComment(comment string)

	// OnError is called when connecting or reading fails.
	OnError(err error)
}
