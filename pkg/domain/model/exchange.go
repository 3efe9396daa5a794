package model

import (
	"context"
	"io"
	"net/http"
)

// ReadyState is the lifecycle position of one asynchronous HTTP exchange.
type ReadyState int

const (
	StateUnsent ReadyState = iota
	StateOpened
	StateHeadersReceived
	StateLoading
	StateDone
)

func (s ReadyState) String() string {
	switch s {
	case StateUnsent:
		return "unsent"
	case StateOpened:
		return "opened"
	case StateHeadersReceived:
		return "headers_received"
	case StateLoading:
		return "loading"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Request describes one outbound exchange handed to a Transport.
type Request struct {
	Method      string
	URL         string
	ContentType string

	// Body is sent as is. When it implements io.Closer the transport closes
	// it. ContentLength is used when positive, otherwise a body of unknown
	// length is sent chunked.
	Body          io.Reader
	ContentLength int64

	// Sink receives the response body as it is read. When set, the terminal
	// StateChange carries no Body.
	Sink io.Writer
}

// StateChange is a single notification emitted while an exchange progresses.
// Only StateDone is terminal; StatusCode is zero when Err is set.
type StateChange struct {
	State      ReadyState
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
}

// IsTerminal reports whether no further notifications follow this one.
func (c *StateChange) IsTerminal() bool {
	return c.State == StateDone
}

// OK reports a terminal notification with HTTP 200.
func (c *StateChange) OK() bool {
	return c.IsTerminal() && c.Err == nil && c.StatusCode == http.StatusOK
}

// StateObserver receives every StateChange of an exchange, in order.
type StateObserver func(ctx context.Context, change *StateChange)
