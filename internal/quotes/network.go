package quotes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Response is the part of an HTTP response the engine consumes.
type Response struct {
	StatusCode int
	Body       io.ReadCloser
}

// Network is the connectivity and transport capability the engine polls
// through. Get blocks until the response headers arrive or the transport
// gives up.
type Network interface {
	IsConnected() bool
	Get(ctx context.Context, url string, header http.Header) (*Response, error)
}

// TransportKind says how far a request got before failing.
type TransportKind int

const (
	InitRequestFailed TransportKind = iota
	ConnectionFailed
	SendHeaderFailed
	SendPayloadFailed
)

func (k TransportKind) String() string {
	switch k {
	case InitRequestFailed:
		return "init request failed"
	case ConnectionFailed:
		return "connection failed"
	case SendHeaderFailed:
		return "send header failed"
	case SendPayloadFailed:
		return "send payload failed"
	default:
		return "unknown transport failure"
	}
}

// TransportError is returned by Network.Get when no HTTP response was read.
type TransportError struct {
	Kind TransportKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// statusFromTransport classifies err. Errors that are not a TransportError
// are treated as connection failures.
func statusFromTransport(err error) Status {
	var te *TransportError
	if !errors.As(err, &te) {
		return StatusConnectionFailed
	}
	switch te.Kind {
	case InitRequestFailed:
		return StatusInitRequestFailed
	case SendHeaderFailed:
		return StatusSendHeaderFailed
	case SendPayloadFailed:
		return StatusSendPayloadFailed
	default:
		return StatusConnectionFailed
	}
}
