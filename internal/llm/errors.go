package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

type ErrorKind string

const (
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindConnection ErrorKind = "connection"
	ErrKindNetwork    ErrorKind = "network"
	ErrKindStatus     ErrorKind = "status"
	ErrKindParse      ErrorKind = "parse"
	ErrKindEmpty      ErrorKind = "empty"
	ErrKindShape      ErrorKind = "shape"
)

// Error is a classified failure of one upstream call.
type Error struct {
	Provider   string
	Kind       ErrorKind
	HTTPStatus int
	Message    string

	// Raw is a truncated copy of the response body for non-200 responses.
	Raw []byte

	Cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.HTTPStatus != 0 {
		msg = fmt.Sprintf("%s (http %d)", msg, e.HTTPStatus)
	}
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	if e.Provider != "" {
		return fmt.Sprintf("llm %s: %s", e.Provider, msg)
	}
	return "llm: " + msg
}

func (e *Error) Unwrap() error { return e.Cause }

func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ClassifyTransport sorts a failed round trip (or body read) into timeout,
// connection or generic network failure. Timeout wins over everything else;
// a reset or truncated stream counts as a connection failure.
func ClassifyTransport(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrKindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrKindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrKindConnection
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrKindConnection
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		return ErrKindConnection
	}

	return ErrKindNetwork
}
