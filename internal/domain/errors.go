package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind - закрытый набор классов отказа. Каждый класс однозначно
// определяет HTTP-статус (кроме UpstreamError, где статус берется у апстрима,
// если это 4xx/5xx).
type ErrorKind string

const (
	KindMalformedRequest      ErrorKind = "malformed_request"
	KindEmptyMessage          ErrorKind = "empty_message"
	KindMessageTooLong        ErrorKind = "message_too_long"
	KindServiceMisconfigured  ErrorKind = "service_misconfigured"
	KindUpstreamTimeout       ErrorKind = "upstream_timeout"
	KindUpstreamUnreachable   ErrorKind = "upstream_unreachable"
	KindNetworkError          ErrorKind = "network_error"
	KindUpstreamError         ErrorKind = "upstream_error"
	KindInvalidUpstreamFormat ErrorKind = "invalid_upstream_format"
	KindInternalError         ErrorKind = "internal_error"
)

// Client-facing messages. Upstream bodies never end up here.
const (
	MsgMalformedRequest        = "Invalid request. Please provide a message."
	MsgEmptyMessage            = "Message cannot be empty."
	MsgMessageTooLong          = "Message is too long. Please keep it under 4000 characters."
	MsgServiceMisconfigured    = "API configuration error. Please contact support."
	MsgUpstreamTimeout         = "Request timeout. The AI service took too long to respond. Please try again."
	MsgUpstreamUnreachable     = "Connection error. Unable to reach AI service. Please check your internet connection."
	MsgNetworkError            = "Network error occurred. Please try again."
	MsgInvalidUpstreamFormat   = "Invalid response format from AI service."
	MsgInvalidUpstreamResponse = "Invalid response from AI service."
	MsgInternalError           = "An unexpected error occurred. Please try again later."
)

var kindDefaults = map[ErrorKind]struct {
	status  int
	message string
}{
	KindMalformedRequest:      {http.StatusBadRequest, MsgMalformedRequest},
	KindEmptyMessage:          {http.StatusBadRequest, MsgEmptyMessage},
	KindMessageTooLong:        {http.StatusBadRequest, MsgMessageTooLong},
	KindServiceMisconfigured:  {http.StatusInternalServerError, MsgServiceMisconfigured},
	KindUpstreamTimeout:       {http.StatusGatewayTimeout, MsgUpstreamTimeout},
	KindUpstreamUnreachable:   {http.StatusServiceUnavailable, MsgUpstreamUnreachable},
	KindNetworkError:          {http.StatusServiceUnavailable, MsgNetworkError},
	KindUpstreamError:         {http.StatusBadGateway, "AI service returned an error. Please try again."},
	KindInvalidUpstreamFormat: {http.StatusInternalServerError, MsgInvalidUpstreamFormat},
	KindInternalError:         {http.StatusInternalServerError, MsgInternalError},
}

// ChatError is the only failure type produced by the chat pipeline.
// Message is safe to show to the client, Cause is for logs only.
type ChatError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Cause   error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%d): %v", e.Kind, e.Status, e.Cause)
	}
	return fmt.Sprintf("%s (%d)", e.Kind, e.Status)
}

func (e *ChatError) Unwrap() error { return e.Cause }

// NewChatError builds an error with the default status and message of kind.
// Unknown kinds degrade to KindInternalError.
func NewChatError(kind ErrorKind, cause error) *ChatError {
	d, ok := kindDefaults[kind]
	if !ok {
		kind = KindInternalError
		d = kindDefaults[KindInternalError]
	}
	return &ChatError{Kind: kind, Status: d.status, Message: d.message, Cause: cause}
}

// NewUpstreamError mirrors the upstream error status back to the client.
// Codes outside 4xx/5xx are answered with 502, the message keeps the
// original code.
func NewUpstreamError(status int, cause error) *ChatError {
	code := status
	if code < 400 || code > 599 {
		code = http.StatusBadGateway
	}
	return &ChatError{
		Kind:    KindUpstreamError,
		Status:  code,
		Message: fmt.Sprintf("AI service returned error: %d. Please try again.", status),
		Cause:   cause,
	}
}

func AsChatError(err error) (*ChatError, bool) {
	var ce *ChatError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// KindOf returns KindInternalError for anything that is not a ChatError.
func KindOf(err error) ErrorKind {
	if ce, ok := AsChatError(err); ok {
		return ce.Kind
	}
	return KindInternalError
}

// ClientError converts any error into the status and message the client sees.
func ClientError(err error) (int, string) {
	if ce, ok := AsChatError(err); ok {
		return ce.Status, ce.Message
	}
	d := kindDefaults[KindInternalError]
	return d.status, d.message
}

// LengthError carries the measured length of a rejected message.
type LengthError struct {
	Length int
	Limit  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("message length %d exceeds limit %d", e.Length, e.Limit)
}
