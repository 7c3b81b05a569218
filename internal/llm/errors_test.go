package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"context deadline", context.DeadlineExceeded, ErrKindTimeout},
		{"wrapped deadline", &url.Error{Op: "Post", URL: "u", Err: context.DeadlineExceeded}, ErrKindTimeout},
		{"net timeout", &url.Error{Op: "Post", URL: "u", Err: timeoutErr{}}, ErrKindTimeout},
		{"dial timeout beats op error", &net.OpError{Op: "dial", Err: timeoutErr{}}, ErrKindTimeout},
		{"dns failure", &url.Error{Op: "Post", URL: "u", Err: &net.DNSError{Err: "no such host", Name: "x"}}, ErrKindConnection},
		{"connection refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, ErrKindConnection},
		{"connection reset", fmt.Errorf("read: %w", syscall.ECONNRESET), ErrKindConnection},
		{"truncated body", io.ErrUnexpectedEOF, ErrKindConnection},
		{"server hung up", &url.Error{Op: "Post", URL: "u", Err: io.EOF}, ErrKindConnection},
		{"canceled", context.Canceled, ErrKindNetwork},
		{"other", errors.New("unsupported protocol scheme"), ErrKindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTransport(tt.err); got != tt.want {
				t.Errorf("ClassifyTransport() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleHTTPError_TruncatesBody(t *testing.T) {
	body := make([]byte, maxErrorBody*2)
	err := HandleHTTPError(500, body, "deepseek")

	le, ok := AsError(err)
	if !ok {
		t.Fatalf("HandleHTTPError() = %v, want *Error", err)
	}
	if len(le.Raw) != maxErrorBody {
		t.Errorf("len(Raw) = %d, want %d", len(le.Raw), maxErrorBody)
	}
	if !errors.Is(err, ErrRequestFailed) {
		t.Error("should wrap ErrRequestFailed")
	}
}

func TestNewChatRequest(t *testing.T) {
	req := NewChatRequest("deepseek-chat", "sys", "hi", DefaultParams)

	if len(req.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Errorf("roles = %s,%s", req.Messages[0].Role, req.Messages[1].Role)
	}
	if req.Stream {
		t.Error("Stream should be false")
	}
	if req.MaxTokens != 2048 || req.Temperature != 0.7 || req.TopP != 0.9 {
		t.Errorf("params = %+v", req)
	}
}
