package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNewChatError_Statuses(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want int
	}{
		{KindMalformedRequest, http.StatusBadRequest},
		{KindEmptyMessage, http.StatusBadRequest},
		{KindMessageTooLong, http.StatusBadRequest},
		{KindServiceMisconfigured, http.StatusInternalServerError},
		{KindUpstreamTimeout, http.StatusGatewayTimeout},
		{KindUpstreamUnreachable, http.StatusServiceUnavailable},
		{KindNetworkError, http.StatusServiceUnavailable},
		{KindInvalidUpstreamFormat, http.StatusInternalServerError},
		{KindInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := NewChatError(tt.kind, nil)
			if err.Status != tt.want {
				t.Errorf("Status = %d, want %d", err.Status, tt.want)
			}
			if err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestNewChatError_UnknownKind(t *testing.T) {
	err := NewChatError(ErrorKind("bogus"), nil)
	if err.Kind != KindInternalError {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInternalError)
	}
}

func TestNewUpstreamError(t *testing.T) {
	err := NewUpstreamError(http.StatusTooManyRequests, errors.New("slow down"))

	if err.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want 429", err.Status)
	}
	if !strings.Contains(err.Message, "429") {
		t.Errorf("Message %q should contain status code", err.Message)
	}
	if strings.Contains(err.Message, "slow down") {
		t.Error("Message must not leak upstream detail")
	}
}

func TestNewUpstreamError_NonErrorStatus(t *testing.T) {
	tests := []struct {
		upstream int
		want     int
	}{
		{http.StatusNoContent, http.StatusBadGateway},
		{http.StatusNotModified, http.StatusBadGateway},
		{http.StatusCreated, http.StatusBadGateway},
		{http.StatusContinue, http.StatusBadGateway},
		{http.StatusBadRequest, http.StatusBadRequest},
		{http.StatusServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.upstream), func(t *testing.T) {
			err := NewUpstreamError(tt.upstream, nil)

			if err.Status != tt.want {
				t.Errorf("Status = %d, want %d", err.Status, tt.want)
			}
			want := fmt.Sprintf("AI service returned error: %d. Please try again.", tt.upstream)
			if err.Message != want {
				t.Errorf("Message = %q, want %q", err.Message, want)
			}
		})
	}
}

func TestClientError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewChatError(KindUpstreamTimeout, nil))

	status, msg := ClientError(wrapped)
	if status != http.StatusGatewayTimeout || msg != MsgUpstreamTimeout {
		t.Errorf("ClientError(wrapped) = %d %q", status, msg)
	}

	status, msg = ClientError(errors.New("boom"))
	if status != http.StatusInternalServerError || msg != MsgInternalError {
		t.Errorf("ClientError(plain) = %d %q", status, msg)
	}
}

func TestChatError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewChatError(KindUpstreamUnreachable, cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if !strings.Contains(err.Error(), "upstream_unreachable") {
		t.Errorf("Error() = %q should contain kind", err.Error())
	}
}
