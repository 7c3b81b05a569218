package domain

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestParseChatRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind ErrorKind
		wantMsg  string
	}{
		{"valid", `{"message": "What is the P/E of AAPL?"}`, "", "What is the P/E of AAPL?"},
		{"trims whitespace", `{"message": "  hello \n"}`, "", "hello"},
		{"keeps case and markup", `{"message": "<b>BTC</b> vs ETH"}`, "", "<b>BTC</b> vs ETH"},
		{"extra fields ignored", `{"message": "hi", "history": []}`, "", "hi"},
		{"empty body", ``, KindMalformedRequest, ""},
		{"not json", `message=hi`, KindMalformedRequest, ""},
		{"json null", `null`, KindMalformedRequest, ""},
		{"json array", `["hi"]`, KindMalformedRequest, ""},
		{"json string", `"hi"`, KindMalformedRequest, ""},
		{"missing message", `{"text": "hi"}`, KindMalformedRequest, ""},
		{"null message", `{"message": null}`, KindMalformedRequest, ""},
		{"numeric message", `{"message": 42}`, KindMalformedRequest, ""},
		{"empty message", `{"message": ""}`, KindEmptyMessage, ""},
		{"whitespace message", `{"message": "   "}`, KindEmptyMessage, ""},
		{"tabs and newlines", `{"message": "\t\n"}`, KindEmptyMessage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseChatRequest([]byte(tt.body))

			if tt.wantKind != "" {
				ce, ok := AsChatError(err)
				if !ok {
					t.Fatalf("ParseChatRequest() error = %v, want ChatError", err)
				}
				if ce.Kind != tt.wantKind {
					t.Errorf("Kind = %v, want %v", ce.Kind, tt.wantKind)
				}
				if ce.Status != http.StatusBadRequest {
					t.Errorf("Status = %d, want 400", ce.Status)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseChatRequest() unexpected error = %v", err)
			}
			if req.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", req.Message, tt.wantMsg)
			}
		})
	}
}

func TestNewChatRequest_Length(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"exactly at limit", strings.Repeat("a", MaxMessageLength), false},
		{"one over limit", strings.Repeat("a", MaxMessageLength+1), true},
		{"padding is trimmed before measuring", "  " + strings.Repeat("a", MaxMessageLength) + "  ", false},
		// 4000 кириллических символов = 8000 байт, но лимит в символах
		{"multibyte at limit", strings.Repeat("ж", MaxMessageLength), false},
		{"multibyte over limit", strings.Repeat("ж", MaxMessageLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChatRequest(tt.text)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("NewChatRequest() unexpected error = %v", err)
				}
				return
			}

			if KindOf(err) != KindMessageTooLong {
				t.Fatalf("KindOf() = %v, want %v", KindOf(err), KindMessageTooLong)
			}

			var le *LengthError
			if !errors.As(err, &le) {
				t.Fatal("error should carry LengthError")
			}
			if le.Length != MaxMessageLength+1 {
				t.Errorf("Length = %d, want %d", le.Length, MaxMessageLength+1)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("SGT", 8*3600)
	ts := time.Date(2025, 3, 14, 9, 26, 53, 589793000, loc)

	got := FormatTimestamp(ts)
	want := "2025-03-14T01:26:53.589793Z"
	if got != want {
		t.Errorf("FormatTimestamp() = %q, want %q", got, want)
	}

	if _, err := time.Parse(time.RFC3339Nano, got); err != nil {
		t.Errorf("timestamp is not RFC3339: %v", err)
	}
}
