package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxMessageLength is measured in characters (code points), not bytes.
const MaxMessageLength = 4000

// TimestampLayout - ISO-8601 UTC с микросекундами и суффиксом Z.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

var (
	errNotObject      = errors.New("payload is not a JSON object")
	errMissingMessage = errors.New("message field is missing")
	errMessageType    = errors.New("message field is not a string")
)

type ChatRequest struct {
	Message string
}

// NewChatRequest trims text once and checks presence and length.
func NewChatRequest(text string) (ChatRequest, error) {
	msg := strings.TrimSpace(text)
	if msg == "" {
		return ChatRequest{}, NewChatError(KindEmptyMessage, nil)
	}

	if n := utf8.RuneCountInString(msg); n > MaxMessageLength {
		return ChatRequest{}, NewChatError(KindMessageTooLong, &LengthError{Length: n, Limit: MaxMessageLength})
	}

	return ChatRequest{Message: msg}, nil
}

// ParseChatRequest validates a raw `{"message": "..."}` payload.
func ParseChatRequest(body []byte) (ChatRequest, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ChatRequest{}, NewChatError(KindMalformedRequest, err)
	}
	if payload == nil {
		return ChatRequest{}, NewChatError(KindMalformedRequest, errNotObject)
	}

	raw, ok := payload["message"]
	if !ok {
		return ChatRequest{}, NewChatError(KindMalformedRequest, errMissingMessage)
	}

	// null декодируется в "" без ошибки, отсекаем явно
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ChatRequest{}, NewChatError(KindMalformedRequest, errMessageType)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return ChatRequest{}, NewChatError(KindMalformedRequest, errMessageType)
	}

	return NewChatRequest(text)
}

type ChatReply struct {
	Reply      string          `json:"reply"`
	Timestamp  string          `json:"timestamp"`
	Model      string          `json:"model"`
	TokensUsed json.RawMessage `json:"tokens_used"`
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
