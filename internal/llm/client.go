package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyResponse = errors.New("empty response")
)

type Completion struct {
	Content string
	// Usage - объект usage апстрима как есть, либо {} если его нет
	Usage json.RawMessage
}

type Client interface {
	Complete(ctx context.Context, system, prompt string) (*Completion, error)
	Model() string
	// Configured reports whether a credential is present, not whether it is valid.
	Configured() bool
}
