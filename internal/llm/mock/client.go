package mock

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kitbuilder587/finking/internal/llm"
)

type Client struct {
	Response string
	Usage    json.RawMessage
	Error    error
	Delay    time.Duration
	// Panic, если не пусто, роняет Complete - для проверки recover в сервисе
	Panic string

	NoCredential bool
	ModelName    string

	mu         sync.Mutex
	CallCount  int
	LastSystem string
	LastPrompt string
	AllCalls   []LLMCall
}

type LLMCall struct {
	System string
	Prompt string
}

func New() *Client {
	return &Client{
		Response:  "This is a mock investment analysis.",
		Usage:     json.RawMessage(`{"prompt_tokens":12,"completion_tokens":8,"total_tokens":20}`),
		ModelName: "deepseek-chat",
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

func (c *Client) WithUsage(usage string) *Client {
	c.Usage = json.RawMessage(usage)
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) WithoutCredential() *Client {
	c.NoCredential = true
	return c
}

func (c *Client) Model() string { return c.ModelName }

func (c *Client) Configured() bool { return !c.NoCredential }

func (c *Client) Complete(ctx context.Context, system, prompt string) (*llm.Completion, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastSystem = system
	c.LastPrompt = prompt
	c.AllCalls = append(c.AllCalls, LLMCall{System: system, Prompt: prompt})
	c.mu.Unlock()

	if c.Panic != "" {
		panic(c.Panic)
	}

	if c.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Delay):
		}
	}

	if c.Error != nil {
		return nil, c.Error
	}

	usage := c.Usage
	if usage == nil {
		usage = json.RawMessage(`{}`)
	}
	return &llm.Completion{Content: c.Response, Usage: usage}, nil
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastSystem = ""
	c.LastPrompt = ""
	c.AllCalls = nil
}

var _ llm.Client = (*Client)(nil)
