package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/finking/internal/llm"
)

const (
	DefaultURL     = "https://api.deepseek.com/chat/completions"
	DefaultModel   = "deepseek-chat"
	DefaultTimeout = 30 * time.Second

	providerName = "deepseek"
)

type Config struct {
	APIKey  string
	Model   string
	URL     string
	Timeout time.Duration
}

type Client struct {
	apiKey string
	model  string
	url    string
	params llm.GenerationParams
	client *http.Client
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		url:    cfg.URL,
		params: llm.DefaultParams,
		// один запрос, без ретраев: таймаут покрывает и чтение тела
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) Model() string { return c.model }

func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) Complete(ctx context.Context, system, prompt string) (*llm.Completion, error) {
	req := llm.NewChatRequest(c.model, system, prompt, c.params)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	respBody, statusCode, err := llm.DoRequest(c.client, httpReq, providerName)
	c.logger.Debug("deepseek round trip finished",
		zap.Int("status", statusCode),
		zap.Int("body_bytes", len(respBody)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, llm.HandleHTTPError(statusCode, respBody, providerName)
	}

	return llm.ParseChatResponse(respBody, providerName)
}

var _ llm.Client = (*Client)(nil)
