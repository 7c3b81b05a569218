package llm

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// maxErrorBody - сколько байт тела ошибки сохраняем для логов
const maxErrorBody = 2048

type ChatRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens"`
	TopP             float64   `json:"top_p"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	PresencePenalty  float64   `json:"presence_penalty"`
	Stream           bool      `json:"stream"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GenerationParams struct {
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// DefaultParams are fixed for every call and are not user-configurable.
var DefaultParams = GenerationParams{
	Temperature:      0.7,
	MaxTokens:        2048,
	TopP:             0.9,
	FrequencyPenalty: 0.0,
	PresencePenalty:  0.0,
}

func NewChatRequest(model, system, prompt string, params GenerationParams) ChatRequest {
	return ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:      params.Temperature,
		MaxTokens:        params.MaxTokens,
		TopP:             params.TopP,
		FrequencyPenalty: params.FrequencyPenalty,
		PresencePenalty:  params.PresencePenalty,
		Stream:           false,
	}
}

func HandleHTTPError(statusCode int, body []byte, provider string) error {
	raw := body
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	return &Error{
		Provider:   provider,
		Kind:       ErrKindStatus,
		HTTPStatus: statusCode,
		Message:    "unexpected status",
		Raw:        append([]byte(nil), raw...),
		Cause:      ErrRequestFailed,
	}
}

type choice struct {
	Message *struct {
		Content *string `json:"content"`
	} `json:"message"`
}

// ParseChatResponse extracts the first choice and the usage object.
// Non-JSON bodies are ErrKindParse, a missing or empty choices list is
// ErrKindEmpty, a first choice without message content is ErrKindShape.
func ParseChatResponse(body []byte, provider string) (*Completion, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &Error{Provider: provider, Kind: ErrKindParse, Message: "decode response body", Cause: err}
	}

	var choices []json.RawMessage
	raw, ok := envelope["choices"]
	if ok {
		if err := json.Unmarshal(raw, &choices); err != nil {
			return nil, &Error{Provider: provider, Kind: ErrKindEmpty, Message: "choices is not a list", Cause: err}
		}
	}
	if len(choices) == 0 {
		return nil, &Error{Provider: provider, Kind: ErrKindEmpty, Message: "no choices in response", Cause: ErrEmptyResponse}
	}

	var first choice
	if err := json.Unmarshal(choices[0], &first); err != nil {
		return nil, &Error{Provider: provider, Kind: ErrKindShape, Message: "decode first choice", Cause: err}
	}
	if first.Message == nil || first.Message.Content == nil {
		return nil, &Error{Provider: provider, Kind: ErrKindShape, Message: "first choice has no message content"}
	}

	// usage отдаём как есть, любой JSON кроме null
	usage := json.RawMessage(`{}`)
	if u, ok := envelope["usage"]; ok && !isNull(u) {
		usage = append(json.RawMessage(nil), u...)
	}

	return &Completion{Content: *first.Message.Content, Usage: usage}, nil
}

// DoRequest performs the round trip and reads the whole body. Transport and
// body-read failures come back as *Error classified by ClassifyTransport.
func DoRequest(client *http.Client, req *http.Request, provider string) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, &Error{Provider: provider, Kind: ClassifyTransport(err), Message: "send request", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &Error{Provider: provider, Kind: ClassifyTransport(err), Message: "read response", Cause: err}
	}

	return body, resp.StatusCode, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
