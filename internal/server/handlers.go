package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/finking/internal/domain"
	"github.com/kitbuilder587/finking/internal/metrics"
	"github.com/kitbuilder587/finking/internal/service"
)

// maxBodyBytes - 4000 символов по 4 байта плюс запас на JSON
const maxBodyBytes = 1 << 20

type handler struct {
	chat     service.ChatService
	upstream UpstreamStatus
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type healthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	Timestamp     string `json:"timestamp"`
	APIConfigured bool   `json:"api_configured"`
}

func (h *handler) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.reject(w, r, domain.NewChatError(domain.KindMalformedRequest, err))
		return
	}

	req, err := domain.ParseChatRequest(body)
	if err != nil {
		h.reject(w, r, err)
		return
	}

	// отключение клиента не отменяет вызов: его ограничивает только таймаут апстрима
	ctx := context.WithoutCancel(r.Context())

	reply, err := h.chat.Chat(ctx, req)
	if err != nil {
		status, msg := domain.ClientError(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *handler) reject(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)

	fields := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.Error(err),
	}
	var le *domain.LengthError
	if errors.As(err, &le) {
		fields = append(fields, zap.Int("length", le.Length))
	}
	h.logger.Warn("invalid chat request", fields...)

	if h.metrics != nil {
		h.metrics.RecordRejected(string(kind))
	}

	status, msg := domain.ClientError(err)
	writeError(w, status, msg)
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	configured := false
	if h.upstream != nil {
		configured = h.upstream.Configured()
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		Service:       ServiceName,
		Version:       Version,
		Timestamp:     domain.FormatTimestamp(h.now()),
		APIConfigured: configured,
	})
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Endpoint not found")
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
