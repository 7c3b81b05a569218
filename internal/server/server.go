package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kitbuilder587/finking/internal/metrics"
	"github.com/kitbuilder587/finking/internal/service"
)

const (
	ServiceName = "FinKing AI API"
	Version     = "1.0.0"
)

// UpstreamStatus is what /api/health needs to know about the completion API.
type UpstreamStatus interface {
	Configured() bool
}

type Deps struct {
	Chat     service.ChatService
	Upstream UpstreamStatus
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// Debug adds panic details to 500 responses (development mode only).
	Debug bool
	Now   func() time.Time
}

func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	h := &handler{
		chat:     deps.Chat,
		upstream: deps.Upstream,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		now:      deps.Now,
	}

	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog(deps.Logger))
	if deps.Metrics != nil {
		r.Use(instrument(deps.Metrics))
	}
	r.Use(recoverer(deps.Logger, deps.Debug))
	r.Use(securityHeaders)
	r.Use(cors)

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.methodNotAllowed)

	r.Get("/", serveIndex)
	r.Handle("/static/*", staticFiles(h.notFound))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.handleChat)
		r.Get("/health", h.handleHealth)
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	return r
}

// NewHTTPServer wraps the router with timeouts that leave room for one
// full upstream call.
func NewHTTPServer(port int, upstreamTimeout time.Duration, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      upstreamTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
