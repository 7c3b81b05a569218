package service

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kitbuilder587/finking/internal/domain"
	"github.com/kitbuilder587/finking/internal/llm"
	"github.com/kitbuilder587/finking/internal/metrics"
)

const (
	previewLength  = 50
	outcomeSuccess = "success"
)

type ChatService interface {
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error)
}

type ChatServiceDeps struct {
	LLM     llm.Client
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// Persona по умолчанию domain.SystemPersona
	Persona string
	Now     func() time.Time
}

type chatService struct {
	llm     llm.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
	persona string
	now     func() time.Time
}

func NewChatService(deps ChatServiceDeps) ChatService {
	if deps.Persona == "" {
		deps.Persona = domain.SystemPersona
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &chatService{
		llm:     deps.LLM,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		persona: deps.Persona,
		now:     deps.Now,
	}
}

// Chat makes exactly one upstream call. Every failure comes back as a
// *domain.ChatError; nothing is retried.
func (s *chatService) Chat(ctx context.Context, req domain.ChatRequest) (reply *domain.ChatReply, err error) {
	// без ключа апстрим не вызывается, поэтому и в метрики апстрима не попадает
	if !s.llm.Configured() {
		s.logger.Error("upstream API key not configured")
		if s.metrics != nil {
			s.metrics.RecordRejected(string(domain.KindServiceMisconfigured))
		}
		return nil, domain.NewChatError(domain.KindServiceMisconfigured, nil)
	}

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("unexpected failure while processing chat",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			reply = nil
			err = domain.NewChatError(domain.KindInternalError, fmt.Errorf("panic: %v", r))
		}
		s.record(err, time.Since(start))
	}()

	s.logger.Info("processing chat request",
		zap.String("message_preview", preview(req.Message)),
		zap.Int("message_length", utf8.RuneCountInString(req.Message)),
	)

	completion, err := s.llm.Complete(ctx, s.persona, req.Message)
	if err != nil {
		return nil, s.classify(err)
	}

	s.logger.Info("chat reply generated",
		zap.String("reply_preview", preview(completion.Content)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &domain.ChatReply{
		Reply:      completion.Content,
		Timestamp:  domain.FormatTimestamp(s.now()),
		Model:      s.llm.Model(),
		TokensUsed: completion.Usage,
	}, nil
}

// classify turns an upstream failure into the client-facing taxonomy.
func (s *chatService) classify(err error) *domain.ChatError {
	le, ok := llm.AsError(err)
	if !ok {
		s.logger.Error("unexpected upstream failure", zap.Error(err))
		return domain.NewChatError(domain.KindInternalError, err)
	}

	switch le.Kind {
	case llm.ErrKindTimeout:
		s.logger.Error("upstream request timeout", zap.Error(err))
		return domain.NewChatError(domain.KindUpstreamTimeout, err)

	case llm.ErrKindConnection:
		s.logger.Error("upstream connection error", zap.Error(err))
		return domain.NewChatError(domain.KindUpstreamUnreachable, err)

	case llm.ErrKindNetwork:
		s.logger.Error("upstream network error", zap.Error(err))
		return domain.NewChatError(domain.KindNetworkError, err)

	case llm.ErrKindStatus:
		fields := []zap.Field{
			zap.Int("status", le.HTTPStatus),
			zap.ByteString("body", le.Raw),
		}
		if le.HTTPStatus >= http.StatusInternalServerError {
			s.logger.Error("upstream returned error status", fields...)
		} else {
			s.logger.Warn("upstream returned error status", fields...)
		}
		return domain.NewUpstreamError(le.HTTPStatus, err)

	case llm.ErrKindParse:
		s.logger.Error("upstream response is not JSON", zap.Error(err))
		return domain.NewChatError(domain.KindInvalidUpstreamFormat, err)

	case llm.ErrKindEmpty:
		s.logger.Error("invalid response format from upstream", zap.Error(err))
		ce := domain.NewChatError(domain.KindInvalidUpstreamFormat, err)
		ce.Message = domain.MsgInvalidUpstreamResponse
		return ce

	default:
		s.logger.Error("unexpected upstream response", zap.Error(err))
		return domain.NewChatError(domain.KindInternalError, err)
	}
}

func (s *chatService) record(err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := outcomeSuccess
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	s.metrics.RecordUpstream(outcome, elapsed)
}

// preview - первые 50 символов для логов, по рунам
func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewLength]) + "..."
}
