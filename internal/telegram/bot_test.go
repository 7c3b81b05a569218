package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kitbuilder587/finking/internal/domain"
	llmMock "github.com/kitbuilder587/finking/internal/llm/mock"
	"github.com/kitbuilder587/finking/internal/metrics"
	"github.com/kitbuilder587/finking/internal/service"
)

type panickingChat struct{}

func (panickingChat) Chat(context.Context, domain.ChatRequest) (*domain.ChatReply, error) {
	panic("chat exploded")
}

func TestBot_HandleUpdate_RecoversPanic(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	bot := newBot(&recordingSender{}, panickingChat{}, zap.NewNop(), m)

	update := tgbotapi.Update{Message: createTestMessage(1, "will it blend?")}

	// не должно уронить тест
	bot.handleUpdate(context.Background(), update)

	got := testutil.ToFloat64(m.TelegramUpdatesTotal.WithLabelValues("message", statusPanic))
	if got != 1 {
		t.Errorf("panic updates = %v, want 1", got)
	}
}

func TestBot_HandleUpdate_RecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	chat := service.NewChatService(service.ChatServiceDeps{LLM: llmMock.New(), Logger: zap.NewNop()})
	bot := newBot(&recordingSender{}, chat, zap.NewNop(), m)

	bot.handleUpdate(context.Background(), tgbotapi.Update{Message: createTestMessage(1, "/help")})
	bot.handleUpdate(context.Background(), tgbotapi.Update{Message: createTestMessage(1, "ETF or stocks?")})
	bot.handleUpdate(context.Background(), tgbotapi.Update{Message: createTestMessage(1, "  ")})

	if got := testutil.ToFloat64(m.TelegramUpdatesTotal.WithLabelValues("command", statusProcessed)); got != 1 {
		t.Errorf("processed commands = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TelegramUpdatesTotal.WithLabelValues("message", statusProcessed)); got != 1 {
		t.Errorf("processed messages = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TelegramUpdatesTotal.WithLabelValues("message", statusRejected)); got != 1 {
		t.Errorf("rejected messages = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RejectedMessagesTotal.WithLabelValues(string(domain.KindEmptyMessage))); got != 1 {
		t.Errorf("rejected_messages_total{empty_message} = %v, want 1", got)
	}
}

func TestBot_Dispatch(t *testing.T) {
	mock := llmMock.New()
	chat := service.NewChatService(service.ChatServiceDeps{LLM: mock, Logger: zap.NewNop()})
	sender := &recordingSender{}
	bot := newBot(sender, chat, zap.NewNop(), nil)

	bot.dispatch(context.Background(), tgbotapi.Update{Message: createTestMessage(1, "first")})
	bot.dispatch(context.Background(), tgbotapi.Update{Message: createTestMessage(2, "second")})
	bot.dispatch(context.Background(), tgbotapi.Update{})
	bot.wg.Wait()

	if mock.Calls() != 2 {
		t.Errorf("upstream calls = %d, want 2", mock.Calls())
	}
	if n := len(sender.texts()); n != 2 {
		t.Errorf("sent %d messages, want 2", n)
	}
}

func TestBot_SendWithoutSender(t *testing.T) {
	bot := newBot(nil, nil, nil, nil)

	if err := bot.Send(1, "hello"); err != nil {
		t.Errorf("Send() error = %v, want nil", err)
	}
	bot.SendTyping(1)
}
