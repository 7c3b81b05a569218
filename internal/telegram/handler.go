package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/finking/internal/domain"
)

// лимит длины одного сообщения в Telegram
const maxMessageLength = 4096

const (
	statusProcessed = "processed"
	statusRejected  = "rejected"
	statusFailed    = "failed"
	statusIgnored   = "ignored"
	statusPanic     = "panic"
)

const (
	startText = `<b>Welcome to FinKing!</b>

I am your AI investment advisor. Ask me anything about stocks, ETFs, portfolio building, risk management or financial planning.

Use /help to see what I can do.`

	helpText = `<b>How to use FinKing</b>

Just send your question as a regular message, for example:
• How should I invest my first $1000?
• What is the difference between an ETF and a mutual fund?
• How do I rebalance a 60/40 portfolio?

<b>Commands:</b>
/start - Welcome message
/help - Show this help

Questions are limited to 4000 characters. Nothing is stored between messages.

<i>FinKing provides educational information, not personalized financial advice.</i>`

	unknownCommandText = "Unknown command. Use /help to see what I can do."
	nonTextText        = "Please send your question as a text message."
)

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

// HandleMessage answers one message and returns the metrics status.
func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) string {
	if msg == nil || msg.Chat == nil {
		return statusIgnored
	}

	fields := []zap.Field{
		zap.Int64("chat_id", msg.Chat.ID),
		zap.Bool("is_command", msg.IsCommand()),
	}
	if msg.From != nil {
		fields = append(fields, zap.Int64("user_id", msg.From.ID))
	}
	h.bot.logger.Info("received message", fields...)

	if msg.IsCommand() {
		return h.handleCommand(msg)
	}
	if msg.Text == "" {
		h.bot.Send(msg.Chat.ID, nonTextText)
		return statusIgnored
	}
	return h.handleQuestion(ctx, msg)
}

func (h *Handler) handleCommand(msg *tgbotapi.Message) string {
	switch msg.Command() {
	case "start":
		h.bot.Send(msg.Chat.ID, startText)
	case "help":
		h.bot.Send(msg.Chat.ID, helpText)
	default:
		h.bot.Send(msg.Chat.ID, unknownCommandText)
	}
	return statusProcessed
}

func (h *Handler) handleQuestion(ctx context.Context, msg *tgbotapi.Message) string {
	req, err := domain.NewChatRequest(msg.Text)
	if err != nil {
		fields := []zap.Field{
			zap.String("kind", string(domain.KindOf(err))),
			zap.Int64("chat_id", msg.Chat.ID),
		}
		var le *domain.LengthError
		if errors.As(err, &le) {
			fields = append(fields, zap.Int("length", le.Length))
		}
		h.bot.logger.Warn("invalid chat message", fields...)
		if h.bot.metrics != nil {
			h.bot.metrics.RecordRejected(string(domain.KindOf(err)))
		}
		h.sendError(msg.Chat.ID, err)
		return statusRejected
	}

	h.bot.SendTyping(msg.Chat.ID)

	reply, err := h.bot.chat.Chat(ctx, req)
	if err != nil {
		h.bot.logger.Error("chat failed",
			zap.Error(err),
			zap.Int64("chat_id", msg.Chat.ID),
		)
		h.sendError(msg.Chat.ID, err)
		return statusFailed
	}

	for _, part := range SplitMessage(FormatReply(reply), maxMessageLength) {
		if err := h.bot.Send(msg.Chat.ID, part); err != nil {
			h.bot.logger.Error("failed to send message", zap.Error(err))
			return statusFailed
		}
	}
	return statusProcessed
}

// sendError отправляет то же сообщение, что получил бы HTTP-клиент
func (h *Handler) sendError(chatID int64, err error) {
	_, text := domain.ClientError(err)
	if sendErr := h.bot.Send(chatID, FormatError(text)); sendErr != nil {
		h.bot.logger.Error("failed to send error message", zap.Error(sendErr))
	}
}
