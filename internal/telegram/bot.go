package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/finking/internal/metrics"
	"github.com/kitbuilder587/finking/internal/service"
)

type BotConfig struct {
	Token string
	Debug bool
}

// Sender is the part of tgbotapi.BotAPI the bot writes through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	// Request для методов, которые отвечают true вместо сообщения
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	chat    service.ChatService
	logger  *zap.Logger
	metrics *metrics.Metrics
	handler *Handler
	wg      sync.WaitGroup
}

func New(cfg BotConfig, chat service.ChatService, logger *zap.Logger, m *metrics.Metrics) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	api.Debug = cfg.Debug

	bot := newBot(api, chat, logger, m)
	bot.api = api

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
	)

	return bot, nil
}

func newBot(sender Sender, chat service.ChatService, logger *zap.Logger, m *metrics.Metrics) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	bot := &Bot{
		sender:  sender,
		chat:    chat,
		logger:  logger,
		metrics: m,
	}
	bot.handler = NewHandler(bot)
	return bot
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// handlers.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping, waiting for handlers to finish")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.logger.Info("all handlers finished")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	b.wg.Add(1)
	go func(upd tgbotapi.Update) {
		defer b.wg.Done()
		b.handleUpdate(ctx, upd)
	}(update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	startTime := time.Now()
	updateType := "message"
	if update.Message != nil && update.Message.IsCommand() {
		updateType = "command"
	}

	defer func() {
		if r := recover(); r != nil {
			chatID := int64(0)
			if update.Message != nil && update.Message.Chat != nil {
				chatID = update.Message.Chat.ID
			}
			b.logger.Error("panic in update handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", chatID),
				zap.Duration("elapsed", time.Since(startTime)),
			)
			b.recordUpdate(updateType, statusPanic)
		}
	}()

	status := b.handler.HandleMessage(ctx, update.Message)
	b.recordUpdate(updateType, status)
}

func (b *Bot) recordUpdate(updateType, status string) {
	if b.metrics != nil {
		b.metrics.RecordTelegramUpdate(updateType, status)
	}
}

func (b *Bot) Send(chatID int64, text string) error {
	if b.sender == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := b.sender.Send(msg)
	return err
}

func (b *Bot) SendTyping(chatID int64) {
	if b.sender == nil {
		return
	}
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.sender.Request(action); err != nil {
		b.logger.Debug("failed to send typing action", zap.Error(err))
	}
}
