package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/finking/internal/config"
	"github.com/kitbuilder587/finking/internal/llm/deepseek"
	"github.com/kitbuilder587/finking/internal/metrics"
	"github.com/kitbuilder587/finking/internal/server"
	"github.com/kitbuilder587/finking/internal/service"
	"github.com/kitbuilder587/finking/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "finking: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.IsDevelopment() {
		logger.Warn("running in development mode, do not use in production")
	}
	if !cfg.APIConfigured() {
		logger.Warn("DEEPSEEK_API_KEY is not set, /api/chat will answer 500")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	upstream := deepseek.New(deepseek.Config{
		APIKey:  cfg.DeepSeek.APIKey,
		URL:     cfg.DeepSeek.URL,
		Model:   cfg.DeepSeek.Model,
		Timeout: cfg.DeepSeek.Timeout,
	}, logger.Named("deepseek"))

	chat := service.NewChatService(service.ChatServiceDeps{
		LLM:     upstream,
		Logger:  logger.Named("chat"),
		Metrics: m,
	})

	router := server.NewRouter(server.Deps{
		Chat:     chat,
		Upstream: upstream,
		Logger:   logger.Named("http"),
		Metrics:  m,
		Gatherer: registry,
		Debug:    cfg.IsDevelopment(),
	})
	srv := server.NewHTTPServer(cfg.Server.Port, cfg.DeepSeek.Timeout, router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening",
			zap.Int("port", cfg.Server.Port),
			zap.String("env", cfg.Env),
			zap.String("model", upstream.Model()),
			zap.Bool("api_configured", upstream.Configured()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down http server", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.TelegramEnabled() {
		bot, err := telegram.New(telegram.BotConfig{
			Token: cfg.Telegram.Token,
			Debug: cfg.Telegram.Debug,
		}, chat, logger.Named("telegram"), m)
		if err != nil {
			// бот опционален, HTTP работает и без него
			logger.Error("telegram bot disabled", zap.Error(err))
		} else {
			g.Go(func() error {
				if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("telegram bot: %w", err)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		logger.Error("stopped with error", zap.Error(err))
		return err
	}

	logger.Info("stopped")
	return nil
}
