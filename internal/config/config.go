package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrInvalidPort    = errors.New("PORT must be between 1 and 65535")
	ErrInvalidTimeout = errors.New("UPSTREAM_TIMEOUT_SEC must be positive")
	ErrInvalidURL     = errors.New("DEEPSEEK_API_URL must be an absolute http(s) URL")
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// запас сверх таймаута апстрима для остановки по умолчанию
const shutdownGraceSec = 5

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Env      string
	Server   ServerConfig
	DeepSeek DeepSeekConfig
	Telegram TelegramConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type DeepSeekConfig struct {
	// пустой ключ допустим: сервис стартует и отвечает 500 на /api/chat
	APIKey  string
	URL     string
	Model   string
	Timeout time.Duration
}

type TelegramConfig struct {
	Token string
	Debug bool
}

type LogConfig struct {
	Level       string
	Development bool
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := strings.ToLower(getEnvOrDefault("APP_ENV", EnvProduction))
	dev := env == EnvDevelopment

	defaultLevel := "info"
	if dev {
		defaultLevel = "debug"
	}

	upstreamTimeout := getEnvIntOrDefault("UPSTREAM_TIMEOUT_SEC", 30)

	cfg := &Config{
		Env: env,
		Server: ServerConfig{
			Port: getEnvIntOrDefault("PORT", 5000),
			// по умолчанию запрос, висящий на апстриме, успевает завершиться
			ShutdownTimeout: time.Duration(getEnvIntOrDefault("SHUTDOWN_TIMEOUT_SEC", upstreamTimeout+shutdownGraceSec)) * time.Second,
		},
		DeepSeek: DeepSeekConfig{
			APIKey:  os.Getenv("DEEPSEEK_API_KEY"),
			URL:     getEnvOrDefault("DEEPSEEK_API_URL", "https://api.deepseek.com/chat/completions"),
			Model:   getEnvOrDefault("DEEPSEEK_MODEL", "deepseek-chat"),
			Timeout: time.Duration(upstreamTimeout) * time.Second,
		},
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
			Debug: dev,
		},
		Log: LogConfig{
			Level:       getEnvOrDefault("LOG_LEVEL", defaultLevel),
			Development: dev,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.DeepSeek.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	u, err := url.Parse(c.DeepSeek.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func (c *Config) APIConfigured() bool {
	return c.DeepSeek.APIKey != ""
}

func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
