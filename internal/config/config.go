// Package config содержит логику чтения конфигурации клиента мини-приложения и сервера разработки.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultBaseURL        = "http://localhost:8080"
	defaultRunAddress     = "localhost:8080"
	defaultBridgeTimeout  = 7 * time.Second
	defaultRequestTimeout = 10 * time.Second
	defaultNavigateDelay  = 1500 * time.Millisecond
)

// Client содержит параметры конфигурации клиента мини-приложения.
type Client struct {
	BaseURL        string        `env:"BASE_URL"`
	InitData       string        `env:"INIT_DATA"`
	BridgeTimeout  time.Duration `env:"BRIDGE_TIMEOUT"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	NavigateDelay  time.Duration `env:"NAVIGATE_DELAY"`
	PlainAlerts    bool          `env:"PLAIN_ALERTS"`
}

// Server содержит параметры конфигурации сервера разработки.
type Server struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	BotToken      string `env:"BOT_TOKEN"`
	SessionSecret string `env:"SESSION_SECRET"`
}

// ParseClient считывает конфигурацию клиента из .env, флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func ParseClient() (*Client, error) {
	loadDotEnv()

	cfg := &Client{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envBaseURL := cfg.BaseURL
	envInitData := cfg.InitData
	envBridgeTimeout := cfg.BridgeTimeout
	envRequestTimeout := cfg.RequestTimeout
	envNavigateDelay := cfg.NavigateDelay
	envPlainAlerts := cfg.PlainAlerts

	flag.StringVar(&cfg.BaseURL, "b", defaultBaseURL, "backend base URL")
	flag.StringVar(&cfg.InitData, "i", "", "signed platform init data")
	flag.DurationVar(&cfg.BridgeTimeout, "t", defaultBridgeTimeout, "how long to wait for the platform bridge")
	flag.DurationVar(&cfg.RequestTimeout, "request-timeout", defaultRequestTimeout, "backend request timeout")
	flag.DurationVar(&cfg.NavigateDelay, "navigate-delay", defaultNavigateDelay, "delay before opening the orders page")
	flag.BoolVar(&cfg.PlainAlerts, "plain-alerts", false, "use plain alerts instead of toasts")

	flag.Parse()

	if envBaseURL != "" {
		cfg.BaseURL = envBaseURL
	}
	if envInitData != "" {
		cfg.InitData = envInitData
	}
	if envBridgeTimeout > 0 {
		cfg.BridgeTimeout = envBridgeTimeout
	}
	if envRequestTimeout > 0 {
		cfg.RequestTimeout = envRequestTimeout
	}
	if envNavigateDelay > 0 {
		cfg.NavigateDelay = envNavigateDelay
	}
	if envPlainAlerts {
		cfg.PlainAlerts = true
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.BridgeTimeout <= 0 {
		cfg.BridgeTimeout = defaultBridgeTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	return cfg, nil
}

// ParseServer считывает конфигурацию сервера разработки.
func ParseServer() (*Server, error) {
	loadDotEnv()

	cfg := &Server{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envBotToken := cfg.BotToken
	envSessionSecret := cfg.SessionSecret

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.BotToken, "k", "", "bot token used to verify init data")
	flag.StringVar(&cfg.SessionSecret, "s", "", "session cookie secret")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envBotToken != "" {
		cfg.BotToken = envBotToken
	}
	if envSessionSecret != "" {
		cfg.SessionSecret = envSessionSecret
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	return cfg, nil
}

// loadDotEnv подгружает .env из рабочей директории, не перезаписывая уже заданные переменные.
func loadDotEnv() {
	_ = godotenv.Load()
}
