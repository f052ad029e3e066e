// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fscarponi/characterai/internal/ai"
	"github.com/fscarponi/characterai/internal/convlog"
	"github.com/fscarponi/characterai/internal/session"
)

// Config holds all application configuration.
type Config struct {
	Port            string
	FrontendURL     string
	DBPath          string
	SeedFile        string
	DefaultLanguage string
	AI              AIConfig
	History         HistoryConfig
	DispatchBacklog int
	Telegram        TelegramConfig
	ConversationLog ConversationLogConfig
}

// AIConfig selects and tunes the completion provider.
type AIConfig struct {
	Provider       string
	APIKey         string
	Model          string
	BaseURL        string
	Temperature    float64
	MaxTokens      int
	TopP           float64
	RequestTimeout time.Duration
}

// HistoryConfig bounds the conversation history kept and sent per turn.
type HistoryConfig struct {
	MaxTurns    int
	TokenBudget int
}

// TelegramConfig enables the Telegram adapter when Token is set.
type TelegramConfig struct {
	Token       string
	Username    string
	PollTimeout int
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	QueueSize     int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	defaults := ai.DefaultParams()
	apiKey := getEnv("AI_API_KEY", "")
	if apiKey == "" {
		apiKey = getEnv("HUGGINGFACE_API_TOKEN", "")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", ""),
		DBPath:          getEnv("DB_PATH", "./data/characters.db"),
		SeedFile:        getEnv("CHARACTER_SEED_FILE", ""),
		DefaultLanguage: strings.ToLower(strings.TrimSpace(getEnv("DEFAULT_LANGUAGE", session.DefaultLanguage))),
		AI: AIConfig{
			Provider:       strings.ToLower(getEnv("AI_PROVIDER", ai.ProviderOpenAI)),
			APIKey:         apiKey,
			Model:          getEnv("AI_MODEL", defaults.Model),
			BaseURL:        getEnv("AI_BASE_URL", ""),
			Temperature:    getEnvFloat("AI_TEMPERATURE", defaults.Temperature),
			MaxTokens:      getEnvInt("AI_MAX_TOKENS", defaults.MaxTokens),
			TopP:           getEnvFloat("AI_TOP_P", defaults.TopP),
			RequestTimeout: getEnvDuration("AI_REQUEST_TIMEOUT", 60*time.Second),
		},
		History: HistoryConfig{
			MaxTurns:    getEnvInt("HISTORY_MAX_TURNS", 50),
			TokenBudget: getEnvInt("HISTORY_TOKEN_BUDGET", 6000),
		},
		DispatchBacklog: getEnvInt("DISPATCH_QUEUE_SIZE", 32),
		Telegram: TelegramConfig{
			Token:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			Username:    getEnv("TELEGRAM_BOT_USERNAME", ""),
			PollTimeout: getEnvInt("TELEGRAM_POLL_TIMEOUT", 60),
		},
		ConversationLog: ConversationLogConfig{
			Enabled:       getEnvBool("CONVERSATION_LOG_ENABLED", true),
			Dir:           getEnv("CONVERSATION_LOG_DIR", "./data/logs/conversations"),
			GlobalEnabled: getEnvBool("CONVERSATION_LOG_GLOBAL_ENABLED", false),
			QueueSize:     queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch c.AI.Provider {
	case ai.ProviderOpenAI, ai.ProviderGemini, ai.ProviderAnthropic:
	default:
		return fmt.Errorf("AI_PROVIDER %q is not supported", c.AI.Provider)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("AI_MODEL cannot be empty")
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be > 0")
	}
	if c.AI.RequestTimeout <= 0 {
		return fmt.Errorf("AI_REQUEST_TIMEOUT must be > 0")
	}
	if c.History.MaxTurns < 0 || c.History.TokenBudget < 0 {
		return fmt.Errorf("HISTORY_MAX_TURNS and HISTORY_TOKEN_BUDGET must be >= 0")
	}
	if c.DispatchBacklog <= 0 {
		return fmt.Errorf("DISPATCH_QUEUE_SIZE must be > 0")
	}
	if c.Telegram.PollTimeout <= 0 {
		return fmt.Errorf("TELEGRAM_POLL_TIMEOUT must be > 0")
	}
	if c.ConversationLog.Dir == "" {
		return fmt.Errorf("CONVERSATION_LOG_DIR cannot be empty")
	}
	if c.ConversationLog.QueueSize <= 0 {
		return fmt.Errorf("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AIProvider returns the AI boundary configuration.
func (c *Config) AIProvider() ai.Config {
	return ai.Config{
		Provider: c.AI.Provider,
		APIKey:   c.AI.APIKey,
		BaseURL:  c.AI.BaseURL,
		Params: ai.Params{
			Model:       c.AI.Model,
			Temperature: c.AI.Temperature,
			MaxTokens:   c.AI.MaxTokens,
			TopP:        c.AI.TopP,
		},
		Timeout: c.AI.RequestTimeout,
	}
}

// ConvLog returns the conversation logger configuration.
func (c *Config) ConvLog() convlog.Config {
	return convlog.Config{
		Enabled:   c.ConversationLog.Enabled,
		Dir:       c.ConversationLog.Dir,
		Global:    c.ConversationLog.GlobalEnabled,
		QueueSize: c.ConversationLog.QueueSize,
	}
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
