package ai

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fscarponi/characterai/internal/metrics"
)

// Supported provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Params   Params
	Timeout  time.Duration
}

// Boundary bundles the chat completer and the prompt translator built for a provider.
type Boundary struct {
	Completer  Completer
	Translator *Translator
}

// New builds the instrumented completer and translator for cfg.Provider.
func New(cfg Config, recorder metrics.Recorder, logger *slog.Logger) (*Boundary, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}

	var raw Completer
	switch provider {
	case ProviderOpenAI:
		raw = NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Params)
	case ProviderGemini:
		raw = NewGeminiClient(cfg.APIKey, cfg.Params)
	case ProviderAnthropic:
		raw = NewAnthropicClient(cfg.APIKey, cfg.BaseURL, cfg.Params)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}

	common := []InstrumentOption{WithTimeout(cfg.Timeout), WithRecorder(recorder), WithLogger(logger)}
	translate := Instrument(raw, provider, append(common, WithOperation("translate"))...)
	return &Boundary{
		Completer:  Instrument(raw, provider, common...),
		Translator: NewTranslator(translate),
	}, nil
}
