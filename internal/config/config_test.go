package config

import (
	"os"
	"testing"
	"time"

	"github.com/fscarponi/characterai/internal/ai"
)

var configKeys = []string{
	"PORT", "FRONTEND_URL", "DB_PATH", "CHARACTER_SEED_FILE", "DEFAULT_LANGUAGE",
	"AI_PROVIDER", "AI_API_KEY", "HUGGINGFACE_API_TOKEN", "AI_MODEL", "AI_BASE_URL",
	"AI_TEMPERATURE", "AI_MAX_TOKENS", "AI_TOP_P", "AI_REQUEST_TIMEOUT",
	"HISTORY_MAX_TURNS", "HISTORY_TOKEN_BUDGET", "DISPATCH_QUEUE_SIZE",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_USERNAME", "TELEGRAM_POLL_TIMEOUT",
	"CONVERSATION_LOG_ENABLED", "CONVERSATION_LOG_DIR", "CONVERSATION_LOG_GLOBAL_ENABLED",
	"CONVERSATION_LOG_QUEUE_SIZE",
}

// clearEnv unsets every configuration key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Provider != ai.ProviderOpenAI {
		t.Errorf("provider = %q", cfg.AI.Provider)
	}
	if cfg.AI.RequestTimeout != 60*time.Second {
		t.Errorf("timeout = %v", cfg.AI.RequestTimeout)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled without a token")
	}
	if !cfg.IsDevelopment() {
		t.Error("empty FRONTEND_URL should mean development")
	}
	if cfg.DefaultLanguage != "english" {
		t.Errorf("default language = %q", cfg.DefaultLanguage)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "Anthropic")
	t.Setenv("HUGGINGFACE_API_TOKEN", "hf-token")
	t.Setenv("AI_TEMPERATURE", "0.9")
	t.Setenv("AI_MAX_TOKENS", "512")
	t.Setenv("AI_REQUEST_TIMEOUT", "15")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("FRONTEND_URL", "https://chat.example.com")
	t.Setenv("CONVERSATION_LOG_GLOBAL_ENABLED", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	aiCfg := cfg.AIProvider()
	if aiCfg.Provider != ai.ProviderAnthropic {
		t.Errorf("provider = %q", aiCfg.Provider)
	}
	if aiCfg.APIKey != "hf-token" {
		t.Errorf("api key fallback = %q", aiCfg.APIKey)
	}
	if aiCfg.Params.Temperature != 0.9 || aiCfg.Params.MaxTokens != 512 {
		t.Errorf("params = %+v", aiCfg.Params)
	}
	if aiCfg.Timeout != 15*time.Second {
		t.Errorf("timeout = %v", aiCfg.Timeout)
	}
	if !cfg.TelegramEnabled() {
		t.Error("telegram should be enabled")
	}
	if cfg.IsDevelopment() {
		t.Error("public FRONTEND_URL should not be development")
	}
	if !cfg.ConvLog().Global {
		t.Error("global conversation log should be enabled")
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "cohere")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "not-a-number")
	if got := getEnvInt("CFG_TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want fallback 7", got)
	}
	t.Setenv("CFG_TEST_FLOAT", "abc")
	if got := getEnvFloat("CFG_TEST_FLOAT", 0.5); got != 0.5 {
		t.Errorf("getEnvFloat = %v, want fallback", got)
	}
	t.Setenv("CFG_TEST_BOOL", "maybe")
	if got := getEnvBool("CFG_TEST_BOOL", true); !got {
		t.Error("getEnvBool should fall back on unknown values")
	}
	t.Setenv("CFG_TEST_DURATION", "2m")
	if got := getEnvDuration("CFG_TEST_DURATION", time.Second); got != 2*time.Minute {
		t.Errorf("getEnvDuration = %v", got)
	}
}
