// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/comptoir-labs/comptoir/internal/gate"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Model providers.
const (
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// DefaultModel is the Gemini model used when MODEL_NAME is unset.
const DefaultModel = "gemini-2.5-flash"

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	DBPath         string
	SessionTTL     time.Duration
	SessionBackend string
	RedisAddr      string
	PersonasPath   string
	ContactEmail   string
	GRPCHealthAddr string

	// UnlockPasscodes is the raw comma-separated list; see gate.ParseCodes.
	UnlockPasscodes string

	LLM             LLMConfig
	Gate            gate.Policy
	Pricing         gate.Pricing
	ConversationLog ConversationLogConfig
}

// LLMConfig selects and authenticates the model provider.
type LLMConfig struct {
	Provider string
	Model    string
	APIKey   string
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
}

// Load reads configuration from environment variables. Malformed values
// fall back to defaults.
func Load() (*Config, error) {
	queueSize := getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	apiKey := getEnv("GEMINI_API_KEY", "")
	if apiKey == "" {
		apiKey = getEnv("GOOGLE_API_KEY", "")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", ""),
		DBPath:          getEnv("DB_PATH", "./data/comptoir.db"),
		SessionTTL:      getEnvDuration("SESSION_TTL", 60*time.Minute),
		SessionBackend:  strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		PersonasPath:    getEnv("PERSONAS_PATH", ""),
		ContactEmail:    getEnv("CONTACT_EMAIL", ""),
		GRPCHealthAddr:  getEnv("GRPC_HEALTH_ADDR", ""),
		UnlockPasscodes: getEnv("UNLOCK_PASSCODES", ""),
		LLM: LLMConfig{
			Provider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
			Model:    getEnv("MODEL_NAME", DefaultModel),
			APIKey:   apiKey,
		},
		Gate: gate.Policy{
			FreeQuota:      getEnvPositiveInt("FREE_QUOTA", gate.DefaultFreeQuota),
			UnlockedQuota:  getEnvPositiveInt("UNLOCKED_QUOTA", gate.DefaultUnlockedQuota),
			FreeTokens:     getEnvPositiveInt("FREE_MAX_TOKENS", gate.DefaultFreeTokens),
			UnlockedTokens: getEnvPositiveInt("UNLOCKED_MAX_TOKENS", gate.DefaultUnlockedTokens),
		},
		Pricing: gate.Pricing{
			InputPerMillion:  getEnvFloat("PRICE_INPUT_PER_MILLION", gate.DefaultPricing().InputPerMillion),
			OutputPerMillion: getEnvFloat("PRICE_OUTPUT_PER_MILLION", gate.DefaultPricing().OutputPerMillion),
		},
		ConversationLog: ConversationLogConfig{
			Enabled:       getEnvBool("CONVERSATION_LOG_ENABLED", true),
			Dir:           getEnv("CONVERSATION_LOG_DIR", "./data/logs/conversations"),
			GlobalEnabled: getEnvBool("CONVERSATION_LOG_GLOBAL_ENABLED", false),
			GlobalPath:    getEnv("CONVERSATION_LOG_GLOBAL_PATH", "./data/logs/conversations/all.ndjson"),
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
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", SessionBackendMemory, SessionBackendRedis, c.SessionBackend)
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderMock:
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderMock, c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("MODEL_NAME cannot be empty")
	}
	if c.Gate.UnlockedQuota < c.Gate.FreeQuota {
		return fmt.Errorf("UNLOCKED_QUOTA (%d) must be >= FREE_QUOTA (%d)", c.Gate.UnlockedQuota, c.Gate.FreeQuota)
	}
	if c.ConversationLog.Dir == "" {
		return fmt.Errorf("CONVERSATION_LOG_DIR cannot be empty")
	}
	if c.ConversationLog.GlobalPath == "" {
		return fmt.Errorf("CONVERSATION_LOG_GLOBAL_PATH cannot be empty")
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

// AllowedOrigins returns the CORS origins for the configured frontend.
func (c *Config) AllowedOrigins() []string {
	if c.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{strings.TrimRight(c.FrontendURL, "/")}
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

func getEnvPositiveInt(key string, fallback int) int {
	if n := getEnvInt(key, fallback); n > 0 {
		return n
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
