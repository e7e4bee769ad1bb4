package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ProviderUpstream forwards chats to the self-hosted LLM server.
	ProviderUpstream = "upstream"
	// ProviderOpenAI answers chats directly through the OpenAI API.
	ProviderOpenAI = "openai"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string

	// LLM provider configuration
	LLMProvider string
	LLMAPIURL   string
	LLMTimeout  time.Duration
	OpenAIKey   string
	OpenAIModel string

	// Rate limiting configuration
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Session store configuration; empty DatabaseURL selects the in-memory store
	DatabaseURL string

	// CORS configuration
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from a .env file (when present), environment
// variables and command-line flags. Flags take precedence over environment variables.
func LoadConfig() (*Config, error) {
	// The deployment keeps secrets in an untracked .env next to the binary.
	// Absence is not an error; systemd sets the same variables in production.
	_ = godotenv.Load()

	cfg := &Config{}

	// Define flags
	serverPort := flag.String("server-port", getEnv("SERVER_PORT", "5000"), "Server port")
	llmProvider := flag.String("llm-provider", getEnv("LLM_PROVIDER", ProviderUpstream), "LLM provider: upstream or openai")
	llmAPIURL := flag.String("llm-api-url", getEnv("LLM_API_URL", ""), "Base URL of the upstream LLM server")
	llmTimeout := flag.Int("llm-timeout", getEnvAsInt("LLM_TIMEOUT_SECONDS", 30), "Upstream LLM request timeout in seconds")
	openAIKey := flag.String("openai-key", getEnv("OPENAI_API_KEY", ""), "OpenAI API key (openai provider)")
	openAIModel := flag.String("openai-model", getEnv("OPENAI_MODEL", "gpt-4.1-mini"), "OpenAI model for chat completions")
	rateLimitRequests := flag.Int("rate-limit-requests", getEnvAsInt("RATE_LIMIT_REQUESTS", 10), "Allowed requests per rate limit window")
	rateLimitWindow := flag.Int("rate-limit-window", getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60), "Rate limit window in seconds")
	databaseURL := flag.String("database-url", getEnv("DATABASE_URL", ""), "Postgres URL for the session store (empty: in-memory)")
	corsOrigins := flag.String("cors-allowed-origins", getEnv("CORS_ALLOWED_ORIGINS", "*"), "Comma-separated allowed CORS origins")

	flag.Parse()

	// Set config values
	cfg.ServerPort = *serverPort
	cfg.LLMProvider = *llmProvider
	cfg.LLMAPIURL = *llmAPIURL
	cfg.LLMTimeout = time.Duration(*llmTimeout) * time.Second
	cfg.OpenAIKey = *openAIKey
	cfg.OpenAIModel = *openAIModel
	cfg.RateLimitRequests = *rateLimitRequests
	cfg.RateLimitWindow = time.Duration(*rateLimitWindow) * time.Second
	cfg.DatabaseURL = *databaseURL
	cfg.CORSAllowedOrigins = splitOrigins(*corsOrigins)

	// Validate required fields
	switch cfg.LLMProvider {
	case ProviderUpstream:
		if cfg.LLMAPIURL == "" {
			return nil, fmt.Errorf("LLM_API_URL is required (set via environment variable or -llm-api-url flag)")
		}
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required (set via environment variable or -openai-key flag)")
		}
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (expected %q or %q)", cfg.LLMProvider, ProviderUpstream, ProviderOpenAI)
	}

	if cfg.RateLimitRequests <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", cfg.RateLimitRequests)
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
