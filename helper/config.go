package helper

import (
	"fmt"
	"os"
	"strconv"
	"testing"
)

// Configuration holds all environment-backed settings for the pipeline.
// Load a .env file with godotenv before calling NewConfiguration if needed.
type Configuration struct {
	// Provider
	OpenAIAPIKey       string
	OpenAIBaseURL      string // Empty for api.openai.com, or an OpenRouter-style endpoint
	ChatModel          string
	EmbeddingModel     string
	MaxConcurrentCalls int

	// Corpus
	IndexDir string

	// Google Sheets (optional; structured-record lookup is disabled when SheetsID is empty)
	SheetsCredentials string
	SheetsID          string
	SheetsTable       string
}

// NewConfiguration reads the configuration from environment variables.
// OPENAI_API_KEY is required, everything else has a default.
func NewConfiguration() (*Configuration, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, NewError("read configuration", fmt.Errorf("OPENAI_API_KEY not set"))
	}

	maxCalls := 5
	if v := os.Getenv("MAX_CONCURRENT_CALLS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, NewError("read configuration", fmt.Errorf("invalid MAX_CONCURRENT_CALLS %q", v))
		}
		maxCalls = parsed
	}

	return &Configuration{
		OpenAIAPIKey:       apiKey,
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		ChatModel:          envOrDefault("CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:     envOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
		MaxConcurrentCalls: maxCalls,
		IndexDir:           envOrDefault("INDEX_DIR", "data/_indexes"),
		SheetsCredentials:  envOrDefault("GOOGLE_SHEETS_CREDENTIALS", "credentials.json"),
		SheetsID:           os.Getenv("GOOGLE_SHEETS_ID"),
		SheetsTable:        envOrDefault("GOOGLE_SHEETS_TABLE", "Purchase Requests"),
	}, nil
}

// SetTestConfigEnvs sets a complete test environment for NewConfiguration
func SetTestConfigEnvs(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("CHAT_MODEL", "gpt-4o-mini")
	t.Setenv("EMBEDDING_MODEL", "text-embedding-3-small")
	t.Setenv("INDEX_DIR", t.TempDir())
	t.Setenv("GOOGLE_SHEETS_ID", "")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
