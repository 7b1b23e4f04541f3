package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Feedback source kinds
const (
	FeedbackSourceFile     = "file"
	FeedbackSourcePostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	Port        string
	Environment string
	GinMode     string
	LogLevel    string

	// フィードバックデータの読み込み元
	FeedbackSource   string
	FeedbackDataPath string
	DatabaseURL      string
	DatabaseMigrate  bool

	// テキスト生成サービス
	LLMProvider      string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiEndpoint   string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	NarrativeTimeout time.Duration

	LexiconPath    string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		FeedbackSource:   strings.ToLower(getEnv("FEEDBACK_SOURCE", FeedbackSourceFile)),
		FeedbackDataPath: getEnv("FEEDBACK_DATA_PATH", "feedback_data.json"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DatabaseMigrate:  getEnvBool("DATABASE_AUTO_MIGRATE", false),

		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiEndpoint:   getEnv("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		NarrativeTimeout: getEnvDuration("NARRATIVE_TIMEOUT", 60*time.Second),

		LexiconPath:    getEnv("LEXICON_PATH", ""),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", nil),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 10<<20),
	}
}

// Validate 列挙値と必須項目を検証
func (c *Config) Validate() error {
	switch c.FeedbackSource {
	case FeedbackSourceFile:
		if c.FeedbackDataPath == "" {
			return fmt.Errorf("FEEDBACK_DATA_PATH is required when FEEDBACK_SOURCE=file")
		}
	case FeedbackSourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when FEEDBACK_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unsupported FEEDBACK_SOURCE %q (use file or postgres)", c.FeedbackSource)
	}

	switch c.LLMProvider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (use gemini or openai)", c.LLMProvider)
	}

	if c.NarrativeTimeout <= 0 {
		return fmt.Errorf("NARRATIVE_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// LLMAPIKey 選択中のプロバイダーのAPIキー
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// LLMModel 選択中のプロバイダーのモデル名
func (c *Config) LLMModel() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIModel
	}
	return c.GeminiModel
}

// LLMEndpoint 選択中のプロバイダーのエンドポイント
func (c *Config) LLMEndpoint() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIBaseURL
	}
	return c.GeminiEndpoint
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
