package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ErrMissingAPIKey APIキー未設定
var ErrMissingAPIKey = errors.New("API key is not configured")

// GenerationOptions テキスト生成のパラメータ
type GenerationOptions struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

// DefaultGenerationOptions 事実ベースで長さを抑えた出力向けの固定パラメータ
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		Temperature:     0.4,
		TopP:            0.9,
		TopK:            40,
		MaxOutputTokens: 4096,
	}
}

// Client プロンプトを受け取り生成テキストを返すクライアント
type Client interface {
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
}

// ProviderConfig 生成サービスの接続設定
type ProviderConfig struct {
	Provider    string
	APIKey      string
	Model       string
	Endpoint    string
	HTTPTimeout time.Duration
}

// NewClient 設定に応じた生成クライアントを作成
// APIキーがない場合は ErrMissingAPIKey を返す。
func NewClient(cfg ProviderConfig) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		return NewGeminiClient(cfg.Endpoint, cfg.APIKey, cfg.Model, cfg.HTTPTimeout), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.Endpoint, cfg.APIKey, cfg.Model, cfg.HTTPTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}
