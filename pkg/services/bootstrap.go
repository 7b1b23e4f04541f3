package services

import (
	"errors"
	"fmt"
	"log/slog"

	config "feedback-insights-api/configs"
	"feedback-insights-api/pkg/llm"
)

// LoadLexicon 語彙ファイルを読み込む（パス未指定なら既定の語彙）
func LoadLexicon(path string) (Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}
	cfg, err := config.LoadLexicon(path)
	if err != nil {
		return Lexicon{}, err
	}
	stop, positive, negative, noise := cfg.Merge(defaultStopWords, defaultPositiveWords, defaultNegativeWords, defaultNoiseWords)
	return NewLexicon(stop, positive, negative, noise), nil
}

// NewFeedbackSourceFromConfig 設定に応じたデータソースを作成
func NewFeedbackSourceFromConfig(cfg *config.Config) (FeedbackSource, error) {
	switch cfg.FeedbackSource {
	case config.FeedbackSourcePostgres:
		db, err := OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresFeedbackSource(db, cfg.DatabaseMigrate)
	case config.FeedbackSourceFile, "":
		return NewFileFeedbackSource(cfg.FeedbackDataPath), nil
	default:
		return nil, fmt.Errorf("unsupported feedback source: %q", cfg.FeedbackSource)
	}
}

// NewTextGeneratorFromConfig 設定に応じた生成クライアントを作成
// APIキーが未設定の場合は nil を返し、サマリーは常にフォールバックになる。
func NewTextGeneratorFromConfig(cfg *config.Config) (TextGenerator, error) {
	client, err := llm.NewClient(llm.ProviderConfig{
		Provider:    cfg.LLMProvider,
		APIKey:      cfg.LLMAPIKey(),
		Model:       cfg.LLMModel(),
		Endpoint:    cfg.LLMEndpoint(),
		HTTPTimeout: cfg.NarrativeTimeout,
	})
	if errors.Is(err, llm.ErrMissingAPIKey) {
		slog.Warn("[Bootstrap] ⚠️ LLM API key not configured, summaries will use the fallback template",
			slog.String("provider", cfg.LLMProvider))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}
