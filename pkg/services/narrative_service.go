package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"feedback-insights-api/pkg/llm"
	"feedback-insights-api/pkg/models"
)

// 生成経路
const (
	NarrativeSourceExternal = "external"
	NarrativeSourceFallback = "fallback"
)

// TextGenerator 外部テキスト生成サービスの契約
// プロンプトと生成オプションを受け取り、生成テキストかエラーを返す。
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts llm.GenerationOptions) (string, error)
}

// NarrativeService サマリー文章を生成するサービス
type NarrativeService struct {
	generator TextGenerator
	options   llm.GenerationOptions
	timeout   time.Duration
}

// NewNarrativeService 新しい NarrativeService を作成
// generator が nil の場合は常にフォールバックの文章を返す。
func NewNarrativeService(generator TextGenerator, timeout time.Duration) *NarrativeService {
	return &NarrativeService{
		generator: generator,
		options:   llm.DefaultGenerationOptions(),
		timeout:   timeout,
	}
}

// HasGenerator 外部生成サービスが設定されているか
func (s *NarrativeService) HasGenerator() bool {
	return s.generator != nil
}

// TryExternalNarrative 外部生成サービスでサマリーを作成
// 未設定・タイムアウト・空応答・パニックはすべてエラーとして返す。
func (s *NarrativeService) TryExternalNarrative(ctx context.Context, agg models.Aggregate) (text string, err error) {
	if s.generator == nil {
		return "", ErrGeneratorUnavailable
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("text generator panicked: %v", r)
		}
	}()

	out, err := s.generator.Generate(ctx, BuildNarrativePrompt(agg), s.options)
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrMalformedCompletion
	}
	return out, nil
}

// Generate サマリーを作成する（失敗しない）
// 外部生成に失敗した場合はフォールバックの文章を返す。
func (s *NarrativeService) Generate(ctx context.Context, agg models.Aggregate) models.Narrative {
	text, err := s.TryExternalNarrative(ctx, agg)
	if err == nil {
		return models.Narrative{Text: text, Source: NarrativeSourceExternal}
	}

	if errors.Is(err, ErrGeneratorUnavailable) {
		slog.Debug("[NarrativeService] no text generator configured, using fallback summary")
	} else {
		slog.Warn("[NarrativeService] ⚠️ external summary failed, using fallback summary",
			slog.String("error", err.Error()))
	}
	return models.Narrative{Text: FallbackNarrative(agg), Source: NarrativeSourceFallback}
}
