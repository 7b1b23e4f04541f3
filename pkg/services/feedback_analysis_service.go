package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"feedback-insights-api/pkg/metrics"
	"feedback-insights-api/pkg/models"
)

// dateLayout リクエスト・データセットで使う日付形式
const dateLayout = "2006-01-02"

// DateRange 分析対象の期間（両端を含む）
// Start / End はそれぞれ独立して適用され、nil の場合は制限なし。
type DateRange struct {
	Start    *time.Time
	End      *time.Time
	StartRaw *string
	EndRaw   *string
}

// IsZero 期間指定がないかどうか
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// ParseDateRange YYYY-MM-DD 形式の開始日・終了日を解析
// 空文字は未指定として扱う。解析できない場合は ErrMalformedInput を返す。
func ParseDateRange(start, end *string) (DateRange, error) {
	var rng DateRange

	parse := func(label string, raw *string) (*time.Time, *string, error) {
		if raw == nil || strings.TrimSpace(*raw) == "" {
			return nil, nil, nil
		}
		value := strings.TrimSpace(*raw)
		t, err := time.Parse(dateLayout, value)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid %s %q (use YYYY-MM-DD)", ErrMalformedInput, label, value)
		}
		return &t, &value, nil
	}

	var err error
	if rng.Start, rng.StartRaw, err = parse("startDate", start); err != nil {
		return DateRange{}, err
	}
	if rng.End, rng.EndRaw, err = parse("endDate", end); err != nil {
		return DateRange{}, err
	}
	return rng, nil
}

// FilterByDate 期間内のレコードを元の順序のまま返す
// 期間指定がある場合、日付を解析できないレコードは除外する。
func FilterByDate(records []models.FeedbackRecord, rng DateRange) []models.FeedbackRecord {
	if rng.IsZero() {
		out := make([]models.FeedbackRecord, len(records))
		copy(out, records)
		return out
	}

	out := make([]models.FeedbackRecord, 0, len(records))
	skipped := 0
	for _, rec := range records {
		d, err := time.Parse(dateLayout, strings.TrimSpace(rec.Date))
		if err != nil {
			skipped++
			continue
		}
		if rng.Start != nil && d.Before(*rng.Start) {
			continue
		}
		if rng.End != nil && d.After(*rng.End) {
			continue
		}
		out = append(out, rec)
	}
	if skipped > 0 {
		slog.Warn("[FeedbackAnalysis] skipped records with unparseable dates", slog.Int("count", skipped))
	}
	return out
}

// FeedbackAnalysisService フィードバック分析パイプラインの実行を担当
// 日付フィルタ → 集計 → サマリー生成 → 結果の組み立て を順に行う。
type FeedbackAnalysisService struct {
	analyzer  *FeedbackAnalyzer
	narrative *NarrativeService
	metrics   *metrics.Metrics
}

// NewFeedbackAnalysisService 新しい分析サービスを作成
func NewFeedbackAnalysisService(analyzer *FeedbackAnalyzer, narrative *NarrativeService, m *metrics.Metrics) *FeedbackAnalysisService {
	return &FeedbackAnalysisService{
		analyzer:  analyzer,
		narrative: narrative,
		metrics:   m,
	}
}

// AnalyzeSource データソースから読み込んだフィードバックを分析
func (s *FeedbackAnalysisService) AnalyzeSource(ctx context.Context, source FeedbackSource, rng DateRange) (*models.AnalysisResult, error) {
	records, err := source.Load(ctx)
	if err != nil {
		s.metrics.ObserveAnalysis(metrics.OutcomeError, 0)
		return nil, fmt.Errorf("failed to load feedback data: %w", err)
	}
	return s.Analyze(ctx, records, rng)
}

// Analyze フィードバックを分析して結果を返す
// 期間内のレコードが0件の場合は ErrEmptyResultSet を返す。
func (s *FeedbackAnalysisService) Analyze(ctx context.Context, records []models.FeedbackRecord, rng DateRange) (result *models.AnalysisResult, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveAnalysis(analysisOutcome(err), time.Since(start))
	}()

	filtered := FilterByDate(records, rng)
	if len(filtered) == 0 {
		return nil, ErrEmptyResultSet
	}

	agg, err := s.aggregate(filtered)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRecords(agg.TotalFeedback)

	narrative := s.narrative.Generate(ctx, agg)
	s.metrics.ObserveNarrative(narrative.Source)

	slog.Info("[FeedbackAnalysis] ✅ analysis completed",
		slog.Int("records", agg.TotalFeedback),
		slog.String("summarySource", narrative.Source),
		slog.Duration("elapsed", time.Since(start)))

	return buildAnalysisResult(agg, narrative.Text, rng), nil
}

// aggregate 集計を実行し、パニックは ErrInternalComputation に変換する
func (s *FeedbackAnalysisService) aggregate(records []models.FeedbackRecord) (agg models.Aggregate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternalComputation, r)
		}
	}()
	return s.analyzer.Aggregate(records), nil
}

func buildAnalysisResult(agg models.Aggregate, summary string, rng DateRange) *models.AnalysisResult {
	themes := agg.TopThemes
	if themes == nil {
		themes = []models.Theme{}
	}
	return &models.AnalysisResult{
		TotalFeedback:         agg.TotalFeedback,
		AverageRating:         agg.AverageRating,
		AvgSentiment:          agg.AvgSentiment,
		SentimentDistribution: agg.SentimentDistribution,
		TopThemes:             themes,
		CategoryDistribution:  agg.CategoryDistribution,
		RatingDistribution:    agg.RatingDistribution,
		ChartData:             agg.ChartData,
		Summary:               summary,
		SampleFeedback:        agg.SampleFeedback,
		StartDate:             rng.StartRaw,
		EndDate:               rng.EndRaw,
	}
}

func analysisOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrEmptyResultSet):
		return metrics.OutcomeEmpty
	case errors.Is(err, ErrMalformedInput):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeError
	}
}
