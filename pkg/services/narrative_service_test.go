package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"feedback-insights-api/pkg/llm"
	"feedback-insights-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator テスト用のテキスト生成サービス
type stubGenerator struct {
	text    string
	err     error
	panics  bool
	block   bool
	calls   int
	prompt  string
	options llm.GenerationOptions
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string, opts llm.GenerationOptions) (string, error) {
	g.calls++
	g.prompt = prompt
	g.options = opts
	if g.panics {
		panic("boom")
	}
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.text, g.err
}

func scenarioAggregate() models.Aggregate {
	return NewFeedbackAnalyzer(DefaultLexicon()).Aggregate(scenarioRecords())
}

func TestBuildNarrativePromptDeterministic(t *testing.T) {
	agg := scenarioAggregate()

	first := BuildNarrativePrompt(agg)
	second := BuildNarrativePrompt(agg)
	assert.Equal(t, first, second)

	assert.Contains(t, first, "I have 2 customer feedback entries to analyze.")
	assert.Contains(t, first, "- Average rating: 3.00/5")
	assert.Contains(t, first, "- Support: 2")
	assert.Contains(t, first, "- 2024-01-02: average rating 1.0, 1 entries, 0% satisfied")
	assert.Contains(t, first, `1. "great service, very happy"`)
	for _, section := range narrativeSections {
		assert.Contains(t, first, section)
	}
}

func TestBuildNarrativePromptWithoutData(t *testing.T) {
	prompt := BuildNarrativePrompt(models.Aggregate{TotalFeedback: 1})

	assert.Contains(t, prompt, "- Average rating: N/A/5")
	assert.Contains(t, prompt, "- No recurring themes identified")
	assert.Contains(t, prompt, "- No category data available")
	assert.Contains(t, prompt, "- No trend data available")
}

func TestFallbackNarrativeScenario(t *testing.T) {
	text := FallbackNarrative(scenarioAggregate())

	assert.Contains(t, text, "Analysis of 2 customer feedback entries shows an overall neutral sentiment (average score 0.00).")
	assert.Contains(t, text, "The most frequently mentioned themes are: great, happy, terrible.")
	assert.Contains(t, text, "Sentiment distribution: 1 positive, 0 neutral and 1 negative.")
	assert.Contains(t, text, "The average rating is 3.00 out of 5.")
	assert.Contains(t, text, "Ratings have declined from 5.0 on 2024-01-01 to 1.0 on 2024-01-02.")
	assert.Contains(t, text, "The latest satisfaction rate is 0% (2024-01-02).")
}

func TestFallbackNarrativeMissingData(t *testing.T) {
	agg := models.Aggregate{TotalFeedback: 1, AvgSentiment: 0.5, SentimentDistribution: models.SentimentDistribution{Positive: 1}}

	text := FallbackNarrative(agg)
	assert.Contains(t, text, "1 customer feedback entry shows an overall positive sentiment")
	assert.Contains(t, text, "No recurring themes were identified.")
	assert.Contains(t, text, "No rating data was available for this period.")
	assert.NotContains(t, text, "Ratings have")
	assert.NotContains(t, text, "satisfaction rate")
}

func TestFallbackNarrativeTrendDirections(t *testing.T) {
	avg := 4.0
	base := models.Aggregate{TotalFeedback: 2, AverageRating: &avg}

	improved := base
	improved.Trend = []models.TrendPoint{{Date: "2024-01-01", AverageRating: 3, Rated: 1}, {Date: "2024-01-02", AverageRating: 4.5, SatisfactionRate: 50, Rated: 2}}
	assert.Contains(t, FallbackNarrative(improved), "Ratings have improved from 3.0 on 2024-01-01 to 4.5 on 2024-01-02.")

	stable := base
	stable.Trend = []models.TrendPoint{{Date: "2024-01-01", AverageRating: 4, Rated: 1}, {Date: "2024-01-02", AverageRating: 4, Rated: 1}}
	assert.Contains(t, FallbackNarrative(stable), "Ratings have remained stable at 4.0 between 2024-01-01 and 2024-01-02.")

	single := base
	single.Trend = []models.TrendPoint{{Date: "2024-01-01", AverageRating: 4, SatisfactionRate: 100, Rated: 1}}
	text := FallbackNarrative(single)
	assert.NotContains(t, text, "Ratings have")
	assert.Contains(t, text, "The latest satisfaction rate is 100% (2024-01-01).")

	// 評価値のない日はトレンド比較・満足率に使わない
	unratedLast := base
	unratedLast.Trend = []models.TrendPoint{
		{Date: "2024-01-01", AverageRating: 3, SatisfactionRate: 0, Rated: 1},
		{Date: "2024-01-02", AverageRating: 5, SatisfactionRate: 100, Rated: 1},
		{Date: "2024-01-03", FeedbackCount: 2},
	}
	text = FallbackNarrative(unratedLast)
	assert.Contains(t, text, "Ratings have improved from 3.0 on 2024-01-01 to 5.0 on 2024-01-02.")
	assert.Contains(t, text, "The latest satisfaction rate is 100% (2024-01-02).")
	assert.NotContains(t, text, "2024-01-03")
}

func TestFallbackNarrativeSkipsUnratedDays(t *testing.T) {
	records := []models.FeedbackRecord{
		{Date: "2024-01-01", Rating: ptrFloat(5), FeedbackText: "great"},
		{Date: "2024-01-02", FeedbackText: "great too"},
	}
	agg := NewFeedbackAnalyzer(DefaultLexicon()).Aggregate(records)

	text := FallbackNarrative(agg)
	assert.Contains(t, text, "The average rating is 5.00 out of 5.")
	assert.NotContains(t, text, "Ratings have")
	assert.NotContains(t, text, "0.0 on")
	assert.Contains(t, text, "The latest satisfaction rate is 100% (2024-01-01).")

	prompt := BuildNarrativePrompt(agg)
	assert.Contains(t, prompt, "- 2024-01-02: no ratings, 1 entries")
	assert.NotContains(t, prompt, "- 2024-01-02: average rating")

	none := FallbackNarrative(models.Aggregate{
		TotalFeedback: 1,
		AverageRating: ptrFloat(4),
		Trend:         []models.TrendPoint{{Date: "2024-01-01", FeedbackCount: 1}},
	})
	assert.NotContains(t, none, "satisfaction rate")
}

func TestTryExternalNarrative(t *testing.T) {
	agg := scenarioAggregate()

	t.Run("success", func(t *testing.T) {
		gen := &stubGenerator{text: "  # Executive Summary\nAll good.  "}
		text, err := NewNarrativeService(gen, time.Second).TryExternalNarrative(context.Background(), agg)
		require.NoError(t, err)
		assert.Equal(t, "# Executive Summary\nAll good.", text)
		assert.Equal(t, BuildNarrativePrompt(agg), gen.prompt)
		assert.Equal(t, llm.DefaultGenerationOptions(), gen.options)
	})

	t.Run("unavailable", func(t *testing.T) {
		_, err := NewNarrativeService(nil, time.Second).TryExternalNarrative(context.Background(), agg)
		assert.ErrorIs(t, err, ErrGeneratorUnavailable)
	})

	t.Run("error", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("quota exceeded")}
		_, err := NewNarrativeService(gen, time.Second).TryExternalNarrative(context.Background(), agg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("blank completion", func(t *testing.T) {
		gen := &stubGenerator{text: " \n "}
		_, err := NewNarrativeService(gen, time.Second).TryExternalNarrative(context.Background(), agg)
		assert.ErrorIs(t, err, ErrMalformedCompletion)
	})

	t.Run("panic", func(t *testing.T) {
		gen := &stubGenerator{panics: true}
		_, err := NewNarrativeService(gen, time.Second).TryExternalNarrative(context.Background(), agg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
	})

	t.Run("timeout", func(t *testing.T) {
		gen := &stubGenerator{block: true}
		_, err := NewNarrativeService(gen, 10*time.Millisecond).TryExternalNarrative(context.Background(), agg)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNarrativeGenerateFallsBack(t *testing.T) {
	agg := scenarioAggregate()
	expected := FallbackNarrative(agg)

	for _, gen := range []TextGenerator{
		nil,
		&stubGenerator{err: errors.New("unauthorized")},
		&stubGenerator{text: ""},
		&stubGenerator{panics: true},
	} {
		narrative := NewNarrativeService(gen, time.Second).Generate(context.Background(), agg)
		assert.Equal(t, NarrativeSourceFallback, narrative.Source)
		assert.Equal(t, expected, narrative.Text)
	}

	narrative := NewNarrativeService(&stubGenerator{text: "external summary"}, time.Second).Generate(context.Background(), agg)
	assert.Equal(t, models.Narrative{Text: "external summary", Source: NarrativeSourceExternal}, narrative)
	assert.False(t, strings.Contains(narrative.Text, "Analysis of"))
}
