package services

import (
	"fmt"
	"sort"
	"strings"

	"feedback-insights-api/pkg/models"
)

// narrativeSections 生成を依頼するドキュメントの構成
var narrativeSections = []string{
	"Executive Summary",
	"Sentiment Analysis",
	"Key Themes",
	"Issues and Pain Points",
	"Positive Highlights",
	"Recommendations",
	"Trend Analysis",
	"Conclusion",
}

// formatAverageRating 平均評価を2桁表示（評価データなしは N/A）
func formatAverageRating(avg *float64) string {
	if avg == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *avg)
}

// BuildNarrativePrompt 集計結果から生成サービス向けのプロンプトを構築
// 同じ集計結果からは常に同じ文字列を返す。
func BuildNarrativePrompt(agg models.Aggregate) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("I have %d customer feedback entries to analyze.\n\n", agg.TotalFeedback))

	// 主要指標
	sb.WriteString("## Key Metrics\n")
	sb.WriteString(fmt.Sprintf("- Total feedback: %d\n", agg.TotalFeedback))
	sb.WriteString(fmt.Sprintf("- Average rating: %s/5\n", formatAverageRating(agg.AverageRating)))
	sb.WriteString(fmt.Sprintf("- Average sentiment score: %.2f (scale -1 to 1)\n", agg.AvgSentiment))
	sb.WriteString(fmt.Sprintf("- Sentiment distribution: %d positive, %d neutral, %d negative\n\n",
		agg.SentimentDistribution.Positive, agg.SentimentDistribution.Neutral, agg.SentimentDistribution.Negative))

	// テーマ
	sb.WriteString("## Top Themes\n")
	if len(agg.TopThemes) == 0 {
		sb.WriteString("- No recurring themes identified\n")
	}
	for _, theme := range agg.TopThemes {
		sb.WriteString(fmt.Sprintf("- %s (%d mentions)\n", theme.Word, theme.Count))
	}
	sb.WriteString("\n")

	// カテゴリ（決定的な出力のため名前順）
	sb.WriteString("## Category Distribution\n")
	if len(agg.CategoryDistribution) == 0 {
		sb.WriteString("- No category data available\n")
	}
	names := make([]string, 0, len(agg.CategoryDistribution))
	for name := range agg.CategoryDistribution {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", name, agg.CategoryDistribution[name]))
	}
	sb.WriteString("\n")

	// トレンド
	sb.WriteString("## Daily Trend\n")
	if len(agg.Trend) == 0 {
		sb.WriteString("- No trend data available\n")
	}
	for _, p := range agg.Trend {
		if !p.HasRatings() {
			sb.WriteString(fmt.Sprintf("- %s: no ratings, %d entries\n", p.Date, p.FeedbackCount))
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s: average rating %.1f, %d entries, %.0f%% satisfied\n",
			p.Date, p.AverageRating, p.FeedbackCount, p.SatisfactionRate))
	}
	sb.WriteString("\n")

	// サンプル
	sb.WriteString("## Sample Feedback\n")
	for i, text := range agg.SampleTexts {
		sb.WriteString(fmt.Sprintf("%d. %q\n", i+1, text))
	}
	sb.WriteString("\n")

	sb.WriteString("Please write a structured business document based on the data above with the following sections:\n")
	for i, section := range narrativeSections {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, section))
	}
	sb.WriteString("\nUse Markdown headings for each section. Base every statement on the figures provided, ")
	sb.WriteString("and keep a clear, professional tone suitable for business stakeholders.\n")

	return sb.String()
}

// FallbackNarrative 生成サービスを使わずに集計結果だけからサマリーを作成
// 存在しないデータ（テーマ0件、トレンドなし、評価なし）には言及しない。
func FallbackNarrative(agg models.Aggregate) string {
	sentences := make([]string, 0, 6)

	entries := "entries"
	if agg.TotalFeedback == 1 {
		entries = "entry"
	}
	sentences = append(sentences, fmt.Sprintf(
		"Analysis of %d customer feedback %s shows an overall %s sentiment (average score %.2f).",
		agg.TotalFeedback, entries, ClassifySentiment(agg.AvgSentiment), agg.AvgSentiment))

	if len(agg.TopThemes) > 0 {
		n := len(agg.TopThemes)
		if n > 3 {
			n = 3
		}
		words := make([]string, n)
		for i := 0; i < n; i++ {
			words[i] = agg.TopThemes[i].Word
		}
		sentences = append(sentences, fmt.Sprintf("The most frequently mentioned themes are: %s.", strings.Join(words, ", ")))
	} else {
		sentences = append(sentences, "No recurring themes were identified.")
	}

	d := agg.SentimentDistribution
	sentences = append(sentences, fmt.Sprintf(
		"Sentiment distribution: %d positive, %d neutral and %d negative.", d.Positive, d.Neutral, d.Negative))

	if agg.AverageRating == nil {
		sentences = append(sentences, "No rating data was available for this period.")
		return strings.Join(sentences, " ")
	}

	sentences = append(sentences, fmt.Sprintf("The average rating is %.2f out of 5.", *agg.AverageRating))

	// 評価値のない日は比較・満足率の対象にしない
	rated := make([]models.TrendPoint, 0, len(agg.Trend))
	for _, p := range agg.Trend {
		if p.HasRatings() {
			rated = append(rated, p)
		}
	}

	if len(rated) >= 2 {
		first, last := rated[0], rated[len(rated)-1]
		switch {
		case last.AverageRating > first.AverageRating:
			sentences = append(sentences, fmt.Sprintf("Ratings have improved from %.1f on %s to %.1f on %s.",
				first.AverageRating, first.Date, last.AverageRating, last.Date))
		case last.AverageRating < first.AverageRating:
			sentences = append(sentences, fmt.Sprintf("Ratings have declined from %.1f on %s to %.1f on %s.",
				first.AverageRating, first.Date, last.AverageRating, last.Date))
		default:
			sentences = append(sentences, fmt.Sprintf("Ratings have remained stable at %.1f between %s and %s.",
				first.AverageRating, first.Date, last.Date))
		}
	}

	if len(rated) > 0 {
		latest := rated[len(rated)-1]
		sentences = append(sentences, fmt.Sprintf("The latest satisfaction rate is %.0f%% (%s).", latest.SatisfactionRate, latest.Date))
	}

	return strings.Join(sentences, " ")
}
