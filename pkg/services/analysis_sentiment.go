package services

import "feedback-insights-api/pkg/models"

// SentimentLabel 感情の分類ラベル
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// sentimentThreshold 分類の閾値（境界値ちょうどは neutral）
const sentimentThreshold = 0.2

// ClassifySentiment スコアを positive / neutral / negative に分類
func ClassifySentiment(score float64) SentimentLabel {
	switch {
	case score > sentimentThreshold:
		return SentimentPositive
	case score < -sentimentThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ScoreText 1テキストの感情スコアを [-1, 1] で返す
// 肯定語・否定語のどちらも含まない場合は 0。
func (l Lexicon) ScoreText(text string) float64 {
	var positive, negative int
	for _, tok := range l.Normalize(text) {
		if l.PositiveWords.has(tok) {
			positive++
		}
		if l.NegativeWords.has(tok) {
			negative++
		}
	}
	if positive+negative == 0 {
		return 0
	}
	return float64(positive-negative) / float64(positive+negative)
}

// ScoreSentiment 複数テキストのスコア・平均・分布を計算
// 空文字のテキストはスコアにも分布にも含めない（空白のみのテキストは 0 点の neutral）。
func (l Lexicon) ScoreSentiment(texts []string) models.SentimentResult {
	result := models.SentimentResult{Scores: make([]float64, 0, len(texts))}

	var sum float64
	for _, text := range texts {
		if text == "" {
			continue
		}
		score := l.ScoreText(text)
		result.Scores = append(result.Scores, score)
		sum += score

		switch ClassifySentiment(score) {
		case SentimentPositive:
			result.Distribution.Positive++
		case SentimentNegative:
			result.Distribution.Negative++
		default:
			result.Distribution.Neutral++
		}
	}

	if len(result.Scores) > 0 {
		result.Average = sum / float64(len(result.Scores))
	}
	return result
}
