package services

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"feedback-insights-api/pkg/models"
)

const (
	// sampleFeedbackSize レスポンスに含めるサンプル件数
	sampleFeedbackSize = 5
	// promptSampleSize プロンプトに埋め込むサンプルテキスト数
	promptSampleSize = 10
	// satisfiedRating 満足とみなす評価値の下限
	satisfiedRating = 4.0
)

// FeedbackAnalyzer 語彙セットを保持し、フィードバックの集計を行う
type FeedbackAnalyzer struct {
	lexicon   Lexicon
	topThemes int
}

// NewFeedbackAnalyzer 新しい FeedbackAnalyzer を作成
func NewFeedbackAnalyzer(lexicon Lexicon) *FeedbackAnalyzer {
	return &FeedbackAnalyzer{
		lexicon:   lexicon,
		topThemes: DefaultTopThemes,
	}
}

// Lexicon 使用中の語彙セット
func (a *FeedbackAnalyzer) Lexicon() Lexicon {
	return a.lexicon
}

// Aggregate フィルタ済みレコードからサマリー以外の集計結果を作成
func (a *FeedbackAnalyzer) Aggregate(records []models.FeedbackRecord) models.Aggregate {
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.FeedbackText
	}

	sentiment := a.lexicon.ScoreSentiment(texts)
	themes := a.lexicon.ExtractThemes(texts, a.topThemes)
	ratings := BucketRatings(records)
	categories, categoryOrder := CategoryDistribution(records)
	trend := ComputeTrend(records)

	return models.Aggregate{
		TotalFeedback:         len(records),
		AverageRating:         ratings.Average,
		AvgSentiment:          sentiment.Average,
		SentimentDistribution: sentiment.Distribution,
		TopThemes:             themes,
		CategoryDistribution:  categories,
		CategoryOrder:         categoryOrder,
		RatingDistribution:    ratings.Distribution,
		Trend:                 trend,
		ChartData:             BuildChartData(sentiment.Distribution, ratings.Distribution, categories, categoryOrder, trend),
		SampleFeedback:        sampleRecords(records, sampleFeedbackSize),
		SampleTexts:           sampleTexts(texts, promptSampleSize),
	}
}

// CategoryDistribution カテゴリごとの件数と初出順を返す
func CategoryDistribution(records []models.FeedbackRecord) (map[string]int, []string) {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, rec := range records {
		name := rec.CategoryName()
		if name == "" {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}
	return counts, order
}

// ComputeTrend 日付文字列ごとに平均評価・件数・満足率を計算し、日付昇順で返す
// 欠損日の補完は行わない。
func ComputeTrend(records []models.FeedbackRecord) []models.TrendPoint {
	type dailyGroup struct {
		count     int
		ratings   int
		ratingSum float64
		satisfied int
	}

	groups := make(map[string]*dailyGroup)
	for _, rec := range records {
		g, ok := groups[rec.Date]
		if !ok {
			g = &dailyGroup{}
			groups[rec.Date] = g
		}
		g.count++
		if rec.HasRating() {
			g.ratings++
			g.ratingSum += *rec.Rating
			if *rec.Rating >= satisfiedRating {
				g.satisfied++
			}
		}
	}

	points := make([]models.TrendPoint, 0, len(groups))
	for date, g := range groups {
		point := models.TrendPoint{Date: date, FeedbackCount: g.count, Rated: g.ratings}
		if g.ratings > 0 {
			point.AverageRating = roundTo(g.ratingSum/float64(g.ratings), 1)
			point.SatisfactionRate = math.Round(float64(g.satisfied) / float64(g.ratings) * 100)
		}
		points = append(points, point)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

// BuildChartData 集計結果をグラフ用の名前付きデータ点に整形
func BuildChartData(sentiment models.SentimentDistribution, ratings map[string]int, categories map[string]int, categoryOrder []string, trend []models.TrendPoint) models.ChartData {
	chart := models.ChartData{
		SentimentData: []models.ChartPoint{
			{Name: "Positive", Value: sentiment.Positive},
			{Name: "Neutral", Value: sentiment.Neutral},
			{Name: "Negative", Value: sentiment.Negative},
		},
		RatingData:   make([]models.ChartPoint, 0, len(ratings)),
		CategoryData: make([]models.ChartPoint, 0, len(categoryOrder)),
		TrendData:    trend,
	}
	if chart.TrendData == nil {
		chart.TrendData = []models.TrendPoint{}
	}

	buckets := make([]int, 0, len(ratings))
	for key := range ratings {
		if b, err := strconv.Atoi(key); err == nil {
			buckets = append(buckets, b)
		}
	}
	sort.Ints(buckets)
	for _, b := range buckets {
		key := strconv.Itoa(b)
		chart.RatingData = append(chart.RatingData, models.ChartPoint{Name: key, Value: ratings[key]})
	}

	for _, name := range categoryOrder {
		chart.CategoryData = append(chart.CategoryData, models.ChartPoint{Name: name, Value: categories[name]})
	}
	return chart
}

func sampleRecords(records []models.FeedbackRecord, n int) []models.FeedbackRecord {
	if len(records) < n {
		n = len(records)
	}
	out := make([]models.FeedbackRecord, n)
	copy(out, records[:n])
	return out
}

func sampleTexts(texts []string, n int) []string {
	out := make([]string, 0, n)
	for _, text := range texts {
		if len(out) == n {
			break
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, text)
	}
	return out
}

// roundTo 小数点以下 places 桁に丸める
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
