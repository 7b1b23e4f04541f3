package models

// FeedbackRecord 顧客フィードバック1件
// JSONキーは元データセット（feedback_data.json）の形式に合わせています。
type FeedbackRecord struct {
	Date         string   `json:"Date"`
	FeedbackText string   `json:"FeedbackText"`
	Rating       *float64 `json:"Rating,omitempty"`
	Category     *string  `json:"Category,omitempty"`
}

// HasRating 評価値を持つかどうか
func (r FeedbackRecord) HasRating() bool {
	return r.Rating != nil
}

// CategoryName カテゴリ名を返す（未設定なら空文字）
func (r FeedbackRecord) CategoryName() string {
	if r.Category == nil {
		return ""
	}
	return *r.Category
}

// AnalyzeFeedbackRequest 分析リクエストのボディ
type AnalyzeFeedbackRequest struct {
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// SentimentDistribution 感情分類ごとの件数
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Total 分類済み件数の合計
func (d SentimentDistribution) Total() int {
	return d.Positive + d.Neutral + d.Negative
}

// SentimentResult 感情スコアリングの結果
type SentimentResult struct {
	Scores       []float64             `json:"scores"`
	Average      float64               `json:"average"`
	Distribution SentimentDistribution `json:"distribution"`
}

// Theme 頻出キーワード
type Theme struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// RatingSummary 評価値のバケット集計
type RatingSummary struct {
	Buckets      []int          `json:"buckets"`
	Average      *float64       `json:"average"`
	Distribution map[string]int `json:"distribution"`
}

// TrendPoint 日付ごとのトレンド指標
type TrendPoint struct {
	Date             string  `json:"date"`
	AverageRating    float64 `json:"averageRating"`
	FeedbackCount    int     `json:"feedbackCount"`
	SatisfactionRate float64 `json:"satisfactionRate"`
	// Rated 評価値を持つレコード数（0 の日は平均・満足率を持たない）
	Rated int `json:"-"`
}

// HasRatings 評価値を持つレコードがあるか
func (p TrendPoint) HasRatings() bool {
	return p.Rated > 0
}

// ChartPoint グラフ描画用の名前付きデータ点
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ChartData フロントエンドのグラフ向けに整形したデータ
type ChartData struct {
	SentimentData []ChartPoint `json:"sentimentData"`
	RatingData    []ChartPoint `json:"ratingData"`
	CategoryData  []ChartPoint `json:"categoryData"`
	TrendData     []TrendPoint `json:"trendData"`
}

// Aggregate サマリー生成前の集計結果
type Aggregate struct {
	TotalFeedback         int
	AverageRating         *float64
	AvgSentiment          float64
	SentimentDistribution SentimentDistribution
	TopThemes             []Theme
	CategoryDistribution  map[string]int
	CategoryOrder         []string
	RatingDistribution    map[string]int
	Trend                 []TrendPoint
	ChartData             ChartData
	SampleFeedback        []FeedbackRecord
	SampleTexts           []string
}

// Narrative サマリー文章と生成経路
type Narrative struct {
	Text   string
	Source string // "external" または "fallback"
}

// AnalysisResult APIが返す分析結果
type AnalysisResult struct {
	TotalFeedback         int                   `json:"totalFeedback"`
	AverageRating         *float64              `json:"averageRating"`
	AvgSentiment          float64               `json:"avgSentiment"`
	SentimentDistribution SentimentDistribution `json:"sentimentDistribution"`
	TopThemes             []Theme               `json:"topThemes"`
	CategoryDistribution  map[string]int        `json:"categoryDistribution"`
	RatingDistribution    map[string]int        `json:"ratingDistribution"`
	ChartData             ChartData             `json:"chartData"`
	Summary               string                `json:"summary"`
	SampleFeedback        []FeedbackRecord      `json:"sampleFeedback"`
	StartDate             *string               `json:"startDate"`
	EndDate               *string               `json:"endDate"`
}

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error string `json:"error"`
}
