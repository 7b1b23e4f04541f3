package services

import (
	"math"
	"strconv"

	"feedback-insights-api/pkg/models"
)

const (
	minRatingBucket = 1
	maxRatingBucket = 5
)

// BucketRating 評価値を 1〜5 の整数に切り上げ＋範囲制限で変換
// 四捨五入ではなく切り上げ（2.1 → 3、3.0 → 3、5.3 → 5）。
func BucketRating(rating float64) int {
	if math.IsNaN(rating) {
		return minRatingBucket
	}
	bucket := math.Ceil(rating)
	if bucket < minRatingBucket {
		return minRatingBucket
	}
	if bucket > maxRatingBucket {
		return maxRatingBucket
	}
	return int(bucket)
}

// BucketRatings 評価値を持つレコードだけをバケット化し、平均と分布を返す
// 平均は元の評価値ではなくバケット値の平均。
func BucketRatings(records []models.FeedbackRecord) models.RatingSummary {
	summary := models.RatingSummary{
		Buckets:      make([]int, 0, len(records)),
		Distribution: make(map[string]int),
	}

	var sum int
	for _, rec := range records {
		if !rec.HasRating() {
			continue
		}
		bucket := BucketRating(*rec.Rating)
		summary.Buckets = append(summary.Buckets, bucket)
		summary.Distribution[strconv.Itoa(bucket)]++
		sum += bucket
	}

	if len(summary.Buckets) > 0 {
		avg := float64(sum) / float64(len(summary.Buckets))
		summary.Average = &avg
	}
	return summary
}
