package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis outcomes
const (
	OutcomeOK        = "ok"
	OutcomeEmpty     = "empty"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

// Metrics フィードバック分析のPrometheusメトリクス
// nil レシーバーでも安全に呼び出せる。
type Metrics struct {
	registry *prometheus.Registry

	AnalysisRequests *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	NarrativeTotal   *prometheus.CounterVec
	RecordsAnalyzed  prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec
}

// New メトリクスを作成し、専用のレジストリに登録する
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		AnalysisRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedback_analysis_requests_total",
				Help: "Total number of feedback analysis requests by outcome",
			},
			[]string{"outcome"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "feedback_analysis_duration_seconds",
				Help:    "Time spent running the feedback analysis pipeline",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		NarrativeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedback_narrative_total",
				Help: "Total number of generated summaries by source (external, fallback)",
			},
			[]string{"source"},
		),
		RecordsAnalyzed: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "feedback_records_analyzed",
				Help:    "Number of feedback records per analysis after date filtering",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedback_http_requests_total",
				Help: "Total number of HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
	}

	registry.MustRegister(m.AnalysisRequests, m.AnalysisDuration, m.NarrativeTotal, m.RecordsAnalyzed, m.HTTPRequests)
	return m
}

// Registry メトリクスのレジストリ
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler /metrics 用のHTTPハンドラー
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAnalysis 分析1回分の結果と所要時間を記録
func (m *Metrics) ObserveAnalysis(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AnalysisRequests.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		m.AnalysisDuration.Observe(elapsed.Seconds())
	}
}

// ObserveNarrative サマリーの生成経路を記録
func (m *Metrics) ObserveNarrative(source string) {
	if m == nil {
		return
	}
	m.NarrativeTotal.WithLabelValues(source).Inc()
}

// ObserveRecords 分析対象の件数を記録
func (m *Metrics) ObserveRecords(n int) {
	if m == nil {
		return
	}
	m.RecordsAnalyzed.Observe(float64(n))
}

// ObserveHTTPRequest HTTPリクエストを記録
func (m *Metrics) ObserveHTTPRequest(method, path, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
}
