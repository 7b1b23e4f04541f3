package services

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"feedback-insights-api/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader リクエストIDのヘッダー名
const RequestIDHeader = "X-Request-ID"

// maxLogEntries 保持するリクエストログの上限
const maxLogEntries = 10000

// LogEntry は単一のリクエストログを表します。
type LogEntry struct {
	RequestID    string        `json:"requestId"`
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"statusCode"`
	ResponseTime time.Duration `json:"responseTime"`
}

// MonitoringService はAPIのモニタリング機能を提供します。
type MonitoringService struct {
	logs    []LogEntry
	mu      sync.RWMutex
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
func NewMonitoringService(m *metrics.Metrics) *MonitoringService {
	return &MonitoringService{
		logs:    make([]LogEntry, 0),
		metrics: m,
		now:     time.Now,
	}
}

// LogRequest はリクエストを記録します。上限を超えた古いログは破棄します。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if over := len(s.logs) - maxLogEntries; over > 0 {
		s.logs = append(s.logs[:0:0], s.logs[over:]...)
	}
}

// LoggingMiddleware はリクエストIDを付与し、リクエスト情報を記録するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		slog.Info("[HTTP] request",
			slog.String("requestId", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("elapsed", elapsed))

		// モニタリング自身へのアクセスは集計しない
		if strings.HasPrefix(path, "/api/monitoring") || path == "/metrics" {
			return
		}

		s.metrics.ObserveHTTPRequest(c.Request.Method, path, strconv.Itoa(status))
		s.LogRequest(LogEntry{
			RequestID:    requestID,
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   status,
			ResponseTime: elapsed,
		})
	}
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	RequestsOverTime []map[string]interface{} `json:"requestsOverTime"`
	Endpoints        map[string]int           `json:"endpoints"`
	StatusCodes      []map[string]interface{} `json:"statusCodes"`
	AvgResponseTimes []map[string]interface{} `json:"avgResponseTimes"`
	RecentErrors     []LogEntry               `json:"recentErrors"`
}

// GetDashboardData は指定された期間のログを集計してダッシュボード用データを返します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if periodHours <= 0 {
		periodHours = 24
	}
	now := s.now().UTC()
	since := now.Add(-time.Duration(periodHours) * time.Hour)

	filteredLogs := make([]LogEntry, 0)
	for _, log := range s.logs {
		if log.Timestamp.After(since) {
			filteredLogs = append(filteredLogs, log)
		}
	}

	// 時間ごとのバケットを過去から現在の順で初期化
	requestsOverTime := make([]map[string]interface{}, periodHours)
	bucketIndex := make(map[string]int, periodHours)
	for i := 0; i < periodHours; i++ {
		t := now.Add(-time.Duration(periodHours-1-i) * time.Hour).Truncate(time.Hour)
		bucketIndex[t.Format(time.RFC3339)] = i
		requestsOverTime[i] = map[string]interface{}{"time": t.Format("15:00"), "requests": 0}
	}
	for _, log := range filteredLogs {
		key := log.Timestamp.UTC().Truncate(time.Hour).Format(time.RFC3339)
		if i, ok := bucketIndex[key]; ok {
			requestsOverTime[i]["requests"] = requestsOverTime[i]["requests"].(int) + 1
		}
	}

	endpoints := make(map[string]int)
	for _, log := range filteredLogs {
		endpoints[log.Path]++
	}

	// ステータスコード区分の集計（表示順を固定）
	statusNames := []string{"2xx Success", "4xx Client Error", "5xx Server Error"}
	statusCounts := make(map[string]int, len(statusNames))
	for _, log := range filteredLogs {
		switch {
		case log.StatusCode >= 200 && log.StatusCode < 300:
			statusCounts[statusNames[0]]++
		case log.StatusCode >= 400 && log.StatusCode < 500:
			statusCounts[statusNames[1]]++
		case log.StatusCode >= 500:
			statusCounts[statusNames[2]]++
		}
	}
	statusCodes := make([]map[string]interface{}, 0, len(statusNames))
	for _, name := range statusNames {
		statusCodes = append(statusCodes, map[string]interface{}{"name": name, "value": statusCounts[name]})
	}

	responseTimeSum := make(map[string]time.Duration)
	responseCount := make(map[string]int)
	for _, log := range filteredLogs {
		responseTimeSum[log.Path] += log.ResponseTime
		responseCount[log.Path]++
	}
	paths := make([]string, 0, len(responseTimeSum))
	for path := range responseTimeSum {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	avgResponseTimes := make([]map[string]interface{}, 0, len(paths))
	for _, path := range paths {
		avg := responseTimeSum[path].Milliseconds() / int64(responseCount[path])
		avgResponseTimes = append(avgResponseTimes, map[string]interface{}{"endpoint": path, "responseTime": avg})
	}

	// 直近の5xxエラー（最大10件、新しい順）
	recentErrors := make([]LogEntry, 0)
	for i := len(filteredLogs) - 1; i >= 0; i-- {
		if filteredLogs[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filteredLogs[i])
			if len(recentErrors) >= 10 {
				break
			}
		}
	}

	return DashboardData{
		RequestsOverTime: requestsOverTime,
		Endpoints:        endpoints,
		StatusCodes:      statusCodes,
		AvgResponseTimes: avgResponseTimes,
		RecentErrors:     recentErrors,
	}
}
