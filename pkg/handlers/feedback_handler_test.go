package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"feedback-insights-api/pkg/metrics"
	"feedback-insights-api/pkg/models"
	"feedback-insights-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource テスト用のデータソース
type stubSource struct {
	records []models.FeedbackRecord
	err     error
}

func (s stubSource) Load(ctx context.Context) ([]models.FeedbackRecord, error) {
	return s.records, s.err
}

func float(v float64) *float64 { return &v }
func str(v string) *string { return &v }

func testRecords() []models.FeedbackRecord {
	return []models.FeedbackRecord{
		{Date: "2024-01-01", Rating: float(5), FeedbackText: "great service, very happy", Category: str("Support")},
		{Date: "2024-01-02", Rating: float(1), FeedbackText: "terrible, very slow", Category: str("Support")},
	}
}

func setupTestRouter(source services.FeedbackSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	analysis := services.NewFeedbackAnalysisService(
		services.NewFeedbackAnalyzer(services.DefaultLexicon()),
		services.NewNarrativeService(nil, time.Second),
		m,
	)
	return NewRouter(Dependencies{
		Analysis:           analysis,
		Source:             source,
		Monitoring:         services.NewMonitoringService(m),
		Metrics:            m,
		FeedbackSourceKind: "file",
		MaxUploadBytes:     1 << 20,
	})
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestAnalyzeFeedback(t *testing.T) {
	r := setupTestRouter(stubSource{records: testRecords()})

	w := postJSON(r, "/api/analyze-feedback", `{"startDate": null, "endDate": null}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"totalFeedback", "averageRating", "avgSentiment", "sentimentDistribution", "topThemes",
		"categoryDistribution", "ratingDistribution", "chartData", "summary", "sampleFeedback",
		"startDate", "endDate",
	}, keys)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.TotalFeedback)
	require.NotNil(t, result.AverageRating)
	assert.Equal(t, 3.0, *result.AverageRating)
	assert.Equal(t, "null", string(body["startDate"]))
	assert.NotEmpty(t, result.Summary)
}

func TestAnalyzeFeedbackWithoutBody(t *testing.T) {
	r := setupTestRouter(stubSource{records: testRecords()})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-feedback", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzeFeedbackErrors(t *testing.T) {
	tests := []struct {
		name       string
		source     stubSource
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "no feedback in range",
			source:     stubSource{records: testRecords()},
			body:       `{"startDate": "2030-01-01", "endDate": "2030-12-31"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "No feedback found for the selected date range",
		},
		{
			name:       "malformed date",
			source:     stubSource{records: testRecords()},
			body:       `{"startDate": "January 1st"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "startDate",
		},
		{
			name:       "invalid json",
			source:     stubSource{records: testRecords()},
			body:       `{"startDate": `,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request body",
		},
		{
			name:       "source failure",
			source:     stubSource{err: errors.New("connection refused")},
			body:       `{}`,
			wantStatus: http.StatusInternalServerError,
			wantError:  "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupTestRouter(tt.source)
			w := postJSON(r, "/api/analyze-feedback", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, decodeError(t, w), tt.wantError)
		})
	}
}

func TestGetFeedback(t *testing.T) {
	r := setupTestRouter(stubSource{records: testRecords()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/feedback", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var records []models.FeedbackRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Equal(t, testRecords(), records)
}

func TestAnalyzeFeedbackDocument(t *testing.T) {
	r := setupTestRouter(stubSource{records: testRecords()})

	w := postJSON(r, "/api/analyze-feedback/document", `{"endDate": "2024-01-01"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<tr><th>Total feedback</th><td>1</td></tr>")
	assert.Contains(t, w.Body.String(), "Period: beginning to 2024-01-01")
}

func uploadRequest(t *testing.T, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-file", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestAnalyzeFile(t *testing.T) {
	r := setupTestRouter(stubSource{})
	csv := "Date,FeedbackText,Rating,Category\n" +
		"2024-01-01,fast and friendly,5,Delivery\n" +
		"2024-01-05,broken on arrival,1,Product\n"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "feedback.csv", csv, map[string]string{"startDate": "2024-01-02"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TotalFeedback)
	assert.Equal(t, map[string]int{"Product": 1}, result.CategoryDistribution)
	require.NotNil(t, result.StartDate)
	assert.Equal(t, "2024-01-02", *result.StartDate)
	assert.Nil(t, result.EndDate)
}

func TestAnalyzeFileErrors(t *testing.T) {
	r := setupTestRouter(stubSource{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "", "", map[string]string{"startDate": "2024-01-01"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "feedback.pdf", "%PDF", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "unsupported file type")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "feedback.json", `[{"Date":"2024-01-01","FeedbackText":"ok"}]`, map[string]string{"endDate": "2023-12-31"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No feedback found for the selected date range", decodeError(t, w))
}

func TestSchemaHealthAndMonitoring(t *testing.T) {
	r := setupTestRouter(stubSource{records: testRecords()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/schema/analysis", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sampleFeedback"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","feedbackSource":"file","llmConfigured":false}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/monitoring/logs?period=1h", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var dashboard services.DashboardData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	assert.Len(t, dashboard.RequestsOverTime, 1)
	assert.Equal(t, 2, dashboard.Endpoints["/api/schema/analysis"]+dashboard.Endpoints["/health"])
}
