package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"feedback-insights-api/pkg/models"
	"feedback-insights-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// emptyResultSetMessage 期間内にフィードバックがない場合のメッセージ
const emptyResultSetMessage = "No feedback found for the selected date range"

// FeedbackHandler はフィードバック分析APIのハンドラです。
type FeedbackHandler struct {
	analysis       *services.FeedbackAnalysisService
	source         services.FeedbackSource
	maxUploadBytes int64
}

// NewFeedbackHandler は新しいFeedbackHandlerを生成します。
func NewFeedbackHandler(analysis *services.FeedbackAnalysisService, source services.FeedbackSource, maxUploadBytes int64) *FeedbackHandler {
	return &FeedbackHandler{
		analysis:       analysis,
		source:         source,
		maxUploadBytes: maxUploadBytes,
	}
}

// GetFeedback はデータソースのフィードバックをそのまま返します。
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	records, err := h.source.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// AnalyzeFeedback は指定期間のフィードバックを分析します。
func (h *FeedbackHandler) AnalyzeFeedback(c *gin.Context) {
	result, ok := h.analyzeFromSource(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// AnalyzeFeedbackDocument は分析結果を印刷用のHTMLドキュメントとして返します。
func (h *FeedbackHandler) AnalyzeFeedbackDocument(c *gin.Context) {
	result, ok := h.analyzeFromSource(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", services.RenderSummaryHTML(result))
}

// AnalyzeFile はアップロードされたファイル（.json / .csv / .xlsx）を分析します。
func (h *FeedbackHandler) AnalyzeFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "A file field named 'file' is required (max upload size exceeded or missing)."})
		return
	}
	defer file.Close()

	records, err := services.DecodeFeedback(fileHeader.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	start := c.PostForm("startDate")
	end := c.PostForm("endDate")
	rng, err := services.ParseDateRange(&start, &end)
	if err != nil {
		respondError(c, err)
		return
	}

	slog.Info("[FeedbackHandler] 📊 analyzing uploaded file",
		slog.String("file", fileHeader.Filename), slog.Int("records", len(records)))

	result, err := h.analysis.Analyze(c.Request.Context(), records, rng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAnalysisSchema は分析結果のJSON Schemaを返します。
func (h *FeedbackHandler) GetAnalysisSchema(c *gin.Context) {
	c.JSON(http.StatusOK, services.AnalysisResultSchema())
}

// analyzeFromSource リクエストボディの期間でデータソースを分析する
// 失敗時はエラーレスポンスを書き込み false を返す。
func (h *FeedbackHandler) analyzeFromSource(c *gin.Context) (*models.AnalysisResult, bool) {
	var req models.AnalyzeFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return nil, false
	}

	rng, err := services.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	result, err := h.analysis.AnalyzeSource(c.Request.Context(), h.source, rng)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return result, true
}

// respondError エラー分類に応じたステータスコードでエラーを返す
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyResultSet):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: emptyResultSetMessage})
	case errors.Is(err, services.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("[FeedbackHandler] ❌ request failed",
			slog.String("path", c.Request.URL.Path), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}
}
