package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler はヘルスチェックのハンドラです。
type HealthHandler struct {
	feedbackSource      string
	generatorConfigured bool
}

// NewHealthHandler は新しいHealthHandlerを生成します。
func NewHealthHandler(feedbackSource string, generatorConfigured bool) *HealthHandler {
	return &HealthHandler{
		feedbackSource:      feedbackSource,
		generatorConfigured: generatorConfigured,
	}
}

// HealthCheck は外部のヘルスチェッカー（例: ロードバランサー）からのリクエストに応答します。
// テキスト生成サービスが未設定でもサマリーはフォールバックで返せるため、常に ok を返します。
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"feedbackSource": h.feedbackSource,
		"llmConfigured":  h.generatorConfigured,
	})
}
