package handlers

import (
	"net/http"

	"feedback-insights-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// monitoringPeriods 集計期間クエリと時間数の対応
var monitoringPeriods = map[string]int{
	"1h":  1,
	"24h": 24,
	"7d":  24 * 7,
}

// MonitoringHandler はモニタリング関連の操作のハンドラです。
type MonitoringHandler struct {
	Service *services.MonitoringService
}

// NewMonitoringHandler は新しいMonitoringHandlerを生成します。
func NewMonitoringHandler(service *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{
		Service: service,
	}
}

// GetLogs は集計されたリクエストログを返します。未知の期間は24時間として扱います。
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	hours, ok := monitoringPeriods[c.DefaultQuery("period", "24h")]
	if !ok {
		hours = 24
	}
	c.JSON(http.StatusOK, h.Service.GetDashboardData(hours))
}
