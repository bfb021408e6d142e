package admin

import (
	"strconv"

	"github.com/voltmart/voltmart-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview 获取仪表盘总览
func (h *Handler) GetDashboardOverview(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	overview, err := h.DashboardService.GetOverview(days)
	if err != nil {
		respondError(c, response.CodeInternal, "dashboard fetch failed", err)
		return
	}
	response.Success(c, overview)
}

// GetDashboardTopPromotions 获取促销使用排行
func (h *Handler) GetDashboardTopPromotions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rankings, err := h.DashboardService.GetTopPromotions(limit)
	if err != nil {
		respondError(c, response.CodeInternal, "dashboard fetch failed", err)
		return
	}
	response.Success(c, rankings)
}
