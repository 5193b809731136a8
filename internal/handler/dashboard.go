package handler

import (
	"context"
	"net/http"

	"github.com/credibilitycrm/gateway/internal/model"
	"github.com/gin-gonic/gin"
)

type dashboardReader interface {
	Overview(ctx context.Context, rangeKey string) model.DashboardOverview
	Refresh(ctx context.Context) model.DashboardOverview
}

type DashboardHandler struct {
	svc dashboardReader
}

func NewDashboardHandler(svc dashboardReader) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GetOverview godoc
// @Summary Dashboard tenant/ticket statistics
// @Description 캐시된 통계를 반환. range가 바뀌면 다시 조회
// @Tags dashboard
// @Produce json
// @Param range query string false "통계 기간 (예: 7d, 30d)"
// @Success 200 {object} model.DashboardOverview
// @Router /api/dashboard/overview [get]
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Overview(c.Request.Context(), c.Query("range")))
}

// RefreshOverview godoc
// @Summary Refetch dashboard statistics
// @Tags dashboard
// @Produce json
// @Success 200 {object} model.DashboardOverview
// @Router /api/dashboard/overview/refresh [post]
func (h *DashboardHandler) RefreshOverview(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Refresh(c.Request.Context()))
}
