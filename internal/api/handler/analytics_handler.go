package handler

import (
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analytics service.AnalyticsService
	audit     service.AuditService
}

func NewAnalyticsHandler(analytics service.AnalyticsService, audit service.AuditService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, audit: audit}
}

func (h *AnalyticsHandler) Stats(c *gin.Context) {
	stats, err := h.analytics.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHandler) JDStats(c *gin.Context) {
	stats, err := h.analytics.JDStats(c.Request.Context(), c.Param("jd_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	d, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *AnalyticsHandler) Trends(c *gin.Context) {
	t, err := h.analytics.Trends(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// AuditLogs is admin only.
func (h *AnalyticsHandler) AuditLogs(c *gin.Context) {
	var q dto.AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	logs, err := h.audit.List(c.Request.Context(), ports.AuditFilter{
		Page:   toPage(q.PageQuery, defaultAuditLimit, maxAuditLimit),
		Action: q.Action,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
