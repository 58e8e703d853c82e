package handler

import (
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/api/middleware"
	"hr-comparator/internal/domain"
	"hr-comparator/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	defaultRecentActivity = 10
	defaultUserActivity   = 50
	maxActivity           = 200
)

type AuditHandler struct {
	service service.AuditService
}

func NewAuditHandler(svc service.AuditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

func (h *AuditHandler) Recent(c *gin.Context) {
	var q dto.LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	page := toPage(dto.PageQuery{Limit: q.Limit}, defaultRecentActivity, maxActivity)
	list, err := h.service.RecentActivity(c.Request.Context(), page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// User lists one user's activity. Only admins may read another user's trail.
func (h *AuditHandler) User(c *gin.Context) {
	var q dto.LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	userID := c.Param("user_id")
	if u := middleware.CurrentUser(c); u.ID != userID && !u.IsAdmin() {
		respondError(c, domain.ErrForbidden)
		return
	}

	page := toPage(dto.PageQuery{Limit: q.Limit}, defaultUserActivity, maxActivity)
	list, err := h.service.UserActivity(c.Request.Context(), userID, page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
