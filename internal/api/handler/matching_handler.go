package handler

import (
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type MatchingHandler struct {
	service service.MatchingService
}

func NewMatchingHandler(svc service.MatchingService) *MatchingHandler {
	return &MatchingHandler{service: svc}
}

func (h *MatchingHandler) Match(c *gin.Context) {
	var req dto.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.Match(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MatchingHandler) ListResults(c *gin.Context) {
	var q dto.ResultQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	items, err := h.service.ListResults(c.Request.Context(), c.Param("jd_id"), ports.ResultFilter{
		Page:     toPage(q.PageQuery, defaultListLimit, maxListLimit),
		MinScore: q.MinScore,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *MatchingHandler) TopMatches(c *gin.Context) {
	var q dto.LimitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	top, err := h.service.TopMatches(c.Request.Context(), c.Param("jd_id"), q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, top)
}

func (h *MatchingHandler) GetResult(c *gin.Context) {
	r, err := h.service.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *MatchingHandler) DeleteResult(c *gin.Context) {
	if err := h.service.DeleteResult(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Result deleted successfully", nil)
}
