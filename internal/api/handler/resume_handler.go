package handler

import (
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"hr-comparator/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ResumeHandler struct {
	service service.ResumeService
}

func NewResumeHandler(svc service.ResumeService) *ResumeHandler {
	return &ResumeHandler{service: svc}
}

func (h *ResumeHandler) Create(c *gin.Context) {
	var req dto.CreateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	r, err := h.service.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ResumeHandler) List(c *gin.Context) {
	var q dto.ResumeListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	if q.Source != "" && !q.Source.Valid() {
		respondError(c, domain.NewValidationError("unknown source %q", q.Source))
		return
	}

	items, err := h.service.List(c.Request.Context(), ports.ResumeFilter{
		Page:   toPage(q.PageQuery, defaultListLimit, maxListLimit),
		Source: q.Source,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ResumeHandler) Search(c *gin.Context) {
	var q dto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	page := toPage(dto.PageQuery{Limit: q.Limit}, defaultSearchLimit, maxSearchLimit)
	items, err := h.service.Search(c.Request.Context(), q.Q, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": q.Q, "count": len(items), "results": items})
}

func (h *ResumeHandler) Count(c *gin.Context) {
	n, err := h.service.Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": n})
}

func (h *ResumeHandler) Get(c *gin.Context) {
	r, err := h.service.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ResumeHandler) Update(c *gin.Context) {
	var req dto.UpdateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	r, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Resume updated successfully", r)
}

func (h *ResumeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Resume deleted successfully", nil)
}
