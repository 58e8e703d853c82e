package handler

import (
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/domain"
	"hr-comparator/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JobDescriptionHandler struct {
	service service.JobDescriptionService
}

func NewJobDescriptionHandler(svc service.JobDescriptionService) *JobDescriptionHandler {
	return &JobDescriptionHandler{service: svc}
}

func (h *JobDescriptionHandler) Create(c *gin.Context) {
	var req dto.CreateJDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	jd, err := h.service.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, jd)
}

func (h *JobDescriptionHandler) List(c *gin.Context) {
	var q dto.JDListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	if q.Status != "" && !q.Status.Valid() {
		respondError(c, domain.NewValidationError("unknown status %q", q.Status))
		return
	}

	items, err := h.service.List(c.Request.Context(), ports.JDFilter{
		Page:   toPage(q.PageQuery, defaultListLimit, maxListLimit),
		Status: q.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *JobDescriptionHandler) Search(c *gin.Context) {
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

func (h *JobDescriptionHandler) CountByStatus(c *gin.Context) {
	counts, err := h.service.CountByStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"active": counts[domain.JDActive],
		"closed": counts[domain.JDClosed],
		"draft":  counts[domain.JDDraft],
	})
}

func (h *JobDescriptionHandler) Get(c *gin.Context) {
	jd, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jd)
}

func (h *JobDescriptionHandler) Update(c *gin.Context) {
	var req dto.UpdateJDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	jd, err := h.service.Update(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Job Description updated successfully", jd)
}

func (h *JobDescriptionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Job Description deleted successfully", nil)
}
