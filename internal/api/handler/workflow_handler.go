package handler

import (
	"fmt"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/service"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WorkflowHandler struct {
	service service.WorkflowService
	events  ports.EventBus
	log     *zap.Logger
}

func NewWorkflowHandler(svc service.WorkflowService, events ports.EventBus, log *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{service: svc, events: events, log: log.Named("workflow-events")}
}

// SubmitBatch runs a batch match and replies once the workflow is terminal.
func (h *WorkflowHandler) SubmitBatch(c *gin.Context) {
	var req dto.BatchMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	summary, err := h.service.SubmitBatch(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: fmt.Sprintf("Batch matching completed for %d of %d resumes", summary.ProcessedResumes, summary.TotalResumes),
		Data:    summary,
	})
}

func (h *WorkflowHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context(), c.Query("jd_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *WorkflowHandler) ListExecutions(c *gin.Context) {
	var q dto.ExecutionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	list, err := h.service.ListExecutions(c.Request.Context(), ports.WorkflowFilter{
		Page:   toPage(q.PageQuery, defaultListLimit, maxListLimit),
		Status: q.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *WorkflowHandler) GetExecution(c *gin.Context) {
	wf, err := h.service.GetExecution(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *WorkflowHandler) DeleteExecution(c *gin.Context) {
	if err := h.service.DeleteExecution(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Workflow execution deleted successfully", nil)
}

// Events streams workflow lifecycle events as server-sent events until the
// client disconnects.
func (h *WorkflowHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	ch, err := h.events.SubscribeToEvents(ctx)
	if err != nil {
		h.log.Error("subscribe to workflow events failed", zap.Error(err))
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case e, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(e.Type), e)
			return true
		}
	})
}
