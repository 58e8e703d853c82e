package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const apiVersion = "1.0.0"

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "Welcome to HR Resume Comparator API",
		"version":     apiVersion,
		"description": "AI-assisted resume matching service",
		"health":      "/health",
		"metrics":     "/metrics",
	})
}

// Health answers 503 when the database ping fails.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
		"service":  "HR Resume Comparator API",
	})
}

func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"api_name": "HR Resume Comparator",
		"version":  apiVersion,
		"database": "PostgreSQL",
		"tables": []string{
			"resumes", "job_descriptions", "resume_results", "users",
			"audit_logs", "file_blobs", "file_metadata", "workflow_executions",
		},
		"features": []string{
			"Resume Upload & Parsing",
			"Job Description Management",
			"Batch Matching Workflows",
			"Match Analytics",
			"Audit Logging",
		},
	})
}
