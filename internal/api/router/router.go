// Package router assembles the gin engine.
package router

import (
	"hr-comparator/internal/api/handler"
	"hr-comparator/internal/api/middleware"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/metrics"
	"hr-comparator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Services struct {
	Auth      service.AuthService
	Resumes   service.ResumeService
	JDs       service.JobDescriptionService
	Matching  service.MatchingService
	Workflows service.WorkflowService
	Files     service.FileService
	Analytics service.AnalyticsService
	Audit     service.AuditService
}

type Options struct {
	Services
	Events      ports.EventBus
	DB          handler.Pinger
	CORSOrigins []string
	// MaxUploadBytes bounds the in-memory part of multipart bodies.
	MaxUploadBytes int64
	Log            *zap.Logger
}

func New(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(opts.Log),
		middleware.RequestLogger(opts.Log),
		metrics.GinMiddleware(),
		middleware.CORS(opts.CORSOrigins),
	)
	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
	}

	health := handler.NewHealthHandler(opts.DB)
	r.GET("/", health.Root)
	r.GET("/health", health.Health)
	r.GET("/api/info", health.Info)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authH := handler.NewAuthHandler(opts.Auth)
	r.POST("/auth/register", authH.Register)
	r.POST("/auth/login", authH.Login)

	// Everything below requires a bearer token.
	api := r.Group("/", middleware.JWTAuth(opts.Auth))
	admin := middleware.RequireAdmin()

	api.GET("/auth/me", authH.Me)
	api.POST("/auth/logout", authH.Logout)

	resumes := handler.NewResumeHandler(opts.Resumes)
	{
		g := api.Group("/resumes")
		g.POST("", resumes.Create)
		g.GET("", resumes.List)
		g.GET("/search/text", resumes.Search)
		g.GET("/stats/count", resumes.Count)
		g.GET("/:id", resumes.Get)
		g.PUT("/:id", resumes.Update)
		g.DELETE("/:id", resumes.Delete)
	}

	jds := handler.NewJobDescriptionHandler(opts.JDs)
	{
		g := api.Group("/job-descriptions")
		g.POST("", jds.Create)
		g.GET("", jds.List)
		g.GET("/search/text", jds.Search)
		g.GET("/stats/count", jds.CountByStatus)
		g.GET("/:id", jds.Get)
		g.PUT("/:id", jds.Update)
		g.DELETE("/:id", jds.Delete)
	}

	matching := handler.NewMatchingHandler(opts.Matching)
	workflows := handler.NewWorkflowHandler(opts.Workflows, opts.Events, opts.Log)
	{
		g := api.Group("/matching")
		g.POST("/match", matching.Match)
		g.POST("/batch", workflows.SubmitBatch)
		g.GET("/results/:jd_id", matching.ListResults)
		g.GET("/top-matches/:jd_id", matching.TopMatches)
		g.GET("/result/:id", matching.GetResult)
		g.DELETE("/result/:id", matching.DeleteResult)
	}
	{
		g := api.Group("/workflow")
		g.GET("/status", workflows.Status)
		g.GET("/events", workflows.Events)
		g.GET("/executions", workflows.ListExecutions)
		g.GET("/executions/:id", workflows.GetExecution)
		g.DELETE("/executions/:id", workflows.DeleteExecution)
	}

	files := handler.NewFileHandler(opts.Files)
	{
		g := api.Group("/files")
		g.POST("/upload-resume", files.UploadResume)
		g.POST("/upload-jd", files.UploadJD)
		g.PUT("/update-jd/:id", files.UpdateJD)
		g.GET("/download-resume/:id", files.DownloadResume)
		g.GET("/download-jd/:id", files.DownloadJD)
		g.GET("/user-stats", files.UserStats)
		g.GET("/storage-stats", admin, files.StorageStats)
	}

	analytics := handler.NewAnalyticsHandler(opts.Analytics, opts.Audit)
	{
		g := api.Group("/analytics")
		g.GET("/stats", analytics.Stats)
		g.GET("/jd-stats/:jd_id", analytics.JDStats)
		g.GET("/dashboard", analytics.Dashboard)
		g.GET("/trends", analytics.Trends)
		g.GET("/audit-logs", admin, analytics.AuditLogs)
	}

	audit := handler.NewAuditHandler(opts.Audit)
	{
		g := api.Group("/audit-logs")
		g.GET("/recent", audit.Recent)
		g.GET("/user/:user_id", audit.User)
	}

	return r
}
