package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orrn/printq/internal/api/middleware"
	"github.com/orrn/printq/internal/core"
)

type CreateJobRequest struct {
	Name                string   `json:"name" binding:"required"`
	ArtifactLink        string   `json:"artifact_link" binding:"required"`
	DurationMinutes     int      `json:"duration_minutes" binding:"required"`
	PrinterID           int64    `json:"printer_id" binding:"required"`
	FilamentID          *int64   `json:"filament_id"`
	EstimatedUsageGrams *float64 `json:"estimated_usage_grams"`
	// AcknowledgeLowStock confirms the caller has seen the low-stock warnings.
	AcknowledgeLowStock bool `json:"acknowledge_low_stock"`
}

type StockCheckRequest struct {
	FilamentID          int64   `json:"filament_id" binding:"required"`
	EstimatedUsageGrams float64 `json:"estimated_usage_grams" binding:"required"`
}

// UsageRequest carries the optional measured filament usage of a failed print.
type UsageRequest struct {
	ActualUsageGrams *float64 `json:"actual_usage_grams"`
}

type ListJobsQuery struct {
	Status    string `form:"status"`
	PrinterID int64  `form:"printer_id"`
	CreatedBy int64  `form:"created_by"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset    int    `form:"offset" binding:"omitempty,min=0"`
}

type LowStockResponse struct {
	Error    string         `json:"error"`
	Message  string         `json:"message"`
	Warnings []core.Warning `json:"warnings"`
}

type JobHandler struct {
	jobs JobService
}

func NewJobHandler(jobs JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// CreateJob refuses a job whose estimate exceeds the spool until the request
// acknowledges the low-stock warnings.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	caller := middleware.CallerFromContext(c)

	if !req.AcknowledgeLowStock && req.FilamentID != nil && req.EstimatedUsageGrams != nil {
		warnings, err := h.jobs.CheckStock(ctx, caller, *req.FilamentID, *req.EstimatedUsageGrams)
		if err != nil {
			respondError(c, err)
			return
		}
		if len(warnings) > 0 {
			c.JSON(http.StatusConflict, LowStockResponse{
				Error:    "low_stock_unacknowledged",
				Message:  "Estimated usage exceeds the remaining filament, resubmit with acknowledge_low_stock to proceed",
				Warnings: warnings,
			})
			return
		}
	}

	result, err := h.jobs.Create(ctx, caller, core.JobInput{
		Name:                req.Name,
		ArtifactLink:        req.ArtifactLink,
		DurationMinutes:     req.DurationMinutes,
		PrinterID:           req.PrinterID,
		FilamentID:          req.FilamentID,
		EstimatedUsageGrams: req.EstimatedUsageGrams,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *JobHandler) CheckStock(c *gin.Context) {
	var req StockCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	warnings, err := h.jobs.CheckStock(c.Request.Context(), middleware.CallerFromContext(c), req.FilamentID, req.EstimatedUsageGrams)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"low_stock": len(warnings) > 0,
		"warnings":  warnings,
	})
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	var query ListJobsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	jobs, err := h.jobs.List(c.Request.Context(), core.JobQuery{
		Status:    query.Status,
		PrinterID: query.PrinterID,
		CreatedBy: query.CreatedBy,
		Limit:     query.Limit,
		Offset:    query.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":   jobs,
		"limit":  query.Limit,
		"offset": query.Offset,
		"count":  len(jobs),
	})
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) GetJobStats(c *gin.Context) {
	stats, err := h.jobs.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *JobHandler) StartJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.jobs.Start(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *JobHandler) StopJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindUsage(c)
	if !ok {
		return
	}

	result, err := h.jobs.Stop(c.Request.Context(), middleware.CallerFromContext(c), id, req.ActualUsageGrams)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *JobHandler) MarkFailed(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindUsage(c)
	if !ok {
		return
	}

	result, err := h.jobs.MarkFailed(c.Request.Context(), middleware.CallerFromContext(c), id, req.ActualUsageGrams)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *JobHandler) RestartJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.jobs.Restart(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.jobs.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Job deleted",
	})
}

// bindUsage accepts an empty body as "no usage reported".
func bindUsage(c *gin.Context) (UsageRequest, bool) {
	var req UsageRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return req, false
	}
	return req, true
}

func (h *JobHandler) RegisterRoutes(public, authed, admin *gin.RouterGroup) {
	public.GET("/jobs", h.ListJobs)
	public.GET("/jobs/stats", h.GetJobStats)
	public.GET("/jobs/:id", h.GetJob)

	authed.POST("/jobs", h.CreateJob)
	authed.POST("/jobs/stock-check", h.CheckStock)
	authed.POST("/jobs/:id/start", h.StartJob)
	authed.POST("/jobs/:id/stop", h.StopJob)
	authed.POST("/jobs/:id/mark-failed", h.MarkFailed)
	authed.POST("/jobs/:id/restart", h.RestartJob)

	admin.DELETE("/jobs/:id", h.DeleteJob)
}
