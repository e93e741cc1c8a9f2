package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gridsight/gridsight/internal/domain"
	"github.com/gridsight/gridsight/internal/service"
	"gorm.io/gorm"
)

// ImportHandler handles dump import endpoints.
type ImportHandler struct {
	imports *service.ImportService
}

// NewImportHandler creates a new import handler.
// Parameters:
//   - imports: import orchestration service.
// Returns:
//   - *ImportHandler: initialized handler.
func NewImportHandler(imports *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// createImportRequest is the body of POST /api/v1/imports.
type createImportRequest struct {
	Filename string            `json:"filename" binding:"required"`
	Options  domain.JobOptions `json:"options"`
}

// jobView decorates a job record with the derived progress fields.
func jobView(job *domain.ImportJob) gin.H {
	return gin.H{
		"job":      job,
		"percent":  job.Percent(),
		"duration": job.DurationString(),
	}
}

// CreateImport handles POST /api/v1/imports. It registers the dump,
// starts the import asynchronously, and returns the pending job.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) CreateImport(c *gin.Context) {
	var req createImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "filename is required",
		})
		return
	}

	exists, err := h.imports.DumpExists(c.Request.Context(), req.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to check dump file: " + err.Error(),
		})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Dump file not found: " + req.Filename,
		})
		return
	}

	job, err := h.imports.CreateJob(c.Request.Context(), domain.JobKindSQLDump, req.Filename, req.Options)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create import job: " + err.Error(),
		})
		return
	}
	h.imports.StartAsync(job.ID)

	c.JSON(http.StatusAccepted, jobView(job))
}

// ListImports handles GET /api/v1/imports.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	jobs, err := h.imports.ListJobs(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list import jobs: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetImport handles GET /api/v1/imports/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) GetImport(c *gin.Context) {
	job, err := h.imports.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Import job not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load import job: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, jobView(job))
}

// CancelImport handles POST /api/v1/imports/:id/cancel. Cancellation
// takes effect at the next phase or batch boundary of the running
// import; the response reflects the state at the time of the request.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) CancelImport(c *gin.Context) {
	id := c.Param("id")

	job, err := h.imports.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Import job not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load import job: " + err.Error(),
		})
		return
	}
	if job.IsTerminal() {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Import job already finished",
			"status": job.Status,
		})
		return
	}

	if !h.imports.Cancel(id) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Import job is not running",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "cancellation requested",
	})
}
