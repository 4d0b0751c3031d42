package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xeerfiles/filetools/internal/service"
	"github.com/xeerfiles/filetools/internal/tools"
)

// JobHandler handles job lifecycle endpoints.
type JobHandler struct {
	jobService *service.JobService
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobService *service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// SubmitJob handles POST /api/v1/jobs.
//
// Expects a multipart form with a "toolId" field, an optional "options"
// field holding a JSON object, and files under "file_0".."file_N" keys.
func (h *JobHandler) SubmitJob(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid multipart form: " + err.Error(),
		})
		return
	}

	toolID := formValue(form.Value, "toolId")
	if toolID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Field 'toolId' is required",
		})
		return
	}

	var options map[string]interface{}
	if raw := formValue(form.Value, "options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &options); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Field 'options' must be a JSON object",
			})
			return
		}
	}

	// Files arrive under indexed keys so their order survives the form.
	var inputs []service.FileInput
	for i := 0; ; i++ {
		headers, ok := form.File[fmt.Sprintf("file_%d", i)]
		if !ok || len(headers) == 0 {
			break
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Failed to read uploaded file: " + err.Error(),
			})
			return
		}
		defer f.Close()
		inputs = append(inputs, service.FileInput{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
	}

	job, err := h.jobService.Submit(c.Request.Context(), toolID, inputs, options)
	if err != nil {
		c.JSON(submissionStatus(err), gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"jobId": job.ID})
}

// ProcessJob handles POST /api/v1/jobs/:id/process. It triggers asynchronous
// execution and acks immediately; processing outcome is observed by polling
// the status endpoint. An unknown id is a no-op inside the worker, so the
// trigger does not hit the database before responding.
func (h *JobHandler) ProcessJob(c *gin.Context) {
	h.jobService.Execute(c.Param("id"))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetJob handles GET /api/v1/jobs/:id.
func (h *JobHandler) GetJob(c *gin.Context) {
	view, err := h.jobService.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to load job: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// ListTools handles GET /api/v1/tools.
func (h *JobHandler) ListTools(c *gin.Context) {
	list := tools.All()
	c.JSON(http.StatusOK, gin.H{
		"tools": list,
		"total": len(list),
	})
}

func formValue(values map[string][]string, key string) string {
	if v, ok := values[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

// submissionStatus maps validation errors to HTTP status codes.
func submissionStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnknownTool),
		errors.Is(err, service.ErrNoFiles),
		errors.Is(err, service.ErrTooManyFiles):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
