package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xeerfiles/filetools/internal/repository"
	"github.com/xeerfiles/filetools/internal/storage"
)

// HealthHandler reports service health based on database and object
// storage reachability.
type HealthHandler struct {
	repo    *repository.JobRepository
	store   storage.ObjectStorage
	buckets []string
}

// NewHealthHandler creates a new health handler. buckets are probed with a
// shallow list on every check.
func NewHealthHandler(repo *repository.JobRepository, store storage.ObjectStorage, buckets ...string) *HealthHandler {
	return &HealthHandler{repo: repo, store: store, buckets: buckets}
}

// Health handles GET /health. Returns 200 when all dependencies respond,
// 503 with per-check detail otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if _, err := h.repo.Count(ctx); err != nil {
		checks["database"] = "unavailable: " + err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	for _, bucket := range h.buckets {
		if _, err := h.store.List(ctx, bucket, "", 1); err != nil {
			checks["storage:"+bucket] = "unavailable: " + err.Error()
			healthy = false
		} else {
			checks["storage:"+bucket] = "ok"
		}
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
