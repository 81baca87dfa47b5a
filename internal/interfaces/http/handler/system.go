package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopstack/backend/internal/infrastructure/persistence"
)

// SystemHandler exposes health and readiness endpoints.
type SystemHandler struct {
	BaseHandler
	db      *persistence.Database
	version string
	started time.Time
}

// NewSystemHandler creates a SystemHandler.
func NewSystemHandler(db *persistence.Database, version string) *SystemHandler {
	return &SystemHandler{
		db:      db,
		version: version,
		started: time.Now(),
	}
}

// RegisterRoutes registers system routes directly on the engine so they
// sit outside the versioned API group and the auth middleware.
func (h *SystemHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", h.Health)
	engine.GET("/ready", h.Ready)
}

// HealthResponse reports service and database health.
type HealthResponse struct {
	Status   string                       `json:"status"`
	Version  string                       `json:"version"`
	Uptime   string                       `json:"uptime"`
	Database DatabaseHealth               `json:"database"`
	Stats    *persistence.ConnectionStats `json:"stats,omitempty"`
}

// DatabaseHealth reports connectivity of the relational store.
type DatabaseHealth struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Database: DatabaseHealth{
			Connected: true,
		},
	}

	if err := h.db.Ping(); err != nil {
		resp.Status = "degraded"
		resp.Database.Connected = false
		resp.Database.Error = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	if stats, err := h.db.Stats(); err == nil {
		resp.Stats = &stats
	}

	c.JSON(http.StatusOK, resp)
}

// Ready handles GET /ready. It reports 200 only when the database is
// reachable, for use as a readiness probe.
func (h *SystemHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
