package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/ws"
)

// DependencyCheck 依赖健康检查
type DependencyCheck func(ctx context.Context) error

// HealthHandler 健康检查处理器
type HealthHandler struct {
	checks    map[string]DependencyCheck
	wsManager *ws.Manager
	startTime time.Time
	version   string
}

// NewHealthHandler 创建健康检查处理器, wsManager 可为 nil
func NewHealthHandler(checks map[string]DependencyCheck, wsManager *ws.Manager, version string) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		wsManager: wsManager,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       int64             `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
	WebSockets   int               `json:"websocket_connections"`
}

// HealthCheck 健康检查
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dependencies, allHealthy := h.runChecks(ctx)

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	connections := 0
	if h.wsManager != nil {
		connections = h.wsManager.GetConnectionCount()
	}

	c.JSON(statusCode, HealthResponse{
		Status:       status,
		Version:      h.version,
		Uptime:       int64(time.Since(h.startTime).Seconds()),
		Dependencies: dependencies,
		WebSockets:   connections,
	})
}

// Version 版本信息
func (h *HealthHandler) Version(c *gin.Context) {
	models.Success(c, gin.H{
		"version": h.version,
		"service": "reelloop",
	})
}

// Ready 就绪检查
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dependencies, allHealthy := h.runChecks(ctx)
	if !allHealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":       "not ready",
			"dependencies": dependencies,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// Live 存活检查
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (h *HealthHandler) runChecks(ctx context.Context) (map[string]string, bool) {
	dependencies := make(map[string]string, len(h.checks))
	allHealthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			dependencies[name] = "unhealthy"
			allHealthy = false
			continue
		}
		dependencies[name] = "healthy"
	}
	return dependencies, allHealthy
}
