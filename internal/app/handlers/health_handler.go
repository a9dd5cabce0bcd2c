package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	startedAt time.Time
	sessions  func() int
}

// NewHealthHandler 创建健康检查处理器，sessions 返回当前会话数
func NewHealthHandler(sessions func() int) *HealthHandler {
	return &HealthHandler{
		startedAt: time.Now(),
		sessions:  sessions,
	}
}

// HealthCheck 健康检查
// GET /v1/health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	respondWithSuccess(c, gin.H{
		"status":         "healthy",
		"timestamp":      time.Now().Unix(),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"sessions":       h.sessions(),
	}, "服务正常")
}
