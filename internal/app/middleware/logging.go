package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rating-predictor/internal/eino/callbacks"
	"rating-predictor/pkg/logger"
)

// RequestIDKey 请求ID在Context中的键名
const RequestIDKey = "request_id"

// RequestIDHeader 客户端可传入的请求ID头
const RequestIDHeader = "X-Request-ID"

// LoggingConfig 日志中间件配置
type LoggingConfig struct {
	// SkipPaths 跳过日志记录的路径（如健康检查接口）
	SkipPaths []string
	// Logger 日志器实例
	Logger logger.Logger
}

// LoggingMiddleware 返回HTTP日志记录中间件。
// 请求ID同时注入日志字段和追踪ID，流水线回调日志可按请求ID关联。
func LoggingMiddleware(config *LoggingConfig) gin.HandlerFunc {
	if config == nil {
		config = &LoggingConfig{
			SkipPaths: []string{"/v1/health", "/metrics"},
		}
	}

	if config.Logger == nil {
		config.Logger = logger.GetDefault()
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		ctx := logger.InjectFields(c.Request.Context(), logger.Fields{"request_id": requestID})
		ctx = callbacks.WithTraceID(ctx, requestID)
		c.Request = c.Request.WithContext(ctx)

		if shouldSkipPath(c.Request.URL.Path, config.SkipPaths) {
			c.Next()
			return
		}

		startTime := time.Now()
		requestInfo := extractRequestInfo(c)

		config.Logger.InfoContext(ctx, "HTTP请求开始",
			"method", requestInfo.Method,
			"path", requestInfo.Path,
			"client_ip", requestInfo.ClientIP,
			"user_agent", requestInfo.UserAgent,
			"content_length", requestInfo.ContentLength,
			"query_params", requestInfo.QueryParams,
		)

		c.Next()

		// 会话中间件可能已在上下文中追加了会话字段
		ctx = c.Request.Context()
		duration := time.Since(startTime)

		config.Logger.InfoContext(ctx, "HTTP请求完成",
			"method", requestInfo.Method,
			"path", requestInfo.Path,
			"status_code", c.Writer.Status(),
			"duration_ms", float64(duration.Nanoseconds())/1e6,
			"response_size", c.Writer.Size(),
		)

		for _, err := range c.Errors {
			config.Logger.ErrorContext(ctx, "HTTP请求处理错误",
				"error", err.Error(),
				"error_type", err.Type,
			)
		}
	}
}

// RequestInfo HTTP请求信息
type RequestInfo struct {
	Method        string            `json:"method"`
	Path          string            `json:"path"`
	ClientIP      string            `json:"client_ip"`
	UserAgent     string            `json:"user_agent"`
	ContentLength int64             `json:"content_length"`
	QueryParams   map[string]string `json:"query_params"`
}

// extractRequestInfo 提取请求信息
func extractRequestInfo(c *gin.Context) *RequestInfo {
	queryParams := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			queryParams[key] = values[0] // 只取第一个值
		}
	}

	return &RequestInfo{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		ClientIP:      c.ClientIP(),
		UserAgent:     c.GetHeader("User-Agent"),
		ContentLength: c.Request.ContentLength,
		QueryParams:   queryParams,
	}
}

// shouldSkipPath 检查是否应该跳过某个路径的日志记录
func shouldSkipPath(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// GetRequestID 从Context中获取请求ID
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// RequestIDFromContext 从标准 context 中获取请求ID
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := logger.FieldsFromContext(ctx)["request_id"].(string); ok {
		return id
	}
	return ""
}
