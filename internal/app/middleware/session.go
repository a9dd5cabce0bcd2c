package middleware

import (
	"github.com/gin-gonic/gin"

	"rating-predictor/internal/session"
	"rating-predictor/pkg/logger"
)

// SessionKey 会话在gin.Context中的键名
const SessionKey = "session"

// SessionMiddleware 按请求头取得或创建会话，并把会话ID回写到响应头
func SessionMiddleware(manager *session.Manager, header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := manager.GetOrCreate(c.GetHeader(header))
		c.Set(SessionKey, s)
		c.Header(header, s.ID())

		ctx := logger.InjectFields(c.Request.Context(), logger.Fields{"session_id": s.ID()})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSession 从gin.Context中获取会话，未经过会话中间件时返回 nil
func GetSession(c *gin.Context) *session.Session {
	if v, exists := c.Get(SessionKey); exists {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}
