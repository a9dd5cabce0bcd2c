package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rating-predictor/internal/app/handlers"
	"rating-predictor/internal/app/middleware"
	"rating-predictor/internal/session"
	"rating-predictor/pkg/logger"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Prediction *handlers.PredictionHandler
	History    *handlers.HistoryHandler
	Explore    *handlers.ExploreHandler
	Health     *handlers.HealthHandler
	// Metrics 为 nil 时不注册指标路由
	Metrics http.Handler
}

// SetupRoutes 配置并注册 HTTP 服务器的所有路由规则。
// 会话相关路由经过会话中间件，探索、健康检查和指标路由不创建会话。
func SetupRoutes(engine *gin.Engine, h *Handlers, sessions *session.Manager, sessionHeader string, log logger.Logger) {
	// 应用全局中间件
	setupMiddleware(engine, log)

	if h.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(h.Metrics))
	}

	v1 := engine.Group("/v1")
	v1.GET("/health", h.Health.HealthCheck)
	v1.GET("/checklists", h.Explore.Checklists)

	// 数据集探索
	explore := v1.Group("/explore")
	explore.GET("/summary", h.Explore.Summary)
	explore.GET("/histogram", h.Explore.Histogram)
	explore.GET("/words", h.Explore.Words)
	explore.GET("/vocabulary", h.Explore.Vocabulary)
	explore.GET("/scatter", h.Explore.Scatter)
	explore.GET("/quadrants", h.Explore.Quadrants)

	scoped := v1.Group("", middleware.SessionMiddleware(sessions, sessionHeader))

	// 评分预测
	predictions := scoped.Group("/predictions")
	predictions.POST("", h.Prediction.Predict)
	predictions.GET("/latest/explanation", h.Prediction.Explain)
	predictions.GET("/latest/report", h.Prediction.Report)

	// 预测历史
	history := scoped.Group("/history")
	history.POST("", h.History.Save)
	history.GET("", h.History.List)
	history.DELETE("", h.History.Clear)
	history.GET("/export.csv", h.History.ExportCSV)
	history.GET("/export.pdf", h.History.ExportPDF)
}

// setupMiddleware 设置全局中间件
func setupMiddleware(engine *gin.Engine, log logger.Logger) {
	// 设置恢复中间件 - 捕获panic并返回500错误
	engine.Use(gin.Recovery())

	// 设置日志中间件 - 记录请求日志并生成请求ID
	engine.Use(middleware.LoggingMiddleware(&middleware.LoggingConfig{
		// 跳过健康检查和指标路径的日志记录，减少日志噪音
		SkipPaths: []string{"/v1/health", "/metrics"},
		Logger:    log,
	}))
}
