// Package server 负责 HTTP 服务器的路由与生命周期
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"rating-predictor/configs"
	"rating-predictor/internal/session"
	"rating-predictor/pkg/logger"
)

// Server HTTP服务器结构体
// 负责整个服务器的生命周期管理，包括初始化、启动、运行和优雅关闭
type Server struct {
	config     *configs.ServerConfig // 服务器配置
	httpServer *http.Server          // HTTP服务器实例
	engine     *gin.Engine           // Gin引擎
	logger     logger.Logger         // 日志器
}

// NewServer 创建新的HTTP服务器实例并注册路由
func NewServer(config *configs.ServerConfig, h *Handlers, sessions *session.Manager, sessionHeader string, log logger.Logger) *Server {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()
	SetupRoutes(engine, h, sessions, sessionHeader, log)

	return &Server{
		config: config,
		engine: engine,
		logger: log,
	}
}

// Engine 返回 Gin 引擎，测试中可直接配合 httptest 使用
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start 启动HTTP服务器
// ctx: 上下文，用于控制服务器启动过程
// errChan: 监听失败时写入错误
func (s *Server) Start(ctx context.Context, errChan chan<- error) {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.InfoContext(ctx, "HTTP服务器初始化完成",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
		"idle_timeout", s.config.IdleTimeout)

	// 启动服务器（非阻塞）
	go func() {
		s.logger.InfoContext(ctx, "HTTP服务器开始监听", "addr", s.httpServer.Addr)

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "HTTP服务器启动失败", "error", err.Error())
			errChan <- err
		}
	}()
}

// Shutdown 优雅关闭服务器
// ctx: 上下文，用于控制关闭过程的超时
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.InfoContext(ctx, "开始执行HTTP服务器优雅关闭")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GracefulShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.ErrorContext(ctx, "HTTP服务器优雅关闭失败，强制关闭", "error", err.Error())
		return fmt.Errorf("HTTP服务器关闭失败: %w", err)
	}

	s.logger.InfoContext(ctx, "HTTP服务器优雅关闭完成")
	return nil
}
