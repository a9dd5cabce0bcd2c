// Package callbacks 提供 Eino Callback 处理器实现
package callbacks

import (
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	"github.com/prometheus/client_golang/prometheus"

	"rating-predictor/internal/eino/config"
	"rating-predictor/pkg/logger"
)

// Factory Callback 工厂
type Factory struct {
	cfg      *config.CallbacksConfig
	logger   logger.Logger
	registry prometheus.Registerer

	metrics *MetricsHandler
}

// NewFactory 创建 Callback 工厂，registry 用于注册指标回调的 Prometheus 指标
func NewFactory(cfg *config.CallbacksConfig, log logger.Logger, registry prometheus.Registerer) *Factory {
	return &Factory{
		cfg:      cfg,
		logger:   log,
		registry: registry,
	}
}

// CreateHandlers 创建所有启用的 Callback 处理器。
// 指标处理器只创建一次，重复调用返回同一实例。
func (f *Factory) CreateHandlers() ([]callbacks.Handler, error) {
	handlers := make([]callbacks.Handler, 0, 3)

	// 日志回调
	if f.cfg.Logging.Enabled {
		handlers = append(handlers, NewLoggingHandler(f.logger, &f.cfg.Logging))
	}

	// 指标回调
	if f.cfg.Metrics.Enabled {
		m, err := f.GetMetricsHandler()
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, m)
	}

	// 链路追踪回调
	if f.cfg.Tracing.Enabled {
		handlers = append(handlers, NewTracingHandler(&f.cfg.Tracing, f.logger))
	}

	return handlers, nil
}

// GetMetricsHandler 获取指标回调处理器，未启用时返回 nil
func (f *Factory) GetMetricsHandler() (*MetricsHandler, error) {
	if !f.cfg.Metrics.Enabled {
		return nil, nil
	}
	if f.metrics != nil {
		return f.metrics, nil
	}

	m, err := NewMetricsHandler(&f.cfg.Metrics, f.registry)
	if err != nil {
		return nil, fmt.Errorf("register graph metrics: %w", err)
	}
	f.metrics = m
	return m, nil
}
