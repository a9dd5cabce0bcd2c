package callbacks

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus"

	"rating-predictor/internal/eino/config"
)

// MetricsHandler 指标回调处理器，同时导出 Prometheus 指标和进程内快照
type MetricsHandler struct {
	cfg     *config.MetricsCallbackConfig
	metrics *MetricsCollector

	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// MetricsCollector 进程内指标快照
type MetricsCollector struct {
	mu sync.RWMutex

	// 调用计数
	TotalCalls      int64
	SuccessfulCalls int64
	FailedCalls     int64

	// 延迟统计
	TotalLatencyMs   int64
	ComponentLatency map[string]*LatencyStats

	// 节点调用计数
	ComponentCalls map[string]int64
}

// LatencyStats 延迟统计
type LatencyStats struct {
	Count   int64
	TotalMs int64
	MinMs   int64
	MaxMs   int64
}

// NewMetricsHandler 创建指标回调处理器并把 Prometheus 指标注册到 reg。
// reg 为 nil 时只维护进程内快照。
func NewMetricsHandler(cfg *config.MetricsCallbackConfig, reg prometheus.Registerer) (*MetricsHandler, error) {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "rating_predictor"
	}

	h := &MetricsHandler{
		cfg: cfg,
		metrics: &MetricsCollector{
			ComponentLatency: make(map[string]*LatencyStats),
			ComponentCalls:   make(map[string]int64),
		},
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "node_calls_total",
			Help:      "Prediction graph node executions by node and outcome.",
		}, []string{"node", "component", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "node_duration_seconds",
			Help:      "Prediction graph node latency.",
			Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"node", "component"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{h.calls, h.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}

// OnStart 节点开始执行时调用
func (h *MetricsHandler) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	h.metrics.mu.Lock()
	h.metrics.TotalCalls++
	h.metrics.ComponentCalls[info.Name]++
	h.metrics.mu.Unlock()

	return context.WithValue(ctx, metricsStartTimeKey, time.Now())
}

// OnEnd 节点执行完成时调用
func (h *MetricsHandler) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	startTime, ok := ctx.Value(metricsStartTimeKey).(time.Time)
	if !ok {
		return ctx
	}
	duration := time.Since(startTime)
	durationMs := duration.Milliseconds()

	component := string(info.Component)
	h.calls.WithLabelValues(info.Name, component, "ok").Inc()
	h.duration.WithLabelValues(info.Name, component).Observe(duration.Seconds())

	h.metrics.mu.Lock()
	defer h.metrics.mu.Unlock()

	h.metrics.SuccessfulCalls++
	h.metrics.TotalLatencyMs += durationMs

	stats, exists := h.metrics.ComponentLatency[info.Name]
	if !exists {
		stats = &LatencyStats{
			MinMs: durationMs,
			MaxMs: durationMs,
		}
		h.metrics.ComponentLatency[info.Name] = stats
	}

	stats.Count++
	stats.TotalMs += durationMs
	if durationMs < stats.MinMs {
		stats.MinMs = durationMs
	}
	if durationMs > stats.MaxMs {
		stats.MaxMs = durationMs
	}

	return ctx
}

// OnError 节点执行出错时调用
func (h *MetricsHandler) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	h.calls.WithLabelValues(info.Name, string(info.Component), "error").Inc()

	h.metrics.mu.Lock()
	h.metrics.FailedCalls++
	h.metrics.mu.Unlock()

	return ctx
}

// OnStartWithStreamInput 流式输入开始时调用，预测图不使用流式节点
func (h *MetricsHandler) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	if input != nil {
		input.Close()
	}
	return h.OnStart(ctx, info, nil)
}

// OnEndWithStreamOutput 流式输出结束时调用
func (h *MetricsHandler) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	if output != nil {
		output.Close()
	}
	return h.OnEnd(ctx, info, nil)
}

// GetMetrics 获取当前指标快照
func (h *MetricsHandler) GetMetrics() map[string]interface{} {
	h.metrics.mu.RLock()
	defer h.metrics.mu.RUnlock()

	avgLatency := int64(0)
	if h.metrics.SuccessfulCalls > 0 {
		avgLatency = h.metrics.TotalLatencyMs / h.metrics.SuccessfulCalls
	}

	componentStats := make(map[string]interface{})
	for name, stats := range h.metrics.ComponentLatency {
		avgMs := int64(0)
		if stats.Count > 0 {
			avgMs = stats.TotalMs / stats.Count
		}
		componentStats[name] = map[string]interface{}{
			"count":  stats.Count,
			"avg_ms": avgMs,
			"min_ms": stats.MinMs,
			"max_ms": stats.MaxMs,
		}
	}

	componentCalls := make(map[string]int64, len(h.metrics.ComponentCalls))
	for name, n := range h.metrics.ComponentCalls {
		componentCalls[name] = n
	}

	return map[string]interface{}{
		"total_calls":      h.metrics.TotalCalls,
		"successful_calls": h.metrics.SuccessfulCalls,
		"failed_calls":     h.metrics.FailedCalls,
		"avg_latency_ms":   avgLatency,
		"component_stats":  componentStats,
		"component_calls":  componentCalls,
	}
}

// Reset 重置进程内快照，Prometheus 计数器保持单调
func (h *MetricsHandler) Reset() {
	h.metrics.mu.Lock()
	defer h.metrics.mu.Unlock()

	h.metrics.TotalCalls = 0
	h.metrics.SuccessfulCalls = 0
	h.metrics.FailedCalls = 0
	h.metrics.TotalLatencyMs = 0
	h.metrics.ComponentLatency = make(map[string]*LatencyStats)
	h.metrics.ComponentCalls = make(map[string]int64)
}

const (
	metricsStartTimeKey contextKey = "metrics_start_time"
)
