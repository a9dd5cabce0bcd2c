package callbacks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/eino/config"
	"rating-predictor/internal/eino/nodes"
	"rating-predictor/pkg/logger"
)

// 跨度状态
const (
	SpanOK    = "OK"
	SpanError = "ERROR"
)

// TracingHandler 按请求串联预测图各节点的跨度，以 Debug 日志输出。
// 编码节点的跨度带特征维度，预测节点的跨度带实际使用的模型。
type TracingHandler struct {
	cfg    *config.TracingCallbackConfig
	logger logger.Logger
	seq    atomic.Uint64
}

// Span 单个节点的一次执行
type Span struct {
	TraceID  string
	ID       string
	ParentID string
	Node     string
	Status   string
	Duration time.Duration

	// 节点输出中提取的预测属性，未产生时为零值
	Model        models.ModelVariant
	FeatureWidth int

	started time.Time
}

// attrs 以日志键值对展开跨度
func (s *Span) attrs() []any {
	out := []any{
		"trace_id", s.TraceID,
		"span_id", s.ID,
		"node", s.Node,
	}
	if s.ParentID != "" {
		out = append(out, "parent_id", s.ParentID)
	}
	if s.Status != "" {
		out = append(out, "status", s.Status, "duration_ms", s.Duration.Milliseconds())
	}
	if s.Model != "" {
		out = append(out, "model", string(s.Model))
	}
	if s.FeatureWidth > 0 {
		out = append(out, "feature_width", s.FeatureWidth)
	}
	return out
}

// finish 收尾并记录节点输出携带的预测属性
func (s *Span) finish(status string, output any) {
	s.Status = status
	s.Duration = time.Since(s.started)

	switch out := output.(type) {
	case *nodes.PredictState:
		if out != nil {
			s.FeatureWidth = out.Features.Width()
			s.Model = out.Variant
		}
	case *models.PredictionResult:
		if out != nil {
			s.Model = out.ModelUsed
			s.FeatureWidth = out.FeatureWidth
		}
	}
}

// NewTracingHandler 创建链路追踪回调处理器
func NewTracingHandler(cfg *config.TracingCallbackConfig, log logger.Logger) *TracingHandler {
	return &TracingHandler{cfg: cfg, logger: log}
}

// OnStart 打开节点跨度；上下文中没有 TraceID 时生成一个
func (h *TracingHandler) OnStart(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	// 请求中间件会把 request_id 作为 TraceID 注入
	traceID := ExtractTraceID(ctx)
	if traceID == "" {
		traceID = uuid.New().String()
		ctx = WithTraceID(ctx, traceID)
	}

	span := &Span{
		TraceID: traceID,
		ID:      fmt.Sprintf("%016x", h.seq.Add(1)),
		Node:    info.Name,
		started: time.Now(),
	}
	if parent := SpanFromContext(ctx); parent != nil {
		span.ParentID = parent.ID
	}

	ctx = context.WithValue(ctx, spanKey, span)
	h.logger.DebugContext(ctx, "开始跨度", span.attrs()...)
	return ctx
}

// OnEnd 关闭跨度并记录模型和特征维度
func (h *TracingHandler) OnEnd(ctx context.Context, _ *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	h.end(ctx, SpanOK, output, nil)
	return ctx
}

// OnError 以错误状态关闭跨度
func (h *TracingHandler) OnError(ctx context.Context, _ *callbacks.RunInfo, err error) context.Context {
	h.end(ctx, SpanError, nil, err)
	return ctx
}

func (h *TracingHandler) end(ctx context.Context, status string, output any, err error) {
	if !h.cfg.Enabled {
		return
	}
	span := SpanFromContext(ctx)
	if span == nil {
		return
	}
	span.finish(status, output)

	if err != nil {
		h.logger.ErrorContext(ctx, "跨度出错", append(span.attrs(), "error", err.Error())...)
		return
	}
	h.logger.DebugContext(ctx, "结束跨度", span.attrs()...)
}

// OnStartWithStreamInput 预测图不产生流，关闭后按普通输入处理
func (h *TracingHandler) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	if input != nil {
		input.Close()
	}
	return h.OnStart(ctx, info, nil)
}

// OnEndWithStreamOutput 同上
func (h *TracingHandler) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	if output != nil {
		output.Close()
	}
	return h.OnEnd(ctx, info, nil)
}

const (
	traceIDKey contextKey = "trace_id"
	spanKey    contextKey = "span"
)

// WithTraceID 设置 Trace ID 到上下文
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// ExtractTraceID 从上下文提取 Trace ID
func ExtractTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey).(string)
	return traceID
}

// SpanFromContext 返回当前节点的跨度，不在追踪中时为 nil
func SpanFromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(spanKey).(*Span)
	return span
}
