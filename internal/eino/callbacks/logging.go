package callbacks

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"

	"rating-predictor/internal/eino/config"
	"rating-predictor/pkg/logger"
)

// LoggingHandler 实现基于日志的 Callback 处理器。
// 它会在图节点开始、结束或出错时记录日志，开始与结束使用配置的级别，出错总是 Error。
type LoggingHandler struct {
	logger logger.Logger
	cfg    *config.LoggingCallbackConfig
	level  slog.Level
}

// NewLoggingHandler 创建一个新的日志回调处理器。
// 参数 log: 底层日志记录器。
// 参数 cfg: 日志回调配置。
// 返回: *LoggingHandler，实现 callbacks.Handler 接口。
func NewLoggingHandler(log logger.Logger, cfg *config.LoggingCallbackConfig) *LoggingHandler {
	return &LoggingHandler{
		logger: log,
		cfg:    cfg,
		level:  logger.ParseLevel(cfg.Level),
	}
}

func (h *LoggingHandler) log(ctx context.Context, msg string, args ...interface{}) {
	if h.level <= slog.LevelDebug {
		h.logger.DebugContext(ctx, msg, args...)
		return
	}
	h.logger.InfoContext(ctx, msg, args...)
}

// OnStart 在节点开始执行时被调用。
// 记录节点名称和组件类型，并将开始时间注入上下文以计算耗时。
func (h *LoggingHandler) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	ctx = context.WithValue(ctx, startTimeKey, time.Now())

	// 注入节点字段，后续日志自动携带
	ctx = logger.InjectFields(ctx, logger.Fields{
		"node":      info.Name,
		"component": string(info.Component),
	})

	h.log(ctx, "节点开始执行",
		"component", info.Component,
		"name", info.Name,
		"type", info.Type,
	)

	return ctx
}

// OnEnd 在节点执行完成时被调用，记录执行耗时。
func (h *LoggingHandler) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	startTime, _ := ctx.Value(startTimeKey).(time.Time)

	h.log(ctx, "节点执行完成",
		"component", info.Component,
		"name", info.Name,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return ctx
}

// OnError 在节点执行出错时被调用，记录错误详情和执行耗时。
func (h *LoggingHandler) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if !h.cfg.Enabled {
		return ctx
	}

	startTime, _ := ctx.Value(startTimeKey).(time.Time)

	h.logger.ErrorContext(ctx, "节点执行出错",
		"component", info.Component,
		"name", info.Name,
		"duration_ms", time.Since(startTime).Milliseconds(),
		"error", err.Error(),
	)

	return ctx
}

// OnStartWithStreamInput 在流式输入开始时被调用。
func (h *LoggingHandler) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	if input != nil {
		input.Close()
	}
	return h.OnStart(ctx, info, nil)
}

// OnEndWithStreamOutput 在流式输出结束时被调用。
func (h *LoggingHandler) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	if output != nil {
		output.Close()
	}
	return h.OnEnd(ctx, info, nil)
}

// contextKey 定义了上下文键的类型，用于防止键名冲突。
type contextKey string

const (
	// startTimeKey 用于在上下文中存储节点开始执行的时间。
	startTimeKey contextKey = "callback_start_time"
)
