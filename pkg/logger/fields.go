package logger

import (
	"context"
	"log/slog"
	"sort"
)

// Fields 通过上下文传递的结构化日志字段
type Fields map[string]interface{}

type fieldsKey struct{}

// InjectFields 将字段注入上下文，同名字段以新值为准。
// 之后所有使用该上下文的 *Context 日志方法都会自动携带这些字段。
func InjectFields(ctx context.Context, fields Fields) context.Context {
	if len(fields) == 0 {
		return ctx
	}

	existing := FieldsFromContext(ctx)
	merged := make(Fields, len(existing)+len(fields))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return context.WithValue(ctx, fieldsKey{}, merged)
}

// FieldsFromContext 读取上下文中的日志字段，没有时返回 nil
func FieldsFromContext(ctx context.Context) Fields {
	if ctx == nil {
		return nil
	}
	if fields, ok := ctx.Value(fieldsKey{}).(Fields); ok {
		return fields
	}
	return nil
}

// contextHandler 在写出日志前追加上下文字段
type contextHandler struct {
	slog.Handler
}

// Handle 追加上下文字段后交给底层 Handler
func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	fields := FieldsFromContext(ctx)
	if len(fields) > 0 {
		// 按键排序，保证输出稳定
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			record.AddAttrs(slog.Any(k, fields[k]))
		}
	}
	return h.Handler.Handle(ctx, record)
}

// WithAttrs 保持包装关系
func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup 保持包装关系
func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
