package models

import (
	"errors"
	"fmt"
)

// 可用 errors.Is 判断的哨兵错误
var (
	// ErrUnknownCategory 类别不在编码器训练时见过的取值中
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidPrice 价格为负数或非有限值
	ErrInvalidPrice = errors.New("invalid price")
	// ErrWidthMismatch 特征向量宽度与模型不一致
	ErrWidthMismatch = errors.New("feature width mismatch")
	// ErrNoPrediction 当前会话还没有有效预测
	ErrNoPrediction = errors.New("no prior prediction")
	// ErrEmptyHistory 历史记录为空
	ErrEmptyHistory = errors.New("history is empty")
	// ErrHistoryFull 历史记录达到上限
	ErrHistoryFull = errors.New("history is full")
)

// EncodingError 输入记录超出编码器拟合范围
type EncodingError struct {
	Field   string
	Message string
	Err     error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encoding %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("encoding %s: %s", e.Field, e.Message)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// PredictionError 模型选择或推理阶段的任何失败，Err 保留原始原因
type PredictionError struct {
	Op  string
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed at %s: %v", e.Op, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// ExplainabilityError 归因解释不可用，预测结果本身仍然有效
type ExplainabilityError struct {
	Op  string
	Err error
}

func (e *ExplainabilityError) Error() string {
	return fmt.Sprintf("explanation unavailable at %s: %v", e.Op, e.Err)
}

func (e *ExplainabilityError) Unwrap() error { return e.Err }

// HistoryStateError 保存或导出时缺少前置状态
type HistoryStateError struct {
	Op  string
	Err error
}

func (e *HistoryStateError) Error() string {
	return fmt.Sprintf("history %s: %v", e.Op, e.Err)
}

func (e *HistoryStateError) Unwrap() error { return e.Err }
