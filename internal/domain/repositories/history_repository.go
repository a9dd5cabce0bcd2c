package repositories

import (
	"context"

	"rating-predictor/internal/domain/models"
)

// HistoryRepository 预测历史仓储接口
// 按会话隔离，每个会话内保持插入顺序，只追加不修改
type HistoryRepository interface {
	// Append 追加一条记录，达到上限时返回 models.ErrHistoryFull
	Append(ctx context.Context, sessionID string, record models.HistoryRecord) error

	// List 按插入顺序返回会话的全部记录，无记录时返回空切片
	List(ctx context.Context, sessionID string) ([]models.HistoryRecord, error)

	// Clear 删除会话的全部记录
	Clear(ctx context.Context, sessionID string) error

	// Touch 刷新会话记录的过期时间，使历史与会话同时过期
	Touch(ctx context.Context, sessionID string) error

	// Len 会话记录数
	Len(ctx context.Context, sessionID string) (int, error)

	// Close 释放底层资源
	Close() error
}
