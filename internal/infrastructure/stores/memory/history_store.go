package memory

import (
	"context"
	"fmt"
	"sync"

	"rating-predictor/internal/domain/models"
)

// HistoryStore 进程内历史存储
type HistoryStore struct {
	mu         sync.RWMutex
	records    map[string][]models.HistoryRecord
	maxRecords int
}

// NewHistoryStore 创建进程内历史存储，maxRecords 为 0 表示不限制
func NewHistoryStore(maxRecords int) *HistoryStore {
	return &HistoryStore{
		records:    make(map[string][]models.HistoryRecord),
		maxRecords: maxRecords,
	}
}

// Append 追加一条记录
func (s *HistoryStore) Append(ctx context.Context, sessionID string, record models.HistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxRecords > 0 && len(s.records[sessionID]) >= s.maxRecords {
		return fmt.Errorf("session %s has %d records: %w", sessionID, s.maxRecords, models.ErrHistoryFull)
	}
	s.records[sessionID] = append(s.records[sessionID], record)
	return nil
}

// List 返回记录副本
func (s *HistoryStore) List(ctx context.Context, sessionID string) ([]models.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HistoryRecord, len(s.records[sessionID]))
	copy(out, s.records[sessionID])
	return out, nil
}

// Touch 进程内记录随会话回收清除，无需刷新
func (s *HistoryStore) Touch(ctx context.Context, _ string) error {
	return ctx.Err()
}

// Clear 删除会话的全部记录
func (s *HistoryStore) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.records, sessionID)
	s.mu.Unlock()
	return nil
}

// Len 会话记录数
func (s *HistoryStore) Len(ctx context.Context, sessionID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[sessionID]), nil
}

// Close 无需释放资源
func (s *HistoryStore) Close() error {
	return nil
}
