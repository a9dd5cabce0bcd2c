// Package session 管理按会话隔离的预测状态与历史记录
package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/domain/repositories"
	"rating-predictor/internal/domain/services"
	"rating-predictor/internal/infrastructure/export"
	"rating-predictor/pkg/logger"
)

// Session 单个会话的状态。
// latest 在第一次成功预测前为 nil，所有操作在会话锁内执行。
type Session struct {
	id        string
	mu        sync.Mutex
	latest    *models.PredictionResult
	lastSeen  atomic.Int64
	history   repositories.HistoryRepository
	predictor services.PredictionService
	explainer services.ExplanationService
	logger    logger.Logger
	now       func() time.Time
}

// ID 会话标识
func (s *Session) ID() string {
	return s.id
}

// touch 刷新最后访问时间
func (s *Session) touch() {
	s.lastSeen.Store(s.now().UnixNano())
}

// keepAlive 刷新最后访问时间和历史记录的过期时间，调用方须持有 s.mu。
// 刷新失败只记录日志，不影响当前操作。
func (s *Session) keepAlive(ctx context.Context) {
	s.touch()
	if err := s.history.Touch(ctx, s.id); err != nil {
		s.logger.WarnContext(ctx, "刷新历史过期时间失败", "session_id", s.id, "error", err)
	}
}

// LastSeen 最后访问时间，不获取会话锁
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Predict 执行预测并替换最近一次预测，失败时保持原状态
func (s *Session) Predict(ctx context.Context, input *models.ProductInput) (*models.PredictionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepAlive(ctx)

	result, err := s.predictor.Predict(ctx, input)
	if err != nil {
		return nil, err
	}

	s.latest = result
	return result, nil
}

// Explain 解释最近一次预测，贡献按绝对值降序，top 限定 Top 字段长度
func (s *Session) Explain(ctx context.Context, top int) (models.Explanation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepAlive(ctx)

	if s.latest == nil {
		return models.Explanation{}, &models.ExplainabilityError{Op: "explain", Err: models.ErrNoPrediction}
	}

	vec, err := s.explainer.Explain(ctx, s.latest)
	if err != nil {
		return models.Explanation{}, err
	}
	return models.NewExplanation(vec, s.latest.Features.Values(), top), nil
}

// Report 最近一次预测的产品报告
func (s *Session) Report(ctx context.Context) (models.ProductReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepAlive(ctx)

	if s.latest == nil {
		return models.ProductReport{}, &models.HistoryStateError{Op: "report", Err: models.ErrNoPrediction}
	}
	return models.NewProductReport(s.latest), nil
}

// SaveLatest 将最近一次预测追加到历史记录
func (s *Session) SaveLatest(ctx context.Context) (models.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepAlive(ctx)

	if s.latest == nil {
		return models.HistoryRecord{}, &models.HistoryStateError{Op: "save", Err: models.ErrNoPrediction}
	}

	record := models.NewHistoryRecord(s.latest, s.now())
	if err := s.history.Append(ctx, s.id, record); err != nil {
		return models.HistoryRecord{}, &models.HistoryStateError{Op: "save", Err: err}
	}

	s.logger.InfoContext(ctx, "预测已保存到历史", "session_id", s.id, "rating", record.Rating)
	return record, nil
}

// History 按保存顺序返回历史记录
func (s *Session) History(ctx context.Context) ([]models.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepAlive(ctx)

	records, err := s.history.List(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}

// ClearHistory 清空历史记录，最近一次预测保留
func (s *Session) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.history.Clear(ctx, s.id); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.logger.InfoContext(ctx, "历史记录已清空", "session_id", s.id)
	return nil
}

// ExportCSV 以 CSV 导出历史记录
func (s *Session) ExportCSV(ctx context.Context) ([]byte, error) {
	return s.export(ctx, "export_csv", export.WriteCSV)
}

// ExportPDF 以 PDF 导出历史记录
func (s *Session) ExportPDF(ctx context.Context) ([]byte, error) {
	return s.export(ctx, "export_pdf", export.WritePDF)
}

func (s *Session) export(ctx context.Context, op string, write func(io.Writer, []models.HistoryRecord) error) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepAlive(ctx)

	records, err := s.history.List(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if len(records) == 0 {
		return nil, &models.HistoryStateError{Op: op, Err: models.ErrEmptyHistory}
	}

	var buf bytes.Buffer
	if err := write(&buf, records); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.InfoContext(ctx, "历史记录已导出", "session_id", s.id, "format", op, "records", len(records), "bytes", buf.Len())
	return buf.Bytes(), nil
}
