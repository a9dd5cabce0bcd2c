package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"rating-predictor/configs"
	"rating-predictor/internal/domain/repositories"
	"rating-predictor/internal/domain/services"
	"rating-predictor/pkg/logger"
)

// Manager 会话管理器，会话之间互不可见
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	history   repositories.HistoryRepository
	predictor services.PredictionService
	explainer services.ExplanationService
	cfg       *configs.SessionConfig
	logger    logger.Logger
	now       func() time.Time
}

// Option 管理器选项
type Option func(*Manager)

// WithClock 替换时钟，测试中使用
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager 创建会话管理器
func NewManager(
	cfg *configs.SessionConfig,
	history repositories.HistoryRepository,
	predictor services.PredictionService,
	explainer services.ExplanationService,
	log logger.Logger,
	opts ...Option,
) *Manager {
	if log == nil {
		log = logger.Default()
	}

	m := &Manager{
		sessions:  make(map[string]*Session),
		history:   history,
		predictor: predictor,
		explainer: explainer,
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetOrCreate 返回 id 对应的会话。
// id 为空或不是合法 UUID 时生成新的会话 id，调用方应把 Session.ID() 回传给客户端。
func (m *Manager) GetOrCreate(id string) *Session {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.evictOldestLocked()
	}

	s := &Session{
		id:        id,
		history:   m.history,
		predictor: m.predictor,
		explainer: m.explainer,
		logger:    m.logger,
		now:       m.now,
	}
	s.touch()
	m.sessions[id] = s
	m.logger.Debug("创建会话", "session_id", id, "sessions", len(m.sessions))
	return s
}

// Len 当前会话数
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// evictOldestLocked 会话数达到上限时淘汰最久未访问的会话，调用方须持有 m.mu
func (m *Manager) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, s := range m.sessions {
		seen := s.LastSeen()
		if oldestID == "" || seen.Before(oldest) {
			oldestID, oldest = id, seen
		}
	}
	if oldestID == "" {
		return
	}

	delete(m.sessions, oldestID)
	if err := m.history.Clear(context.Background(), oldestID); err != nil {
		m.logger.Warn("淘汰会话时清理历史失败", "session_id", oldestID, "error", err)
	}
	m.logger.Info("会话数达到上限，淘汰最久未访问的会话", "session_id", oldestID)
}

// EvictExpired 回收空闲超过 TTL 的会话并清除其历史，返回回收数量
func (m *Manager) EvictExpired(ctx context.Context) int {
	deadline := m.now().Add(-m.cfg.TTL)

	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if s.LastSeen().Before(deadline) {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		if err := m.history.Clear(ctx, id); err != nil {
			m.logger.WarnContext(ctx, "清理过期会话历史失败", "session_id", id, "error", err)
		}
	}

	if len(expired) > 0 {
		m.logger.InfoContext(ctx, "回收过期会话", "count", len(expired))
	}
	return len(expired)
}

// Run 按 CleanupInterval 周期回收过期会话，直到 ctx 结束
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictExpired(ctx)
		}
	}
}
