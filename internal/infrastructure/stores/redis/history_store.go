package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rating-predictor/configs"
	"rating-predictor/internal/domain/models"
	"rating-predictor/pkg/logger"
)

// HistoryStore 基于 Redis List 的历史存储
// 每个会话一个 key：<prefix><sessionID>，写入和 Touch 时刷新会话 TTL
type HistoryStore struct {
	client     redis.UniversalClient
	prefix     string
	ttl        time.Duration
	maxRecords int
	logger     logger.Logger
}

// NewHistoryStore 基于已有客户端创建历史存储
func NewHistoryStore(client redis.UniversalClient, prefix string, ttl time.Duration, maxRecords int, log logger.Logger) *HistoryStore {
	return &HistoryStore{
		client:     client,
		prefix:     prefix,
		ttl:        ttl,
		maxRecords: maxRecords,
		logger:     log,
	}
}

// NewClient 根据配置创建 Redis 客户端并测试连接
func NewClient(ctx context.Context, cfg *configs.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Protocol:     2,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func (s *HistoryStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Append 追加一条记录（RPUSH）
func (s *HistoryStore) Append(ctx context.Context, sessionID string, record models.HistoryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}

	key := s.key(sessionID)
	if s.maxRecords > 0 {
		n, err := s.client.LLen(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("llen %s: %w", key, err)
		}
		if n >= int64(s.maxRecords) {
			return fmt.Errorf("session %s has %d records: %w", sessionID, n, models.ErrHistoryFull)
		}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "写入历史记录失败", "key", key, "error", err)
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	return nil
}

// List 按插入顺序返回全部记录（LRANGE 0 -1）
func (s *HistoryStore) List(ctx context.Context, sessionID string) ([]models.HistoryRecord, error) {
	key := s.key(sessionID)
	items, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	out := make([]models.HistoryRecord, 0, len(items))
	for i, item := range items {
		var r models.HistoryRecord
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("decode history record %d of %s: %w", i, key, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Clear 删除会话 key（DEL）
func (s *HistoryStore) Clear(ctx context.Context, sessionID string) error {
	key := s.key(sessionID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Touch 刷新会话 key 的 TTL（EXPIRE），key 不存在时无操作
func (s *HistoryStore) Touch(ctx context.Context, sessionID string) error {
	if s.ttl <= 0 {
		return nil
	}
	key := s.key(sessionID)
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// Len 会话记录数（LLEN）
func (s *HistoryStore) Len(ctx context.Context, sessionID string) (int, error) {
	key := s.key(sessionID)
	n, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", key, err)
	}
	return int(n), nil
}

// Close 关闭客户端
func (s *HistoryStore) Close() error {
	return s.client.Close()
}
