// Package stores 根据配置创建预测历史存储
package stores

import (
	"context"
	"fmt"
	"time"

	"rating-predictor/configs"
	"rating-predictor/internal/domain/repositories"
	badgerstore "rating-predictor/internal/infrastructure/stores/badger"
	"rating-predictor/internal/infrastructure/stores/memory"
	redisstore "rating-predictor/internal/infrastructure/stores/redis"
	"rating-predictor/pkg/logger"
)

// HistoryStoreFactory 历史存储工厂
type HistoryStoreFactory struct {
	logger logger.Logger
}

// NewHistoryStoreFactory 创建历史存储工厂
func NewHistoryStoreFactory(log logger.Logger) *HistoryStoreFactory {
	if log == nil {
		log = logger.Default()
	}

	return &HistoryStoreFactory{
		logger: log,
	}
}

// CreateHistoryRepository 按 provider 创建历史仓储
// ttl 为会话有效期，redis 和 badger 用它作为记录过期时间
func (f *HistoryStoreFactory) CreateHistoryRepository(ctx context.Context, config *configs.HistoryConfig, ttl time.Duration) (repositories.HistoryRepository, error) {
	if config == nil {
		return nil, fmt.Errorf("history config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("history config validation failed: %w", err)
	}

	switch config.Provider {
	case configs.HistoryProviderMemory:
		f.logger.InfoContext(ctx, "使用内存历史存储", "max_records", config.MaxRecords)
		return memory.NewHistoryStore(config.MaxRecords), nil

	case configs.HistoryProviderRedis:
		client, err := redisstore.NewClient(ctx, &config.Redis)
		if err != nil {
			f.logger.ErrorContext(ctx, "Redis历史存储初始化失败", "addr", config.Redis.Addr, "error", err)
			return nil, fmt.Errorf("failed to create redis history store: %w", err)
		}
		f.logger.InfoContext(ctx, "使用Redis历史存储", "addr", config.Redis.Addr, "prefix", config.Redis.KeyPrefix)
		return redisstore.NewHistoryStore(client, config.Redis.KeyPrefix, ttl, config.MaxRecords, f.logger), nil

	case configs.HistoryProviderBadger:
		db, err := badgerstore.Open(&config.Badger)
		if err != nil {
			f.logger.ErrorContext(ctx, "Badger历史存储初始化失败", "path", config.Badger.Path, "error", err)
			return nil, fmt.Errorf("failed to create badger history store: %w", err)
		}
		f.logger.InfoContext(ctx, "使用Badger历史存储", "path", config.Badger.Path, "in_memory", config.Badger.InMemory)
		return badgerstore.NewHistoryStore(db, ttl, config.MaxRecords, f.logger), nil

	default:
		return nil, fmt.Errorf("unsupported history provider: %s", config.Provider)
	}
}
