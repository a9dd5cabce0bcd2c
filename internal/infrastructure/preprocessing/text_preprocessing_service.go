package preprocessing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/domain/services"
	"rating-predictor/pkg/logger"
	"rating-predictor/pkg/status"
)

// DefaultTextPreprocessingService 默认描述预处理服务实现
type DefaultTextPreprocessingService struct {
	config         *Config
	preprocessors  map[string]services.PreprocessorFunc
	processorOrder []string
	mutex          sync.RWMutex
	logger         logger.Logger
}

// NewDefaultTextPreprocessingService 创建未注册任何函数的预处理服务
func NewDefaultTextPreprocessingService(config *Config, log logger.Logger) *DefaultTextPreprocessingService {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logger.GetDefault()
	}

	return &DefaultTextPreprocessingService{
		config:         config,
		preprocessors:  make(map[string]services.PreprocessorFunc),
		processorOrder: make([]string, 0),
		logger:         log,
	}
}

// PreprocessDescription 预处理产品描述
func (s *DefaultTextPreprocessingService) PreprocessDescription(ctx context.Context, description string) (*models.PreprocessedDescription, status.StatusCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.ErrCodeUnavailable, fmt.Errorf("预处理已取消: %w", err)
	}

	startTime := time.Now()

	cleaned, applied := s.applyPreprocessors(ctx, description, make(map[string]interface{}))

	result := &models.PreprocessedDescription{
		Original:             description,
		Cleaned:              cleaned,
		AppliedPreprocessors: applied,
		ProcessingTime:       float64(time.Since(startTime).Microseconds()) / 1000,
	}

	if s.config.EnableLogging {
		s.logger.DebugContext(ctx, "描述预处理完成",
			"original_length", len(description),
			"cleaned_length", len(cleaned),
			"applied_preprocessors", len(applied),
			"processing_time_ms", result.ProcessingTime)
	}

	return result, status.CodeOK, nil
}

// RegisterPreprocessor 注册预处理函数
func (s *DefaultTextPreprocessingService) RegisterPreprocessor(name string, processor services.PreprocessorFunc) error {
	if name == "" {
		return fmt.Errorf("预处理函数名称不能为空")
	}

	if processor == nil {
		return fmt.Errorf("预处理函数不能为空")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.preprocessors[name]; exists {
		return fmt.Errorf("预处理函数 '%s' 已存在", name)
	}

	s.preprocessors[name] = processor
	s.processorOrder = append(s.processorOrder, name)

	s.logger.Debug("预处理函数已注册", "name", name, "total_count", len(s.preprocessors))

	return nil
}

// UnregisterPreprocessor 取消注册预处理函数
func (s *DefaultTextPreprocessingService) UnregisterPreprocessor(name string) error {
	if name == "" {
		return fmt.Errorf("预处理函数名称不能为空")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.preprocessors[name]; !exists {
		return fmt.Errorf("预处理函数 '%s' 不存在", name)
	}

	delete(s.preprocessors, name)

	for i, orderName := range s.processorOrder {
		if orderName == name {
			s.processorOrder = append(s.processorOrder[:i], s.processorOrder[i+1:]...)
			break
		}
	}

	s.logger.Debug("预处理函数已取消注册", "name", name, "remaining_count", len(s.preprocessors))

	return nil
}

// ListPreprocessors 列出所有已注册的预处理函数名称
func (s *DefaultTextPreprocessingService) ListPreprocessors() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]string, len(s.processorOrder))
	copy(result, s.processorOrder)

	return result
}

// applyPreprocessors 按注册顺序应用预处理函数链，返回结果和实际执行的函数名
func (s *DefaultTextPreprocessingService) applyPreprocessors(ctx context.Context, text string, metadata map[string]interface{}) (string, []string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	applied := make([]string, 0, len(s.processorOrder))
	processed := text
	for _, name := range s.processorOrder {
		processor, exists := s.preprocessors[name]
		if !exists {
			continue
		}

		before := len(processed)
		processed = processor(processed, metadata)
		applied = append(applied, name)

		if s.config.EnableLogging {
			s.logger.DebugContext(ctx, "预处理函数已应用", "name", name, "before_length", before, "after_length", len(processed))
		}
	}

	return processed, applied
}
