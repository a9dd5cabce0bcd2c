package preprocessing

import (
	"fmt"

	"rating-predictor/internal/domain/services"
	"rating-predictor/pkg/logger"
)

// 默认预处理链中的函数名称
const (
	PreprocessorNormalize = "normalize"
	PreprocessorTokenize  = "tokenize"
)

// Factory 描述预处理服务工厂
type Factory struct {
	logger logger.Logger
}

// NewFactory 创建描述预处理服务工厂
func NewFactory(log logger.Logger) *Factory {
	return &Factory{
		logger: log,
	}
}

// CreateTextPreprocessingService 创建描述预处理服务，并按 normalize -> tokenize 顺序注册默认链
func (f *Factory) CreateTextPreprocessingService(config *Config) (services.TextPreprocessingService, error) {
	if config == nil {
		config = DefaultConfig()
	}

	registry, err := f.CreateCompoundRegistry(config)
	if err != nil {
		return nil, err
	}

	service := NewDefaultTextPreprocessingService(config, f.logger)

	cleaner := NewCleaner(registry)

	if err := service.RegisterPreprocessor(PreprocessorNormalize, func(text string, _ map[string]interface{}) string {
		return cleaner.Normalizer().Normalize(text)
	}); err != nil {
		return nil, fmt.Errorf("register normalize: %w", err)
	}

	// 分词后收敛到不动点，再次清洗输出不会改变
	if err := service.RegisterPreprocessor(PreprocessorTokenize, func(text string, _ map[string]interface{}) string {
		return cleaner.Settle(cleaner.Filter().TokenizeFilter(text))
	}); err != nil {
		return nil, fmt.Errorf("register tokenize: %w", err)
	}

	return service, nil
}

// CreateCompoundRegistry 根据配置构造复合词注册表
func (f *Factory) CreateCompoundRegistry(config *Config) (*CompoundRegistry, error) {
	if config == nil || len(config.CompoundTerms) == 0 {
		return DefaultCompoundRegistry(), nil
	}

	registry, err := NewCompoundRegistry(config.CompoundTerms)
	if err != nil {
		return nil, fmt.Errorf("build compound registry: %w", err)
	}
	return registry, nil
}

// ValidateConfig 验证配置有效性
func (f *Factory) ValidateConfig(config *Config) error {
	if config == nil {
		return nil // 空配置将使用默认值
	}
	return config.Validate()
}
