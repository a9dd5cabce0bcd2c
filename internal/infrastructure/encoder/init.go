package encoder

import (
	"fmt"

	"rating-predictor/internal/domain/services"
	"rating-predictor/pkg/logger"
)

// Factory 特征编码器工厂
type Factory struct {
	logger logger.Logger
}

// NewFactory 创建特征编码器工厂
func NewFactory(log logger.Logger) *Factory {
	return &Factory{
		logger: log,
	}
}

// CreateFeatureEncoder 从工件文件创建特征编码器
func (f *Factory) CreateFeatureEncoder(path string) (services.FeatureEncoder, error) {
	if path == "" {
		return nil, fmt.Errorf("encoder artifact path is required")
	}

	enc, err := Load(path)
	if err != nil {
		return nil, err
	}

	f.logger.Info("特征编码器加载完成",
		"path", path,
		"version", enc.Version(),
		"width", enc.Width(),
	)
	return enc, nil
}
