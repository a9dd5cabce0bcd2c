// Package components 提供预测流水线组件的工厂函数
package components

import (
	"context"
	"fmt"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/domain/services"
	"rating-predictor/internal/eino/config"
	"rating-predictor/internal/infrastructure/encoder"
	"rating-predictor/internal/infrastructure/treemodel"
	"rating-predictor/pkg/logger"
)

// RatingPredictor 持有编码器和两个评论数分段模型，加载后只读，可并发使用
type RatingPredictor struct {
	encoder services.FeatureEncoder
	models  map[models.ModelVariant]services.AttributionModel
}

// NewRatingPredictor 组装预测器，要求编码器输出宽度与两个模型的输入宽度一致
func NewRatingPredictor(enc services.FeatureEncoder, low, high services.AttributionModel) (*RatingPredictor, error) {
	if enc == nil || low == nil || high == nil {
		return nil, fmt.Errorf("encoder and both models are required")
	}

	p := &RatingPredictor{
		encoder: enc,
		models: map[models.ModelVariant]services.AttributionModel{
			models.ModelLowReviews:  low,
			models.ModelHighReviews: high,
		},
	}
	for variant, m := range p.models {
		if m.NFeatures() != enc.Width() {
			return nil, fmt.Errorf("model %s expects %d features, encoder produces %d: %w",
				variant, m.NFeatures(), enc.Width(), models.ErrWidthMismatch)
		}
	}
	return p, nil
}

// LoadRatingPredictor 按配置从工件目录加载编码器和模型
func LoadRatingPredictor(ctx context.Context, cfg *config.ArtifactsConfig, log logger.Logger) (*RatingPredictor, error) {
	enc, err := encoder.NewFactory(log).CreateFeatureEncoder(cfg.EncoderPath())
	if err != nil {
		return nil, fmt.Errorf("load encoder: %w", err)
	}

	low, err := loadModel(ctx, cfg.LowModelPath(), log)
	if err != nil {
		return nil, fmt.Errorf("load low_reviews model: %w", err)
	}
	high, err := loadModel(ctx, cfg.HighModelPath(), log)
	if err != nil {
		return nil, fmt.Errorf("load high_reviews model: %w", err)
	}

	return NewRatingPredictor(enc, low, high)
}

func loadModel(ctx context.Context, path string, log logger.Logger) (*treemodel.Ensemble, error) {
	m, err := treemodel.Load(path)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "模型加载完成",
		"path", path,
		"name", m.Name(),
		"version", m.Version(),
		"trees", m.NumTrees(),
		"expected_value", m.ExpectedValue(),
	)
	return m, nil
}

// Encoder 返回特征编码器
func (p *RatingPredictor) Encoder() services.FeatureEncoder {
	return p.encoder
}

// Model 返回指定变体的模型
func (p *RatingPredictor) Model(variant models.ModelVariant) (services.AttributionModel, error) {
	m, ok := p.models[variant]
	if !ok {
		return nil, fmt.Errorf("unknown model variant %q", variant)
	}
	return m, nil
}

// Encode 将类别、清洗后描述和价格编码为特征向量，预测图的 encode 节点经由此方法编码。
// 未知类别和非法价格返回 *models.EncodingError。
func (p *RatingPredictor) Encode(category models.Category, cleaned string, price float64) (models.EncodedFeatures, error) {
	return p.encoder.Transform(models.EncoderRecord{
		Tipo:        category.Label(),
		Description: cleaned,
		Price:       price,
	})
}
