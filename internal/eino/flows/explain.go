package flows

import (
	"context"
	"errors"
	"fmt"
	"math"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/domain/services"
	"rating-predictor/internal/eino/components"
	"rating-predictor/internal/eino/config"
	"rating-predictor/pkg/logger"
)

// sumTolerance 基线加贡献之和与预测值的最大偏差
const sumTolerance = 1e-9

// ExplanationService 归因解释服务。
// 在图外直接使用预测器中的模型，对已保存的特征向量计算 TreeSHAP 贡献，不重新编码。
type ExplanationService struct {
	predictor *components.RatingPredictor
	cfg       *config.ExplainConfig
	logger    logger.Logger
}

var _ services.ExplanationService = (*ExplanationService)(nil)

// NewExplanationService 创建归因解释服务
func NewExplanationService(predictor *components.RatingPredictor, cfg *config.ExplainConfig, log logger.Logger) *ExplanationService {
	return &ExplanationService{
		predictor: predictor,
		cfg:       cfg,
		logger:    log,
	}
}

// Explain 解释一次已完成的预测，失败时返回 *models.ExplainabilityError
func (s *ExplanationService) Explain(ctx context.Context, prediction *models.PredictionResult) (*models.AttributionVector, error) {
	if !s.cfg.Enabled {
		return nil, &models.ExplainabilityError{Op: "explain", Err: errors.New("explanation disabled")}
	}
	if prediction == nil {
		return nil, &models.ExplainabilityError{Op: "explain", Err: models.ErrNoPrediction}
	}
	if err := ctx.Err(); err != nil {
		return nil, &models.ExplainabilityError{Op: "explain", Err: err}
	}

	model, err := s.predictor.Model(prediction.ModelUsed)
	if err != nil {
		return nil, &models.ExplainabilityError{Op: "select_model", Err: err}
	}

	features := prediction.Features
	if features.Width() != model.NFeatures() {
		return nil, &models.ExplainabilityError{
			Op:  "attribute",
			Err: fmt.Errorf("features have width %d, model expects %d: %w", features.Width(), model.NFeatures(), models.ErrWidthMismatch),
		}
	}

	contributions, err := model.Attribute(features.Values())
	if err != nil {
		return nil, &models.ExplainabilityError{Op: "attribute", Err: err}
	}

	names := features.Names()
	if names == nil {
		names = s.predictor.Encoder().FeatureNames()
	}

	vec := &models.AttributionVector{
		ModelUsed:     prediction.ModelUsed,
		Baseline:      model.ExpectedValue(),
		Prediction:    prediction.Rating,
		Contributions: contributions,
		FeatureNames:  names,
	}

	if diff := math.Abs(vec.Reconstructed() - prediction.Rating); diff > sumTolerance*math.Max(1, math.Abs(prediction.Rating)) {
		return nil, &models.ExplainabilityError{
			Op:  "verify",
			Err: fmt.Errorf("baseline plus contributions is %.12f, prediction is %.12f", vec.Reconstructed(), prediction.Rating),
		}
	}

	s.logger.DebugContext(ctx, "归因解释完成",
		"model", vec.ModelUsed,
		"baseline", vec.Baseline,
		"prediction", vec.Prediction,
		"features", len(contributions),
	)
	return vec, nil
}
