package nodes

import (
	"context"
	"fmt"
	"time"

	"rating-predictor/internal/domain/models"
	"rating-predictor/internal/domain/services"
)

// ModelSelector 按模型变体选择下游预测节点，作为 Graph 分支条件
type ModelSelector struct {
	targets map[models.ModelVariant]string
}

// NewModelSelector 创建模型选择器，targets 为变体到节点名的映射
func NewModelSelector(targets map[models.ModelVariant]string) *ModelSelector {
	return &ModelSelector{targets: targets}
}

// Select 返回要执行的节点名
func (s *ModelSelector) Select(ctx context.Context, state *PredictState) (string, error) {
	node, ok := s.targets[state.Variant]
	if !ok {
		return "", &models.PredictionError{
			Op:  "select_model",
			Err: fmt.Errorf("no node for model variant %q", state.Variant),
		}
	}
	return node, nil
}

// EndNodes 分支可能到达的节点集合
func (s *ModelSelector) EndNodes() map[string]bool {
	out := make(map[string]bool, len(s.targets))
	for _, node := range s.targets {
		out[node] = true
	}
	return out
}

// ModelRunner 单个模型变体的推理节点
type ModelRunner struct {
	variant models.ModelVariant
	model   services.Regressor
	now     func() time.Time
}

// NewModelRunner 创建推理节点
func NewModelRunner(variant models.ModelVariant, model services.Regressor) *ModelRunner {
	return &ModelRunner{
		variant: variant,
		model:   model,
		now:     time.Now,
	}
}

// Run 推理并组装预测结果，评分不做截断
func (r *ModelRunner) Run(ctx context.Context, state *PredictState) (*models.PredictionResult, error) {
	op := "predict_" + string(r.variant)

	if err := ctx.Err(); err != nil {
		return nil, &models.PredictionError{Op: op, Err: err}
	}

	rating, err := r.model.Predict(state.Features.Values())
	if err != nil {
		return nil, &models.PredictionError{Op: op, Err: err}
	}

	req := state.Request
	return &models.PredictionResult{
		Rating:    rating,
		ModelUsed: r.variant,
		Input: models.ProductInput{
			Category:     req.Category,
			RawTerms:     append([]string(nil), req.RawTerms...),
			Price:        req.Price,
			ReviewBucket: req.bucket(),
		},
		RawDescription:     state.RawDescription,
		CleanedDescription: state.CleanedDescription,
		ReviewCount:        req.ReviewCount,
		Features:           state.Features,
		FeatureWidth:       state.Features.Width(),
		PredictedAt:        r.now(),
	}, nil
}
