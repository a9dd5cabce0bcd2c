package nodes

import (
	"context"

	"rating-predictor/internal/domain/models"
)

// RecordEncoder 按类别、清洗后描述和价格编码，由 components.RatingPredictor 实现
type RecordEncoder interface {
	Encode(category models.Category, cleaned string, price float64) (models.EncodedFeatures, error)
}

// FeatureEncodeNode 特征编码节点
type FeatureEncodeNode struct {
	encoder RecordEncoder
}

// NewFeatureEncodeNode 创建特征编码节点
func NewFeatureEncodeNode(encoder RecordEncoder) *FeatureEncodeNode {
	return &FeatureEncodeNode{encoder: encoder}
}

// Encode 编码类别、清洗后描述和价格，并确定要使用的模型变体
func (n *FeatureEncodeNode) Encode(ctx context.Context, state *PredictState) (*PredictState, error) {
	features, err := n.encoder.Encode(state.Request.Category, state.CleanedDescription, state.Request.Price)
	if err != nil {
		return nil, &models.PredictionError{Op: "encode", Err: err}
	}

	state.Features = features
	state.Variant = models.SelectModel(state.Request.ReviewCount)
	return state, nil
}
