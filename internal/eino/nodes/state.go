// Package nodes 提供 Eino Graph 中使用的 Lambda 节点实现
package nodes

import (
	"rating-predictor/internal/domain/models"
)

// PredictRequest 预测图的输入。
// 类别和价格的取值由编码器校验，缺失或非法时返回 *models.EncodingError。
type PredictRequest struct {
	Category     models.Category     `json:"category"`
	RawTerms     []string            `json:"raw_terms" validate:"dive,max=128"`
	Price        float64             `json:"price"`
	ReviewCount  int                 `json:"review_count" validate:"gte=0"`
	ReviewBucket models.ReviewBucket `json:"review_bucket,omitempty" validate:"omitempty,oneof=low high"`
}

// PredictState 在节点之间传递的中间状态
type PredictState struct {
	Request *PredictRequest

	RawDescription       string
	CleanedDescription   string
	AppliedPreprocessors []string

	Features models.EncodedFeatures
	Variant  models.ModelVariant
}

// bucket 请求未给出档位时按评论数推导
func (r *PredictRequest) bucket() models.ReviewBucket {
	if r.ReviewBucket.Valid() {
		return r.ReviewBucket
	}
	if r.ReviewCount >= models.ReviewThreshold {
		return models.ReviewBucketHigh
	}
	return models.ReviewBucketLow
}
