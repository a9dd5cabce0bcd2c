package services

import (
	"context"

	"rating-predictor/internal/domain/models"
)

// FeatureEncoder 预先拟合的特征编码器
// 对相同记录和相同工件版本输出确定的定长向量
type FeatureEncoder interface {
	// Transform 编码单条记录，记录超出拟合范围时返回 *models.EncodingError
	Transform(record models.EncoderRecord) (models.EncodedFeatures, error)

	// Width 输出向量维度
	Width() int

	// FeatureNames 每一维的特征名
	FeatureNames() []string
}

// Regressor 预训练回归模型
type Regressor interface {
	// Predict 对单条特征向量推理，宽度不符时返回错误
	Predict(x []float64) (float64, error)

	// NFeatures 模型期望的特征维度
	NFeatures() int
}

// AttributionModel 支持加性归因分解的回归模型
type AttributionModel interface {
	Regressor

	// ExpectedValue 模型基线（训练分布上的期望输出）
	ExpectedValue() float64

	// Attribute 返回逐特征贡献，满足 sum(contributions) + ExpectedValue() == Predict(x)
	Attribute(x []float64) ([]float64, error)
}

// PredictionService 评分预测服务
type PredictionService interface {
	// Predict 预处理、编码、选择模型并推理，失败时返回 *models.PredictionError
	Predict(ctx context.Context, input *models.ProductInput) (*models.PredictionResult, error)
}

// ExplanationService 归因解释服务
type ExplanationService interface {
	// Explain 解释一次已完成的预测，复用其特征向量，失败时返回 *models.ExplainabilityError
	Explain(ctx context.Context, prediction *models.PredictionResult) (*models.AttributionVector, error)
}
