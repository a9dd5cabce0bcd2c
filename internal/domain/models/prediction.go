package models

import (
	"math"
	"sort"
	"time"
)

// ModelVariant 模型变体（封闭枚举）
type ModelVariant string

const (
	// ModelLowReviews 低评论数模型
	ModelLowReviews ModelVariant = "low_reviews"
	// ModelHighReviews 高评论数模型
	ModelHighReviews ModelVariant = "high_reviews"
)

// SelectModel 按评论数选择模型：小于 60 使用低评论模型，恰好 60 及以上使用高评论模型
func SelectModel(reviewCount int) ModelVariant {
	if reviewCount < ReviewThreshold {
		return ModelLowReviews
	}
	return ModelHighReviews
}

// EncodedFeatures 编码后的定长特征向量，生成后不可修改
type EncodedFeatures struct {
	values []float64
	names  []string
}

// NewEncodedFeatures 复制传入切片构造特征向量
func NewEncodedFeatures(values []float64, names []string) EncodedFeatures {
	v := make([]float64, len(values))
	copy(v, values)
	n := make([]string, len(names))
	copy(n, names)
	return EncodedFeatures{values: v, names: n}
}

// Width 特征维度
func (f EncodedFeatures) Width() int { return len(f.values) }

// At 返回第 i 维的值
func (f EncodedFeatures) At(i int) float64 { return f.values[i] }

// Values 返回值的副本
func (f EncodedFeatures) Values() []float64 {
	out := make([]float64, len(f.values))
	copy(out, f.values)
	return out
}

// Names 返回特征名的副本；名称缺失时为 nil
func (f EncodedFeatures) Names() []string {
	if len(f.names) == 0 {
		return nil
	}
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Name 返回第 i 维的特征名，缺失时返回空串
func (f EncodedFeatures) Name(i int) string {
	if i < len(f.names) {
		return f.names[i]
	}
	return ""
}

// PredictionResult 一次预测的结果，作为会话中“最近一次预测”保存
type PredictionResult struct {
	Rating             float64         `json:"rating"`
	ModelUsed          ModelVariant    `json:"model_used"`
	Input              ProductInput    `json:"input"`
	RawDescription     string          `json:"raw_description"`
	CleanedDescription string          `json:"cleaned_description"`
	ReviewCount        int             `json:"review_count"`
	Features           EncodedFeatures `json:"-"`
	FeatureWidth       int             `json:"feature_width"`
	PredictedAt        time.Time       `json:"predicted_at"`
}

// Contribution 单个特征的归因值
type Contribution struct {
	Feature string  `json:"feature"`
	Index   int     `json:"index"`
	Value   float64 `json:"value"`
	Data    float64 `json:"data"`
}

// AttributionVector 单次预测相对模型基线的逐特征贡献
type AttributionVector struct {
	ModelUsed     ModelVariant `json:"model_used"`
	Baseline      float64      `json:"baseline"`
	Prediction    float64      `json:"prediction"`
	Contributions []float64    `json:"contributions"`
	FeatureNames  []string     `json:"feature_names,omitempty"`
}

// Sum 返回贡献值之和
func (a *AttributionVector) Sum() float64 {
	var s float64
	for _, v := range a.Contributions {
		s += v
	}
	return s
}

// Reconstructed 返回基线加贡献之和，应与预测值一致
func (a *AttributionVector) Reconstructed() float64 {
	return a.Baseline + a.Sum()
}

// Ranked 按贡献绝对值降序返回全部特征，绝对值相同按下标升序。
// values 为该次预测的特征值，长度不足时 Data 记为 0。
func (a *AttributionVector) Ranked(values []float64) []Contribution {
	out := make([]Contribution, len(a.Contributions))
	for i, v := range a.Contributions {
		c := Contribution{Index: i, Value: v}
		if i < len(a.FeatureNames) {
			c.Feature = a.FeatureNames[i]
		}
		if i < len(values) {
			c.Data = values[i]
		}
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Value) > math.Abs(out[j].Value)
	})
	return out
}

// RoundTo 按小数位四舍五入
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Explanation 按贡献绝对值排序后的归因结果
type Explanation struct {
	ModelUsed     ModelVariant   `json:"model_used"`
	Baseline      float64        `json:"baseline"`
	Prediction    float64        `json:"prediction"`
	Top           []Contribution `json:"top"`
	Contributions []Contribution `json:"contributions"`
}

// NewExplanation 排序归因向量，Top 取前 top 项，top 不大于 0 或超出长度时取全部
func NewExplanation(vec *AttributionVector, values []float64, top int) Explanation {
	ranked := vec.Ranked(values)
	n := len(ranked)
	if top > 0 && top < n {
		n = top
	}
	return Explanation{
		ModelUsed:     vec.ModelUsed,
		Baseline:      vec.Baseline,
		Prediction:    vec.Prediction,
		Top:           ranked[:n],
		Contributions: ranked,
	}
}
