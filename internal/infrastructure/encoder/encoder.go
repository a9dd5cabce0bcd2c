package encoder

import (
	"fmt"
	"math"
	"strings"

	"rating-predictor/internal/domain/models"
)

// 特征名前缀，与离线训练时的列变换器命名保持一致
const (
	categoryPrefix = "cat__Tipo_"
	textPrefix     = "text__"
	priceFeature   = "num__Price"
)

// FeatureEncoder 基于工件的特征编码器，构造后只读，可并发使用
type FeatureEncoder struct {
	artifact   Artifact
	categories map[string]int
	vocabulary map[string]int
	names      []string
	textOffset int
	priceIndex int
}

// New 根据工件创建编码器
func New(a *Artifact) (*FeatureEncoder, error) {
	if a == nil {
		return nil, fmt.Errorf("nil encoder artifact")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	e := &FeatureEncoder{
		artifact:   *a,
		categories: make(map[string]int, len(a.Categories)),
		vocabulary: make(map[string]int, len(a.Vocabulary)),
		textOffset: len(a.Categories),
		priceIndex: len(a.Categories) + len(a.Vocabulary),
	}

	e.names = make([]string, 0, e.priceIndex+1)
	for i, c := range a.Categories {
		e.categories[c] = i
		e.names = append(e.names, categoryPrefix+c)
	}
	for i, term := range a.Vocabulary {
		e.vocabulary[term] = i
		e.names = append(e.names, textPrefix+term)
	}
	e.names = append(e.names, priceFeature)

	return e, nil
}

// Load 从文件加载编码器
func Load(path string) (*FeatureEncoder, error) {
	a, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	return New(a)
}

// Width 输出向量维度
func (e *FeatureEncoder) Width() int {
	return e.priceIndex + 1
}

// FeatureNames 每一维的特征名
func (e *FeatureEncoder) FeatureNames() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Version 工件版本
func (e *FeatureEncoder) Version() string {
	return e.artifact.Version
}

// Transform 编码单条记录
// 未见过的类别、负数或非有限价格返回 *models.EncodingError；不在词表中的词被忽略
func (e *FeatureEncoder) Transform(record models.EncoderRecord) (models.EncodedFeatures, error) {
	catIdx, ok := e.categories[record.Tipo]
	if !ok {
		return models.EncodedFeatures{}, &models.EncodingError{
			Field:   "Tipo",
			Message: fmt.Sprintf("category %q not seen during fitting", record.Tipo),
			Err:     models.ErrUnknownCategory,
		}
	}

	if math.IsNaN(record.Price) || math.IsInf(record.Price, 0) || record.Price < 0 {
		return models.EncodedFeatures{}, &models.EncodingError{
			Field:   "Price",
			Message: fmt.Sprintf("price %v must be a finite non-negative number", record.Price),
			Err:     models.ErrInvalidPrice,
		}
	}

	x := make([]float64, e.Width())
	x[catIdx] = 1

	e.encodeText(record.Description, x[e.textOffset:e.priceIndex])

	x[e.priceIndex] = (record.Price - e.artifact.Price.Mean) / e.artifact.Price.Scale

	return models.NewEncodedFeatures(x, e.names), nil
}

// encodeText 按空白切词计算 tf-idf 并写入 block
func (e *FeatureEncoder) encodeText(description string, block []float64) {
	for _, token := range strings.Fields(description) {
		if i, ok := e.vocabulary[token]; ok {
			block[i]++
		}
	}

	var sumSquares float64
	for i, tf := range block {
		if tf == 0 {
			continue
		}
		block[i] = tf * e.artifact.IDF[i]
		sumSquares += block[i] * block[i]
	}

	if e.artifact.Norm != NormL2 || sumSquares == 0 {
		return
	}
	norm := math.Sqrt(sumSquares)
	for i := range block {
		block[i] /= norm
	}
}
