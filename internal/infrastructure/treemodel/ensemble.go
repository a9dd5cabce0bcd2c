package treemodel

import (
	"fmt"

	"rating-predictor/internal/domain/models"
)

// Ensemble 加载后的树集成回归模型，只读，可并发使用
type Ensemble struct {
	name      string
	version   string
	nFeatures int
	base      float64
	scale     float64
	trees     []Tree
	expected  float64
}

// New 根据工件创建模型
func New(a *Artifact) (*Ensemble, error) {
	if a == nil {
		return nil, fmt.Errorf("nil model artifact")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	e := &Ensemble{
		name:      a.Name,
		version:   a.Version,
		nFeatures: a.NFeatures,
		base:      a.BaseScore,
		scale:     1,
		trees:     make([]Tree, len(a.Trees)),
	}
	if a.Aggregation == AggregationMean {
		e.scale = 1 / float64(len(a.Trees))
	}

	var expected float64
	for i, t := range a.Trees {
		nodes := make([]Node, len(t.Nodes))
		copy(nodes, t.Nodes)
		e.trees[i] = Tree{Nodes: nodes}
		expected += e.trees[i].expectedValue(0)
	}
	e.expected = e.base + e.scale*expected

	return e, nil
}

// Load 从文件加载模型
func Load(path string) (*Ensemble, error) {
	a, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	return New(a)
}

// Name 模型名称
func (e *Ensemble) Name() string { return e.name }

// Version 工件版本
func (e *Ensemble) Version() string { return e.version }

// NFeatures 期望的特征维度
func (e *Ensemble) NFeatures() int { return e.nFeatures }

// NumTrees 树的数量
func (e *Ensemble) NumTrees() int { return len(e.trees) }

// ExpectedValue 以 cover 加权的模型期望输出，作为归因基线
func (e *Ensemble) ExpectedValue() float64 { return e.expected }

// Predict 单条推理
func (e *Ensemble) Predict(x []float64) (float64, error) {
	if err := e.checkWidth(x); err != nil {
		return 0, err
	}

	var sum float64
	for i := range e.trees {
		sum += e.trees[i].predict(x)
	}
	return e.base + e.scale*sum, nil
}

// Attribute 计算路径依赖的精确 TreeSHAP 值
// 满足 Σ contributions + ExpectedValue() == Predict(x)（浮点误差内）
func (e *Ensemble) Attribute(x []float64) ([]float64, error) {
	if err := e.checkWidth(x); err != nil {
		return nil, err
	}

	phi := make([]float64, e.nFeatures)
	for i := range e.trees {
		e.trees[i].shap(x, phi, e.scale)
	}
	return phi, nil
}

func (e *Ensemble) checkWidth(x []float64) error {
	if len(x) != e.nFeatures {
		return fmt.Errorf("model %s expects %d features, got %d: %w", e.name, e.nFeatures, len(x), models.ErrWidthMismatch)
	}
	return nil
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (t *Tree) expectedValue(i int) float64 {
	n := t.Nodes[i]
	if n.IsLeaf() {
		return n.Value
	}
	left, right := t.Nodes[n.Left], t.Nodes[n.Right]
	return (left.Cover*t.expectedValue(n.Left) + right.Cover*t.expectedValue(n.Right)) / n.Cover
}
