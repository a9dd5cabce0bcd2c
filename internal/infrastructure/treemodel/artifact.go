package treemodel

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// 多棵树输出的聚合方式
const (
	AggregationSum  = "sum"  // 梯度提升：base_score + Σ tree
	AggregationMean = "mean" // 随机森林：base_score + mean(tree)
)

// Node 决策树节点，Left == -1 表示叶子
// 内部节点按 x[Feature] <= Threshold 走左子树，否则走右子树
type Node struct {
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Value     float64 `json:"value"`
	Cover     float64 `json:"cover"`
}

// IsLeaf 是否为叶子节点
func (n Node) IsLeaf() bool {
	return n.Left < 0
}

// Tree 单棵树，节点 0 为根
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Artifact 预训练树集成模型工件
type Artifact struct {
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	NFeatures   int     `json:"n_features"`
	BaseScore   float64 `json:"base_score"`
	Aggregation string  `json:"aggregation"`
	Trees       []Tree  `json:"trees"`
}

// coverTolerance 子节点 cover 之和与父节点 cover 的相对容差
const coverTolerance = 1e-6

// LoadArtifact 从 JSON 文件读取并校验模型工件
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &a, nil
}

// Validate 校验工件结构
// 子节点下标必须大于父节点（保证无环），每个节点恰有一个父节点，cover 为正且与子节点之和一致
func (a *Artifact) Validate() error {
	if a.NFeatures <= 0 {
		return fmt.Errorf("n_features must be positive, got %d", a.NFeatures)
	}
	switch a.Aggregation {
	case AggregationSum, AggregationMean:
	default:
		return fmt.Errorf("unsupported aggregation %q", a.Aggregation)
	}
	if !isFinite(a.BaseScore) {
		return fmt.Errorf("invalid base_score %v", a.BaseScore)
	}
	if len(a.Trees) == 0 {
		return fmt.Errorf("model has no trees")
	}

	for ti := range a.Trees {
		if err := a.Trees[ti].validate(a.NFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", ti, err)
		}
	}
	return nil
}

func (t *Tree) validate(nFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}

	parents := make([]int, len(t.Nodes))
	for i, n := range t.Nodes {
		if !isFinite(n.Cover) || n.Cover <= 0 {
			return fmt.Errorf("node %d: cover must be positive, got %v", i, n.Cover)
		}

		if n.IsLeaf() {
			if n.Right >= 0 {
				return fmt.Errorf("node %d: leaf with right child", i)
			}
			if !isFinite(n.Value) {
				return fmt.Errorf("node %d: invalid leaf value %v", i, n.Value)
			}
			continue
		}

		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) || n.Left == n.Right {
			return fmt.Errorf("node %d: invalid children %d/%d", i, n.Left, n.Right)
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range [0,%d)", i, n.Feature, nFeatures)
		}
		if math.IsNaN(n.Threshold) {
			return fmt.Errorf("node %d: NaN threshold", i)
		}

		parents[n.Left]++
		parents[n.Right]++

		childCover := t.Nodes[n.Left].Cover + t.Nodes[n.Right].Cover
		if math.Abs(childCover-n.Cover) > coverTolerance*n.Cover {
			return fmt.Errorf("node %d: cover %v does not match children sum %v", i, n.Cover, childCover)
		}
	}

	for i := 1; i < len(parents); i++ {
		if parents[i] != 1 {
			return fmt.Errorf("node %d: expected exactly one parent, got %d", i, parents[i])
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
