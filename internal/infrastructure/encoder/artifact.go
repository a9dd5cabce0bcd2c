package encoder

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// 文本块的归一化方式
const (
	NormNone = ""
	NormL2   = "l2"
)

// PriceScaler 价格列的标准化参数
type PriceScaler struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// Artifact 离线拟合得到的编码器工件
// 输出布局：类别 one-hot | 文本 tf-idf | 标准化价格
type Artifact struct {
	Version    string      `json:"version"`
	Categories []string    `json:"categories"`
	Vocabulary []string    `json:"vocabulary"`
	IDF        []float64   `json:"idf"`
	Norm       string      `json:"norm"`
	Price      PriceScaler `json:"price"`
}

// LoadArtifact 从 JSON 文件读取并校验编码器工件
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read encoder artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode encoder artifact %s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder artifact %s: %w", path, err)
	}
	return &a, nil
}

// Validate 校验工件内部一致性
func (a *Artifact) Validate() error {
	if len(a.Categories) == 0 {
		return fmt.Errorf("no categories")
	}
	seen := make(map[string]struct{}, len(a.Categories)+len(a.Vocabulary))
	for _, c := range a.Categories {
		if c == "" {
			return fmt.Errorf("empty category label")
		}
		if _, dup := seen["c:"+c]; dup {
			return fmt.Errorf("duplicate category %q", c)
		}
		seen["c:"+c] = struct{}{}
	}

	if len(a.IDF) != len(a.Vocabulary) {
		return fmt.Errorf("idf length %d does not match vocabulary length %d", len(a.IDF), len(a.Vocabulary))
	}
	for i, term := range a.Vocabulary {
		if term == "" {
			return fmt.Errorf("empty vocabulary term at %d", i)
		}
		if _, dup := seen["t:"+term]; dup {
			return fmt.Errorf("duplicate vocabulary term %q", term)
		}
		seen["t:"+term] = struct{}{}
		if w := a.IDF[i]; math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return fmt.Errorf("invalid idf %v for term %q", w, term)
		}
	}

	switch a.Norm {
	case NormNone, NormL2:
	default:
		return fmt.Errorf("unsupported norm %q", a.Norm)
	}

	if math.IsNaN(a.Price.Mean) || math.IsInf(a.Price.Mean, 0) {
		return fmt.Errorf("invalid price mean %v", a.Price.Mean)
	}
	if math.IsNaN(a.Price.Scale) || math.IsInf(a.Price.Scale, 0) || a.Price.Scale <= 0 {
		return fmt.Errorf("invalid price scale %v", a.Price.Scale)
	}
	return nil
}
