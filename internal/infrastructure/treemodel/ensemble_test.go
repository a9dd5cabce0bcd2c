package treemodel

import (
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rating-predictor/internal/domain/models"
)

// stump 在 feature 上以 threshold 切分的两叶树
func stump(feature int, threshold, left, right, coverLeft, coverRight float64) Tree {
	return Tree{Nodes: []Node{
		{Left: 1, Right: 2, Feature: feature, Threshold: threshold, Cover: coverLeft + coverRight},
		{Left: -1, Right: -1, Feature: -1, Value: left, Cover: coverLeft},
		{Left: -1, Right: -1, Feature: -1, Value: right, Cover: coverRight},
	}}
}

func TestPredictSum(t *testing.T) {
	m, err := New(&Artifact{
		Name:        "boost",
		NFeatures:   3,
		BaseScore:   4.0,
		Aggregation: AggregationSum,
		Trees: []Tree{
			stump(0, 0.5, -0.2, 0.3, 60, 40),
			stump(2, 1.0, 0.1, -0.1, 50, 50),
		},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		x    []float64
		want float64
	}{
		{name: "left left", x: []float64{0, 0, 0}, want: 3.9},
		{name: "threshold goes left", x: []float64{0.5, 0, 1.0}, want: 3.9},
		{name: "right right", x: []float64{1, 0, 2}, want: 4.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Predict(tt.x)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	// 0.6*-0.2 + 0.4*0.3 + 0.5*0.1 + 0.5*-0.1 = 0
	assert.InDelta(t, 4.0, m.ExpectedValue(), 1e-12)
}

func TestPredictMean(t *testing.T) {
	m, err := New(&Artifact{
		NFeatures:   1,
		Aggregation: AggregationMean,
		Trees: []Tree{
			stump(0, 0, 4.0, 5.0, 1, 1),
			stump(0, 1, 3.0, 4.0, 3, 1),
		},
	})
	require.NoError(t, err)

	got, err := m.Predict([]float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got, 1e-12) // (5 + 3) / 2
	assert.InDelta(t, (4.5+3.25)/2, m.ExpectedValue(), 1e-12)
}

func TestWidthMismatch(t *testing.T) {
	m, err := New(&Artifact{NFeatures: 2, Aggregation: AggregationSum, Trees: []Tree{stump(0, 0, 1, 2, 1, 1)}})
	require.NoError(t, err)

	_, err = m.Predict([]float64{1})
	assert.True(t, errors.Is(err, models.ErrWidthMismatch))

	_, err = m.Attribute([]float64{1, 2, 3})
	assert.True(t, errors.Is(err, models.ErrWidthMismatch))
}

func TestAttributeSingleStump(t *testing.T) {
	m, err := New(&Artifact{NFeatures: 2, BaseScore: 1, Aggregation: AggregationSum, Trees: []Tree{stump(1, 0, -1, 3, 3, 1)}})
	require.NoError(t, err)

	// E = 0.75*-1 + 0.25*3 = 0，右叶 3，全部归因给特征 1
	phi, err := m.Attribute([]float64{7, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, phi[0], 1e-12)
	assert.InDelta(t, 3.0, phi[1], 1e-12)
}

// randomTree 生成 cover 自洽的随机树
func randomTree(rng *rand.Rand, nFeatures, maxDepth int, cover float64) Tree {
	var nodes []Node
	var build func(cover float64, depth int) int
	build = func(cover float64, depth int) int {
		idx := len(nodes)
		nodes = append(nodes, Node{})
		if depth >= maxDepth || cover < 4 || rng.Float64() < 0.15 {
			nodes[idx] = Node{Left: -1, Right: -1, Feature: -1, Value: rng.Float64() - 0.5, Cover: cover}
			return idx
		}
		leftCover := math.Floor(cover * (0.2 + 0.6*rng.Float64()))
		if leftCover < 1 {
			leftCover = 1
		}
		n := Node{Feature: rng.Intn(nFeatures), Threshold: rng.Float64()*2 - 1, Cover: cover}
		n.Left = build(leftCover, depth+1)
		n.Right = build(cover-leftCover, depth+1)
		nodes[idx] = n
		return idx
	}
	build(cover, 0)
	return Tree{Nodes: nodes}
}

// conditionalExpectation 路径依赖的条件期望：set 中的特征按 x 走，其余按 cover 加权
func conditionalExpectation(t Tree, x []float64, set map[int]bool, i int) float64 {
	n := t.Nodes[i]
	if n.IsLeaf() {
		return n.Value
	}
	if set[n.Feature] {
		if x[n.Feature] <= n.Threshold {
			return conditionalExpectation(t, x, set, n.Left)
		}
		return conditionalExpectation(t, x, set, n.Right)
	}
	l, r := t.Nodes[n.Left], t.Nodes[n.Right]
	return (l.Cover*conditionalExpectation(t, x, set, n.Left) + r.Cover*conditionalExpectation(t, x, set, n.Right)) / n.Cover
}

// bruteForceShapley 枚举所有联盟计算 Shapley 值
func bruteForceShapley(t Tree, x []float64) []float64 {
	n := len(x)
	fact := func(k int) float64 {
		f := 1.0
		for i := 2; i <= k; i++ {
			f *= float64(i)
		}
		return f
	}

	phi := make([]float64, n)
	for i := 0; i < n; i++ {
		for mask := 0; mask < 1<<n; mask++ {
			if mask&(1<<i) != 0 {
				continue
			}
			set := map[int]bool{}
			for j := 0; j < n; j++ {
				if mask&(1<<j) != 0 {
					set[j] = true
				}
			}
			size := len(set)
			w := fact(size) * fact(n-size-1) / fact(n)
			without := conditionalExpectation(t, x, set, 0)
			set[i] = true
			with := conditionalExpectation(t, x, set, 0)
			phi[i] += w * (with - without)
		}
	}
	return phi
}

func TestAttributeMatchesBruteForceShapley(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const nFeatures = 4

	for trial := 0; trial < 100; trial++ {
		tree := randomTree(rng, nFeatures, 5, 200)
		m, err := New(&Artifact{NFeatures: nFeatures, Aggregation: AggregationSum, Trees: []Tree{tree}})
		require.NoError(t, err)

		x := make([]float64, nFeatures)
		for i := range x {
			x[i] = rng.Float64()*2 - 1
		}

		got, err := m.Attribute(x)
		require.NoError(t, err)
		want := bruteForceShapley(tree, x)
		for i := range want {
			require.InDelta(t, want[i], got[i], 1e-9, "trial %d feature %d", trial, i)
		}
	}
}

func TestAttributionSumLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const nFeatures = 12

	for _, aggregation := range []string{AggregationSum, AggregationMean} {
		t.Run(aggregation, func(t *testing.T) {
			trees := make([]Tree, 20)
			for i := range trees {
				trees[i] = randomTree(rng, nFeatures, 6, 500)
			}
			m, err := New(&Artifact{NFeatures: nFeatures, BaseScore: 3.7, Aggregation: aggregation, Trees: trees})
			require.NoError(t, err)

			for trial := 0; trial < 50; trial++ {
				x := make([]float64, nFeatures)
				for i := range x {
					x[i] = rng.Float64()*2 - 1
				}
				pred, err := m.Predict(x)
				require.NoError(t, err)
				phi, err := m.Attribute(x)
				require.NoError(t, err)

				var sum float64
				for _, v := range phi {
					sum += v
				}
				require.InDelta(t, pred, m.ExpectedValue()+sum, 1e-9)
			}
		})
	}
}

func TestAttributeIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m, err := New(&Artifact{NFeatures: 6, Aggregation: AggregationSum, Trees: []Tree{
		randomTree(rng, 6, 5, 300), randomTree(rng, 6, 5, 300),
	}})
	require.NoError(t, err)

	x := []float64{0.1, -0.4, 0.9, 0, 0.3, -1}
	a, err := m.Attribute(x)
	require.NoError(t, err)
	b, err := m.Attribute(x)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestArtifactValidate(t *testing.T) {
	valid := func() *Artifact {
		return &Artifact{NFeatures: 2, Aggregation: AggregationSum, Trees: []Tree{stump(0, 0, 1, 2, 5, 5)}}
	}

	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{name: "no features", mutate: func(a *Artifact) { a.NFeatures = 0 }},
		{name: "unknown aggregation", mutate: func(a *Artifact) { a.Aggregation = "max" }},
		{name: "no trees", mutate: func(a *Artifact) { a.Trees = nil }},
		{name: "empty tree", mutate: func(a *Artifact) { a.Trees[0].Nodes = nil }},
		{name: "feature out of range", mutate: func(a *Artifact) { a.Trees[0].Nodes[0].Feature = 2 }},
		{name: "child out of range", mutate: func(a *Artifact) { a.Trees[0].Nodes[0].Right = 3 }},
		{name: "self loop", mutate: func(a *Artifact) { a.Trees[0].Nodes[0].Left = 0 }},
		{name: "same child twice", mutate: func(a *Artifact) { a.Trees[0].Nodes[0].Right = 1 }},
		{name: "zero cover", mutate: func(a *Artifact) { a.Trees[0].Nodes[1].Cover = 0 }},
		{name: "inconsistent cover", mutate: func(a *Artifact) { a.Trees[0].Nodes[0].Cover = 20 }},
		{name: "NaN threshold", mutate: func(a *Artifact) { a.Trees[0].Nodes[0].Threshold = math.NaN() }},
		{name: "NaN leaf", mutate: func(a *Artifact) { a.Trees[0].Nodes[2].Value = math.NaN() }},
		{name: "leaf with right child", mutate: func(a *Artifact) { a.Trees[0].Nodes[2].Right = 1 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(a)
			assert.Error(t, a.Validate())
		})
	}
}

func TestLoadArtifactFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"name": "tiny",
		"version": "t1",
		"n_features": 1,
		"base_score": 4.1,
		"aggregation": "sum",
		"trees": [{"nodes": [
			{"left": 1, "right": 2, "feature": 0, "threshold": 0.5, "value": 0, "cover": 10},
			{"left": -1, "right": -1, "feature": -1, "threshold": 0, "value": -0.1, "cover": 4},
			{"left": -1, "right": -1, "feature": -1, "threshold": 0, "value": 0.2, "cover": 6}
		]}]
	}`), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", m.Name())
	assert.Equal(t, 1, m.NumTrees())

	got, err := m.Predict([]float64{1})
	require.NoError(t, err)
	assert.InDelta(t, 4.3, got, 1e-12)

	require.NoError(t, os.WriteFile(path, []byte(`{"n_features": 1`), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
