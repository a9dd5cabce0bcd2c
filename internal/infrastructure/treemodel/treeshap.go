package treemodel

// pathElement 从根到当前节点路径上的一个特征
// zero: 该特征不在联盟中时流经此路径的比例（按 cover）
// one:  该特征在联盟中时流经此路径的比例（0 或 1）
// weight: 该路径长度下排列组合权重
type pathElement struct {
	feature int
	zero    float64
	one     float64
	weight  float64
}

// shap 将单棵树的 TreeSHAP 值按 scale 累加进 phi
func (t *Tree) shap(x, phi []float64, scale float64) {
	t.recurse(x, phi, scale, 0, 0, nil, 1, 1, -1)
}

func (t *Tree) recurse(x, phi []float64, scale float64, node, depth int, parent []pathElement, parentZero, parentOne float64, parentFeature int) {
	path := make([]pathElement, depth+1)
	copy(path, parent[:depth])
	extendPath(path, depth, parentZero, parentOne, parentFeature)

	n := t.Nodes[node]
	if n.IsLeaf() {
		for i := 1; i <= depth; i++ {
			w := unwoundPathSum(path, depth, i)
			el := path[i]
			phi[el.feature] += scale * w * (el.one - el.zero) * n.Value
		}
		return
	}

	hot, cold := n.Left, n.Right
	if !(x[n.Feature] <= n.Threshold) {
		hot, cold = n.Right, n.Left
	}
	hotZero := t.Nodes[hot].Cover / n.Cover
	coldZero := t.Nodes[cold].Cover / n.Cover

	// 同一特征在路径上再次出现时，先撤回旧记录再合并比例
	inZero, inOne := 1.0, 1.0
	k := 1
	for ; k <= depth; k++ {
		if path[k].feature == n.Feature {
			break
		}
	}
	if k <= depth {
		inZero, inOne = path[k].zero, path[k].one
		unwindPath(path, depth, k)
		depth--
	}

	t.recurse(x, phi, scale, hot, depth+1, path, hotZero*inZero, inOne, n.Feature)
	t.recurse(x, phi, scale, cold, depth+1, path, coldZero*inZero, 0, n.Feature)
}

// extendPath 在 depth 位置追加一个特征并更新所有排列权重
func extendPath(path []pathElement, depth int, zero, one float64, feature int) {
	path[depth] = pathElement{feature: feature, zero: zero, one: one}
	if depth == 0 {
		path[depth].weight = 1
	}

	d := float64(depth + 1)
	for i := depth - 1; i >= 0; i-- {
		path[i+1].weight += one * path[i].weight * float64(i+1) / d
		path[i].weight = zero * path[i].weight * float64(depth-i) / d
	}
}

// unwindPath 撤销 extendPath，移除下标 index 处的特征
func unwindPath(path []pathElement, depth, index int) {
	one, zero := path[index].one, path[index].zero
	d := float64(depth + 1)

	next := path[depth].weight
	for i := depth - 1; i >= 0; i-- {
		if one != 0 {
			tmp := path[i].weight
			path[i].weight = next * d / (float64(i+1) * one)
			next = tmp - path[i].weight*zero*float64(depth-i)/d
		} else {
			path[i].weight = path[i].weight * d / (zero * float64(depth-i))
		}
	}

	for i := index; i < depth; i++ {
		path[i].feature = path[i+1].feature
		path[i].zero = path[i+1].zero
		path[i].one = path[i+1].one
	}
}

// unwoundPathSum 假设移除 index 处特征后路径权重之和，不修改 path
func unwoundPathSum(path []pathElement, depth, index int) float64 {
	one, zero := path[index].one, path[index].zero
	d := float64(depth + 1)

	var total float64
	next := path[depth].weight
	for i := depth - 1; i >= 0; i-- {
		if one != 0 {
			tmp := next * d / (float64(i+1) * one)
			total += tmp
			next = path[i].weight - tmp*zero*float64(depth-i)/d
		} else if zero != 0 {
			total += path[i].weight / zero / (float64(depth-i) / d)
		}
	}
	return total
}
