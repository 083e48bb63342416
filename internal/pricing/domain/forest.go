package domain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// RandomForest 单特征随机森林回归估计器。
// 每棵树在自举样本上贪心二分，预测取森林均值。
type RandomForest struct {
	NumTrees       int
	MaxDepth       int
	MinSamplesLeaf int
	Seed           uint64
}

const splitCandidates = 16 // 每次分裂尝试的随机阈值数

type forestNode struct {
	threshold float64
	left      *forestNode
	right     *forestNode
	value     float64 // 叶节点预测值
	leaf      bool
}

// Fit 拟合森林并返回预测函数。样本数少于 MinSamplesLeaf 时返回 ErrRegression。
func (f *RandomForest) Fit(x, y []float64) (func(float64) float64, error) {
	if f.NumTrees < 1 || f.MaxDepth < 1 || f.MinSamplesLeaf < 1 {
		return nil, fmt.Errorf("%w: forest parameters must be positive (trees=%d depth=%d min_leaf=%d)",
			ErrInvalidInput, f.NumTrees, f.MaxDepth, f.MinSamplesLeaf)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: sample size mismatch %d/%d", ErrInvalidInput, len(x), len(y))
	}
	if len(x) < f.MinSamplesLeaf {
		return nil, fmt.Errorf("%w: need at least %d samples, got %d", ErrRegression, f.MinSamplesLeaf, len(x))
	}

	trees := make([]*forestNode, f.NumTrees)
	var wg sync.WaitGroup
	for t := 0; t < f.NumTrees; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			// 每棵树独立随机流，结果与调度顺序无关
			rng := rand.New(rand.NewPCG(f.Seed, uint64(t)+1))
			bx := make([]float64, len(x))
			by := make([]float64, len(y))
			for i := range bx {
				j := rng.IntN(len(x))
				bx[i] = x[j]
				by[i] = y[j]
			}
			trees[t] = f.buildNode(rng, bx, by, 0)
		}(t)
	}
	wg.Wait()

	return func(v float64) float64 {
		sum := 0.0
		for _, root := range trees {
			sum += predictNode(root, v)
		}
		return sum / float64(len(trees))
	}, nil
}

func (f *RandomForest) buildNode(rng *rand.Rand, x, y []float64, depth int) *forestNode {
	if depth >= f.MaxDepth || len(x) < 2*f.MinSamplesLeaf {
		return &forestNode{leaf: true, value: meanOf(y)}
	}

	lo, hi := minMax(x)
	if hi <= lo {
		return &forestNode{leaf: true, value: meanOf(y)}
	}

	bestSSE := math.Inf(1)
	bestThreshold := math.NaN()
	for c := 0; c < splitCandidates; c++ {
		th := lo + rng.Float64()*(hi-lo)
		sse, ok := splitSSE(x, y, th, f.MinSamplesLeaf)
		if ok && sse < bestSSE {
			bestSSE = sse
			bestThreshold = th
		}
	}
	if math.IsNaN(bestThreshold) {
		return &forestNode{leaf: true, value: meanOf(y)}
	}

	var lx, ly, rx, ry []float64
	for i := range x {
		if x[i] <= bestThreshold {
			lx = append(lx, x[i])
			ly = append(ly, y[i])
		} else {
			rx = append(rx, x[i])
			ry = append(ry, y[i])
		}
	}

	return &forestNode{
		threshold: bestThreshold,
		left:      f.buildNode(rng, lx, ly, depth+1),
		right:     f.buildNode(rng, rx, ry, depth+1),
	}
}

// splitSSE 计算按阈值二分后的残差平方和；任一侧样本不足时分裂无效
func splitSSE(x, y []float64, threshold float64, minLeaf int) (float64, bool) {
	var lSum, rSum float64
	var lN, rN int
	for i := range x {
		if x[i] <= threshold {
			lSum += y[i]
			lN++
		} else {
			rSum += y[i]
			rN++
		}
	}
	if lN < minLeaf || rN < minLeaf {
		return 0, false
	}

	lMean := lSum / float64(lN)
	rMean := rSum / float64(rN)
	sse := 0.0
	for i := range x {
		if x[i] <= threshold {
			d := y[i] - lMean
			sse += d * d
		} else {
			d := y[i] - rMean
			sse += d * d
		}
	}
	return sse, true
}

func predictNode(n *forestNode, v float64) float64 {
	for !n.leaf {
		if v <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func meanOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func minMax(v []float64) (float64, float64) {
	if len(v) == 0 {
		return 0, 0
	}
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
