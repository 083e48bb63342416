package domain

import "fmt"

// RegressionMethod 持仓价值回归方法
type RegressionMethod string

const (
	MethodPolynomial   RegressionMethod = "POLYNOMIAL"    // 多项式最小二乘
	MethodRandomForest RegressionMethod = "RANDOM_FOREST" // 随机森林
)

// Valid 判断回归方法是否合法
func (m RegressionMethod) Valid() bool {
	return m == MethodPolynomial || m == MethodRandomForest
}

// ContinuationEstimator 持仓价值估计器。
// Fit 以价内路径的即期价格 x 与折现后续现金流 y 为样本拟合，
// 返回的预测函数在同一批 x 上评估持仓价值。
type ContinuationEstimator interface {
	Fit(x, y []float64) (func(float64) float64, error)
}

// EstimatorConfig 估计器构造参数
type EstimatorConfig struct {
	PolynomialDegree int    // 多项式阶数
	ForestTrees      int    // 森林树数
	ForestMaxDepth   int    // 单棵树最大深度
	ForestMinLeaf    int    // 叶节点最少样本数
	Seed             uint64 // 随机森林自举采样种子
}

// NewEstimator 按回归方法构造估计器
func NewEstimator(method RegressionMethod, cfg EstimatorConfig) (ContinuationEstimator, error) {
	switch method {
	case MethodPolynomial:
		return &PolynomialLeastSquares{Degree: cfg.PolynomialDegree}, nil
	case MethodRandomForest:
		return &RandomForest{
			NumTrees:       cfg.ForestTrees,
			MaxDepth:       cfg.ForestMaxDepth,
			MinSamplesLeaf: cfg.ForestMinLeaf,
			Seed:           cfg.Seed,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown regression method %q", ErrInvalidInput, method)
	}
}
