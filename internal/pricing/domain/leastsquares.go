package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PolynomialLeastSquares 一元多项式最小二乘估计器。
// 以 Vandermonde 矩阵构造设计矩阵，通过 QR 分解求最小二乘解。
type PolynomialLeastSquares struct {
	Degree int
}

// Fit 拟合 y ≈ Σ c_k·x^k，返回 Horner 形式的预测函数。
// 样本数不足 Degree+1 或矩阵退化时返回 ErrRegression。
func (p *PolynomialLeastSquares) Fit(x, y []float64) (func(float64) float64, error) {
	if p.Degree < 0 {
		return nil, fmt.Errorf("%w: polynomial degree must be non-negative, got %d", ErrInvalidInput, p.Degree)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: sample size mismatch %d/%d", ErrInvalidInput, len(x), len(y))
	}
	cols := p.Degree + 1
	if len(x) < cols {
		return nil, fmt.Errorf("%w: need at least %d samples for degree %d, got %d",
			ErrRegression, cols, p.Degree, len(x))
	}

	a := mat.NewDense(len(x), cols, nil)
	for i, xi := range x {
		v := 1.0
		for k := 0; k < cols; k++ {
			a.Set(i, k, v)
			v *= xi
		}
	}
	b := mat.NewVecDense(len(y), y)

	var coef mat.VecDense
	if err := coef.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("%w: least squares solve failed: %v", ErrRegression, err)
	}

	c := make([]float64, cols)
	for k := range c {
		c[k] = coef.AtVec(k)
		if math.IsNaN(c[k]) || math.IsInf(c[k], 0) {
			return nil, fmt.Errorf("%w: degenerate coefficients", ErrRegression)
		}
	}

	return func(v float64) float64 {
		out := 0.0
		for k := cols - 1; k >= 0; k-- {
			out = out*v + c[k]
		}
		return out
	}, nil
}
