package domain

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// PriceEstimate 蒙特卡洛价格估计及其标准误
type PriceEstimate struct {
	Price    float64
	StdError float64
}

// LongstaffSchwartz 在已生成的路径集合上做后向归纳，估计美式期权价格。
//
// 从到期步开始逐步向前：每一步只对价内路径回归持仓价值，
// 立即行权价值不低于持仓价值时行权（平局行权），并覆盖该路径
// 此后的现金流记录。某一步没有价内路径时直接跳过回归。
// 回归失败则中止并返回包装了失败步的错误。
func LongstaffSchwartz(
	ctx context.Context,
	ensemble *PathEnsemble,
	optionType OptionType,
	strike float64,
	curve *RateCurve,
	estimator ContinuationEstimator,
) (PriceEstimate, error) {
	if ensemble == nil || len(ensemble.Paths) == 0 {
		return PriceEstimate{}, fmt.Errorf("%w: empty path ensemble", ErrInvalidInput)
	}
	if !optionType.Valid() {
		return PriceEstimate{}, fmt.Errorf("%w: unknown option type %q", ErrInvalidInput, optionType)
	}
	if strike <= 0 {
		return PriceEstimate{}, fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidInput, strike)
	}
	if curve == nil || estimator == nil {
		return PriceEstimate{}, fmt.Errorf("%w: curve and estimator are required", ErrInvalidInput)
	}

	numPaths := len(ensemble.Paths)
	numSteps := ensemble.NumSteps

	// 折现因子只依赖时间网格，积分提前算一次
	integrals := make([]float64, numSteps+1)
	for j := 0; j <= numSteps; j++ {
		integrals[j] = curve.Integral(float64(j) * ensemble.Dt)
	}
	discount := func(from, to int) float64 {
		return math.Exp(integrals[from] - integrals[to])
	}

	// 台账初始化为到期日现金流
	ledger := NewCashFlowLedger(numPaths, numSteps)
	for i, path := range ensemble.Paths {
		if iv := Payoff(optionType, path[numSteps].Price, strike); iv > 0 {
			ledger.Record(i, numSteps, iv)
		}
	}

	itmPaths := make([]int, 0, numPaths)
	x := make([]float64, 0, numPaths)
	y := make([]float64, 0, numPaths)

	for t := numSteps - 1; t >= 1; t-- {
		if ctx.Err() != nil {
			return PriceEstimate{}, ctx.Err()
		}

		itmPaths = itmPaths[:0]
		x = x[:0]
		y = y[:0]
		for i, path := range ensemble.Paths {
			if Payoff(optionType, path[t].Price, strike) > 0 {
				step, amount := ledger.Realized(i)
				itmPaths = append(itmPaths, i)
				x = append(x, path[t].Price)
				y = append(y, amount*discount(t, step))
			}
		}
		if len(itmPaths) == 0 {
			continue
		}

		predict, err := estimator.Fit(x, y)
		if err != nil {
			return PriceEstimate{}, fmt.Errorf("backward induction failed at step %d: %w", t, err)
		}

		for k, i := range itmPaths {
			iv := Payoff(optionType, ensemble.Paths[i][t].Price, strike)
			if cv := predict(x[k]); iv >= cv {
				ledger.Record(i, t, iv)
			}
		}
	}

	pvs := make([]float64, numPaths)
	for i := range pvs {
		step, amount := ledger.Realized(i)
		pvs[i] = amount * discount(0, step)
	}

	price := stat.Mean(pvs, nil)
	stderr := 0.0
	if numPaths > 1 {
		stderr = stat.StdDev(pvs, nil) / math.Sqrt(float64(numPaths))
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return PriceEstimate{}, fmt.Errorf("%w: price estimate is not finite", ErrComputation)
	}
	return PriceEstimate{Price: price, StdError: stderr}, nil
}
