package domain

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// HestonModel 随机波动率模型下的蒙特卡洛定价。
// 欧式直接对到期收益折现取均值；美式走 Longstaff–Schwartz 后向归纳。
type HestonModel struct {
	OptionType      OptionType
	Style           ExerciseStyle
	Spot            float64
	Strike          float64
	TimeToExpiry    float64
	InitialVariance float64
	Kappa           float64
	Theta           float64
	Sigma           float64
	Rho             float64
	Curve           *RateCurve
	Method          RegressionMethod
	Regression      EstimatorConfig
	NumPaths        int
	NumSteps        int
	Seed            uint64
}

// Price 返回期权价格
func (m *HestonModel) Price(ctx context.Context) (float64, error) {
	est, err := m.PriceDetail(ctx)
	if err != nil {
		return 0, err
	}
	return est.Price, nil
}

// PriceDetail 返回价格估计及蒙特卡洛标准误
func (m *HestonModel) PriceDetail(ctx context.Context) (PriceEstimate, error) {
	if !m.OptionType.Valid() {
		return PriceEstimate{}, fmt.Errorf("%w: unknown option type %q", ErrInvalidInput, m.OptionType)
	}
	if m.Strike <= 0 {
		return PriceEstimate{}, fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidInput, m.Strike)
	}

	ensemble, err := SimulatePaths(ctx, SimulateParams{
		Spot:            m.Spot,
		InitialVariance: m.InitialVariance,
		TimeToExpiry:    m.TimeToExpiry,
		Kappa:           m.Kappa,
		Theta:           m.Theta,
		Sigma:           m.Sigma,
		Rho:             m.Rho,
		NumPaths:        m.NumPaths,
		NumSteps:        m.NumSteps,
		Curve:           m.Curve,
		Seed:            m.Seed,
	})
	if err != nil {
		return PriceEstimate{}, err
	}

	if m.Style == StyleEuropean {
		return m.priceEuropean(ensemble)
	}

	estimator, err := NewEstimator(m.Method, m.Regression)
	if err != nil {
		return PriceEstimate{}, err
	}
	return LongstaffSchwartz(ctx, ensemble, m.OptionType, m.Strike, m.Curve, estimator)
}

// priceEuropean 到期收益折现取均值
func (m *HestonModel) priceEuropean(ensemble *PathEnsemble) (PriceEstimate, error) {
	df := m.Curve.DiscountFactor(0, m.TimeToExpiry)
	pvs := make([]float64, len(ensemble.Paths))
	for i, path := range ensemble.Paths {
		pvs[i] = Payoff(m.OptionType, path[ensemble.NumSteps].Price, m.Strike) * df
	}

	est := PriceEstimate{Price: stat.Mean(pvs, nil)}
	if len(pvs) > 1 {
		est.StdError = stat.StdDev(pvs, nil) / math.Sqrt(float64(len(pvs)))
	}
	return est, nil
}
