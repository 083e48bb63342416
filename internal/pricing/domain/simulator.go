package domain

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
)

// PathPoint 单个时间步上的资产价格与瞬时方差
type PathPoint struct {
	Price    float64
	Variance float64
}

// PathEnsemble 一次模拟产生的全部路径。
// Paths[i] 长度为 NumSteps+1，下标 0 为初始状态；生成后不再修改。
type PathEnsemble struct {
	Paths    [][]PathPoint
	Dt       float64
	NumSteps int
}

// SimulateParams Heston 路径模拟参数
type SimulateParams struct {
	Spot            float64
	InitialVariance float64
	TimeToExpiry    float64
	Kappa           float64 // 方差均值回复速度
	Theta           float64 // 长期方差水平
	Sigma           float64 // 波动率的波动率
	Rho             float64 // 价格与方差布朗运动的相关系数
	NumPaths        int
	NumSteps        int
	Curve           *RateCurve
	Seed            uint64
}

func (p SimulateParams) validate() error {
	switch {
	case p.NumPaths < 1:
		return fmt.Errorf("%w: num_paths must be >= 1, got %d", ErrInvalidInput, p.NumPaths)
	case p.NumSteps < 1:
		return fmt.Errorf("%w: num_steps must be >= 1, got %d", ErrInvalidInput, p.NumSteps)
	case p.Sigma < 0:
		return fmt.Errorf("%w: sigma must be non-negative, got %v", ErrInvalidInput, p.Sigma)
	case p.InitialVariance < 0:
		return fmt.Errorf("%w: initial_variance must be non-negative, got %v", ErrInvalidInput, p.InitialVariance)
	case p.Kappa <= 0:
		return fmt.Errorf("%w: kappa must be positive, got %v", ErrInvalidInput, p.Kappa)
	case p.Rho < -1 || p.Rho > 1:
		return fmt.Errorf("%w: rho must be in [-1, 1], got %v", ErrInvalidInput, p.Rho)
	case p.Spot <= 0:
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidInput, p.Spot)
	case p.TimeToExpiry <= 0:
		return fmt.Errorf("%w: time_to_expiry must be positive, got %v", ErrInvalidInput, p.TimeToExpiry)
	case p.Curve == nil:
		return fmt.Errorf("%w: rate curve is required", ErrInvalidInput)
	}
	return nil
}

// SimulatePaths 在 Heston 动态下生成相互独立的价格/方差联合路径。
//
// 离散化采用全截断 Euler–Maruyama：方差在每步更新后取 max(·, 0)，
// 价格更新使用截断前一时刻方差 max(V_t, 0)。两布朗运动增量通过
// 2×2 相关矩阵的 Cholesky 分解构造：dW_S = z1, dW_V = rho·z1 + sqrt(1-rho²)·z2。
//
// 每条路径使用独立的 PCG 随机流 (seed, pathIndex)，结果与并发调度无关。
func SimulatePaths(ctx context.Context, p SimulateParams) (*PathEnsemble, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	dt := p.TimeToExpiry / float64(p.NumSteps)
	sqrtDt := math.Sqrt(dt)
	corr := math.Sqrt(1 - p.Rho*p.Rho)

	// 每步起点时刻的利率只取决于时间网格，提前查询一次
	stepRates := make([]float64, p.NumSteps)
	for j := 0; j < p.NumSteps; j++ {
		r, err := p.Curve.Rate(float64(j) * dt)
		if err != nil {
			return nil, err
		}
		stepRates[j] = r
	}

	paths := make([][]PathPoint, p.NumPaths)

	workers := runtime.GOMAXPROCS(0)
	if workers > p.NumPaths {
		workers = p.NumPaths
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < p.NumPaths; i += workers {
				if ctx.Err() != nil {
					errs[w] = ctx.Err()
					return
				}

				rng := rand.New(rand.NewPCG(p.Seed, uint64(i)))
				path := make([]PathPoint, p.NumSteps+1)
				spot := p.Spot
				variance := p.InitialVariance
				path[0] = PathPoint{Price: spot, Variance: variance}

				for j := 0; j < p.NumSteps; j++ {
					z1 := rng.NormFloat64()
					z2 := rng.NormFloat64()
					dwS := z1
					dwV := p.Rho*z1 + corr*z2

					vPos := math.Max(variance, 0)
					variance = math.Max(
						variance+p.Kappa*(p.Theta-variance)*dt+p.Sigma*math.Sqrt(vPos)*sqrtDt*dwV,
						0,
					)
					spot = spot * math.Exp((stepRates[j]-0.5*vPos)*dt+math.Sqrt(vPos)*sqrtDt*dwS)

					path[j+1] = PathPoint{Price: spot, Variance: variance}
				}

				if math.IsNaN(spot) || math.IsInf(spot, 0) {
					errs[w] = fmt.Errorf("%w: simulation diverged on path %d", ErrComputation, i)
					return
				}
				paths[i] = path
			}
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return &PathEnsemble{Paths: paths, Dt: dt, NumSteps: p.NumSteps}, nil
}
