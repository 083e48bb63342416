package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

// constantEnsemble 所有路径价格恒为 price 的路径集合
func constantEnsemble(numPaths, numSteps int, price, horizon float64) *PathEnsemble {
	paths := make([][]PathPoint, numPaths)
	for i := range paths {
		path := make([]PathPoint, numSteps+1)
		for j := range path {
			path[j] = PathPoint{Price: price, Variance: 0}
		}
		paths[i] = path
	}
	return &PathEnsemble{Paths: paths, Dt: horizon / float64(numSteps), NumSteps: numSteps}
}

type failingEstimator struct{}

func (failingEstimator) Fit(x, y []float64) (func(float64) float64, error) {
	return nil, fmt.Errorf("%w: forced failure", ErrRegression)
}

func TestLongstaffSchwartzDeepITMExercisesEarly(t *testing.T) {
	// 所有路径恒为 50 的深度价内看跌，正利率下持有只会损失时间价值，
	// 应在最早可行权步 t=1 行权
	numSteps := 10
	ensemble := constantEnsemble(100, numSteps, 50, 1)
	curve := flatCurve(t, 0.05, 1)
	est := &PolynomialLeastSquares{Degree: 0}

	got, err := LongstaffSchwartz(context.Background(), ensemble, OptionTypePut, 100, curve, est)
	if err != nil {
		t.Fatal(err)
	}

	dt := 1.0 / float64(numSteps)
	want := 50 * math.Exp(-0.05*dt)
	if math.Abs(got.Price-want) > 1e-10 {
		t.Errorf("price = %v, want %v", got.Price, want)
	}
	// 所有路径现金流相同，标准误应为零
	if got.StdError != 0 {
		t.Errorf("stderr = %v, want 0", got.StdError)
	}
}

func TestLongstaffSchwartzNoITMPaths(t *testing.T) {
	// 价格恒为 200 的看跌在 K=100 下永不价内，价格为零
	ensemble := constantEnsemble(50, 10, 200, 1)
	curve := flatCurve(t, 0.05, 1)
	est := &PolynomialLeastSquares{Degree: 2}

	got, err := LongstaffSchwartz(context.Background(), ensemble, OptionTypePut, 100, curve, est)
	if err != nil {
		t.Fatal(err)
	}
	if got.Price != 0 {
		t.Errorf("price = %v, want 0", got.Price)
	}
}

func TestLongstaffSchwartzRegressionFailurePropagates(t *testing.T) {
	ensemble := constantEnsemble(50, 10, 50, 1)
	curve := flatCurve(t, 0.05, 1)

	_, err := LongstaffSchwartz(context.Background(), ensemble, OptionTypePut, 100, curve, failingEstimator{})
	if !errors.Is(err, ErrRegression) {
		t.Fatalf("expected ErrRegression, got %v", err)
	}
	// 错误信息应点名失败的时间步
	if !strings.Contains(err.Error(), "step") {
		t.Errorf("error should name the failing step: %v", err)
	}
}

func TestLongstaffSchwartzValidation(t *testing.T) {
	curve := flatCurve(t, 0.05, 1)
	est := &PolynomialLeastSquares{Degree: 2}
	ensemble := constantEnsemble(10, 5, 100, 1)

	cases := []struct {
		name string
		run  func() error
	}{
		{"nil ensemble", func() error {
			_, err := LongstaffSchwartz(context.Background(), nil, OptionTypePut, 100, curve, est)
			return err
		}},
		{"bad option type", func() error {
			_, err := LongstaffSchwartz(context.Background(), ensemble, OptionType("STRADDLE"), 100, curve, est)
			return err
		}},
		{"zero strike", func() error {
			_, err := LongstaffSchwartz(context.Background(), ensemble, OptionTypePut, 0, curve, est)
			return err
		}},
		{"nil estimator", func() error {
			_, err := LongstaffSchwartz(context.Background(), ensemble, OptionTypePut, 100, curve, nil)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
