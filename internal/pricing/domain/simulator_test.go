package domain

import (
	"context"
	"errors"
	"testing"
)

func flatCurve(t *testing.T, rate, horizon float64) *RateCurve {
	t.Helper()
	curve, err := NewRateCurve([]float64{0, horizon}, []float64{rate, rate})
	if err != nil {
		t.Fatal(err)
	}
	return curve
}

func baseParams(t *testing.T) SimulateParams {
	t.Helper()
	return SimulateParams{
		Spot:            100,
		InitialVariance: 0.04,
		TimeToExpiry:    1,
		Kappa:           2,
		Theta:           0.04,
		Sigma:           0.1,
		Rho:             -0.7,
		NumPaths:        200,
		NumSteps:        50,
		Curve:           flatCurve(t, 0.05, 1),
		Seed:            42,
	}
}

func TestSimulatePathsShape(t *testing.T) {
	p := baseParams(t)
	ensemble, err := SimulatePaths(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(ensemble.Paths) != p.NumPaths {
		t.Fatalf("got %d paths, want %d", len(ensemble.Paths), p.NumPaths)
	}
	for i, path := range ensemble.Paths {
		if len(path) != p.NumSteps+1 {
			t.Fatalf("path %d has %d points, want %d", i, len(path), p.NumSteps+1)
		}
		if path[0].Price != p.Spot || path[0].Variance != p.InitialVariance {
			t.Fatalf("path %d initial state = %+v", i, path[0])
		}
	}
}

func TestSimulatePathsVarianceNonNegative(t *testing.T) {
	p := baseParams(t)
	p.Sigma = 0.9 // 高波动率下截断才真正起作用
	p.InitialVariance = 0.01
	ensemble, err := SimulatePaths(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	for i, path := range ensemble.Paths {
		for j, pt := range path {
			if pt.Variance < 0 {
				t.Fatalf("path %d step %d has negative variance %v", i, j, pt.Variance)
			}
			if pt.Price <= 0 {
				t.Fatalf("path %d step %d has non-positive price %v", i, j, pt.Price)
			}
		}
	}
}

func TestSimulatePathsDeterministic(t *testing.T) {
	p := baseParams(t)
	a, err := SimulatePaths(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := SimulatePaths(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Paths {
		for j := range a.Paths[i] {
			if a.Paths[i][j] != b.Paths[i][j] {
				t.Fatalf("path %d step %d differs: %+v vs %+v", i, j, a.Paths[i][j], b.Paths[i][j])
			}
		}
	}

	p.Seed = 43
	c, err := SimulatePaths(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range a.Paths {
		if a.Paths[i][p.NumSteps] != c.Paths[i][p.NumSteps] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical terminal states")
	}
}

func TestSimulatePathsZeroVolOfVol(t *testing.T) {
	p := baseParams(t)
	p.Sigma = 0
	p.InitialVariance = 0.04
	p.Theta = 0.04
	ensemble, err := SimulatePaths(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	// sigma=0 且 v0=theta 时方差恒定
	for i, path := range ensemble.Paths {
		for j, pt := range path {
			if pt.Variance != 0.04 {
				t.Fatalf("path %d step %d variance = %v, want 0.04", i, j, pt.Variance)
			}
		}
	}
}

func TestSimulatePathsValidation(t *testing.T) {
	mutations := []struct {
		name string
		mut  func(*SimulateParams)
	}{
		{"zero paths", func(p *SimulateParams) { p.NumPaths = 0 }},
		{"zero steps", func(p *SimulateParams) { p.NumSteps = 0 }},
		{"negative sigma", func(p *SimulateParams) { p.Sigma = -0.1 }},
		{"negative v0", func(p *SimulateParams) { p.InitialVariance = -0.01 }},
		{"zero kappa", func(p *SimulateParams) { p.Kappa = 0 }},
		{"rho too small", func(p *SimulateParams) { p.Rho = -1.5 }},
		{"rho too large", func(p *SimulateParams) { p.Rho = 1.5 }},
		{"zero spot", func(p *SimulateParams) { p.Spot = 0 }},
		{"zero expiry", func(p *SimulateParams) { p.TimeToExpiry = 0 }},
		{"nil curve", func(p *SimulateParams) { p.Curve = nil }},
	}
	for _, tc := range mutations {
		t.Run(tc.name, func(t *testing.T) {
			p := baseParams(t)
			tc.mut(&p)
			if _, err := SimulatePaths(context.Background(), p); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSimulatePathsContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := baseParams(t)
	if _, err := SimulatePaths(ctx, p); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
