package domain

import (
	"errors"
	"math"
	"testing"
)

func TestNewRateCurveValidation(t *testing.T) {
	cases := []struct {
		name  string
		times []float64
		rates []float64
	}{
		{"empty", nil, nil},
		{"length mismatch", []float64{0, 1}, []float64{0.05}},
		{"not increasing", []float64{0, 1, 1}, []float64{0.05, 0.05, 0.05}},
		{"nan time", []float64{0, math.NaN()}, []float64{0.05, 0.05}},
		{"inf rate", []float64{0, 1}, []float64{0.05, math.Inf(1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRateCurve(tc.times, tc.rates)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRateInterpolation(t *testing.T) {
	curve, err := NewRateCurve([]float64{0, 1, 2}, []float64{0.02, 0.04, 0.06})
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		t    float64
		want float64
	}{
		{-1, 0.02},  // 左边界外取首节点
		{0, 0.02},   // 节点命中
		{0.5, 0.03}, // 线性插值
		{1.5, 0.05},
		{2, 0.06},
		{5, 0.06}, // 右边界外取末节点
	}
	for _, tc := range cases {
		got, err := curve.Rate(tc.t)
		if err != nil {
			t.Fatalf("Rate(%v): %v", tc.t, err)
		}
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Rate(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestIntegralFlatCurve(t *testing.T) {
	curve, err := NewRateCurve([]float64{0, 1}, []float64{0.05, 0.05})
	if err != nil {
		t.Fatal(err)
	}

	// 平坦曲线上 ∫r = r·t，包括范围外平延部分
	for _, tt := range []float64{0, 0.25, 1, 2.5} {
		got := curve.Integral(tt)
		want := 0.05 * tt
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("Integral(%v) = %v, want %v", tt, got, want)
		}
	}
}

func TestIntegralPiecewiseLinear(t *testing.T) {
	curve, err := NewRateCurve([]float64{0, 1}, []float64{0.02, 0.06})
	if err != nil {
		t.Fatal(err)
	}

	// 线性段上梯形积分是精确的：∫_0^1 (0.02+0.04t) dt = 0.04
	if got := curve.Integral(1); math.Abs(got-0.04) > 1e-12 {
		t.Errorf("Integral(1) = %v, want 0.04", got)
	}
	// 半区间：0.02*0.5 + 0.04*0.125 = 0.015
	if got := curve.Integral(0.5); math.Abs(got-0.015) > 1e-12 {
		t.Errorf("Integral(0.5) = %v, want 0.015", got)
	}
}

func TestDiscountFactor(t *testing.T) {
	curve, err := NewRateCurve([]float64{0, 1}, []float64{0.05, 0.05})
	if err != nil {
		t.Fatal(err)
	}

	want := math.Exp(-0.05)
	if got := curve.DiscountFactor(0, 1); math.Abs(got-want) > 1e-12 {
		t.Errorf("DiscountFactor(0,1) = %v, want %v", got, want)
	}
	if got := curve.DiscountFactor(0.5, 0.5); got != 1 {
		t.Errorf("DiscountFactor over empty interval = %v, want 1", got)
	}
}
