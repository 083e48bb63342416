package domain

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestBlackScholesKnownValues(t *testing.T) {
	// S=100, K=100, T=1, r=5%, vol=20% 的教科书数值
	call := &BlackScholesModel{
		OptionType:   OptionTypeCall,
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		Rate:         0.05,
		Volatility:   0.2,
	}
	put := &BlackScholesModel{
		OptionType:   OptionTypePut,
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		Rate:         0.05,
		Volatility:   0.2,
	}

	cp, err := call.Price(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	pp, err := put.Price(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(cp-10.4506) > 1e-3 {
		t.Errorf("call price = %v, want 10.4506", cp)
	}
	if math.Abs(pp-5.5735) > 1e-3 {
		t.Errorf("put price = %v, want 5.5735", pp)
	}
}

func TestBlackScholesPutCallParity(t *testing.T) {
	s, k, r, tt := 105.0, 95.0, 0.03, 0.5
	call := &BlackScholesModel{OptionType: OptionTypeCall, Spot: s, Strike: k, TimeToExpiry: tt, Rate: r, Volatility: 0.25}
	put := &BlackScholesModel{OptionType: OptionTypePut, Spot: s, Strike: k, TimeToExpiry: tt, Rate: r, Volatility: 0.25}

	cp, err := call.Price(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	pp, err := put.Price(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// C - P = S - K·e^{-rT}
	lhs := cp - pp
	rhs := s - k*math.Exp(-r*tt)
	if math.Abs(lhs-rhs) > 1e-9 {
		t.Errorf("parity violated: C-P = %v, S-Ke^{-rT} = %v", lhs, rhs)
	}
}

func TestBlackScholesGreeksSigns(t *testing.T) {
	call := &BlackScholesModel{OptionType: OptionTypeCall, Spot: 100, Strike: 100, TimeToExpiry: 1, Rate: 0.05, Volatility: 0.2}
	res, err := call.Calculate()
	if err != nil {
		t.Fatal(err)
	}

	delta := res.Delta.InexactFloat64()
	if delta <= 0 || delta >= 1 {
		t.Errorf("call delta = %v, want in (0, 1)", delta)
	}
	if res.Gamma.InexactFloat64() <= 0 {
		t.Errorf("gamma = %v, want positive", res.Gamma)
	}
	if res.Vega.InexactFloat64() <= 0 {
		t.Errorf("vega = %v, want positive", res.Vega)
	}

	put := &BlackScholesModel{OptionType: OptionTypePut, Spot: 100, Strike: 100, TimeToExpiry: 1, Rate: 0.05, Volatility: 0.2}
	pres, err := put.Calculate()
	if err != nil {
		t.Fatal(err)
	}
	pd := pres.Delta.InexactFloat64()
	if pd >= 0 || pd <= -1 {
		t.Errorf("put delta = %v, want in (-1, 0)", pd)
	}
}

func TestBlackScholesValidation(t *testing.T) {
	base := func() *BlackScholesModel {
		return &BlackScholesModel{OptionType: OptionTypeCall, Spot: 100, Strike: 100, TimeToExpiry: 1, Rate: 0.05, Volatility: 0.2}
	}

	cases := []struct {
		name string
		mut  func(*BlackScholesModel)
	}{
		{"bad type", func(m *BlackScholesModel) { m.OptionType = "X" }},
		{"zero spot", func(m *BlackScholesModel) { m.Spot = 0 }},
		{"zero strike", func(m *BlackScholesModel) { m.Strike = 0 }},
		{"zero expiry", func(m *BlackScholesModel) { m.TimeToExpiry = 0 }},
		{"zero vol", func(m *BlackScholesModel) { m.Volatility = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := base()
			tc.mut(m)
			if _, err := m.Price(context.Background()); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
