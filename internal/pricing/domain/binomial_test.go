package domain

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestBinomialEuropeanConvergesToBlackScholes(t *testing.T) {
	binomial := &BinomialModel{
		OptionType:   OptionTypeCall,
		Style:        StyleEuropean,
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		Rate:         0.05,
		Volatility:   0.2,
		NumSteps:     1000,
	}
	bs := &BlackScholesModel{
		OptionType:   OptionTypeCall,
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		Rate:         0.05,
		Volatility:   0.2,
	}

	bp, err := binomial.Price(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want, err := bs.Price(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(bp-want) > 0.02 {
		t.Errorf("binomial price = %v, black-scholes = %v", bp, want)
	}
}

func TestBinomialAmericanPutPremium(t *testing.T) {
	base := BinomialModel{
		OptionType:   OptionTypePut,
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		Rate:         0.05,
		Volatility:   0.2,
		NumSteps:     500,
	}

	american := base
	american.Style = StyleAmerican
	european := base
	european.Style = StyleEuropean

	ap, err := american.Price(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ep, err := european.Price(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if ap < ep {
		t.Errorf("american put %v below european put %v", ap, ep)
	}
	// 正利率平值看跌应有严格为正的提前行权溢价
	if ap-ep < 1e-3 {
		t.Errorf("early exercise premium %v too small", ap-ep)
	}
}

func TestBinomialDeepITMAmericanPutNearIntrinsic(t *testing.T) {
	model := &BinomialModel{
		OptionType:   OptionTypePut,
		Style:        StyleAmerican,
		Spot:         10,
		Strike:       100,
		TimeToExpiry: 1,
		Rate:         0.05,
		Volatility:   0.2,
		NumSteps:     500,
	}
	price, err := model.Price(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// 深度价内美式看跌应立即行权，价格不低于内在价值
	if price < 90-1e-9 {
		t.Errorf("price = %v, want >= 90", price)
	}
}

func TestBinomialValidation(t *testing.T) {
	model := &BinomialModel{
		OptionType:   OptionTypeCall,
		Style:        StyleEuropean,
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		Rate:         0.05,
		Volatility:   0.2,
		NumSteps:     0,
	}
	if _, err := model.Price(context.Background()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
