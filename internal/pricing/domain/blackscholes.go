package domain

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// BlackScholesModel Black-Scholes 欧式期权解析定价
type BlackScholesModel struct {
	OptionType   OptionType
	Spot         float64
	Strike       float64
	TimeToExpiry float64
	Rate         float64
	Volatility   float64
}

// BlackScholesResult 价格与 Greeks
type BlackScholesResult struct {
	Price decimal.Decimal
	Delta decimal.Decimal
	Gamma decimal.Decimal
	Theta decimal.Decimal
	Vega  decimal.Decimal
	Rho   decimal.Decimal
}

func (m *BlackScholesModel) validate() error {
	switch {
	case !m.OptionType.Valid():
		return fmt.Errorf("%w: unknown option type %q", ErrInvalidInput, m.OptionType)
	case m.Spot <= 0:
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidInput, m.Spot)
	case m.Strike <= 0:
		return fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidInput, m.Strike)
	case m.TimeToExpiry <= 0:
		return fmt.Errorf("%w: time_to_expiry must be positive, got %v", ErrInvalidInput, m.TimeToExpiry)
	case m.Volatility <= 0:
		return fmt.Errorf("%w: volatility must be positive, got %v", ErrInvalidInput, m.Volatility)
	}
	return nil
}

// Price 返回期权价格
func (m *BlackScholesModel) Price(ctx context.Context) (float64, error) {
	res, err := m.Calculate()
	if err != nil {
		return 0, err
	}
	return res.Price.InexactFloat64(), nil
}

// Calculate 计算价格和全部 Greeks
func (m *BlackScholesModel) Calculate() (*BlackScholesResult, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	sqrtT := math.Sqrt(m.TimeToExpiry)
	d1 := (math.Log(m.Spot/m.Strike) + (m.Rate+0.5*m.Volatility*m.Volatility)*m.TimeToExpiry) /
		(m.Volatility * sqrtT)
	d2 := d1 - m.Volatility*sqrtT
	df := math.Exp(-m.Rate * m.TimeToExpiry)

	var price, delta, theta, rho float64
	gamma := normPdf(d1) / (m.Spot * m.Volatility * sqrtT)
	vega := m.Spot * sqrtT * normPdf(d1)

	if m.OptionType == OptionTypeCall {
		price = m.Spot*normCdf(d1) - m.Strike*df*normCdf(d2)
		delta = normCdf(d1)
		theta = -m.Spot*normPdf(d1)*m.Volatility/(2*sqrtT) - m.Rate*m.Strike*df*normCdf(d2)
		rho = m.Strike * m.TimeToExpiry * df * normCdf(d2)
	} else {
		price = m.Strike*df*normCdf(-d2) - m.Spot*normCdf(-d1)
		delta = normCdf(d1) - 1
		theta = -m.Spot*normPdf(d1)*m.Volatility/(2*sqrtT) + m.Rate*m.Strike*df*normCdf(-d2)
		rho = -m.Strike * m.TimeToExpiry * df * normCdf(-d2)
	}

	return &BlackScholesResult{
		Price: decimal.NewFromFloat(price),
		Delta: decimal.NewFromFloat(delta),
		Gamma: decimal.NewFromFloat(gamma),
		Theta: decimal.NewFromFloat(theta),
		Vega:  decimal.NewFromFloat(vega),
		Rho:   decimal.NewFromFloat(rho),
	}, nil
}

// normCdf 标准正态分布累积分布函数
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPdf 标准正态分布概率密度函数
func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
