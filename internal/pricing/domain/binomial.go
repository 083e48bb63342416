package domain

import (
	"context"
	"fmt"
	"math"
)

// BinomialModel Cox-Ross-Rubinstein 二叉树定价，支持美式提前行权
type BinomialModel struct {
	OptionType   OptionType
	Style        ExerciseStyle
	Spot         float64
	Strike       float64
	TimeToExpiry float64
	Rate         float64
	Volatility   float64
	NumSteps     int
}

func (m *BinomialModel) validate() error {
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
	case m.NumSteps < 1:
		return fmt.Errorf("%w: num_steps must be >= 1, got %d", ErrInvalidInput, m.NumSteps)
	}
	return nil
}

// Price 后向归纳计算期权价格
func (m *BinomialModel) Price(ctx context.Context) (float64, error) {
	if err := m.validate(); err != nil {
		return 0, err
	}

	dt := m.TimeToExpiry / float64(m.NumSteps)
	up := math.Exp(m.Volatility * math.Sqrt(dt))
	down := 1 / up
	growth := math.Exp(m.Rate * dt)
	p := (growth - down) / (up - down)
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: risk-neutral probability %v outside [0,1], reduce step size", ErrComputation, p)
	}
	disc := 1 / growth

	// 到期层收益
	values := make([]float64, m.NumSteps+1)
	for i := 0; i <= m.NumSteps; i++ {
		s := m.Spot * math.Pow(up, float64(i)) * math.Pow(down, float64(m.NumSteps-i))
		values[i] = Payoff(m.OptionType, s, m.Strike)
	}

	for step := m.NumSteps - 1; step >= 0; step-- {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		for i := 0; i <= step; i++ {
			cv := disc * (p*values[i+1] + (1-p)*values[i])
			if m.Style == StyleAmerican {
				s := m.Spot * math.Pow(up, float64(i)) * math.Pow(down, float64(step-i))
				if iv := Payoff(m.OptionType, s, m.Strike); iv > cv {
					cv = iv
				}
			}
			values[i] = cv
		}
	}

	return values[0], nil
}
