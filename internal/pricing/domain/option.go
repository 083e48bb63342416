package domain

import (
	"context"
	"fmt"
	"math"
)

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// Valid 判断期权类型是否合法
func (t OptionType) Valid() bool {
	return t == OptionTypeCall || t == OptionTypePut
}

// ExerciseStyle 行权方式
type ExerciseStyle string

const (
	StyleAmerican ExerciseStyle = "AMERICAN" // 美式
	StyleEuropean ExerciseStyle = "EUROPEAN" // 欧式
)

// PricingModel 定价模型统一接口
type PricingModel interface {
	Price(ctx context.Context) (float64, error)
}

// Payoff 立即行权价值：看涨 max(S-K,0)，看跌 max(K-S,0)
func Payoff(optionType OptionType, spot, strike float64) float64 {
	if optionType == OptionTypeCall {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

// IntrinsicValue 内在价值模型
type IntrinsicValue struct {
	OptionType OptionType
	Spot       float64
	Strike     float64
}

// Price 返回期权的内在价值
func (m *IntrinsicValue) Price(ctx context.Context) (float64, error) {
	if !m.OptionType.Valid() {
		return 0, fmt.Errorf("%w: unknown option type %q", ErrInvalidInput, m.OptionType)
	}
	return Payoff(m.OptionType, m.Spot, m.Strike), nil
}
