package domain

import (
	"fmt"
	"math"
)

// RateCurve 无风险利率期限结构。
// 以 (时间, 利率) 节点描述，节点之间线性插值，区间外取边界值。
type RateCurve struct {
	times []float64
	rates []float64
}

// NewRateCurve 构造利率曲线并做快速校验：
// 两个序列等长且非空，时间严格递增，所有数值有限。
func NewRateCurve(times, rates []float64) (*RateCurve, error) {
	if len(times) == 0 || len(times) != len(rates) {
		return nil, fmt.Errorf("%w: rate curve needs equal, non-empty times and rates (got %d/%d)",
			ErrInvalidInput, len(times), len(rates))
	}
	for i := range times {
		if math.IsNaN(times[i]) || math.IsInf(times[i], 0) || math.IsNaN(rates[i]) || math.IsInf(rates[i], 0) {
			return nil, fmt.Errorf("%w: rate curve contains non-finite value at index %d", ErrInvalidInput, i)
		}
		if i > 0 && times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: rate curve times must be strictly increasing at index %d", ErrInvalidInput, i)
		}
	}

	c := &RateCurve{
		times: make([]float64, len(times)),
		rates: make([]float64, len(rates)),
	}
	copy(c.times, times)
	copy(c.rates, rates)
	return c, nil
}

// Rate 返回时刻 t 的即期利率。
// t 在曲线范围之外时返回边界利率（不报错），范围内线性插值。
func (c *RateCurve) Rate(t float64) (float64, error) {
	n := len(c.times)
	if t <= c.times[0] {
		return c.rates[0], nil
	}
	if t >= c.times[n-1] {
		return c.rates[n-1], nil
	}

	for i := 0; i < n-1; i++ {
		if t >= c.times[i] && t <= c.times[i+1] {
			t0, t1 := c.times[i], c.times[i+1]
			r0, r1 := c.rates[i], c.rates[i+1]
			return r0 + (r1-r0)*(t-t0)/(t1-t0), nil
		}
	}

	// 构造校验通过后不应到达这里；到达说明曲线在查询期间被破坏
	return 0, fmt.Errorf("%w: failed to bracket time %v", ErrInterpolation, t)
}

// Integral 计算 ∫_0^t r(s) ds。
// 曲线分段线性，梯形法在节点间为精确积分；范围外按边界利率平延。
func (c *RateCurve) Integral(t float64) float64 {
	if t <= 0 {
		return 0
	}

	n := len(c.times)
	total := 0.0
	prev := 0.0
	prevRate := c.rates[0]

	// 第一个节点之前按 rates[0] 平延
	if c.times[0] > 0 {
		seg := math.Min(t, c.times[0])
		total += c.rates[0] * seg
		prev = seg
	}
	if prev >= t {
		return total
	}

	for i := 0; i < n; i++ {
		if c.times[i] <= prev {
			prevRate = c.rates[i]
			continue
		}
		segEnd := math.Min(t, c.times[i])
		// prev 到 segEnd 之间利率线性，用两端平均值积分
		endRate := c.rates[i]
		if segEnd < c.times[i] {
			r, _ := c.Rate(segEnd)
			endRate = r
		}
		total += 0.5 * (prevRate + endRate) * (segEnd - prev)
		prev = segEnd
		prevRate = endRate
		if prev >= t {
			return total
		}
	}

	// 最后一个节点之后按 rates[n-1] 平延
	total += c.rates[n-1] * (t - prev)
	return total
}

// DiscountFactor 返回 exp(-∫_{t1}^{t2} r ds)，要求 t1 <= t2。
func (c *RateCurve) DiscountFactor(t1, t2 float64) float64 {
	return math.Exp(c.Integral(t1) - c.Integral(t2))
}

// Times 返回曲线的时间节点（副本）
func (c *RateCurve) Times() []float64 {
	out := make([]float64, len(c.times))
	copy(out, c.times)
	return out
}

// Rates 返回曲线的利率节点（副本）
func (c *RateCurve) Rates() []float64 {
	out := make([]float64, len(c.rates))
	copy(out, c.rates)
	return out
}
