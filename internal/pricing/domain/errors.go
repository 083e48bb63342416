package domain

import "errors"

// 定价过程中的错误类别。调用方通过 errors.Is 区分。
var (
	// ErrInvalidInput 输入参数非法（构造/入口处快速失败）
	ErrInvalidInput = errors.New("invalid input")
	// ErrComputation 数值计算失败（非输入问题，如模拟发散）
	ErrComputation = errors.New("computation error")
	// ErrRegression 回归样本不足或退化导致拟合失败
	ErrRegression = errors.New("regression error")
	// ErrInterpolation 查询时发现利率曲线异常
	ErrInterpolation = errors.New("interpolation error")
)
