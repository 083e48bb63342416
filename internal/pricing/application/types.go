package application

import "github.com/wyfcoding/optionpricing/internal/pricing/domain"

// 定价模型名称
const (
	ModelBlackScholes = "BlackScholes"
	ModelBinomial     = "Binomial"
	ModelHeston       = "Heston"
	ModelIntrinsic    = "Intrinsic"
)

// PriceOptionCommand 期权定价命令
type PriceOptionCommand struct {
	Symbol           string
	OptionType       string
	Style            string
	StrikePrice      float64
	UnderlyingPrice  float64
	TimeToExpiry     float64 // 年
	ExpiryDate       int64   // 毫秒时间戳，仅用于事件与结果记录
	Volatility       float64 // BlackScholes / Binomial
	CurveTimes       []float64
	CurveRates       []float64
	InitialVariance  float64 // Heston
	Kappa            float64
	Theta            float64
	Sigma            float64
	Rho              float64
	RegressionMethod string
	PricingModel     string
}

// BatchPriceOptionsCommand 批量定价命令
type BatchPriceOptionsCommand struct {
	Contracts []PriceOptionCommand
	BatchID   string
}

// BatchPricingResult 批量定价结果
type BatchPricingResult struct {
	BatchID      string
	Results      []*domain.PricingResult
	SuccessCount int
	FailureCount int
	AverageTime  float64
}

// GreeksQuery 希腊字母查询参数
type GreeksQuery struct {
	Symbol          string
	OptionType      string
	StrikePrice     float64
	UnderlyingPrice float64
	TimeToExpiry    float64
	RiskFreeRate    float64
	Volatility      float64
}
