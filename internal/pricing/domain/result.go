package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OptionContract 期权合约
// 定义期权的基本属性
type OptionContract struct {
	Symbol      string          `json:"symbol"`
	Type        OptionType      `json:"type"`
	Style       ExerciseStyle   `json:"style"`
	StrikePrice decimal.Decimal `json:"strike_price"`
	ExpiryDate  int64           `json:"expiry_date"`
}

// Greeks 希腊字母
type Greeks struct {
	Delta decimal.Decimal
	Gamma decimal.Decimal
	Theta decimal.Decimal
	Vega  decimal.Decimal
	Rho   decimal.Decimal
}

// PricingResult 定价结果实体
type PricingResult struct {
	ID              uint            `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Symbol          string          `json:"symbol"`
	OptionType      OptionType      `json:"option_type"`
	Style           ExerciseStyle   `json:"style"`
	OptionPrice     decimal.Decimal `json:"option_price"`
	StdError        decimal.Decimal `json:"std_error"`
	UnderlyingPrice decimal.Decimal `json:"underlying_price"`
	StrikePrice     decimal.Decimal `json:"strike_price"`
	Delta           decimal.Decimal `json:"delta"`
	Gamma           decimal.Decimal `json:"gamma"`
	Theta           decimal.Decimal `json:"theta"`
	Vega            decimal.Decimal `json:"vega"`
	Rho             decimal.Decimal `json:"rho"`
	CalculatedAt    int64           `json:"calculated_at"`
	PricingModel    string          `json:"pricing_model"`
}
