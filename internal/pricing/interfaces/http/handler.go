package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/response"
)

// PricingHandler HTTP 处理器
// 负责处理与定价相关的 HTTP 请求
type PricingHandler struct {
	service *application.PricingService
}

// NewPricingHandler 创建 HTTP 处理器实例
func NewPricingHandler(service *application.PricingService) *PricingHandler {
	return &PricingHandler{service: service}
}

// RegisterRoutes 将处理器方法绑定到 Gin 路由引擎
func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/pricing")
	{
		api.POST("/option/price", h.PriceOption)
		api.POST("/option/greeks", h.GetGreeks)
		api.POST("/option/batch", h.BatchPriceOptions)
		api.GET("/option/:symbol/latest", h.GetLatestResult)
		api.GET("/option/:symbol/history", h.GetHistory)
	}
}

// HestonParamsRequest Heston 模型参数
type HestonParamsRequest struct {
	InitialVariance  float64   `json:"initial_variance"`
	Kappa            float64   `json:"kappa"`
	Theta            float64   `json:"theta"`
	Sigma            float64   `json:"sigma"`
	Rho              float64   `json:"rho"`
	CurveTimes       []float64 `json:"curve_times"`
	CurveRates       []float64 `json:"curve_rates"`
	RegressionMethod string    `json:"regression_method"`
}

// PricingRequest 定价请求
type PricingRequest struct {
	Symbol          string               `json:"symbol" binding:"required"`
	OptionType      string               `json:"option_type" binding:"required"`
	Style           string               `json:"style"`
	StrikePrice     float64              `json:"strike_price" binding:"required"`
	UnderlyingPrice float64              `json:"underlying_price" binding:"required"`
	TimeToExpiry    float64              `json:"time_to_expiry" binding:"required"`
	ExpiryDate      int64                `json:"expiry_date"`
	Volatility      float64              `json:"volatility"`
	RiskFreeRate    float64              `json:"risk_free_rate"`
	PricingModel    string               `json:"pricing_model"`
	Heston          *HestonParamsRequest `json:"heston"`
}

// BatchPricingRequest 批量定价请求
type BatchPricingRequest struct {
	Contracts []PricingRequest `json:"contracts" binding:"required,min=1"`
}

func toCommand(req PricingRequest) application.PriceOptionCommand {
	cmd := application.PriceOptionCommand{
		Symbol:          req.Symbol,
		OptionType:      req.OptionType,
		Style:           req.Style,
		StrikePrice:     req.StrikePrice,
		UnderlyingPrice: req.UnderlyingPrice,
		TimeToExpiry:    req.TimeToExpiry,
		ExpiryDate:      req.ExpiryDate,
		Volatility:      req.Volatility,
		PricingModel:    req.PricingModel,
	}
	// 未显式给出曲线时按固定利率构造平坦曲线
	if req.TimeToExpiry > 0 {
		cmd.CurveTimes = []float64{0, req.TimeToExpiry}
		cmd.CurveRates = []float64{req.RiskFreeRate, req.RiskFreeRate}
	}
	if req.Heston != nil {
		cmd.InitialVariance = req.Heston.InitialVariance
		cmd.Kappa = req.Heston.Kappa
		cmd.Theta = req.Heston.Theta
		cmd.Sigma = req.Heston.Sigma
		cmd.Rho = req.Heston.Rho
		cmd.RegressionMethod = req.Heston.RegressionMethod
		if len(req.Heston.CurveTimes) > 0 {
			cmd.CurveTimes = req.Heston.CurveTimes
			cmd.CurveRates = req.Heston.CurveRates
		}
	}
	return cmd
}

// PriceOption 期权定价
func (h *PricingHandler) PriceOption(c *gin.Context) {
	var req PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.PriceOption(c.Request.Context(), toCommand(req))
	if err != nil {
		logger.Error(c.Request.Context(), "failed to price option", "symbol", req.Symbol, "error", err)
		response.Error(c, statusFor(err), err.Error())
		return
	}

	response.Success(c, gin.H{
		"result":           result,
		"calculation_time": time.Now(),
	})
}

// GetGreeks 获取希腊字母
func (h *PricingHandler) GetGreeks(c *gin.Context) {
	var req PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	greeks, err := h.service.GetGreeks(c.Request.Context(), application.GreeksQuery{
		Symbol:          req.Symbol,
		OptionType:      req.OptionType,
		StrikePrice:     req.StrikePrice,
		UnderlyingPrice: req.UnderlyingPrice,
		TimeToExpiry:    req.TimeToExpiry,
		RiskFreeRate:    req.RiskFreeRate,
		Volatility:      req.Volatility,
	})
	if err != nil {
		logger.Error(c.Request.Context(), "failed to calculate greeks", "symbol", req.Symbol, "error", err)
		response.Error(c, statusFor(err), err.Error())
		return
	}

	response.Success(c, gin.H{
		"greeks":           greeks,
		"calculation_time": time.Now(),
	})
}

// BatchPriceOptions 批量定价
func (h *PricingHandler) BatchPriceOptions(c *gin.Context) {
	var req BatchPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	contracts := make([]application.PriceOptionCommand, len(req.Contracts))
	for i, r := range req.Contracts {
		contracts[i] = toCommand(r)
	}

	result, err := h.service.BatchPriceOptions(c.Request.Context(), application.BatchPriceOptionsCommand{
		BatchID:   uuid.NewString(),
		Contracts: contracts,
	})
	if err != nil {
		logger.Error(c.Request.Context(), "batch pricing failed", "error", err)
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.Success(c, result)
}

// GetLatestResult 获取最新定价结果
func (h *PricingHandler) GetLatestResult(c *gin.Context) {
	symbol := c.Param("symbol")
	result, err := h.service.GetLatestResult(c.Request.Context(), symbol)
	if err != nil {
		response.Error(c, http.StatusNotFound, err.Error())
		return
	}
	response.Success(c, result)
}

// GetHistory 获取定价历史
func (h *PricingHandler) GetHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := h.service.GetHistory(c.Request.Context(), symbol, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, results)
}

// statusFor 按错误类别映射 HTTP 状态码
func statusFor(err error) int {
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
