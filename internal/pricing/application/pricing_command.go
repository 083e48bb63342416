package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/config"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
)

// PricingCommandService 处理定价相关的命令操作
type PricingCommandService struct {
	repo      domain.PricingRepository
	publisher domain.EventPublisher
	defaults  config.PricingConfig
	metrics   *metrics.Metrics
}

// NewPricingCommandService 创建新的 PricingCommandService 实例
func NewPricingCommandService(
	repo domain.PricingRepository,
	publisher domain.EventPublisher,
	defaults config.PricingConfig,
	m *metrics.Metrics,
) *PricingCommandService {
	return &PricingCommandService{
		repo:      repo,
		publisher: publisher,
		defaults:  defaults,
		metrics:   m,
	}
}

// PriceOption 期权定价。根据命令中的模型名称选择定价方法，
// 结果入库并发布领域事件；定价失败时发布错误事件后返回。
func (c *PricingCommandService) PriceOption(ctx context.Context, cmd PriceOptionCommand) (*domain.PricingResult, error) {
	if cmd.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidInput)
	}
	if cmd.PricingModel == "" {
		cmd.PricingModel = ModelBlackScholes
	}

	start := time.Now()
	if c.metrics != nil {
		c.metrics.PricingRequestsTotal.WithLabelValues(cmd.PricingModel).Inc()
	}

	result, err := c.price(ctx, cmd)
	if c.metrics != nil {
		c.metrics.PricingDuration.WithLabelValues(cmd.PricingModel).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.PricingErrorsTotal.WithLabelValues(errorKind(err)).Inc()
		}
		c.publishError(ctx, cmd, err)
		return nil, err
	}

	if saveErr := c.repo.Save(ctx, result); saveErr != nil {
		return nil, fmt.Errorf("failed to save pricing result: %w", saveErr)
	}
	c.publishPriced(ctx, cmd, result)

	logger.Info(ctx, "option priced",
		"symbol", cmd.Symbol,
		"model", cmd.PricingModel,
		"price", result.OptionPrice.String(),
		"elapsed", time.Since(start).String(),
	)
	return result, nil
}

func (c *PricingCommandService) price(ctx context.Context, cmd PriceOptionCommand) (*domain.PricingResult, error) {
	optionType := domain.OptionType(cmd.OptionType)
	style := domain.ExerciseStyle(cmd.Style)
	if style == "" {
		style = domain.StyleEuropean
	}

	var price float64
	var stderr float64
	var greeks domain.Greeks

	switch cmd.PricingModel {
	case ModelBlackScholes:
		bs := &domain.BlackScholesModel{
			OptionType:   optionType,
			Spot:         cmd.UnderlyingPrice,
			Strike:       cmd.StrikePrice,
			TimeToExpiry: cmd.TimeToExpiry,
			Rate:         flatRate(cmd),
			Volatility:   cmd.Volatility,
		}
		res, err := bs.Calculate()
		if err != nil {
			return nil, err
		}
		price = res.Price.InexactFloat64()
		greeks = domain.Greeks{
			Delta: res.Delta,
			Gamma: res.Gamma,
			Theta: res.Theta,
			Vega:  res.Vega,
			Rho:   res.Rho,
		}

	case ModelBinomial:
		model := &domain.BinomialModel{
			OptionType:   optionType,
			Style:        style,
			Spot:         cmd.UnderlyingPrice,
			Strike:       cmd.StrikePrice,
			TimeToExpiry: cmd.TimeToExpiry,
			Rate:         flatRate(cmd),
			Volatility:   cmd.Volatility,
			NumSteps:     c.defaults.NumSteps,
		}
		p, err := model.Price(ctx)
		if err != nil {
			return nil, err
		}
		price = p

	case ModelHeston:
		curve, err := buildCurve(cmd)
		if err != nil {
			return nil, err
		}
		method := domain.RegressionMethod(cmd.RegressionMethod)
		if method == "" {
			method = domain.MethodPolynomial
		}
		model := &domain.HestonModel{
			OptionType:      optionType,
			Style:           style,
			Spot:            cmd.UnderlyingPrice,
			Strike:          cmd.StrikePrice,
			TimeToExpiry:    cmd.TimeToExpiry,
			InitialVariance: cmd.InitialVariance,
			Kappa:           cmd.Kappa,
			Theta:           cmd.Theta,
			Sigma:           cmd.Sigma,
			Rho:             cmd.Rho,
			Curve:           curve,
			Method:          method,
			Regression: domain.EstimatorConfig{
				PolynomialDegree: c.defaults.PolynomialDegree,
				ForestTrees:      c.defaults.ForestTrees,
				ForestMaxDepth:   c.defaults.ForestMaxDepth,
				ForestMinLeaf:    c.defaults.ForestMinLeaf,
				Seed:             c.defaults.Seed,
			},
			NumPaths: c.defaults.NumPaths,
			NumSteps: c.defaults.NumSteps,
			Seed:     c.defaults.Seed,
		}
		est, err := model.PriceDetail(ctx)
		if err != nil {
			return nil, err
		}
		price = est.Price
		stderr = est.StdError
		if c.metrics != nil {
			c.metrics.SimulatedPathsTotal.Add(float64(c.defaults.NumPaths))
		}

	case ModelIntrinsic:
		model := &domain.IntrinsicValue{
			OptionType: optionType,
			Spot:       cmd.UnderlyingPrice,
			Strike:     cmd.StrikePrice,
		}
		p, err := model.Price(ctx)
		if err != nil {
			return nil, err
		}
		price = p

	default:
		return nil, fmt.Errorf("%w: unknown pricing model %q", domain.ErrInvalidInput, cmd.PricingModel)
	}

	now := time.Now()
	return &domain.PricingResult{
		Symbol:          cmd.Symbol,
		OptionType:      optionType,
		Style:           style,
		OptionPrice:     decimal.NewFromFloat(price),
		StdError:        decimal.NewFromFloat(stderr),
		UnderlyingPrice: decimal.NewFromFloat(cmd.UnderlyingPrice),
		StrikePrice:     decimal.NewFromFloat(cmd.StrikePrice),
		Delta:           greeks.Delta,
		Gamma:           greeks.Gamma,
		Theta:           greeks.Theta,
		Vega:            greeks.Vega,
		Rho:             greeks.Rho,
		CalculatedAt:    now.Unix(),
		PricingModel:    cmd.PricingModel,
	}, nil
}

// BatchPriceOptions 批量定价
func (c *PricingCommandService) BatchPriceOptions(ctx context.Context, cmd BatchPriceOptionsCommand) (*BatchPricingResult, error) {
	results := make([]*domain.PricingResult, 0, len(cmd.Contracts))
	successCount := 0
	failureCount := 0
	totalTime := 0.0

	for _, contract := range cmd.Contracts {
		startTime := time.Now()
		result, err := c.PriceOption(ctx, contract)
		totalTime += time.Since(startTime).Seconds()

		if err != nil {
			failureCount++
			continue
		}

		results = append(results, result)
		successCount++
	}

	avg := 0.0
	if len(cmd.Contracts) > 0 {
		avg = totalTime / float64(len(cmd.Contracts))
	}

	if c.publisher != nil {
		_ = c.publisher.Publish(ctx, domain.BatchPricingCompletedEventType, domain.BatchPricingCompletedEvent{
			BatchID:        cmd.BatchID,
			Symbols:        extractSymbols(cmd.Contracts),
			TotalContracts: len(cmd.Contracts),
			SuccessCount:   successCount,
			FailureCount:   failureCount,
			AverageTime:    avg,
			CompletedAt:    time.Now().Unix(),
			OccurredOn:     time.Now(),
		})
	}

	return &BatchPricingResult{
		BatchID:      cmd.BatchID,
		Results:      results,
		SuccessCount: successCount,
		FailureCount: failureCount,
		AverageTime:  avg,
	}, nil
}

func (c *PricingCommandService) publishPriced(ctx context.Context, cmd PriceOptionCommand, result *domain.PricingResult) {
	if c.publisher == nil {
		return
	}

	event := domain.OptionPricedEvent{
		Symbol:          cmd.Symbol,
		OptionType:      result.OptionType,
		Style:           result.Style,
		StrikePrice:     cmd.StrikePrice,
		ExpiryDate:      cmd.ExpiryDate,
		OptionPrice:     result.OptionPrice.InexactFloat64(),
		StdError:        result.StdError.InexactFloat64(),
		UnderlyingPrice: cmd.UnderlyingPrice,
		PricingModel:    cmd.PricingModel,
		CalculatedAt:    result.CalculatedAt,
		OccurredOn:      time.Now(),
	}
	if err := c.publisher.Publish(ctx, domain.OptionPricedEventType, event); err != nil {
		logger.Warn(ctx, "failed to publish option priced event", "symbol", cmd.Symbol, "error", err)
	}

	if cmd.PricingModel == ModelBlackScholes {
		greeksEvent := domain.GreeksCalculatedEvent{
			Symbol:          cmd.Symbol,
			OptionType:      result.OptionType,
			StrikePrice:     cmd.StrikePrice,
			ExpiryDate:      cmd.ExpiryDate,
			UnderlyingPrice: cmd.UnderlyingPrice,
			Delta:           result.Delta.InexactFloat64(),
			Gamma:           result.Gamma.InexactFloat64(),
			Theta:           result.Theta.InexactFloat64(),
			Vega:            result.Vega.InexactFloat64(),
			Rho:             result.Rho.InexactFloat64(),
			CalculatedAt:    result.CalculatedAt,
			OccurredOn:      time.Now(),
		}
		if err := c.publisher.Publish(ctx, domain.GreeksCalculatedEventType, greeksEvent); err != nil {
			logger.Warn(ctx, "failed to publish greeks event", "symbol", cmd.Symbol, "error", err)
		}
	}
}

func (c *PricingCommandService) publishError(ctx context.Context, cmd PriceOptionCommand, cause error) {
	if c.publisher == nil {
		return
	}
	event := domain.PricingErrorEvent{
		Symbol:      cmd.Symbol,
		OptionType:  domain.OptionType(cmd.OptionType),
		StrikePrice: cmd.StrikePrice,
		ExpiryDate:  cmd.ExpiryDate,
		Error:       cause.Error(),
		ErrorCode:   errorKind(cause),
		OccurredAt:  time.Now().Unix(),
		OccurredOn:  time.Now(),
	}
	if err := c.publisher.Publish(ctx, domain.PricingErrorEventType, event); err != nil {
		logger.Warn(ctx, "failed to publish pricing error event", "symbol", cmd.Symbol, "error", err)
	}
}

// flatRate 无曲线时退化为固定利率；给出曲线时取首节点作为近似
func flatRate(cmd PriceOptionCommand) float64 {
	if len(cmd.CurveRates) > 0 {
		return cmd.CurveRates[0]
	}
	return 0
}

func buildCurve(cmd PriceOptionCommand) (*domain.RateCurve, error) {
	return domain.NewRateCurve(cmd.CurveTimes, cmd.CurveRates)
}

// errorKind 将领域错误映射为事件与指标使用的类别码
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrRegression):
		return "regression"
	case errors.Is(err, domain.ErrInterpolation):
		return "interpolation"
	case errors.Is(err, domain.ErrComputation):
		return "computation"
	default:
		return "internal"
	}
}

// 辅助函数：提取合约符号
func extractSymbols(contracts []PriceOptionCommand) []string {
	symbols := make([]string, 0, len(contracts))
	seen := make(map[string]bool)

	for _, contract := range contracts {
		if !seen[contract.Symbol] {
			symbols = append(symbols, contract.Symbol)
			seen[contract.Symbol] = true
		}
	}

	return symbols
}
