package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/cache"
	"github.com/wyfcoding/optionpricing/pkg/logger"
)

const latestResultTTL = 30 * time.Second

// PricingQueryService 处理所有定价相关的查询操作（Queries）。
// 最新结果走 Redis 旁路缓存，历史查询直接读库。
type PricingQueryService struct {
	repo  domain.PricingRepository
	cache *cache.RedisCache
}

// NewPricingQueryService 构造函数。cache 可为 nil（降级为直接读库）。
func NewPricingQueryService(repo domain.PricingRepository, c *cache.RedisCache) *PricingQueryService {
	return &PricingQueryService{repo: repo, cache: c}
}

// GetLatestResult 获取最新定价结果
func (q *PricingQueryService) GetLatestResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidInput)
	}

	key := latestResultKey(symbol)
	if q.cache != nil {
		var cached domain.PricingResult
		hit, err := q.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			logger.Warn(ctx, "pricing cache read failed", "symbol", symbol, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	result, err := q.repo.GetLatest(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if q.cache != nil {
		if err := q.cache.SetJSON(ctx, key, result, latestResultTTL); err != nil {
			logger.Warn(ctx, "pricing cache write failed", "symbol", symbol, "error", err)
		}
	}
	return result, nil
}

// GetHistory 获取定价历史记录
func (q *PricingQueryService) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 20
	}
	return q.repo.GetHistory(ctx, symbol, limit)
}

// GetGreeks 按 Black-Scholes 计算希腊字母
func (q *PricingQueryService) GetGreeks(ctx context.Context, query GreeksQuery) (*domain.Greeks, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if query.TimeToExpiry <= 0 {
		return &domain.Greeks{
			Delta: decimal.Zero,
			Gamma: decimal.Zero,
			Theta: decimal.Zero,
			Vega:  decimal.Zero,
			Rho:   decimal.Zero,
		}, nil
	}

	bs := &domain.BlackScholesModel{
		OptionType:   domain.OptionType(query.OptionType),
		Spot:         query.UnderlyingPrice,
		Strike:       query.StrikePrice,
		TimeToExpiry: query.TimeToExpiry,
		Rate:         query.RiskFreeRate,
		Volatility:   query.Volatility,
	}
	result, err := bs.Calculate()
	if err != nil {
		return nil, err
	}

	return &domain.Greeks{
		Delta: result.Delta,
		Gamma: result.Gamma,
		Theta: result.Theta,
		Vega:  result.Vega,
		Rho:   result.Rho,
	}, nil
}

func latestResultKey(symbol string) string {
	return "pricing:latest:" + symbol
}
