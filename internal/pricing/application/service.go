package application

import (
	"context"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/cache"
	"github.com/wyfcoding/optionpricing/pkg/config"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
)

// PricingService 定价应用服务门面，聚合命令与查询两侧
type PricingService struct {
	commands *PricingCommandService
	queries  *PricingQueryService
}

// NewPricingService 创建定价应用服务
func NewPricingService(
	repo domain.PricingRepository,
	publisher domain.EventPublisher,
	c *cache.RedisCache,
	defaults config.PricingConfig,
	m *metrics.Metrics,
) *PricingService {
	return &PricingService{
		commands: NewPricingCommandService(repo, publisher, defaults, m),
		queries:  NewPricingQueryService(repo, c),
	}
}

// PriceOption 期权定价
func (s *PricingService) PriceOption(ctx context.Context, cmd PriceOptionCommand) (*domain.PricingResult, error) {
	return s.commands.PriceOption(ctx, cmd)
}

// BatchPriceOptions 批量定价
func (s *PricingService) BatchPriceOptions(ctx context.Context, cmd BatchPriceOptionsCommand) (*BatchPricingResult, error) {
	return s.commands.BatchPriceOptions(ctx, cmd)
}

// GetLatestResult 获取最新定价结果
func (s *PricingService) GetLatestResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	return s.queries.GetLatestResult(ctx, symbol)
}

// GetHistory 获取定价历史记录
func (s *PricingService) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	return s.queries.GetHistory(ctx, symbol, limit)
}

// GetGreeks 计算希腊字母
func (s *PricingService) GetGreeks(ctx context.Context, query GreeksQuery) (*domain.Greeks, error) {
	return s.queries.GetGreeks(ctx, query)
}
