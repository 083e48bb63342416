package domain

import "context"

// PricingRepository 定价结果持久化接口
type PricingRepository interface {
	Save(ctx context.Context, result *PricingResult) error
	GetLatest(ctx context.Context, symbol string) (*PricingResult, error)
	GetHistory(ctx context.Context, symbol string, limit int) ([]*PricingResult, error)
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, event interface{}) error
}
