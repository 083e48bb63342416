package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"gorm.io/gorm"
)

type pricingRepository struct {
	db *gorm.DB
}

// NewPricingRepository 创建并返回一个新的 pricingRepository 实例。
func NewPricingRepository(db *gorm.DB) domain.PricingRepository {
	return &pricingRepository{db: db}
}

// Save 保存定价结果；已有 ID 时更新原记录
func (r *pricingRepository) Save(ctx context.Context, res *domain.PricingResult) error {
	model := toPricingResultModel(res)
	if model == nil {
		return nil
	}
	db := r.db.WithContext(ctx)
	if model.ID == 0 {
		if err := db.Create(model).Error; err != nil {
			return err
		}
		res.ID = model.ID
		res.CreatedAt = model.CreatedAt
		res.UpdatedAt = model.UpdatedAt
		return nil
	}
	return db.Model(&PricingResultModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"symbol":           model.Symbol,
			"option_type":      model.OptionType,
			"style":            model.Style,
			"option_price":     model.OptionPrice,
			"std_error":        model.StdError,
			"underlying_price": model.UnderlyingPrice,
			"strike_price":     model.StrikePrice,
			"delta":            model.Delta,
			"gamma":            model.Gamma,
			"theta":            model.Theta,
			"vega":             model.Vega,
			"rho":              model.Rho,
			"calculated_at":    model.CalculatedAt,
			"pricing_model":    model.PricingModel,
		}).Error
}

// GetLatest 获取指定合约的最新定价结果
func (r *pricingRepository) GetLatest(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	var m PricingResultModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("calculated_at desc").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no pricing result for symbol %s", symbol)
		}
		return nil, err
	}
	return toPricingResult(&m), nil
}

// GetHistory 按计算时间倒序返回历史定价结果
func (r *pricingRepository) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	var models []PricingResultModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("calculated_at desc").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]*domain.PricingResult, len(models))
	for i := range models {
		res[i] = toPricingResult(&models[i])
	}
	return res, nil
}
