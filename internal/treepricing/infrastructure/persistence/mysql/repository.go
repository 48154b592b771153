// Package mysql 定价结果与报价的 MySQL 仓储实现
package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"

	"github.com/wyfcoding/treepricing/internal/treepricing/domain"
)

type pricingRepository struct {
	db *gorm.DB
}

// NewPricingRepository 创建并返回一个新的 pricingRepository 实例。
func NewPricingRepository(db *gorm.DB) domain.PricingRepository {
	return &pricingRepository{db: db}
}

// WithTx 在单个数据库事务内执行 fn，事务经 contextx 向下传递
func (r *pricingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

// --- Quote ---

func (r *pricingRepository) SaveQuote(ctx context.Context, quote *domain.Quote) error {
	model := toQuoteModel(quote)
	if model == nil {
		return nil
	}
	db := r.getDB(ctx).WithContext(ctx)
	if model.ID == 0 {
		if err := db.Create(model).Error; err != nil {
			return err
		}
		quote.ID = model.ID
		quote.CreatedAt = model.CreatedAt
		quote.UpdatedAt = model.UpdatedAt
		return nil
	}
	return db.Model(&QuoteModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"symbol":     model.Symbol,
			"price":      model.Price,
			"source":     model.Source,
			"timestamp":  model.Timestamp,
			"updated_at": time.Now(),
		}).Error
}

func (r *pricingRepository) GetLatestQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	var model QuoteModel
	err := r.getDB(ctx).WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("timestamp desc").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toQuote(&model), nil
}

// --- PricingResult ---

func (r *pricingRepository) SavePricingResult(ctx context.Context, result *domain.PricingResult) error {
	model := toPricingResultModel(result)
	if model == nil {
		return nil
	}
	db := r.getDB(ctx).WithContext(ctx)
	if err := db.Create(model).Error; err != nil {
		return err
	}
	result.ID = model.ID
	result.CreatedAt = model.CreatedAt
	result.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *pricingRepository) GetLatestPricingResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	var m PricingResultModel
	if err := r.getDB(ctx).WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("calculated_at desc").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPricingResult(&m)
}

func (r *pricingRepository) GetPricingResultHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	var models []PricingResultModel
	if err := r.getDB(ctx).WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("calculated_at desc").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]*domain.PricingResult, 0, len(models))
	for i := range models {
		result, err := toPricingResult(&models[i])
		if err != nil {
			return nil, err
		}
		res = append(res, result)
	}
	return res, nil
}

func (r *pricingRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
