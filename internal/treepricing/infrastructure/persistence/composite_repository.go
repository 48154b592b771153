// Package persistence 组合仓储：MySQL 持久化 + Redis 缓存
package persistence

import (
	"context"
	"log/slog"

	"github.com/wyfcoding/treepricing/internal/treepricing/domain"
)

// PricingCache 最新报价与最新定价结果的缓存端口
type PricingCache interface {
	SaveQuote(ctx context.Context, quote *domain.Quote) error
	GetLatestQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	SavePricingResult(ctx context.Context, result *domain.PricingResult) error
	GetLatestPricingResult(ctx context.Context, symbol string) (*domain.PricingResult, error)
}

type compositePricingRepository struct {
	mysql domain.PricingRepository
	cache PricingCache
}

// NewCompositePricingRepository 创建组合仓储。
// 写路径双写（先 MySQL 后缓存），最新读路径优先缓存，历史查询始终走 MySQL。
// 缓存读写均为尽力而为，失败只告警不影响主路径。
func NewCompositePricingRepository(mysql domain.PricingRepository, cache PricingCache) domain.PricingRepository {
	return &compositePricingRepository{
		mysql: mysql,
		cache: cache,
	}
}

// WithTx 事务只覆盖 MySQL；缓存写入不参与回滚
func (r *compositePricingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.mysql.WithTx(ctx, fn)
}

func (r *compositePricingRepository) SaveQuote(ctx context.Context, quote *domain.Quote) error {
	if err := r.mysql.SaveQuote(ctx, quote); err != nil {
		return err
	}
	if err := r.cache.SaveQuote(ctx, quote); err != nil {
		slog.WarnContext(ctx, "quote cache write failed", "symbol", quote.Symbol, "error", err)
	}
	return nil
}

func (r *compositePricingRepository) GetLatestQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	quote, err := r.cache.GetLatestQuote(ctx, symbol)
	if err != nil {
		slog.WarnContext(ctx, "quote cache read failed, falling back to mysql", "symbol", symbol, "error", err)
	} else if quote != nil {
		return quote, nil
	}
	return r.mysql.GetLatestQuote(ctx, symbol)
}

func (r *compositePricingRepository) SavePricingResult(ctx context.Context, result *domain.PricingResult) error {
	if err := r.mysql.SavePricingResult(ctx, result); err != nil {
		return err
	}
	if err := r.cache.SavePricingResult(ctx, result); err != nil {
		slog.WarnContext(ctx, "pricing result cache write failed", "symbol", result.Symbol, "error", err)
	}
	return nil
}

func (r *compositePricingRepository) GetLatestPricingResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	result, err := r.cache.GetLatestPricingResult(ctx, symbol)
	if err != nil {
		slog.WarnContext(ctx, "pricing result cache read failed, falling back to mysql", "symbol", symbol, "error", err)
	} else if result != nil {
		return result, nil
	}
	return r.mysql.GetLatestPricingResult(ctx, symbol)
}

func (r *compositePricingRepository) GetPricingResultHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	return r.mysql.GetPricingResultHistory(ctx, symbol, limit)
}
