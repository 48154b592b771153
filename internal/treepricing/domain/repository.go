// Package domain 树定价服务仓储与外部协作接口
package domain

import "context"

// PricingRepository 定价结果与报价仓储
type PricingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	SaveQuote(ctx context.Context, quote *Quote) error
	GetLatestQuote(ctx context.Context, symbol string) (*Quote, error)

	SavePricingResult(ctx context.Context, result *PricingResult) error
	GetLatestPricingResult(ctx context.Context, symbol string) (*PricingResult, error)
	GetPricingResultHistory(ctx context.Context, symbol string, limit int) ([]*PricingResult, error)
}

// MarketDataClient 市场数据服务客户端。
// 定价命令未携带标的现价时作为报价仓储的回退数据源。
type MarketDataClient interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}
