package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/treepricing/internal/treepricing/domain"
)

// PricingQueryService 处理定价相关的查询操作
type PricingQueryService struct {
	repo       domain.PricingRepository
	marketData domain.MarketDataClient
}

// NewPricingQueryService 创建查询服务
func NewPricingQueryService(repo domain.PricingRepository, marketData domain.MarketDataClient) *PricingQueryService {
	return &PricingQueryService{
		repo:       repo,
		marketData: marketData,
	}
}

// GetLatestResult 获取标的最新定价结果
func (q *PricingQueryService) GetLatestResult(ctx context.Context, symbol string) (*PricingResultDTO, error) {
	result, err := q.repo.GetLatestPricingResult(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return toPricingResultDTO(result), nil
}

// GetResultHistory 获取标的定价历史
func (q *PricingQueryService) GetResultHistory(ctx context.Context, symbol string, limit int) ([]*PricingResultDTO, error) {
	if limit <= 0 {
		limit = 20
	}
	results, err := q.repo.GetPricingResultHistory(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]*PricingResultDTO, 0, len(results))
	for _, r := range results {
		dtos = append(dtos, toPricingResultDTO(r))
	}
	return dtos, nil
}

// VanillaReferenceQuery 普通欧式期权解析参考价查询
type VanillaReferenceQuery struct {
	Symbol          string
	PutCall         string
	StrikePrice     float64
	ExpiryDate      int64
	UnderlyingPrice float64
	Volatility      float64
	RiskFreeRate    float64
	DividendYield   float64
}

// GetVanillaReference 计算 Black-Scholes 参考价。
// 障碍价永远不应超过该参考值，可用于结果合理性抽查。
func (q *PricingQueryService) GetVanillaReference(ctx context.Context, query VanillaReferenceQuery) (*VanillaReferenceDTO, error) {
	putCall, err := domain.ParsePutCall(query.PutCall)
	if err != nil {
		return nil, err
	}
	timeToExpiry := float64(query.ExpiryDate-time.Now().UnixMilli()) / 1000 / 24 / 3600 / 365
	if timeToExpiry <= 0 {
		return nil, errors.New("option already expired")
	}

	underlying := query.UnderlyingPrice
	if underlying <= 0 {
		underlying, err = q.GetUnderlyingPrice(ctx, query.Symbol)
		if err != nil {
			return nil, err
		}
	}

	bs := domain.CalculateBlackScholes(putCall, domain.BlackScholesInput{
		S: underlying,
		K: query.StrikePrice,
		T: timeToExpiry,
		R: query.RiskFreeRate,
		Q: query.DividendYield,
		V: query.Volatility,
	})

	return &VanillaReferenceDTO{
		Symbol:          query.Symbol,
		PutCall:         query.PutCall,
		Price:           bs.Price.InexactFloat64(),
		Delta:           bs.Delta.InexactFloat64(),
		Gamma:           bs.Gamma.InexactFloat64(),
		Theta:           bs.Theta.InexactFloat64(),
		Vega:            bs.Vega.InexactFloat64(),
		Rho:             bs.Rho.InexactFloat64(),
		UnderlyingPrice: underlying,
	}, nil
}

// GetUnderlyingPrice 获取标的现价，优先报价仓储，其次市场数据服务
func (q *PricingQueryService) GetUnderlyingPrice(ctx context.Context, symbol string) (float64, error) {
	quote, err := q.repo.GetLatestQuote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if quote != nil && quote.Price > 0 {
		return quote.Price, nil
	}
	if q.marketData == nil {
		return 0, fmt.Errorf("no underlying price available for %s", symbol)
	}
	return q.marketData.GetPrice(ctx, symbol)
}
