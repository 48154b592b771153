// Package redis 报价与定价结果的 Redis 缓存
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/treepricing/internal/treepricing/domain"
)

// PricingRedisRepository 最新报价与最新定价结果的 TTL 缓存
type PricingRedisRepository struct {
	client       redis.UniversalClient
	quotePrefix  string
	resultPrefix string
	ttl          time.Duration
}

// NewPricingRedisRepository 创建 Redis 缓存仓储
func NewPricingRedisRepository(client redis.UniversalClient) *PricingRedisRepository {
	return &PricingRedisRepository{
		client:       client,
		quotePrefix:  "treepricing:quote:",
		resultPrefix: "treepricing:result:",
		ttl:          15 * time.Minute,
	}
}

func (r *PricingRedisRepository) SaveQuote(ctx context.Context, quote *domain.Quote) error {
	if quote == nil {
		return nil
	}
	data, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.quoteKey(quote.Symbol), data, r.ttl).Err()
}

func (r *PricingRedisRepository) GetLatestQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	if symbol == "" {
		return nil, nil
	}
	data, err := r.client.Get(ctx, r.quoteKey(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var quote domain.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *PricingRedisRepository) SavePricingResult(ctx context.Context, result *domain.PricingResult) error {
	if result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.resultKey(result.Symbol), data, r.ttl).Err()
}

func (r *PricingRedisRepository) GetLatestPricingResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	if symbol == "" {
		return nil, nil
	}
	data, err := r.client.Get(ctx, r.resultKey(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result domain.PricingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *PricingRedisRepository) quoteKey(symbol string) string {
	return fmt.Sprintf("%s%s", r.quotePrefix, symbol)
}

func (r *PricingRedisRepository) resultKey(symbol string) string {
	return fmt.Sprintf("%s%s", r.resultPrefix, symbol)
}
