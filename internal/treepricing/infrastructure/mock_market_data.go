// Package infrastructure 树定价服务基础设施层
package infrastructure

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/wyfcoding/treepricing/internal/treepricing/domain"
)

// MockMarketDataClient 模拟市场数据客户端，dev/test 环境使用
type MockMarketDataClient struct{}

// NewMockMarketDataClient 创建模拟客户端
func NewMockMarketDataClient() domain.MarketDataClient {
	return &MockMarketDataClient{}
}

// GetPrice 生成 100 附近的随机价格
func (c *MockMarketDataClient) GetPrice(ctx context.Context, symbol string) (float64, error) {
	price := 100.0 + (rand.Float64()-0.5)*10
	slog.Debug("mock market data price", "symbol", symbol, "price", price)
	return price, nil
}
