// Package consumer 市场数据事件消费者
package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/wyfcoding/pkg/messagequeue/kafka"

	"github.com/wyfcoding/treepricing/internal/treepricing/application"
)

// MarketPriceHandler 消费 market.price 主题，维护标的最新报价
type MarketPriceHandler struct {
	command *application.PricingCommandService
}

// NewMarketPriceHandler 创建消费处理器
func NewMarketPriceHandler(command *application.PricingCommandService) *MarketPriceHandler {
	return &MarketPriceHandler{command: command}
}

// HandleMarketPrice 处理单条价格消息
func (h *MarketPriceHandler) HandleMarketPrice(ctx context.Context, msg kafkago.Message) error {
	var event struct {
		Symbol    string  `json:"symbol"`
		Price     float64 `json:"price,string"`
		Timestamp int64   `json:"timestamp"`
	}
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return err
	}

	slog.Debug("handling market price event", "symbol", event.Symbol, "price", event.Price)

	return h.command.SaveQuote(ctx, application.SaveQuoteCommand{
		Symbol:    event.Symbol,
		Price:     event.Price,
		Source:    "market.price",
		Timestamp: event.Timestamp,
	})
}

// Subscribe 订阅消费
func (h *MarketPriceHandler) Subscribe(ctx context.Context, consumer *kafka.Consumer) {
	consumer.Start(ctx, 1, h.HandleMarketPrice)
}
