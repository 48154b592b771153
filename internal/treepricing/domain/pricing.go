package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingModelCRRTree 本服务使用的定价模型标识
const PricingModelCRRTree = "CRRTree"

// Quote 标的最新报价
type Quote struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// NewQuote 创建报价
func NewQuote(symbol string, price float64, source string, ts time.Time) *Quote {
	return &Quote{
		Symbol:    symbol,
		Price:     price,
		Source:    source,
		Timestamp: ts,
	}
}

// PricingResult 障碍期权定价结果实体
type PricingResult struct {
	ID              uint            `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Symbol          string          `json:"symbol"`
	PutCall         PutCall         `json:"put_call"`
	BarrierType     BarrierType     `json:"barrier_type"`
	BarrierLevel    decimal.Decimal `json:"barrier_level"`
	StrikePrice     decimal.Decimal `json:"strike_price"`
	OptionPrice     decimal.Decimal `json:"option_price"`
	UnderlyingPrice decimal.Decimal `json:"underlying_price"`
	Delta           decimal.Decimal `json:"delta"`
	Gamma           decimal.Decimal `json:"gamma"`
	Theta           decimal.Decimal `json:"theta"`
	KnockedOut      bool            `json:"knocked_out"`
	NumberOfSteps   int             `json:"number_of_steps"`
	CalculatedAt    int64           `json:"calculated_at"`
	PricingModel    string          `json:"pricing_model"`
}
