package mysql

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/treepricing/internal/treepricing/domain"
)

// QuoteModel MySQL 报价表映射
type QuoteModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
	Symbol    string    `gorm:"column:symbol;type:varchar(32);index;not null"`
	Price     float64   `gorm:"column:price;type:decimal(20,8);not null"`
	Source    string    `gorm:"column:source;type:varchar(50)"`
	Timestamp time.Time `gorm:"column:timestamp;index"`
}

func (QuoteModel) TableName() string { return "quotes" }

// PricingResultModel 定价结果数据库模型
type PricingResultModel struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
	Symbol          string    `gorm:"column:symbol;type:varchar(32);index;not null"`
	PutCall         string    `gorm:"column:put_call;type:varchar(8);not null"`
	BarrierType     string    `gorm:"column:barrier_type;type:varchar(16);not null"`
	BarrierLevel    string    `gorm:"column:barrier_level;type:decimal(32,18);not null"`
	StrikePrice     string    `gorm:"column:strike_price;type:decimal(32,18);not null"`
	OptionPrice     string    `gorm:"column:option_price;type:decimal(32,18);not null"`
	UnderlyingPrice string    `gorm:"column:underlying_price;type:decimal(32,18);not null"`
	Delta           string    `gorm:"column:delta;type:decimal(32,18)"`
	Gamma           string    `gorm:"column:gamma;type:decimal(32,18)"`
	Theta           string    `gorm:"column:theta;type:decimal(32,18)"`
	KnockedOut      bool      `gorm:"column:knocked_out;not null;default:false"`
	NumberOfSteps   int       `gorm:"column:number_of_steps;not null"`
	CalculatedAt    int64     `gorm:"column:calculated_at;type:bigint;index;not null"`
	PricingModel    string    `gorm:"column:pricing_model;type:varchar(32)"`
}

func (PricingResultModel) TableName() string { return "pricing_results" }

// mapping helpers

func toQuoteModel(q *domain.Quote) *QuoteModel {
	if q == nil {
		return nil
	}
	return &QuoteModel{
		ID:        q.ID,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
		Symbol:    q.Symbol,
		Price:     q.Price,
		Source:    q.Source,
		Timestamp: q.Timestamp,
	}
}

func toQuote(m *QuoteModel) *domain.Quote {
	if m == nil {
		return nil
	}
	return &domain.Quote{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Symbol:    m.Symbol,
		Price:     m.Price,
		Source:    m.Source,
		Timestamp: m.Timestamp,
	}
}

func toPricingResultModel(r *domain.PricingResult) *PricingResultModel {
	if r == nil {
		return nil
	}
	return &PricingResultModel{
		ID:              r.ID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Symbol:          r.Symbol,
		PutCall:         string(r.PutCall),
		BarrierType:     string(r.BarrierType),
		BarrierLevel:    r.BarrierLevel.String(),
		StrikePrice:     r.StrikePrice.String(),
		OptionPrice:     r.OptionPrice.String(),
		UnderlyingPrice: r.UnderlyingPrice.String(),
		Delta:           r.Delta.String(),
		Gamma:           r.Gamma.String(),
		Theta:           r.Theta.String(),
		KnockedOut:      r.KnockedOut,
		NumberOfSteps:   r.NumberOfSteps,
		CalculatedAt:    r.CalculatedAt,
		PricingModel:    r.PricingModel,
	}
}

func toPricingResult(m *PricingResultModel) (*domain.PricingResult, error) {
	if m == nil {
		return nil, nil
	}
	p := &decimalParser{}
	result := &domain.PricingResult{
		ID:              m.ID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		Symbol:          m.Symbol,
		PutCall:         domain.PutCall(m.PutCall),
		BarrierType:     domain.BarrierType(m.BarrierType),
		BarrierLevel:    p.parse("barrier_level", m.BarrierLevel),
		StrikePrice:     p.parse("strike_price", m.StrikePrice),
		OptionPrice:     p.parse("option_price", m.OptionPrice),
		UnderlyingPrice: p.parse("underlying_price", m.UnderlyingPrice),
		Delta:           p.parse("delta", m.Delta),
		Gamma:           p.parse("gamma", m.Gamma),
		Theta:           p.parse("theta", m.Theta),
		KnockedOut:      m.KnockedOut,
		NumberOfSteps:   m.NumberOfSteps,
		CalculatedAt:    m.CalculatedAt,
		PricingModel:    m.PricingModel,
	}
	if p.err != nil {
		return nil, p.err
	}
	return result, nil
}

// decimalParser 逐列解析并保留首个错误，空列视为零
type decimalParser struct {
	err error
}

func (p *decimalParser) parse(column, s string) decimal.Decimal {
	if p.err != nil || s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.err = fmt.Errorf("parse %s: %w", column, err)
		return decimal.Zero
	}
	return d
}
