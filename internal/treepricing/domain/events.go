package domain

import "time"

const (
	BarrierOptionPricedEventType     = "treepricing.barrier_option_priced"
	BarrierOptionKnockedOutEventType = "treepricing.barrier_option_knocked_out"
	QuoteSavedEventType              = "treepricing.quote_saved"
	BatchPricingCompletedEventType   = "treepricing.batch_pricing_completed"
)

// BarrierOptionPricedEvent 障碍期权定价完成事件
type BarrierOptionPricedEvent struct {
	Symbol          string      `json:"symbol"`
	PutCall         PutCall     `json:"put_call"`
	BarrierType     BarrierType `json:"barrier_type"`
	BarrierLevel    float64     `json:"barrier_level"`
	StrikePrice     float64     `json:"strike_price"`
	OptionPrice     float64     `json:"option_price"`
	UnderlyingPrice float64     `json:"underlying_price"`
	Volatility      float64     `json:"volatility"`
	RiskFreeRate    float64     `json:"risk_free_rate"`
	NumberOfSteps   int         `json:"number_of_steps"`
	PricingModel    string      `json:"pricing_model"`
	CalculatedAt    int64       `json:"calculated_at"`
	OccurredOn      time.Time   `json:"occurred_on"`
}

// BarrierOptionKnockedOutEvent 定价时点即已触碰障碍的事件。
// 标的现价已越过障碍水平，期权价值退化为第 0 层返还金额。
type BarrierOptionKnockedOutEvent struct {
	Symbol          string      `json:"symbol"`
	BarrierType     BarrierType `json:"barrier_type"`
	BarrierLevel    float64     `json:"barrier_level"`
	UnderlyingPrice float64     `json:"underlying_price"`
	Rebate          float64     `json:"rebate"`
	OccurredOn      time.Time   `json:"occurred_on"`
}

// QuoteSavedEvent 报价落库事件
type QuoteSavedEvent struct {
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	Source     string    `json:"source"`
	Timestamp  int64     `json:"timestamp"`
	OccurredOn time.Time `json:"occurred_on"`
}

// BatchPricingCompletedEvent 批量定价完成事件
type BatchPricingCompletedEvent struct {
	BatchID        string    `json:"batch_id"`
	Symbols        []string  `json:"symbols"`
	TotalContracts int       `json:"total_contracts"`
	SuccessCount   int       `json:"success_count"`
	FailureCount   int       `json:"failure_count"`
	AverageTime    float64   `json:"average_time"`
	CompletedAt    int64     `json:"completed_at"`
	OccurredOn     time.Time `json:"occurred_on"`
}
