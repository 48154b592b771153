package application

import (
	"time"

	"github.com/wyfcoding/treepricing/internal/treepricing/domain"
)

// PricingResultDTO 定价结果传输对象
type PricingResultDTO struct {
	Symbol          string    `json:"symbol"`
	PutCall         string    `json:"put_call"`
	BarrierType     string    `json:"barrier_type"`
	BarrierLevel    float64   `json:"barrier_level"`
	StrikePrice     float64   `json:"strike_price"`
	OptionPrice     float64   `json:"option_price"`
	UnderlyingPrice float64   `json:"underlying_price"`
	Delta           float64   `json:"delta"`
	Gamma           float64   `json:"gamma"`
	Theta           float64   `json:"theta"`
	KnockedOut      bool      `json:"knocked_out"`
	NumberOfSteps   int       `json:"number_of_steps"`
	PricingModel    string    `json:"pricing_model"`
	CalculatedAt    int64     `json:"calculated_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// VanillaReferenceDTO Black-Scholes 参考价传输对象
type VanillaReferenceDTO struct {
	Symbol          string  `json:"symbol"`
	PutCall         string  `json:"put_call"`
	Price           float64 `json:"price"`
	Delta           float64 `json:"delta"`
	Gamma           float64 `json:"gamma"`
	Theta           float64 `json:"theta"`
	Vega            float64 `json:"vega"`
	Rho             float64 `json:"rho"`
	UnderlyingPrice float64 `json:"underlying_price"`
}

func toPricingResultDTO(r *domain.PricingResult) *PricingResultDTO {
	return &PricingResultDTO{
		Symbol:          r.Symbol,
		PutCall:         string(r.PutCall),
		BarrierType:     string(r.BarrierType),
		BarrierLevel:    r.BarrierLevel.InexactFloat64(),
		StrikePrice:     r.StrikePrice.InexactFloat64(),
		OptionPrice:     r.OptionPrice.InexactFloat64(),
		UnderlyingPrice: r.UnderlyingPrice.InexactFloat64(),
		Delta:           r.Delta.InexactFloat64(),
		Gamma:           r.Gamma.InexactFloat64(),
		Theta:           r.Theta.InexactFloat64(),
		KnockedOut:      r.KnockedOut,
		NumberOfSteps:   r.NumberOfSteps,
		PricingModel:    r.PricingModel,
		CalculatedAt:    r.CalculatedAt,
		CreatedAt:       r.CreatedAt,
	}
}
