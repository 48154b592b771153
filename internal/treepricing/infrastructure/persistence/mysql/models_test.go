package mysql

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/treepricing/internal/treepricing/domain"
)

func TestPricingResultModelRoundTrip(t *testing.T) {
	src := &domain.PricingResult{
		Symbol:          "EQ-ACME",
		PutCall:         domain.PutCallCall,
		BarrierType:     domain.BarrierUpAndOut,
		BarrierLevel:    decimal.NewFromFloat(130),
		StrikePrice:     decimal.NewFromFloat(100),
		OptionPrice:     decimal.NewFromFloat(8.123456789),
		UnderlyingPrice: decimal.NewFromFloat(100),
		Delta:           decimal.NewFromFloat(0.42),
		Gamma:           decimal.NewFromFloat(0.01),
		Theta:           decimal.NewFromFloat(-3.5),
		KnockedOut:      false,
		NumberOfSteps:   200,
		CalculatedAt:    1700000000,
		PricingModel:    domain.PricingModelCRRTree,
	}

	got, err := toPricingResult(toPricingResultModel(src))
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, src.Symbol, got.Symbol)
	assert.Equal(t, src.PutCall, got.PutCall)
	assert.Equal(t, src.BarrierType, got.BarrierType)
	assert.True(t, src.OptionPrice.Equal(got.OptionPrice))
	assert.True(t, src.Theta.Equal(got.Theta))
	assert.Equal(t, src.NumberOfSteps, got.NumberOfSteps)
}

func TestToPricingResultCorruptDecimal(t *testing.T) {
	m := &PricingResultModel{
		Symbol:          "EQ-ACME",
		PutCall:         "CALL",
		BarrierType:     "UP_AND_OUT",
		BarrierLevel:    "130",
		StrikePrice:     "100",
		OptionPrice:     "not-a-number",
		UnderlyingPrice: "100",
	}

	got, err := toPricingResult(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "option_price")
	assert.Nil(t, got)
}

func TestToPricingResultEmptyGreeksColumns(t *testing.T) {
	m := &PricingResultModel{
		Symbol:          "EQ-ACME",
		PutCall:         "PUT",
		BarrierType:     "DOWN_AND_OUT",
		BarrierLevel:    "70",
		StrikePrice:     "100",
		OptionPrice:     "5.5",
		UnderlyingPrice: "100",
	}

	got, err := toPricingResult(m)
	require.NoError(t, err)
	assert.True(t, got.Delta.IsZero())
	assert.True(t, got.Gamma.IsZero())
	assert.True(t, got.Theta.IsZero())
}

func TestToPricingResultNil(t *testing.T) {
	got, err := toPricingResult(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
