package application

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/treepricing/internal/treepricing/domain"
)

type fakePricingRepository struct {
	quotes  map[string]*domain.Quote
	results []*domain.PricingResult
}

func newFakePricingRepository() *fakePricingRepository {
	return &fakePricingRepository{quotes: make(map[string]*domain.Quote)}
}

func (f *fakePricingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakePricingRepository) SaveQuote(ctx context.Context, quote *domain.Quote) error {
	f.quotes[quote.Symbol] = quote
	return nil
}

func (f *fakePricingRepository) GetLatestQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return f.quotes[symbol], nil
}

func (f *fakePricingRepository) SavePricingResult(ctx context.Context, result *domain.PricingResult) error {
	f.results = append(f.results, result)
	return nil
}

func (f *fakePricingRepository) GetLatestPricingResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	for i := len(f.results) - 1; i >= 0; i-- {
		if f.results[i].Symbol == symbol {
			return f.results[i], nil
		}
	}
	return nil, nil
}

func (f *fakePricingRepository) GetPricingResultHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	var out []*domain.PricingResult
	for i := len(f.results) - 1; i >= 0 && len(out) < limit; i-- {
		if f.results[i].Symbol == symbol {
			out = append(out, f.results[i])
		}
	}
	return out, nil
}

type fakeMarketDataClient struct {
	price float64
}

func (f *fakeMarketDataClient) GetPrice(ctx context.Context, symbol string) (float64, error) {
	return f.price, nil
}

func newTestCommandService(repo *fakePricingRepository, md domain.MarketDataClient) *PricingCommandService {
	return NewPricingCommandService(repo, md, nil, slog.Default())
}

func inOneYear() int64 {
	return time.Now().Add(365 * 24 * time.Hour).UnixMilli()
}

func TestPriceBarrierOption_UpAndOutCall(t *testing.T) {
	repo := newFakePricingRepository()
	svc := newTestCommandService(repo, nil)

	result, err := svc.PriceBarrierOption(context.Background(), PriceBarrierOptionCommand{
		Symbol:          "EQ-ACME",
		PutCall:         "CALL",
		BarrierType:     "UP_AND_OUT",
		StrikePrice:     100,
		BarrierLevel:    130,
		ExpiryDate:      inOneYear(),
		UnderlyingPrice: 100,
		Volatility:      0.2,
		RiskFreeRate:    0.05,
		NumberOfSteps:   100,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Greater(t, result.OptionPrice.InexactFloat64(), 0.0)
	assert.False(t, result.KnockedOut)
	assert.Equal(t, domain.PricingModelCRRTree, result.PricingModel)
	assert.Equal(t, 100, result.NumberOfSteps)
	require.Len(t, repo.results, 1)

	// 障碍价不应超过解析 vanilla 参考值
	bs := domain.CalculateBlackScholes(domain.PutCallCall, domain.BlackScholesInput{
		S: 100, K: 100, T: 1.0, R: 0.05, V: 0.2,
	})
	assert.Less(t, result.OptionPrice.InexactFloat64(), bs.Price.InexactFloat64())
}

func TestPriceBarrierOption_AlreadyKnockedOut(t *testing.T) {
	repo := newFakePricingRepository()
	svc := newTestCommandService(repo, nil)

	rebate := make([]float64, 51)
	rebate[0] = 2.5
	result, err := svc.PriceBarrierOption(context.Background(), PriceBarrierOptionCommand{
		Symbol:          "EQ-ACME",
		PutCall:         "CALL",
		BarrierType:     "UP_AND_OUT",
		StrikePrice:     100,
		BarrierLevel:    95,
		Rebate:          rebate,
		ExpiryDate:      inOneYear(),
		UnderlyingPrice: 100,
		Volatility:      0.2,
		RiskFreeRate:    0.05,
		NumberOfSteps:   50,
	})
	require.NoError(t, err)

	assert.True(t, result.KnockedOut)
	assert.InDelta(t, 2.5, result.OptionPrice.InexactFloat64(), 1e-12)
}

func TestPriceBarrierOption_KnockInSynthesis(t *testing.T) {
	repo := newFakePricingRepository()
	svc := newTestCommandService(repo, nil)

	base := PriceBarrierOptionCommand{
		Symbol:          "EQ-ACME",
		PutCall:         "CALL",
		StrikePrice:     100,
		BarrierLevel:    130,
		ExpiryDate:      inOneYear(),
		UnderlyingPrice: 100,
		Volatility:      0.2,
		RiskFreeRate:    0.05,
		NumberOfSteps:   200,
	}

	out := base
	out.BarrierType = "UP_AND_OUT"
	outResult, err := svc.PriceBarrierOption(context.Background(), out)
	require.NoError(t, err)

	in := base
	in.BarrierType = "UP_AND_IN"
	inResult, err := svc.PriceBarrierOption(context.Background(), in)
	require.NoError(t, err)

	assert.Greater(t, inResult.OptionPrice.InexactFloat64(), 0.0)
	assert.False(t, inResult.KnockedOut)

	// in + out = vanilla（同一棵树），用解析值近似校验
	total := inResult.OptionPrice.Add(outResult.OptionPrice).InexactFloat64()
	bs := domain.CalculateBlackScholes(domain.PutCallCall, domain.BlackScholesInput{
		S: 100, K: 100, T: 1.0, R: 0.05, V: 0.2,
	})
	assert.InDelta(t, bs.Price.InexactFloat64(), total, 0.1)
}

func TestPriceBarrierOption_KnockInRejectsRebate(t *testing.T) {
	repo := newFakePricingRepository()
	svc := newTestCommandService(repo, nil)

	base := PriceBarrierOptionCommand{
		Symbol:          "EQ-ACME",
		PutCall:         "CALL",
		BarrierType:     "UP_AND_IN",
		StrikePrice:     100,
		BarrierLevel:    130,
		ExpiryDate:      inOneYear(),
		UnderlyingPrice: 100,
		Volatility:      0.2,
		RiskFreeRate:    0.05,
		NumberOfSteps:   100,
	}

	// 敲出腿的价值含回扣，vanilla - knockout 会低估甚至为负，
	// 非零回扣的敲入命令必须整体拒绝
	rebate := make([]float64, 101)
	for i := range rebate {
		rebate[i] = 50
	}
	withRebate := base
	withRebate.Rebate = rebate
	_, err := svc.PriceBarrierOption(context.Background(), withRebate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rebate")
	assert.Empty(t, repo.results)

	// 全零回扣的敲入不受限制，且合成价不为负
	zeroRebate := base
	zeroRebate.Rebate = make([]float64, 101)
	result, err := svc.PriceBarrierOption(context.Background(), zeroRebate)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.OptionPrice.InexactFloat64(), 0.0)
}

func TestPriceBarrierOption_Validation(t *testing.T) {
	repo := newFakePricingRepository()
	svc := newTestCommandService(repo, nil)

	tests := []struct {
		name string
		cmd  PriceBarrierOptionCommand
	}{
		{"missing symbol", PriceBarrierOptionCommand{
			PutCall: "CALL", BarrierType: "UP_AND_OUT", ExpiryDate: inOneYear(), UnderlyingPrice: 100, Volatility: 0.2,
		}},
		{"bad put/call", PriceBarrierOptionCommand{
			Symbol: "X", PutCall: "BOTH", BarrierType: "UP_AND_OUT", ExpiryDate: inOneYear(), UnderlyingPrice: 100, Volatility: 0.2,
		}},
		{"bad barrier type", PriceBarrierOptionCommand{
			Symbol: "X", PutCall: "CALL", BarrierType: "SIDEWAYS_AND_OUT", ExpiryDate: inOneYear(), UnderlyingPrice: 100, Volatility: 0.2,
		}},
		{"expired", PriceBarrierOptionCommand{
			Symbol: "X", PutCall: "CALL", BarrierType: "UP_AND_OUT", ExpiryDate: time.Now().Add(-time.Hour).UnixMilli(), UnderlyingPrice: 100, Volatility: 0.2,
		}},
		{"rebate length mismatch", PriceBarrierOptionCommand{
			Symbol: "X", PutCall: "CALL", BarrierType: "UP_AND_OUT", ExpiryDate: inOneYear(),
			UnderlyingPrice: 100, Volatility: 0.2, NumberOfSteps: 10, Rebate: []float64{0, 0},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PriceBarrierOption(context.Background(), tt.cmd)
			require.Error(t, err)
		})
	}
	assert.Empty(t, repo.results)
}

func TestPriceBarrierOption_ResolvesUnderlyingFromQuote(t *testing.T) {
	repo := newFakePricingRepository()
	repo.quotes["EQ-ACME"] = domain.NewQuote("EQ-ACME", 105, "test", time.Now())
	svc := newTestCommandService(repo, nil)

	result, err := svc.PriceBarrierOption(context.Background(), PriceBarrierOptionCommand{
		Symbol:        "EQ-ACME",
		PutCall:       "CALL",
		BarrierType:   "UP_AND_OUT",
		StrikePrice:   100,
		BarrierLevel:  140,
		ExpiryDate:    inOneYear(),
		Volatility:    0.2,
		RiskFreeRate:  0.05,
		NumberOfSteps: 50,
	})
	require.NoError(t, err)
	assert.InDelta(t, 105, result.UnderlyingPrice.InexactFloat64(), 1e-12)
}

func TestPriceBarrierOption_ResolvesUnderlyingFromMarketData(t *testing.T) {
	repo := newFakePricingRepository()
	svc := newTestCommandService(repo, &fakeMarketDataClient{price: 98})

	result, err := svc.PriceBarrierOption(context.Background(), PriceBarrierOptionCommand{
		Symbol:        "EQ-ACME",
		PutCall:       "PUT",
		BarrierType:   "DOWN_AND_OUT",
		StrikePrice:   100,
		BarrierLevel:  70,
		ExpiryDate:    inOneYear(),
		Volatility:    0.2,
		RiskFreeRate:  0.05,
		NumberOfSteps: 50,
	})
	require.NoError(t, err)
	assert.InDelta(t, 98, result.UnderlyingPrice.InexactFloat64(), 1e-12)
}

func TestSaveQuote(t *testing.T) {
	repo := newFakePricingRepository()
	svc := newTestCommandService(repo, nil)

	err := svc.SaveQuote(context.Background(), SaveQuoteCommand{
		Symbol: "EQ-ACME", Price: 101.5, Source: "kafka", Timestamp: time.Now().UnixMilli(),
	})
	require.NoError(t, err)
	require.Contains(t, repo.quotes, "EQ-ACME")
	assert.Equal(t, 101.5, repo.quotes["EQ-ACME"].Price)

	require.Error(t, svc.SaveQuote(context.Background(), SaveQuoteCommand{Symbol: "", Price: 1}))
	require.Error(t, svc.SaveQuote(context.Background(), SaveQuoteCommand{Symbol: "X", Price: 0}))
}

func TestBatchPriceBarrierOptions(t *testing.T) {
	repo := newFakePricingRepository()
	svc := newTestCommandService(repo, nil)

	good := PriceBarrierOptionCommand{
		Symbol: "EQ-ACME", PutCall: "CALL", BarrierType: "UP_AND_OUT",
		StrikePrice: 100, BarrierLevel: 130, ExpiryDate: inOneYear(),
		UnderlyingPrice: 100, Volatility: 0.2, RiskFreeRate: 0.05, NumberOfSteps: 50,
	}
	bad := good
	bad.PutCall = "INVALID"

	result, err := svc.BatchPriceBarrierOptions(context.Background(), BatchPriceBarrierOptionsCommand{
		BatchID:   "batch-1",
		Contracts: []PriceBarrierOptionCommand{good, bad, good},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.Len(t, result.Results, 2)
}
