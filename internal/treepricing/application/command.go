// Package application 树定价服务应用层
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/messagequeue"

	"github.com/wyfcoding/treepricing/internal/treepricing/domain"
)

// DefaultNumberOfSteps 命令未指定步数时使用的树深度
const DefaultNumberOfSteps = 200

// PricingCommandService 处理定价相关的命令操作，
// 领域事件经 Outbox 随定价结果同事务落库。
type PricingCommandService struct {
	repo       domain.PricingRepository
	marketData domain.MarketDataClient
	publisher  messagequeue.EventPublisher
	logger     *slog.Logger
}

// NewPricingCommandService 创建命令服务
func NewPricingCommandService(
	repo domain.PricingRepository,
	marketData domain.MarketDataClient,
	publisher messagequeue.EventPublisher,
	logger *slog.Logger,
) *PricingCommandService {
	return &PricingCommandService{
		repo:       repo,
		marketData: marketData,
		publisher:  publisher,
		logger:     logger,
	}
}

// PriceBarrierOptionCommand 障碍期权定价命令
type PriceBarrierOptionCommand struct {
	Symbol          string
	PutCall         string
	BarrierType     string
	StrikePrice     float64
	BarrierLevel    float64
	BarrierLevels   []float64 // 非空时启用时变障碍，长度须为 NumberOfSteps+1
	Rebate          []float64 // 空时视为全零，否则长度须为 NumberOfSteps+1
	ExpiryDate      int64     // 毫秒时间戳
	UnderlyingPrice float64   // 非正时从报价仓储/市场数据服务解析
	Volatility      float64
	RiskFreeRate    float64
	DividendYield   float64
	NumberOfSteps   int
}

// PriceBarrierOption 障碍期权定价。
// 敲出类型直接在树上逆向归纳；敲入类型按 vanilla - knockout 合成，
// 该平价关系仅在回扣为零时成立，故敲入命令拒绝非零回扣。
func (c *PricingCommandService) PriceBarrierOption(ctx context.Context, cmd PriceBarrierOptionCommand) (*domain.PricingResult, error) {
	if cmd.Symbol == "" {
		return nil, errors.New("symbol is required")
	}
	putCall, err := domain.ParsePutCall(cmd.PutCall)
	if err != nil {
		return nil, err
	}
	barrierType, err := domain.ParseBarrierType(cmd.BarrierType)
	if err != nil {
		return nil, err
	}
	if barrierType.IsKnockIn() {
		for _, r := range cmd.Rebate {
			if r != 0 {
				return nil, errors.New("rebate is not supported for knock-in options")
			}
		}
	}

	steps := cmd.NumberOfSteps
	if steps == 0 {
		steps = DefaultNumberOfSteps
	}

	timeToExpiry := float64(cmd.ExpiryDate-time.Now().UnixMilli()) / 1000 / 24 / 3600 / 365
	if timeToExpiry <= 0 {
		return nil, errors.New("option already expired")
	}

	underlying := cmd.UnderlyingPrice
	if underlying <= 0 {
		underlying, err = c.resolveUnderlying(ctx, cmd.Symbol)
		if err != nil {
			return nil, err
		}
	}

	rebate := cmd.Rebate
	if len(rebate) == 0 {
		rebate = make([]float64, steps+1)
	}

	lattice, err := domain.NewCRRLattice(underlying, cmd.Volatility, cmd.RiskFreeRate, cmd.DividendYield, timeToExpiry, steps)
	if err != nil {
		return nil, err
	}
	walker := domain.NewLatticeWalker(lattice)

	// 敲入合成时在树上求值的始终是敲出等价物
	outType := barrierType.KnockOutEquivalent()
	fn, err := c.buildKnockoutFunction(cmd, putCall, outType, steps, timeToExpiry, rebate)
	if err != nil {
		return nil, err
	}

	knockout, err := walker.PriceKnockout(fn)
	if err != nil {
		return nil, err
	}

	valued := knockout
	if barrierType.IsKnockIn() {
		vanilla, vErr := walker.PriceVanilla(fn)
		if vErr != nil {
			return nil, vErr
		}
		valued = &domain.LatticeResult{
			Price: vanilla.Price - knockout.Price,
			Delta: vanilla.Delta - knockout.Delta,
			Gamma: vanilla.Gamma - knockout.Gamma,
			Theta: vanilla.Theta - knockout.Theta,
		}
	}

	knockedOut := !barrierType.IsKnockIn() && domain.Breached(outType, underlying, fn.BarrierLevel(0))

	result := &domain.PricingResult{
		Symbol:          cmd.Symbol,
		PutCall:         putCall,
		BarrierType:     barrierType,
		BarrierLevel:    decimal.NewFromFloat(fn.BarrierLevel(0)),
		StrikePrice:     decimal.NewFromFloat(cmd.StrikePrice),
		OptionPrice:     decimal.NewFromFloat(valued.Price),
		UnderlyingPrice: decimal.NewFromFloat(underlying),
		Delta:           decimal.NewFromFloat(valued.Delta),
		Gamma:           decimal.NewFromFloat(valued.Gamma),
		Theta:           decimal.NewFromFloat(valued.Theta),
		KnockedOut:      knockedOut,
		NumberOfSteps:   steps,
		CalculatedAt:    time.Now().Unix(),
		PricingModel:    domain.PricingModelCRRTree,
	}

	err = c.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := c.repo.SavePricingResult(txCtx, result); err != nil {
			return err
		}
		if c.publisher == nil {
			return nil
		}
		tx := contextx.GetTx(txCtx)

		pricedEvent := domain.BarrierOptionPricedEvent{
			Symbol:          cmd.Symbol,
			PutCall:         putCall,
			BarrierType:     barrierType,
			BarrierLevel:    fn.BarrierLevel(0),
			StrikePrice:     cmd.StrikePrice,
			OptionPrice:     valued.Price,
			UnderlyingPrice: underlying,
			Volatility:      cmd.Volatility,
			RiskFreeRate:    cmd.RiskFreeRate,
			NumberOfSteps:   steps,
			PricingModel:    domain.PricingModelCRRTree,
			CalculatedAt:    result.CalculatedAt,
			OccurredOn:      time.Now(),
		}
		if err := c.publisher.PublishInTx(txCtx, tx, domain.BarrierOptionPricedEventType, cmd.Symbol, pricedEvent); err != nil {
			return err
		}

		if !knockedOut {
			return nil
		}
		koEvent := domain.BarrierOptionKnockedOutEvent{
			Symbol:          cmd.Symbol,
			BarrierType:     barrierType,
			BarrierLevel:    fn.BarrierLevel(0),
			UnderlyingPrice: underlying,
			Rebate:          fn.Rebate(0),
			OccurredOn:      time.Now(),
		}
		return c.publisher.PublishInTx(txCtx, tx, domain.BarrierOptionKnockedOutEventType, cmd.Symbol, koEvent)
	})
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "barrier option priced",
		"symbol", cmd.Symbol,
		"barrier_type", barrierType,
		"price", valued.Price,
		"knocked_out", knockedOut)
	return result, nil
}

func (c *PricingCommandService) buildKnockoutFunction(
	cmd PriceBarrierOptionCommand,
	putCall domain.PutCall,
	outType domain.BarrierType,
	steps int,
	timeToExpiry float64,
	rebate []float64,
) (domain.BarrierKnockoutFunction, error) {
	if len(cmd.BarrierLevels) > 0 {
		return domain.NewTimeVaryingBarrierKnockout(
			cmd.StrikePrice, timeToExpiry, putCall, steps, outType, cmd.BarrierLevels, rebate)
	}
	return domain.NewConstantContinuousBarrierKnockout(
		cmd.StrikePrice, timeToExpiry, putCall, steps, outType, cmd.BarrierLevel, rebate)
}

func (c *PricingCommandService) resolveUnderlying(ctx context.Context, symbol string) (float64, error) {
	quote, err := c.repo.GetLatestQuote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if quote != nil && quote.Price > 0 {
		return quote.Price, nil
	}
	if c.marketData == nil {
		return 0, fmt.Errorf("no underlying price available for %s", symbol)
	}
	return c.marketData.GetPrice(ctx, symbol)
}

// SaveQuoteCommand 报价落库命令
type SaveQuoteCommand struct {
	Symbol    string
	Price     float64
	Source    string
	Timestamp int64
}

// SaveQuote 保存标的最新报价
func (c *PricingCommandService) SaveQuote(ctx context.Context, cmd SaveQuoteCommand) error {
	if cmd.Symbol == "" {
		return errors.New("symbol is required")
	}
	if cmd.Price <= 0 {
		return errors.New("price should be positive")
	}

	ts := time.UnixMilli(cmd.Timestamp)
	if cmd.Timestamp == 0 {
		ts = time.Now()
	}
	quote := domain.NewQuote(cmd.Symbol, cmd.Price, cmd.Source, ts)
	if err := c.repo.SaveQuote(ctx, quote); err != nil {
		return err
	}

	if c.publisher != nil {
		event := domain.QuoteSavedEvent{
			Symbol:     cmd.Symbol,
			Price:      cmd.Price,
			Source:     cmd.Source,
			Timestamp:  ts.UnixMilli(),
			OccurredOn: time.Now(),
		}
		if err := c.publisher.Publish(ctx, domain.QuoteSavedEventType, cmd.Symbol, event); err != nil {
			c.logger.ErrorContext(ctx, "failed to publish quote event", "symbol", cmd.Symbol, "error", err)
		}
	}
	return nil
}

// BatchPriceBarrierOptionsCommand 批量定价命令
type BatchPriceBarrierOptionsCommand struct {
	BatchID   string
	Contracts []PriceBarrierOptionCommand
}

// BatchPricingResult 批量定价结果
type BatchPricingResult struct {
	BatchID      string
	Results      []*domain.PricingResult
	SuccessCount int
	FailureCount int
}

// BatchPriceBarrierOptions 批量定价，逐一处理并发布批次完成事件
func (c *PricingCommandService) BatchPriceBarrierOptions(ctx context.Context, cmd BatchPriceBarrierOptionsCommand) (*BatchPricingResult, error) {
	results := make([]*domain.PricingResult, 0, len(cmd.Contracts))
	successCount := 0
	failureCount := 0
	totalTime := 0.0

	for _, contract := range cmd.Contracts {
		start := time.Now()
		result, err := c.PriceBarrierOption(ctx, contract)
		totalTime += time.Since(start).Seconds()
		if err != nil {
			failureCount++
			c.logger.WarnContext(ctx, "batch pricing item failed", "symbol", contract.Symbol, "error", err)
			continue
		}
		results = append(results, result)
		successCount++
	}

	avg := 0.0
	if len(cmd.Contracts) > 0 {
		avg = totalTime / float64(len(cmd.Contracts))
	}

	if c.publisher != nil {
		symbols := make([]string, 0, len(cmd.Contracts))
		for _, contract := range cmd.Contracts {
			symbols = append(symbols, contract.Symbol)
		}
		_ = c.publisher.Publish(ctx, domain.BatchPricingCompletedEventType, cmd.BatchID, domain.BatchPricingCompletedEvent{
			BatchID:        cmd.BatchID,
			Symbols:        symbols,
			TotalContracts: len(cmd.Contracts),
			SuccessCount:   successCount,
			FailureCount:   failureCount,
			AverageTime:    avg,
			CompletedAt:    time.Now().Unix(),
			OccurredOn:     time.Now(),
		})
	}

	return &BatchPricingResult{
		BatchID:      cmd.BatchID,
		Results:      results,
		SuccessCount: successCount,
		FailureCount: failureCount,
	}, nil
}
