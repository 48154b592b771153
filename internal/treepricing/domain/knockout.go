package domain

import "errors"

// BarrierKnockoutFunction 敲出障碍函数契约。
// 树遍历器在每个时间层通过本契约查询：该层的障碍水平、触碰后的返还金额，
// 以及静态参数（行权价、符号、步数等）。具体实现决定障碍随时间如何变化，
// 遍历器本身不感知实现类型。
//
// step 取值范围为 [0, NumberOfSteps]，树共有 NumberOfSteps+1 层。
// 越界的 step 属于调用方编程错误，由切片下标检查直接 panic，不做兜底。
type BarrierKnockoutFunction interface {
	// Strike 行权价
	Strike() float64
	// TimeToExpiry 到期时间（年）
	TimeToExpiry() float64
	// Sign 看涨 +1 / 看跌 -1
	Sign() float64
	// NumberOfSteps 时间步数
	NumberOfSteps() int
	// BarrierType 障碍类型
	BarrierType() BarrierType
	// BarrierLevel 第 step 层的障碍水平
	BarrierLevel(step int) float64
	// Rebate 第 step 层检测到触碰时立即支付的返还金额
	Rebate(step int) float64
}

// ConstantContinuousBarrierKnockoutFunction 常数连续障碍敲出函数。
// 障碍水平在所有时间层上固定不变，返还金额可按层配置。
// 构造后不可变，可在多个并发定价任务间共享。
type ConstantContinuousBarrierKnockoutFunction struct {
	strike        float64
	timeToExpiry  float64
	sign          float64
	numberOfSteps int
	barrierType   BarrierType
	barrierLevel  float64
	rebate        []float64
}

// NewConstantContinuousBarrierKnockout 创建常数障碍敲出函数。
// numberOfSteps 必须为正，rebate 长度必须等于 numberOfSteps+1。
func NewConstantContinuousBarrierKnockout(
	strike, timeToExpiry float64,
	putCall PutCall,
	numberOfSteps int,
	barrierType BarrierType,
	barrierLevel float64,
	rebate []float64,
) (*ConstantContinuousBarrierKnockoutFunction, error) {
	if numberOfSteps <= 0 {
		return nil, errors.New("the number of steps should be positive")
	}
	if len(rebate) != numberOfSteps+1 {
		return nil, errors.New("the size of rebate should be numberOfSteps + 1")
	}
	if !putCall.Valid() {
		return nil, errors.New("put/call is required")
	}
	if !barrierType.Valid() {
		return nil, errors.New("barrier type is required")
	}
	r := make([]float64, len(rebate))
	copy(r, rebate)
	return &ConstantContinuousBarrierKnockoutFunction{
		strike:        strike,
		timeToExpiry:  timeToExpiry,
		sign:          putCall.Sign(),
		numberOfSteps: numberOfSteps,
		barrierType:   barrierType,
		barrierLevel:  barrierLevel,
		rebate:        r,
	}, nil
}

func (f *ConstantContinuousBarrierKnockoutFunction) Strike() float64          { return f.strike }
func (f *ConstantContinuousBarrierKnockoutFunction) TimeToExpiry() float64    { return f.timeToExpiry }
func (f *ConstantContinuousBarrierKnockoutFunction) Sign() float64            { return f.sign }
func (f *ConstantContinuousBarrierKnockoutFunction) NumberOfSteps() int       { return f.numberOfSteps }
func (f *ConstantContinuousBarrierKnockoutFunction) BarrierType() BarrierType { return f.barrierType }

// BarrierLevel 任意层均返回同一障碍水平
func (f *ConstantContinuousBarrierKnockoutFunction) BarrierLevel(step int) float64 {
	return f.barrierLevel
}

// Rebate 返回第 step 层的返还金额，越界 panic
func (f *ConstantContinuousBarrierKnockoutFunction) Rebate(step int) float64 {
	return f.rebate[step]
}

// TimeVaryingBarrierKnockoutFunction 时变障碍敲出函数。
// 障碍水平与返还金额均按时间层配置，常见于阶梯障碍结构。
type TimeVaryingBarrierKnockoutFunction struct {
	strike        float64
	timeToExpiry  float64
	sign          float64
	numberOfSteps int
	barrierType   BarrierType
	barrierLevels []float64
	rebate        []float64
}

// NewTimeVaryingBarrierKnockout 创建时变障碍敲出函数。
// barrierLevels 与 rebate 的长度都必须等于 numberOfSteps+1。
func NewTimeVaryingBarrierKnockout(
	strike, timeToExpiry float64,
	putCall PutCall,
	numberOfSteps int,
	barrierType BarrierType,
	barrierLevels, rebate []float64,
) (*TimeVaryingBarrierKnockoutFunction, error) {
	if numberOfSteps <= 0 {
		return nil, errors.New("the number of steps should be positive")
	}
	if len(barrierLevels) != numberOfSteps+1 {
		return nil, errors.New("the size of barrierLevels should be numberOfSteps + 1")
	}
	if len(rebate) != numberOfSteps+1 {
		return nil, errors.New("the size of rebate should be numberOfSteps + 1")
	}
	if !putCall.Valid() {
		return nil, errors.New("put/call is required")
	}
	if !barrierType.Valid() {
		return nil, errors.New("barrier type is required")
	}
	b := make([]float64, len(barrierLevels))
	copy(b, barrierLevels)
	r := make([]float64, len(rebate))
	copy(r, rebate)
	return &TimeVaryingBarrierKnockoutFunction{
		strike:        strike,
		timeToExpiry:  timeToExpiry,
		sign:          putCall.Sign(),
		numberOfSteps: numberOfSteps,
		barrierType:   barrierType,
		barrierLevels: b,
		rebate:        r,
	}, nil
}

func (f *TimeVaryingBarrierKnockoutFunction) Strike() float64          { return f.strike }
func (f *TimeVaryingBarrierKnockoutFunction) TimeToExpiry() float64    { return f.timeToExpiry }
func (f *TimeVaryingBarrierKnockoutFunction) Sign() float64            { return f.sign }
func (f *TimeVaryingBarrierKnockoutFunction) NumberOfSteps() int       { return f.numberOfSteps }
func (f *TimeVaryingBarrierKnockoutFunction) BarrierType() BarrierType { return f.barrierType }

// BarrierLevel 返回第 step 层的障碍水平，越界 panic
func (f *TimeVaryingBarrierKnockoutFunction) BarrierLevel(step int) float64 {
	return f.barrierLevels[step]
}

// Rebate 返回第 step 层的返还金额，越界 panic
func (f *TimeVaryingBarrierKnockoutFunction) Rebate(step int) float64 {
	return f.rebate[step]
}

// Breached 判断资产价格是否触碰障碍。
// 相等视为触碰，与连续监控惯例一致；该判定只对敲出类型有意义。
func Breached(barrierType BarrierType, assetPrice, barrierLevel float64) bool {
	if barrierType.IsDown() {
		return assetPrice <= barrierLevel
	}
	return assetPrice >= barrierLevel
}

// TerminalPayoff 无触碰情况下的到期收益 max(sign*(S-K), 0)
func TerminalPayoff(sign, assetPrice, strike float64) float64 {
	payoff := sign * (assetPrice - strike)
	if payoff < 0 {
		return 0
	}
	return payoff
}
