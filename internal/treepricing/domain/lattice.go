package domain

import (
	"errors"
	"fmt"
	"math"
)

// CRRLattice Cox-Ross-Rubinstein 重组二叉树。
// 正向生成资产价格网格，u*d=1，节点在层内按上行次数从 0 递增排列。
type CRRLattice struct {
	spot          float64
	volatility    float64
	rate          float64
	dividendYield float64
	timeToExpiry  float64
	numberOfSteps int

	dt       float64
	up       float64
	down     float64
	probUp   float64
	probDown float64
	discount float64 // 单步贴现因子
}

// NewCRRLattice 创建 CRR 树。
// 风险中性概率必须落在 (0,1) 内，否则参数组合无效（步长过大或波动率过低）。
func NewCRRLattice(spot, volatility, rate, dividendYield, timeToExpiry float64, numberOfSteps int) (*CRRLattice, error) {
	if spot <= 0 {
		return nil, errors.New("spot should be positive")
	}
	if volatility <= 0 {
		return nil, errors.New("volatility should be positive")
	}
	if timeToExpiry <= 0 {
		return nil, errors.New("time to expiry should be positive")
	}
	if numberOfSteps <= 0 {
		return nil, errors.New("the number of steps should be positive")
	}

	dt := timeToExpiry / float64(numberOfSteps)
	up := math.Exp(volatility * math.Sqrt(dt))
	down := 1 / up
	probUp := (math.Exp((rate-dividendYield)*dt) - down) / (up - down)
	if probUp <= 0 || probUp >= 1 {
		return nil, fmt.Errorf("invalid lattice parameters: risk neutral probability %f out of (0,1)", probUp)
	}

	return &CRRLattice{
		spot:          spot,
		volatility:    volatility,
		rate:          rate,
		dividendYield: dividendYield,
		timeToExpiry:  timeToExpiry,
		numberOfSteps: numberOfSteps,
		dt:            dt,
		up:            up,
		down:          down,
		probUp:        probUp,
		probDown:      1 - probUp,
		discount:      math.Exp(-rate * dt),
	}, nil
}

// NumberOfSteps 时间步数
func (l *CRRLattice) NumberOfSteps() int { return l.numberOfSteps }

// StepSize 单步年化时长
func (l *CRRLattice) StepSize() float64 { return l.dt }

// AssetPrice 第 step 层第 node 个节点的资产价格（node 为上行次数，0 <= node <= step）
func (l *CRRLattice) AssetPrice(step, node int) float64 {
	return l.spot * math.Pow(l.up, float64(node)) * math.Pow(l.down, float64(step-node))
}

// AssetPrices 第 step 层全部节点的资产价格
func (l *CRRLattice) AssetPrices(step int) []float64 {
	prices := make([]float64, step+1)
	for node := 0; node <= step; node++ {
		prices[node] = l.AssetPrice(step, node)
	}
	return prices
}

// LatticeResult 树定价结果，希腊字母由树的前两层节点值直接读出。
type LatticeResult struct {
	Price float64
	Delta float64
	Gamma float64
	Theta float64
}

// LatticeWalker 逆向归纳遍历器。
// 从到期层向时间零点逐层回溯，每个节点通过 BarrierKnockoutFunction
// 查询障碍水平与返还金额并覆盖节点值，贴现与期望运算由遍历器负责。
type LatticeWalker struct {
	lattice *CRRLattice
}

// NewLatticeWalker 创建遍历器
func NewLatticeWalker(lattice *CRRLattice) *LatticeWalker {
	return &LatticeWalker{lattice: lattice}
}

// PriceKnockout 对敲出障碍期权执行逆向归纳。
// 敲入类型不由本契约求值，调用方应以 vanilla - knockout 合成，传入敲入类型返回错误。
// 每个节点按以下顺序赋值：
//  1. 触碰判定（相等视为触碰）→ 节点值为该层返还金额；
//  2. 到期层未触碰 → 节点值为 max(sign*(S-K), 0)；
//  3. 内部层未触碰 → 节点值为后继节点值的贴现期望。
func (w *LatticeWalker) PriceKnockout(fn BarrierKnockoutFunction) (*LatticeResult, error) {
	if fn.BarrierType().IsKnockIn() {
		return nil, errors.New("knock-in barrier is not evaluated directly, synthesize as vanilla minus knockout")
	}
	if fn.NumberOfSteps() != w.lattice.numberOfSteps {
		return nil, fmt.Errorf("step count mismatch: function has %d, lattice has %d",
			fn.NumberOfSteps(), w.lattice.numberOfSteps)
	}
	return w.walk(fn, true)
}

// PriceVanilla 在同一棵树上对普通欧式期权执行逆向归纳，忽略障碍。
// 用于敲入合成与收敛性校验。
func (w *LatticeWalker) PriceVanilla(fn BarrierKnockoutFunction) (*LatticeResult, error) {
	if fn.NumberOfSteps() != w.lattice.numberOfSteps {
		return nil, fmt.Errorf("step count mismatch: function has %d, lattice has %d",
			fn.NumberOfSteps(), w.lattice.numberOfSteps)
	}
	return w.walk(fn, false)
}

func (w *LatticeWalker) walk(fn BarrierKnockoutFunction, withBarrier bool) (*LatticeResult, error) {
	lat := w.lattice
	n := lat.numberOfSteps
	sign := fn.Sign()
	strike := fn.Strike()

	// 到期层
	values := make([]float64, n+1)
	for node := 0; node <= n; node++ {
		price := lat.AssetPrice(n, node)
		if withBarrier && Breached(fn.BarrierType(), price, fn.BarrierLevel(n)) {
			values[node] = fn.Rebate(n)
			continue
		}
		values[node] = TerminalPayoff(sign, price, strike)
	}

	// 逐层回溯，保留第 2/1/0 层节点值用于希腊字母
	var layer2, layer1 []float64
	switch n {
	case 1:
		layer1 = append([]float64(nil), values...)
	case 2:
		layer2 = append([]float64(nil), values...)
	}
	for step := n - 1; step >= 0; step-- {
		next := values
		values = make([]float64, step+1)
		for node := 0; node <= step; node++ {
			price := lat.AssetPrice(step, node)
			if withBarrier && Breached(fn.BarrierType(), price, fn.BarrierLevel(step)) {
				values[node] = fn.Rebate(step)
				continue
			}
			values[node] = lat.discount * (lat.probUp*next[node+1] + lat.probDown*next[node])
		}
		switch step {
		case 2:
			layer2 = append([]float64(nil), values...)
		case 1:
			layer1 = append([]float64(nil), values...)
		}
	}

	result := &LatticeResult{Price: values[0]}
	if layer1 != nil {
		sUp := lat.AssetPrice(1, 1)
		sDown := lat.AssetPrice(1, 0)
		result.Delta = (layer1[1] - layer1[0]) / (sUp - sDown)
	}
	if layer2 != nil {
		sUU := lat.AssetPrice(2, 2)
		sMid := lat.AssetPrice(2, 1)
		sDD := lat.AssetPrice(2, 0)
		deltaUp := (layer2[2] - layer2[1]) / (sUU - sMid)
		deltaDown := (layer2[1] - layer2[0]) / (sMid - sDD)
		result.Gamma = (deltaUp - deltaDown) / (0.5 * (sUU - sDD))
		// u*d=1 时第 2 层中间节点价格回到现价
		result.Theta = (layer2[1] - values[0]) / (2 * lat.dt)
	}
	return result, nil
}
