package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// BlackScholesInput Black-Scholes 模型输入
type BlackScholesInput struct {
	S float64 // 标的资产价格
	K float64 // 执行价格
	T float64 // 到期时间 (年)
	R float64 // 无风险利率
	Q float64 // 股息率
	V float64 // 波动率
}

// BlackScholesResult Black-Scholes 模型输出
type BlackScholesResult struct {
	Price decimal.Decimal
	Delta decimal.Decimal
	Gamma decimal.Decimal
	Theta decimal.Decimal
	Vega  decimal.Decimal
	Rho   decimal.Decimal
}

// CalculateBlackScholes 计算欧式期权解析价格与 Greeks。
// 作为树定价的查询侧参考值，也用于收敛性校验。
func CalculateBlackScholes(putCall PutCall, input BlackScholesInput) *BlackScholesResult {
	sqrtT := math.Sqrt(input.T)
	d1 := (math.Log(input.S/input.K) + (input.R-input.Q+0.5*input.V*input.V)*input.T) / (input.V * sqrtT)
	d2 := d1 - input.V*sqrtT

	dfR := math.Exp(-input.R * input.T)
	dfQ := math.Exp(-input.Q * input.T)

	var price, delta, theta, rho float64
	gamma := dfQ * normPdf(d1) / (input.S * input.V * sqrtT)
	vega := input.S * dfQ * sqrtT * normPdf(d1)

	if putCall == PutCallCall {
		price = input.S*dfQ*normCdf(d1) - input.K*dfR*normCdf(d2)
		delta = dfQ * normCdf(d1)
		theta = -input.S*dfQ*normPdf(d1)*input.V/(2*sqrtT) -
			input.R*input.K*dfR*normCdf(d2) + input.Q*input.S*dfQ*normCdf(d1)
		rho = input.K * input.T * dfR * normCdf(d2)
	} else {
		price = input.K*dfR*normCdf(-d2) - input.S*dfQ*normCdf(-d1)
		delta = dfQ * (normCdf(d1) - 1)
		theta = -input.S*dfQ*normPdf(d1)*input.V/(2*sqrtT) +
			input.R*input.K*dfR*normCdf(-d2) - input.Q*input.S*dfQ*normCdf(-d1)
		rho = -input.K * input.T * dfR * normCdf(-d2)
	}

	return &BlackScholesResult{
		Price: decimal.NewFromFloat(price),
		Delta: decimal.NewFromFloat(delta),
		Gamma: decimal.NewFromFloat(gamma),
		Theta: decimal.NewFromFloat(theta),
		Vega:  decimal.NewFromFloat(vega),
		Rho:   decimal.NewFromFloat(rho),
	}
}

// normCdf 标准正态分布累积分布函数
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPdf 标准正态分布概率密度函数
func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
