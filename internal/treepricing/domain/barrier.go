// Package domain 树定价服务领域层
// 1) 定义障碍类型与期权方向
// 2) 定义敲出障碍函数契约及其具体实现
// 3) 定义 CRR 二叉树与逆向归纳求值
package domain

import "fmt"

// BarrierType 障碍类型
type BarrierType string

const (
	BarrierDownAndOut BarrierType = "DOWN_AND_OUT" // 向下敲出
	BarrierUpAndOut   BarrierType = "UP_AND_OUT"   // 向上敲出
	BarrierDownAndIn  BarrierType = "DOWN_AND_IN"  // 向下敲入
	BarrierUpAndIn    BarrierType = "UP_AND_IN"    // 向上敲入
)

// Valid 校验是否为合法枚举值
func (t BarrierType) Valid() bool {
	switch t {
	case BarrierDownAndOut, BarrierUpAndOut, BarrierDownAndIn, BarrierUpAndIn:
		return true
	}
	return false
}

// IsDown 障碍位于现价下方
func (t BarrierType) IsDown() bool {
	return t == BarrierDownAndOut || t == BarrierDownAndIn
}

// IsKnockIn 敲入类型
func (t BarrierType) IsKnockIn() bool {
	return t == BarrierDownAndIn || t == BarrierUpAndIn
}

// KnockOutEquivalent 返回同方向的敲出类型。
// 敲入期权按 vanilla - knockout 合成定价，见 LatticeWalker。
func (t BarrierType) KnockOutEquivalent() BarrierType {
	if t.IsDown() {
		return BarrierDownAndOut
	}
	return BarrierUpAndOut
}

// PutCall 期权方向
type PutCall string

const (
	PutCallCall PutCall = "CALL" // 看涨
	PutCallPut  PutCall = "PUT"  // 看跌
)

// Valid 校验是否为合法枚举值
func (pc PutCall) Valid() bool {
	return pc == PutCallCall || pc == PutCallPut
}

// Sign 看涨为 +1，看跌为 -1
func (pc PutCall) Sign() float64 {
	if pc == PutCallCall {
		return 1
	}
	return -1
}

// ParseBarrierType 解析障碍类型字符串
func ParseBarrierType(s string) (BarrierType, error) {
	t := BarrierType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown barrier type: %q", s)
	}
	return t, nil
}

// ParsePutCall 解析期权方向字符串
func ParsePutCall(s string) (PutCall, error) {
	pc := PutCall(s)
	if !pc.Valid() {
		return "", fmt.Errorf("unknown put/call: %q", s)
	}
	return pc, nil
}
