package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBlackScholes_KnownValues(t *testing.T) {
	input := BlackScholesInput{S: 100, K: 100, T: 1.0, R: 0.05, V: 0.2}

	call := CalculateBlackScholes(PutCallCall, input)
	require.NotNil(t, call)
	assert.InDelta(t, 10.4506, call.Price.InexactFloat64(), 1e-3)
	assert.InDelta(t, 0.6368, call.Delta.InexactFloat64(), 1e-3)

	put := CalculateBlackScholes(PutCallPut, input)
	require.NotNil(t, put)
	assert.InDelta(t, 5.5735, put.Price.InexactFloat64(), 1e-3)
	assert.InDelta(t, -0.3632, put.Delta.InexactFloat64(), 1e-3)
}

func TestCalculateBlackScholes_PutCallParity(t *testing.T) {
	tests := []struct {
		name  string
		input BlackScholesInput
	}{
		{"atm", BlackScholesInput{S: 100, K: 100, T: 1.0, R: 0.05, V: 0.2}},
		{"itm call", BlackScholesInput{S: 120, K: 100, T: 0.5, R: 0.03, V: 0.3}},
		{"with dividend", BlackScholesInput{S: 100, K: 110, T: 2.0, R: 0.04, Q: 0.02, V: 0.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := CalculateBlackScholes(PutCallCall, tt.input)
			put := CalculateBlackScholes(PutCallPut, tt.input)

			// C - P = S*e^(-qT) - K*e^(-rT)
			lhs := call.Price.Sub(put.Price).InexactFloat64()
			rhs := tt.input.S*math.Exp(-tt.input.Q*tt.input.T) - tt.input.K*math.Exp(-tt.input.R*tt.input.T)
			assert.InDelta(t, rhs, lhs, 1e-9)
		})
	}
}
