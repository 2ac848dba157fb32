package calculator_test

import (
	"math"
	"testing"

	"github.com/aretw0/keypad/pkg/calculator"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		prev, cur string
		op        domain.Operator
		want      string
	}{
		{"3", "4", domain.OperatorAdd, "7"},
		{"3", "4", domain.OperatorSubtract, "-1"},
		{"6", "7", domain.OperatorMultiply, "42"},
		{"1", "4", domain.OperatorDivide, "0.25"},
		{"0.1", "0.2", domain.OperatorAdd, "0.30000000000000004"},
		{"4", "0", domain.OperatorDivide, "Infinity"},
		{"-4", "0", domain.OperatorDivide, "-Infinity"},
		{"0", "0", domain.OperatorDivide, "NaN"},
		{"1000000000", "1000000000000", domain.OperatorMultiply, "1e+21"},
		{"3.", "2", domain.OperatorMultiply, "6"},
		{".5", "2", domain.OperatorMultiply, "1"},
		{"Infinity", "1", domain.OperatorAdd, "Infinity"},
		{"", "1", domain.OperatorAdd, ""},
		{".", "1", domain.OperatorAdd, ""},
		{"-", "1", domain.OperatorAdd, ""},
		{"NaN", "1", domain.OperatorAdd, ""},
		{"1", "2", "%", ""},
	}

	for _, tt := range tests {
		got := calculator.Evaluate(tt.prev, tt.cur, tt.op)
		assert.Equal(t, tt.want, got, "%q %s %q", tt.prev, tt.op, tt.cur)
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"42", 42},
		{"  42", 42},
		{"-3.5", -3.5},
		{"+2", 2},
		{"12abc", 12},
		{"1.2.3", 1.2},
		{"1e3", 1000},
		{"1e", 1},
		{"1e+", 1},
		{"2E-2", 0.02},
		{"0x10", 0},
		{"-Infinity", math.Inf(-1)},
		{"1e400", math.Inf(1)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, calculator.ParseFloat(tt.in), "ParseFloat(%q)", tt.in)
	}

	for _, bad := range []string{"", "-", ".", "-.", "abc", "e5", "NaN"} {
		assert.True(t, math.IsNaN(calculator.ParseFloat(bad)), "ParseFloat(%q) should be NaN", bad)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{7, "7"},
		{-1, "-1"},
		{123.456, "123.456"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{1.5e-7, "1.5e-7"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.2345e25, "1.2345e+25"},
		{math.MaxFloat64, "1.7976931348623157e+308"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, calculator.FormatNumber(tt.in))
	}
}
