// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package exec

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/minipgdb/minipg/typelattice"
)

// evalArithmetic evaluates +,-,*,/,%,^ once both operands have already
// been coerced (by the type pipeline's Coerce pass) to a common family
// matching result.Kind.
func evalArithmetic(op string, l, r typelattice.Value, result typelattice.Family) (typelattice.Value, error) {
	switch result.Kind {
	case typelattice.KInt:
		li, ri := l.Int64(), r.Int64()
		switch op {
		case "+":
			return rangeCheckedInt(result, li+ri)
		case "-":
			return rangeCheckedInt(result, li-ri)
		case "*":
			return rangeCheckedInt(result, li*ri)
		case "/":
			if ri == 0 {
				return typelattice.Value{}, ErrDivisionByZero
			}
			return rangeCheckedInt(result, li/ri)
		case "%":
			if ri == 0 {
				return typelattice.Value{}, ErrDivisionByZero
			}
			return rangeCheckedInt(result, li%ri)
		case "^":
			if ri < 0 {
				return typelattice.Value{}, &InvalidArgumentForPowerError{Base: itoa(li), Exponent: itoa(ri)}
			}
			return rangeCheckedInt(result, ipow(li, ri))
		}

	case typelattice.KFloat:
		lf, rf := l.Float64(), r.Float64()
		switch op {
		case "+":
			return typelattice.NewFloat(result.FloatWidth, lf+rf), nil
		case "-":
			return typelattice.NewFloat(result.FloatWidth, lf-rf), nil
		case "*":
			return typelattice.NewFloat(result.FloatWidth, lf*rf), nil
		case "/":
			if rf == 0 {
				return typelattice.Value{}, ErrDivisionByZero
			}
			return typelattice.NewFloat(result.FloatWidth, lf/rf), nil
		case "%":
			if rf == 0 {
				return typelattice.Value{}, ErrDivisionByZero
			}
			return typelattice.NewFloat(result.FloatWidth, math.Mod(lf, rf)), nil
		case "^":
			if lf < 0 && rf != math.Trunc(rf) {
				return typelattice.Value{}, &InvalidArgumentForPowerError{Base: ftoa(lf), Exponent: ftoa(rf)}
			}
			return typelattice.NewFloat(result.FloatWidth, math.Pow(lf, rf)), nil
		}

	case typelattice.KNumeric:
		ld, rd := l.Numeric(), r.Numeric()
		switch op {
		case "+":
			return typelattice.NewNumeric(result.Precision, result.Scale, ld.Add(rd)), nil
		case "-":
			return typelattice.NewNumeric(result.Precision, result.Scale, ld.Sub(rd)), nil
		case "*":
			return typelattice.NewNumeric(result.Precision, result.Scale, ld.Mul(rd)), nil
		case "/":
			if rd.IsZero() {
				return typelattice.Value{}, ErrDivisionByZero
			}
			return typelattice.NewNumeric(result.Precision, result.Scale, ld.Div(rd)), nil
		case "%":
			if rd.IsZero() {
				return typelattice.Value{}, ErrDivisionByZero
			}
			return typelattice.NewNumeric(result.Precision, result.Scale, ld.Mod(rd)), nil
		case "^":
			if ld.IsNegative() && !rd.Equal(rd.Truncate(0)) {
				return typelattice.Value{}, &InvalidArgumentForPowerError{Base: ld.String(), Exponent: rd.String()}
			}
			return typelattice.NewNumeric(result.Precision, result.Scale, numericPow(ld, rd)), nil
		}

	case typelattice.KTemporal:
		return evalTemporalArithmetic(op, l, r, result)
	}
	return typelattice.Value{}, unsupportedOp(op, l.Family, r.Family)
}

// ipow raises an integer base to a non-negative integer exponent by
// repeated squaring.
func ipow(base, exp int64) int64 {
	var result int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

// numericPow raises a decimal base to a decimal exponent. An
// integer-valued exponent is computed exactly by repeated squaring;
// fractional exponents (only reachable with a non-negative base, per
// the InvalidArgumentForPowerError guard above) fall back to float64
// since shopspring/decimal has no general real-exponent power.
func numericPow(base, exp decimal.Decimal) decimal.Decimal {
	if exp.Equal(exp.Truncate(0)) {
		n := exp.IntPart()
		if n >= 0 {
			return decimalIPow(base, n)
		}
		return decimal.NewFromInt(1).Div(decimalIPow(base, -n))
	}
	bf, _ := base.Float64()
	ef, _ := exp.Float64()
	return decimal.NewFromFloat(math.Pow(bf, ef))
}

func decimalIPow(base decimal.Decimal, n int64) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

func evalCompare(op string, l, r typelattice.Value) (typelattice.Value, error) {
	cmp, err := compareValues(l, r)
	if err != nil {
		return typelattice.Value{}, err
	}
	switch op {
	case "=":
		return typelattice.NewBool(cmp == 0), nil
	case "<>":
		return typelattice.NewBool(cmp != 0), nil
	case "<":
		return typelattice.NewBool(cmp < 0), nil
	case "<=":
		return typelattice.NewBool(cmp <= 0), nil
	case ">":
		return typelattice.NewBool(cmp > 0), nil
	case ">=":
		return typelattice.NewBool(cmp >= 0), nil
	}
	return typelattice.Value{}, unsupportedOp(op, l.Family, r.Family)
}

// compareValues returns -1/0/1. Both operands share a family (the
// coercion pass casts them to their lattice join before evaluation).
func compareValues(l, r typelattice.Value) (int, error) {
	switch l.Family.Kind {
	case typelattice.KInt:
		return cmpInt64(l.Int64(), r.Int64()), nil
	case typelattice.KFloat:
		return cmpFloat64(l.Float64(), r.Float64()), nil
	case typelattice.KNumeric:
		return int(l.Numeric().Cmp(r.Numeric())), nil
	case typelattice.KString, typelattice.KTemporal:
		return strings.Compare(l.Str(), r.Str()), nil
	case typelattice.KBool:
		return cmpBool(l.Bool(), r.Bool()), nil
	}
	return 0, unsupportedOp("compare", l.Family, r.Family)
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a && b:
		return -1
	default:
		return 1
	}
}

func evalBitwise(op string, l, r typelattice.Value, result typelattice.Family) (typelattice.Value, error) {
	li, ri := l.Int64(), r.Int64()
	switch op {
	case "&":
		return rangeCheckedInt(result, li&ri)
	case "|":
		return rangeCheckedInt(result, li|ri)
	case "#":
		return rangeCheckedInt(result, li^ri)
	case "<<":
		return rangeCheckedInt(result, li<<uint(ri))
	case ">>":
		return rangeCheckedInt(result, li>>uint(ri))
	}
	return typelattice.Value{}, unsupportedOp(op, l.Family, r.Family)
}

func evalUnaryArith(op string, x typelattice.Value, result typelattice.Family) (typelattice.Value, error) {
	switch result.Kind {
	case typelattice.KInt:
		v := x.Int64()
		switch op {
		case "+":
			return rangeCheckedInt(result, v)
		case "-":
			return rangeCheckedInt(result, -v)
		case "@":
			if v < 0 {
				v = -v
			}
			return rangeCheckedInt(result, v)
		case "~":
			return rangeCheckedInt(result, ^v)
		}
	case typelattice.KFloat:
		v := x.Float64()
		switch op {
		case "+":
			return typelattice.NewFloat(result.FloatWidth, v), nil
		case "-":
			return typelattice.NewFloat(result.FloatWidth, -v), nil
		case "@":
			return typelattice.NewFloat(result.FloatWidth, math.Abs(v)), nil
		}
	case typelattice.KNumeric:
		v := x.Numeric()
		switch op {
		case "+":
			return typelattice.NewNumeric(result.Precision, result.Scale, v), nil
		case "-":
			return typelattice.NewNumeric(result.Precision, result.Scale, v.Neg()), nil
		case "@":
			return typelattice.NewNumeric(result.Precision, result.Scale, v.Abs()), nil
		}
	}
	return typelattice.Value{}, unsupportedOp(op, x.Family, typelattice.Family{})
}

// evalFactorial and evalRoot implement the remaining unary operators,
// which always produce a Numeric/Double result regardless of operand
// family (per typepipeline's unaryResult table).
func evalFactorial(x typelattice.Value) (typelattice.Value, error) {
	n := x.Int64()
	if n < 0 {
		return typelattice.Value{}, &InvalidArgumentForPowerError{Base: itoa(n), Exponent: "!"}
	}
	acc := decimal.NewFromInt(1)
	for i := int64(2); i <= n; i++ {
		acc = acc.Mul(decimal.NewFromInt(i))
	}
	return typelattice.NewNumeric(0, 0, acc), nil
}

func evalRoot(op string, x typelattice.Value) (typelattice.Value, error) {
	v := x.Float64()
	if v < 0 {
		return typelattice.Value{}, &InvalidArgumentForPowerError{Base: ftoa(v), Exponent: op}
	}
	if op == "|/" {
		return typelattice.NewFloat(typelattice.Double, math.Sqrt(v)), nil
	}
	return typelattice.NewFloat(typelattice.Double, math.Cbrt(v)), nil
}
