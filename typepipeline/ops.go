// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package typepipeline

import "github.com/minipgdb/minipg/typelattice"

// unaryResult implements the unary operator table of spec.md §4.4.4: one
// row per operator, operand family to result family. ok is false for any
// operand family not listed, which the checking pass turns into
// UndefinedFunction.
func unaryResult(op string, x typelattice.Family) (result, operand typelattice.Family, ok bool) {
	switch op {
	case "+", "-", "@": // identity, negation, absolute value
		switch x.Kind {
		case typelattice.KInt, typelattice.KFloat, typelattice.KNumeric:
			return x, x, true
		}
	case "~": // bitwise NOT
		if x.Kind == typelattice.KInt {
			return x, x, true
		}
	case "!", "!!": // postfix/prefix factorial
		if x.Kind == typelattice.KInt {
			return typelattice.NumericT(0, 0), x, true
		}
	case "|/", "||/": // square root, cube root
		switch x.Kind {
		case typelattice.KInt, typelattice.KFloat, typelattice.KNumeric:
			return typelattice.FloatT(typelattice.Double), typelattice.FloatT(typelattice.Double), true
		}
	}
	return typelattice.Family{}, typelattice.Family{}, false
}

// binaryResult implements the two binary operator tables of spec.md
// §4.4.4 (arithmetic/temporal, comparison, logical, concat, bitwise).
func binaryResult(op string, l, r typelattice.Family) (result, leftType, rightType typelattice.Family, ok bool) {
	switch {
	case isArithmeticOp(op):
		if l.Kind == typelattice.KTemporal || r.Kind == typelattice.KTemporal {
			res, okT := temporalArithmetic(op, l, r)
			if !okT {
				return typelattice.Family{}, typelattice.Family{}, typelattice.Family{}, false
			}
			return res, l, r, true
		}
		res, okA := arithmeticResult(l, r)
		if !okA {
			return typelattice.Family{}, typelattice.Family{}, typelattice.Family{}, false
		}
		return res, res, res, true

	case isComparisonOp(op):
		if !typelattice.Comparable(l, r) {
			return typelattice.Family{}, typelattice.Family{}, typelattice.Family{}, false
		}
		j, _ := typelattice.Join(l, r)
		return typelattice.Bool, j, j, true

	case op == "AND" || op == "OR":
		if l.Kind == typelattice.KBool && r.Kind == typelattice.KBool {
			return typelattice.Bool, typelattice.Bool, typelattice.Bool, true
		}

	case op == "||":
		// An untyped literal operand takes the other operand's string
		// family, or Text when both operands are untyped.
		lStr := l.Kind == typelattice.KString || l.Kind == typelattice.KUnknown
		rStr := r.Kind == typelattice.KString || r.Kind == typelattice.KUnknown
		if lStr && rStr {
			j, _ := typelattice.Join(l, r)
			if j.Kind == typelattice.KUnknown {
				j = typelattice.StringT(typelattice.Text, 0)
			}
			return j, j, j, true
		}

	case isBitwiseOp(op):
		if l.Kind == typelattice.KInt && r.Kind == typelattice.KInt {
			j, _ := typelattice.Join(l, r)
			return j, j, j, true
		}
	}
	return typelattice.Family{}, typelattice.Family{}, typelattice.Family{}, false
}

func isArithmeticOp(op string) bool {
	switch op {
	case "+", "-", "*", "/", "%", "^":
		return true
	}
	return false
}

func isComparisonOp(op string) bool {
	switch op {
	case "=", "<>", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func isBitwiseOp(op string) bool {
	switch op {
	case "&", "|", "#", "<<", ">>":
		return true
	}
	return false
}

// arithmeticResult is the non-temporal arithmetic table: Int/Float/
// Numeric/Unknown combinations (spec.md §4.4.4 "Binary arithmetic").
func arithmeticResult(l, r typelattice.Family) (typelattice.Family, bool) {
	if l.Kind == typelattice.KUnknown && r.Kind == typelattice.KUnknown {
		return typelattice.Family{}, false
	}
	if l.Kind == typelattice.KUnknown {
		return numericFamilyOnly(r)
	}
	if r.Kind == typelattice.KUnknown {
		return numericFamilyOnly(l)
	}
	switch {
	case l.Kind == typelattice.KInt && r.Kind == typelattice.KInt:
		if l.IntWidth >= r.IntWidth {
			return l, true
		}
		return r, true
	case l.Kind == typelattice.KFloat && r.Kind == typelattice.KFloat:
		return typelattice.FloatT(typelattice.Double), true
	case (l.Kind == typelattice.KInt && r.Kind == typelattice.KFloat) ||
		(l.Kind == typelattice.KFloat && r.Kind == typelattice.KInt):
		return typelattice.FloatT(typelattice.Double), true
	case (l.Kind == typelattice.KFloat && r.Kind == typelattice.KNumeric) ||
		(l.Kind == typelattice.KNumeric && r.Kind == typelattice.KFloat):
		return typelattice.FloatT(typelattice.Double), true
	case (l.Kind == typelattice.KInt && r.Kind == typelattice.KNumeric) ||
		(l.Kind == typelattice.KNumeric && r.Kind == typelattice.KInt):
		return typelattice.NumericT(0, 0), true
	case l.Kind == typelattice.KNumeric && r.Kind == typelattice.KNumeric:
		j, _ := typelattice.Join(l, r)
		return j, true
	}
	return typelattice.Family{}, false
}

func numericFamilyOnly(f typelattice.Family) (typelattice.Family, bool) {
	switch f.Kind {
	case typelattice.KInt, typelattice.KFloat, typelattice.KNumeric:
		return f, true
	}
	return typelattice.Family{}, false
}

// temporalArithmetic covers the date/time/timestamp/interval arithmetic
// rows called out by spec.md §4.4.4 ("enumerated explicitly"). Not
// spelled out in spec.md itself; grounded on the Temporal family supplement
// from original_source/types/src/lib.rs and ordinary PostgreSQL date/time
// arithmetic rules.
func temporalArithmetic(op string, l, r typelattice.Family) (typelattice.Family, bool) {
	plusMinus := op == "+" || op == "-"
	if !plusMinus {
		return typelattice.Family{}, false
	}
	lt, lIsTemporal := leafOf(l)
	rt, rIsTemporal := leafOf(r)

	switch {
	case lIsTemporal && rIsTemporal:
		switch {
		case lt == typelattice.Interval && rt == typelattice.Interval:
			return typelattice.TemporalT(typelattice.Interval), true
		case lt == rt && op == "-":
			// same leaf difference: date-date, time-time, timestamp-timestamp -> interval
			if lt != typelattice.Interval {
				return typelattice.TemporalT(typelattice.Interval), true
			}
		case rt == typelattice.Interval && op == "+":
			return typelattice.TemporalT(lt), true
		case rt == typelattice.Interval && op == "-":
			return typelattice.TemporalT(lt), true
		case lt == typelattice.Interval && op == "+":
			return typelattice.TemporalT(rt), true
		}
		return typelattice.Family{}, false

	case lIsTemporal && r.Kind == typelattice.KInt:
		if lt == typelattice.Date {
			return typelattice.TemporalT(typelattice.Date), true
		}
		return typelattice.Family{}, false

	case rIsTemporal && l.Kind == typelattice.KInt && op == "+":
		if rt == typelattice.Date {
			return typelattice.TemporalT(typelattice.Date), true
		}
		return typelattice.Family{}, false
	}
	return typelattice.Family{}, false
}

func leafOf(f typelattice.Family) (typelattice.TemporalKind, bool) {
	if f.Kind != typelattice.KTemporal {
		return 0, false
	}
	return f.Temporal, true
}
