// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package typelattice

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Value is a typed runtime datum: either Null tagged with a family, or a
// payload whose Go representation matches the family (spec.md §3).
type Value struct {
	Family  Family
	Null    bool
	i       int64   // SmallInt/Integer/BigInt
	f       float64 // Real/Double
	s       string  // Char/VarChar/Text, and raw text for Temporal
	b       bool    // Bool
	numeric decimal.Decimal
}

// NewNull builds a typed null value.
func NewNull(f Family) Value { return Value{Family: f, Null: true} }

// NewInt builds an Int value of the given width.
func NewInt(w IntWidth, v int64) Value { return Value{Family: Int(w), i: v} }

// NewFloat builds a Float value of the given width.
func NewFloat(w FloatWidth, v float64) Value { return Value{Family: FloatT(w), f: v} }

// NewString builds a String value.
func NewString(k StringKind, length int, v string) Value {
	return Value{Family: StringT(k, length), s: v}
}

// NewBool builds a Bool value.
func NewBool(v bool) Value { return Value{Family: Bool, b: v} }

// NewNumeric builds a Numeric value from a decimal.Decimal.
func NewNumeric(precision, scale int, v decimal.Decimal) Value {
	return Value{Family: NumericT(precision, scale), numeric: v}
}

// NewTemporal builds a Temporal value; v is the canonical text form
// (e.g. "2024-01-02" for Date), parsed lazily by arithmetic/comparison.
func NewTemporal(k TemporalKind, v string) Value {
	return Value{Family: TemporalT(k), s: v}
}

// Int64 returns the integer payload; only meaningful for Int-family values.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the float payload; only meaningful for Float-family values.
func (v Value) Float64() float64 { return v.f }

// Str returns the string/temporal-text payload.
func (v Value) Str() string { return v.s }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Numeric returns the decimal payload.
func (v Value) Numeric() decimal.Decimal { return v.numeric }

// Text renders a value the way the read executor stringifies a DataRow
// field: PostgreSQL text format, NULL as an empty string marker handled
// by the caller (NULL is distinguished via Value.Null, not by the text).
func (v Value) Text() string {
	if v.Null {
		return ""
	}
	switch v.Family.Kind {
	case KInt:
		return strconv.FormatInt(v.i, 10)
	case KFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KString, KTemporal:
		return v.s
	case KBool:
		if v.b {
			return "t"
		}
		return "f"
	case KNumeric:
		return v.numeric.String()
	default:
		return fmt.Sprintf("%v", v.i)
	}
}
