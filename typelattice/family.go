// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package typelattice implements the closed SQL type family lattice that
// every other layer of the query pipeline is built on: type inference,
// checking and coercion all operate over the Family values defined here.
package typelattice

import "fmt"

// Kind identifies one of the closed top-level type families.
type Kind uint8

const (
	// KUnknown is the sentinel family of an untyped NULL or literal.
	KUnknown Kind = iota
	KInt
	KFloat
	KString
	KNumeric
	KBool
	KTemporal
)

func (k Kind) String() string {
	switch k {
	case KUnknown:
		return "unknown"
	case KInt:
		return "int"
	case KFloat:
		return "float"
	case KString:
		return "string"
	case KNumeric:
		return "numeric"
	case KBool:
		return "bool"
	case KTemporal:
		return "temporal"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IntWidth enumerates the Int family variants, ordered SmallInt < Integer < BigInt.
type IntWidth uint8

const (
	SmallInt IntWidth = iota
	Integer
	BigInt
)

func (w IntWidth) String() string {
	switch w {
	case SmallInt:
		return "smallint"
	case Integer:
		return "integer"
	case BigInt:
		return "bigint"
	default:
		return "int?"
	}
}

// FloatWidth enumerates the Float family variants, ordered Real < Double.
type FloatWidth uint8

const (
	Real FloatWidth = iota
	Double
)

func (w FloatWidth) String() string {
	if w == Real {
		return "real"
	}
	return "double precision"
}

// StringKind enumerates the String family variants, ordered Char < VarChar < Text.
type StringKind uint8

const (
	Char StringKind = iota
	VarChar
	Text
)

func (k StringKind) String() string {
	switch k {
	case Char:
		return "char"
	case VarChar:
		return "varchar"
	case Text:
		return "text"
	default:
		return "string?"
	}
}

// TemporalKind enumerates the Temporal family's mutually incomparable leaves.
// Supplemented from original_source/types/src/lib.rs; see SPEC_FULL.md §3.
type TemporalKind uint8

const (
	Date TemporalKind = iota
	Time
	Timestamp
	Interval
)

func (k TemporalKind) String() string {
	switch k {
	case Date:
		return "date"
	case Time:
		return "time"
	case Timestamp:
		return "timestamp"
	case Interval:
		return "interval"
	default:
		return "temporal?"
	}
}

// Family is a fully-described SQL type: a Kind plus whatever parameters
// that Kind carries (int/float width, string length, numeric precision,
// temporal leaf). The zero Family is KUnknown, the type of an untyped NULL.
//
// The lattice is fixed at compile time: adding a family or a variant
// requires a code change here, never configuration (spec.md §3 invariant).
type Family struct {
	Kind Kind

	// Int / Float / String / Temporal discriminators; only the field
	// matching Kind is meaningful.
	IntWidth   IntWidth
	FloatWidth FloatWidth
	StrKind    StringKind
	StrLen     int // Char(n)/VarChar(n); 0 means VarChar with no declared limit or Text
	Temporal   TemporalKind

	// Numeric(precision, scale); zero values mean "unconstrained numeric".
	Precision int
	Scale     int
}

// Unknown is the Family of an untyped NULL or literal.
var Unknown = Family{Kind: KUnknown}

// Bool is the sole Bool family value.
var Bool = Family{Kind: KBool}

// Int constructs an Int family of the given width.
func Int(w IntWidth) Family { return Family{Kind: KInt, IntWidth: w} }

// FloatT constructs a Float family of the given width. Named FloatT to
// avoid shadowing the builtin float identifiers.
func FloatT(w FloatWidth) Family { return Family{Kind: KFloat, FloatWidth: w} }

// StringT constructs a String family variant.
func StringT(k StringKind, length int) Family {
	return Family{Kind: KString, StrKind: k, StrLen: length}
}

// NumericT constructs a (possibly parameterized) Numeric family.
func NumericT(precision, scale int) Family {
	return Family{Kind: KNumeric, Precision: precision, Scale: scale}
}

// TemporalT constructs a Temporal family leaf.
func TemporalT(t TemporalKind) Family { return Family{Kind: KTemporal, Temporal: t} }

// String renders the family the way the catalog and RowDescription would
// print a declared column type.
func (f Family) String() string {
	switch f.Kind {
	case KInt:
		return f.IntWidth.String()
	case KFloat:
		return f.FloatWidth.String()
	case KString:
		switch f.StrKind {
		case Char:
			return fmt.Sprintf("char(%d)", f.StrLen)
		case VarChar:
			if f.StrLen > 0 {
				return fmt.Sprintf("varchar(%d)", f.StrLen)
			}
			return "varchar"
		default:
			return "text"
		}
	case KNumeric:
		if f.Precision > 0 {
			return fmt.Sprintf("numeric(%d,%d)", f.Precision, f.Scale)
		}
		return "numeric"
	case KBool:
		return "boolean"
	case KTemporal:
		return f.Temporal.String()
	default:
		return "unknown"
	}
}

// Equal reports whether two families are the exact same variant
// (ignoring cosmetic length/precision parameters where the spec treats
// them as non-discriminating — Char/VarChar length does not affect
// lattice comparisons, only storage/range checks).
func (f Family) Equal(g Family) bool {
	if f.Kind != g.Kind {
		return false
	}
	switch f.Kind {
	case KInt:
		return f.IntWidth == g.IntWidth
	case KFloat:
		return f.FloatWidth == g.FloatWidth
	case KString:
		return f.StrKind == g.StrKind
	case KTemporal:
		return f.Temporal == g.Temporal
	default:
		return true
	}
}
