// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package typelattice

// LessEq implements the partial order ≤ defined in spec.md §3:
//
//	Unknown ≤ everything
//	within a family, variants are totally ordered as listed on the type
//	cross-family: Int < Float, Int < Numeric, Numeric < Float
//	Bool and String are incomparable to everything but themselves/Unknown
//	Temporal is incomparable to everything but itself/Unknown, and only
//	to the *same* temporal leaf (spec.md §8's String(*)-is-incomparable
//	rule applies identically here per SPEC_FULL.md §3).
func LessEq(a, b Family) bool {
	if a.Kind == KUnknown {
		return true
	}
	if a.Equal(b) {
		return true
	}
	switch a.Kind {
	case KInt:
		switch b.Kind {
		case KInt:
			return a.IntWidth <= b.IntWidth
		case KFloat, KNumeric:
			return true
		}
		return false
	case KFloat:
		if b.Kind == KFloat {
			return a.FloatWidth <= b.FloatWidth
		}
		return false
	case KString:
		if b.Kind == KString {
			return a.StrKind <= b.StrKind
		}
		return false
	case KNumeric:
		if b.Kind == KFloat {
			return true
		}
		return false
	case KBool, KTemporal:
		return false
	default:
		return false
	}
}

// Join returns the least upper bound of a and b, and false if none
// exists (an incomparable pair — a type-mismatch error one level up).
func Join(a, b Family) (Family, bool) {
	if a.Kind == KUnknown {
		return b, true
	}
	if b.Kind == KUnknown {
		return a, true
	}
	if a.Equal(b) {
		return widest(a, b), true
	}
	switch {
	case a.Kind == KInt && b.Kind == KInt:
		if a.IntWidth >= b.IntWidth {
			return a, true
		}
		return b, true
	case a.Kind == KFloat && b.Kind == KFloat:
		if a.FloatWidth >= b.FloatWidth {
			return a, true
		}
		return b, true
	case a.Kind == KString && b.Kind == KString:
		if a.StrKind >= b.StrKind {
			return a, true
		}
		return b, true
	case a.Kind == KInt && b.Kind == KFloat, a.Kind == KFloat && b.Kind == KInt:
		return FloatT(Double), true
	case a.Kind == KInt && b.Kind == KNumeric, a.Kind == KNumeric && b.Kind == KInt:
		return NumericT(0, 0), true
	case a.Kind == KNumeric && b.Kind == KFloat, a.Kind == KFloat && b.Kind == KNumeric:
		return FloatT(Double), true
	}
	return Family{}, false
}

// widest picks the wider of two equal-kind, possibly differently
// parameterized families (e.g. two Numeric(p,s) with different scales).
func widest(a, b Family) Family {
	switch a.Kind {
	case KInt:
		if b.IntWidth > a.IntWidth {
			return b
		}
		return a
	case KFloat:
		if b.FloatWidth > a.FloatWidth {
			return b
		}
		return a
	case KString:
		if b.StrKind > a.StrKind {
			return b
		}
		return a
	case KNumeric:
		if b.Precision > a.Precision || b.Scale > a.Scale {
			return b
		}
		return a
	default:
		return a
	}
}

// Comparable reports whether two families may be compared with =, <>, <,
// <=, >, >= — i.e. whether a Join exists.
func Comparable(a, b Family) bool {
	_, ok := Join(a, b)
	return ok
}
