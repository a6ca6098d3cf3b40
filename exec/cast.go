// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package exec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/minipgdb/minipg/typelattice"
)

// intRange returns the inclusive [lo, hi] range of a declared Int width.
func intRange(w typelattice.IntWidth) (int64, int64) {
	switch w {
	case typelattice.SmallInt:
		return math.MinInt16, math.MaxInt16
	case typelattice.Integer:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func rangeCheckedInt(target typelattice.Family, v int64) (typelattice.Value, error) {
	lo, hi := intRange(target.IntWidth)
	if v < lo || v > hi {
		return typelattice.Value{}, &NumericTypeOutOfRangeError{Target: target, Value: v}
	}
	return typelattice.NewInt(target.IntWidth, v), nil
}

// castValue converts v, already evaluated, into the target family. Every
// Cast node in a compiled tree reduces to exactly one call here.
func castValue(v typelattice.Value, target typelattice.Family) (typelattice.Value, error) {
	if v.Null {
		return typelattice.NewNull(target), nil
	}
	switch target.Kind {
	case typelattice.KInt:
		switch v.Family.Kind {
		case typelattice.KUnknown, typelattice.KString:
			iv, err := strconv.ParseInt(strings.TrimSpace(v.Str()), 10, 64)
			if err != nil {
				return typelattice.Value{}, &InvalidTextRepresentationError{Target: target, Text: v.Str()}
			}
			return rangeCheckedInt(target, iv)
		case typelattice.KInt:
			return rangeCheckedInt(target, v.Int64())
		case typelattice.KFloat:
			return rangeCheckedInt(target, int64(v.Float64()))
		case typelattice.KNumeric:
			return rangeCheckedInt(target, v.Numeric().IntPart())
		}

	case typelattice.KFloat:
		switch v.Family.Kind {
		case typelattice.KUnknown, typelattice.KString:
			fv, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
			if err != nil {
				return typelattice.Value{}, &InvalidTextRepresentationError{Target: target, Text: v.Str()}
			}
			return typelattice.NewFloat(target.FloatWidth, fv), nil
		case typelattice.KInt:
			return typelattice.NewFloat(target.FloatWidth, float64(v.Int64())), nil
		case typelattice.KFloat:
			return typelattice.NewFloat(target.FloatWidth, v.Float64()), nil
		case typelattice.KNumeric:
			f, _ := v.Numeric().Float64()
			return typelattice.NewFloat(target.FloatWidth, f), nil
		}

	case typelattice.KNumeric:
		switch v.Family.Kind {
		case typelattice.KUnknown, typelattice.KString:
			d, err := decimal.NewFromString(strings.TrimSpace(v.Str()))
			if err != nil {
				return typelattice.Value{}, &InvalidTextRepresentationError{Target: target, Text: v.Str()}
			}
			return typelattice.NewNumeric(target.Precision, target.Scale, d), nil
		case typelattice.KInt:
			return typelattice.NewNumeric(target.Precision, target.Scale, decimal.NewFromInt(v.Int64())), nil
		case typelattice.KFloat:
			return typelattice.NewNumeric(target.Precision, target.Scale, decimal.NewFromFloat(v.Float64())), nil
		case typelattice.KNumeric:
			return typelattice.NewNumeric(target.Precision, target.Scale, v.Numeric()), nil
		}

	case typelattice.KString:
		switch v.Family.Kind {
		case typelattice.KUnknown, typelattice.KString:
			return typelattice.NewString(target.StrKind, target.StrLen, v.Str()), nil
		case typelattice.KInt:
			return typelattice.NewString(target.StrKind, target.StrLen, strconv.FormatInt(v.Int64(), 10)), nil
		case typelattice.KFloat:
			return typelattice.NewString(target.StrKind, target.StrLen, strconv.FormatFloat(v.Float64(), 'g', -1, 64)), nil
		case typelattice.KNumeric:
			return typelattice.NewString(target.StrKind, target.StrLen, v.Numeric().String()), nil
		case typelattice.KBool:
			if v.Bool() {
				return typelattice.NewString(target.StrKind, target.StrLen, "t"), nil
			}
			return typelattice.NewString(target.StrKind, target.StrLen, "f"), nil
		}

	case typelattice.KBool:
		switch v.Family.Kind {
		case typelattice.KBool:
			return v, nil
		case typelattice.KUnknown, typelattice.KString:
			b, err := strconv.ParseBool(strings.TrimSpace(v.Str()))
			if err != nil {
				return typelattice.Value{}, &InvalidTextRepresentationError{Target: target, Text: v.Str()}
			}
			return typelattice.NewBool(b), nil
		}

	case typelattice.KTemporal:
		switch v.Family.Kind {
		case typelattice.KUnknown, typelattice.KString, typelattice.KTemporal:
			return typelattice.NewTemporal(target.Temporal, v.Str()), nil
		}
	}
	return typelattice.Value{}, fmt.Errorf("exec: unsupported cast from %s to %s", v.Family, target)
}
