// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package typelattice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allFamilies() []Family {
	return []Family{
		Unknown, Bool,
		Int(SmallInt), Int(Integer), Int(BigInt),
		FloatT(Real), FloatT(Double),
		StringT(Char, 1), StringT(VarChar, 10), StringT(Text, 0),
		NumericT(0, 0),
		TemporalT(Date), TemporalT(Time), TemporalT(Timestamp), TemporalT(Interval),
	}
}

func TestReflexivity(t *testing.T) {
	for _, f := range allFamilies() {
		require.Truef(t, LessEq(f, f), "expected %s <= %s", f, f)
	}
}

func TestAntisymmetry(t *testing.T) {
	fs := allFamilies()
	for _, a := range fs {
		for _, b := range fs {
			if LessEq(a, b) && LessEq(b, a) {
				require.Truef(t, a.Equal(b), "%s <= %s <= %s but not equal", a, b, a)
			}
		}
	}
}

func TestTransitivity(t *testing.T) {
	fs := allFamilies()
	for _, a := range fs {
		for _, b := range fs {
			if !LessEq(a, b) {
				continue
			}
			for _, c := range fs {
				if LessEq(b, c) {
					require.Truef(t, LessEq(a, c), "%s <= %s <= %s but not %s <= %s", a, b, c, a, c)
				}
			}
		}
	}
}

func TestUnknownIsBottom(t *testing.T) {
	for _, f := range allFamilies() {
		require.True(t, LessEq(Unknown, f))
	}
}

func TestBoolIncomparable(t *testing.T) {
	for _, f := range allFamilies() {
		if f.Kind == KBool || f.Kind == KUnknown {
			continue
		}
		require.Falsef(t, LessEq(Bool, f), "bool should not be <= %s", f)
		require.Falsef(t, LessEq(f, Bool), "%s should not be <= bool", f)
	}
}

func TestStringIncomparableToNumericAndTemporal(t *testing.T) {
	strs := []Family{StringT(Char, 1), StringT(VarChar, 10), StringT(Text, 0)}
	others := []Family{Int(Integer), FloatT(Double), NumericT(0, 0), TemporalT(Date)}
	for _, s := range strs {
		for _, o := range others {
			require.Falsef(t, Comparable(s, o), "%s should be incomparable to %s", s, o)
		}
	}
}

func TestIntOrdering(t *testing.T) {
	require.True(t, LessEq(Int(SmallInt), Int(Integer)))
	require.True(t, LessEq(Int(Integer), Int(BigInt)))
	require.False(t, LessEq(Int(BigInt), Int(SmallInt)))
}

func TestCrossFamilyJoins(t *testing.T) {
	j, ok := Join(Int(Integer), FloatT(Real))
	require.True(t, ok)
	require.Equal(t, FloatT(Double), j)

	j, ok = Join(Int(BigInt), NumericT(0, 0))
	require.True(t, ok)
	require.Equal(t, KNumeric, j.Kind)

	j, ok = Join(NumericT(0, 0), FloatT(Real))
	require.True(t, ok)
	require.Equal(t, FloatT(Double), j)
}

func TestIncomparablePairHasNoJoin(t *testing.T) {
	_, ok := Join(Bool, Int(Integer))
	require.False(t, ok)

	_, ok = Join(StringT(Text, 0), Int(Integer))
	require.False(t, ok)

	_, ok = Join(TemporalT(Date), TemporalT(Timestamp))
	require.False(t, ok)
}

func TestTemporalSelfComparable(t *testing.T) {
	require.True(t, Comparable(TemporalT(Date), TemporalT(Date)))
	require.True(t, Comparable(TemporalT(Date), Unknown))
}
