// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package typepipeline

import "github.com/minipgdb/minipg/typelattice"

// Coerce inserts explicit Cast nodes where the checked tree needs one
// (spec.md §4.4.3): literal Unknowns wrap into the surrounding context,
// Int widens into Float/Numeric contexts, same-family narrowing is
// allowed (range-checked at evaluation), and operator operands are cast
// to the family the operator table selected for them.
func Coerce(n Node, ctx typelattice.Family) Node {
	var out Node
	switch v := n.(type) {
	case *Const:
		out = v
	case *Column:
		out = v
	case *UnOp:
		out = &UnOp{F: v.F, OperandType: v.OperandType, Op: v.Op, X: Coerce(v.X, v.OperandType)}
	case *BiOp:
		out = &BiOp{
			F: v.F, LeftType: v.LeftType, RightType: v.RightType, Op: v.Op,
			Left:  Coerce(v.Left, v.LeftType),
			Right: Coerce(v.Right, v.RightType),
		}
	case *Cast:
		out = &Cast{F: v.F, X: Coerce(v.X, typelattice.Unknown)}
	default:
		out = n
	}
	if ctx.Kind != typelattice.KUnknown && !out.Fam().Equal(ctx) {
		return &Cast{F: ctx, X: out}
	}
	return out
}
