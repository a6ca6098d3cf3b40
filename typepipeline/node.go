// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package typepipeline implements spec.md §4.4: three successive, pure
// tree transformations (inference, checking, coercion) over a typed
// expression tree, plus the two closed operator tables that define which
// operator applications are legal and what family they produce.
package typepipeline

import "github.com/minipgdb/minipg/typelattice"

// Node is the closed sum type over the typed tree's four shapes. Every
// Node carries its own statically-inferred family.
type Node interface {
	node()
	Fam() typelattice.Family
}

// Const is a literal leaf: an integer, float, numeric-text, string-text,
// bool, or NULL.
type Const struct {
	F    typelattice.Family
	I    int64
	Fl   float64
	Text string // numeric/string literal text, parsed at evaluation
	B    bool
	Null bool
}

func (*Const) node() {}
func (c *Const) Fam() typelattice.Family { return c.F }

// Column is a resolved column reference.
type Column struct {
	F       typelattice.Family
	Name    string
	Ordinal int // 0-based
}

func (*Column) node() {}
func (c *Column) Fam() typelattice.Family { return c.F }

// UnOp is a unary prefix/postfix operator application. OperandType is the
// family X must be coerced to before evaluation.
type UnOp struct {
	F           typelattice.Family
	OperandType typelattice.Family
	Op          string
	X           Node
}

func (*UnOp) node() {}
func (u *UnOp) Fam() typelattice.Family { return u.F }

// BiOp is a binary operator application. LeftType/RightType are the
// families each operand must be coerced to before evaluation; they need
// not equal F (e.g. a comparison's operands share a common type but the
// result is always Bool).
type BiOp struct {
	F                   typelattice.Family
	LeftType, RightType typelattice.Family
	Op                  string
	Left, Right         Node
}

func (*BiOp) node() {}
func (b *BiOp) Fam() typelattice.Family { return b.F }

// Cast makes an implicit coercion explicit in the tree.
type Cast struct {
	F typelattice.Family
	X Node
}

func (*Cast) node() {}
func (c *Cast) Fam() typelattice.Family { return c.F }
