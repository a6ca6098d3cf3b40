// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package ast

// Expr is the parser's raw expression tree: names are not yet resolved
// and no family is yet assigned (that happens in analyzer and
// typepipeline, respectively). Closed sum type, same pattern as Statement.
type Expr interface{ expr() }

// IntLiteral is an integer literal token.
type IntLiteral struct{ Value int64 }

func (*IntLiteral) expr() {}

// FloatLiteral is a floating-point literal token.
type FloatLiteral struct{ Value float64 }

func (*FloatLiteral) expr() {}

// NumericLiteral is an arbitrary-precision decimal literal token (kept
// as text; parsing happens at coercion/evaluation per spec.md §4.4.3).
type NumericLiteral struct{ Text string }

func (*NumericLiteral) expr() {}

// StringLiteral is a quoted string literal; its static family is
// Unknown until coerced into a context (spec.md §4.4.1).
type StringLiteral struct{ Text string }

func (*StringLiteral) expr() {}

// BoolLiteral is `TRUE`/`FALSE`.
type BoolLiteral struct{ Value bool }

func (*BoolLiteral) expr() {}

// NullLiteral is `NULL`.
type NullLiteral struct{}

func (*NullLiteral) expr() {}

// ColumnRef is an unresolved column reference, optionally qualified by
// a table alias (ignored here since this spec has no joins).
type ColumnRef struct{ Name string }

func (*ColumnRef) expr() {}

// UnaryExpr applies a prefix/postfix unary operator (spec.md §4.4.4).
type UnaryExpr struct {
	Op string
	X  Expr
}

func (*UnaryExpr) expr() {}

// BinaryExpr applies a binary operator (spec.md §4.4.4).
type BinaryExpr struct {
	Op          string
	Left, Right Expr
}

func (*BinaryExpr) expr() {}
