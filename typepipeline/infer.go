// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package typepipeline

import (
	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/typelattice"
)

// Infer assigns a static family to every leaf and operator node of expr
// (spec.md §4.4.1). It never fails: an operator application with no
// table entry is still typed, with F left Unknown as a placeholder;
// Check rejects those.
func Infer(expr ast.Expr, tbl *catalog.Table) Node {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return &Const{F: typelattice.Int(typelattice.Integer), I: e.Value}
	case *ast.FloatLiteral:
		return &Const{F: typelattice.FloatT(typelattice.Double), Fl: e.Value}
	case *ast.NumericLiteral:
		return &Const{F: typelattice.NumericT(0, 0), Text: e.Text}
	case *ast.StringLiteral:
		return &Const{F: typelattice.Unknown, Text: e.Text}
	case *ast.BoolLiteral:
		return &Const{F: typelattice.Bool, B: e.Value}
	case *ast.NullLiteral:
		return &Const{F: typelattice.Unknown, Null: true}
	case *ast.ColumnRef:
		col, _ := tbl.ColumnByName(e.Name) // analyzer already guaranteed presence
		return &Column{F: col.Type, Name: col.Name, Ordinal: col.Ordinal - 1}
	case *ast.UnaryExpr:
		x := Infer(e.X, tbl)
		result, operand, ok := unaryResult(e.Op, x.Fam())
		if !ok {
			return &UnOp{F: typelattice.Unknown, OperandType: x.Fam(), Op: e.Op, X: x}
		}
		return &UnOp{F: result, OperandType: operand, Op: e.Op, X: x}
	case *ast.BinaryExpr:
		l := Infer(e.Left, tbl)
		r := Infer(e.Right, tbl)
		result, lt, rt, ok := binaryResult(e.Op, l.Fam(), r.Fam())
		if !ok {
			return &BiOp{F: typelattice.Unknown, LeftType: l.Fam(), RightType: r.Fam(), Op: e.Op, Left: l, Right: r}
		}
		return &BiOp{F: result, LeftType: lt, RightType: rt, Op: e.Op, Left: l, Right: r}
	default:
		return &Const{F: typelattice.Unknown, Null: true}
	}
}
