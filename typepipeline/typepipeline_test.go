// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package typepipeline_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/typelattice"
	"github.com/minipgdb/minipg/typepipeline"
)

func table() *catalog.Table {
	return &catalog.Table{
		Schema: "public",
		Name:   "t",
		Columns: []catalog.Column{
			{Name: "a", Ordinal: 1, Type: typelattice.Int(typelattice.SmallInt)},
			{Name: "b", Ordinal: 2, Type: typelattice.Int(typelattice.BigInt)},
			{Name: "s", Ordinal: 3, Type: typelattice.StringT(typelattice.Text, 0)},
			{Name: "n", Ordinal: 4, Type: typelattice.NumericT(10, 2), NotNull: true},
		},
	}
}

func TestInferIntPlusIntWidensToWider(t *testing.T) {
	tbl := table()
	expr := &ast.BinaryExpr{Op: "+", Left: &ast.ColumnRef{Name: "a"}, Right: &ast.ColumnRef{Name: "b"}}
	n, err := typepipeline.Compile(expr, tbl, typelattice.Unknown)
	require.NoError(t, err)
	require.True(t, n.Fam().Equal(typelattice.Int(typelattice.BigInt)))

	bi := n.(*typepipeline.BiOp)
	require.IsType(t, &typepipeline.Cast{}, bi.Left)
}

func TestInferStringConcat(t *testing.T) {
	tbl := table()
	expr := &ast.BinaryExpr{Op: "||", Left: &ast.ColumnRef{Name: "s"}, Right: &ast.StringLiteral{Text: "x"}}
	n, err := typepipeline.Compile(expr, tbl, typelattice.Unknown)
	require.NoError(t, err)
	require.Equal(t, typelattice.KString, n.Fam().Kind)
}

func TestNumericConcatIsUndefinedFunction(t *testing.T) {
	tbl := table()
	expr := &ast.BinaryExpr{Op: "||", Left: &ast.ColumnRef{Name: "a"}, Right: &ast.ColumnRef{Name: "a"}}
	_, err := typepipeline.Compile(expr, tbl, typelattice.Unknown)
	require.ErrorIs(t, err, typepipeline.ErrUndefinedFunction)
}

func TestComparisonAlwaysYieldsBool(t *testing.T) {
	tbl := table()
	expr := &ast.BinaryExpr{Op: "<", Left: &ast.ColumnRef{Name: "a"}, Right: &ast.IntLiteral{Value: 5}}
	n, err := typepipeline.Compile(expr, tbl, typelattice.Unknown)
	require.NoError(t, err)
	require.True(t, n.Fam().Equal(typelattice.Bool))
}

func TestIntLiteralNarrowsViaCastIntoSmallerContext(t *testing.T) {
	tbl := table()
	// Int(Integer) literal assigned into a smallint column narrows via Cast.
	n, err := typepipeline.Compile(&ast.IntLiteral{Value: 1}, tbl, typelattice.Int(typelattice.SmallInt))
	require.NoError(t, err)
	require.IsType(t, &typepipeline.Cast{}, n)
}

func TestDatatypeMismatchOnIncompatibleContext(t *testing.T) {
	tbl := table()
	_, err := typepipeline.Compile(&ast.ColumnRef{Name: "s"}, tbl, typelattice.Int(typelattice.Integer))
	require.ErrorIs(t, err, typepipeline.ErrDatatypeMismatch)
}

func TestCheckNotNullableRejectsNullIntoNotNullColumn(t *testing.T) {
	tbl := table()
	col, _ := tbl.ColumnByName("n")
	n, err := typepipeline.Compile(&ast.NullLiteral{}, tbl, col.Type)
	require.NoError(t, err)
	require.ErrorIs(t, typepipeline.CheckNotNullable(n, col), typepipeline.ErrDatatypeMismatch)
}

func TestUnaryMinusPreservesFamily(t *testing.T) {
	tbl := table()
	expr := &ast.UnaryExpr{Op: "-", X: &ast.ColumnRef{Name: "n"}}
	n, err := typepipeline.Compile(expr, tbl, typelattice.Unknown)
	require.NoError(t, err)
	require.Equal(t, typelattice.KNumeric, n.Fam().Kind)
}

func TestSquareRootWidensToDouble(t *testing.T) {
	tbl := table()
	expr := &ast.UnaryExpr{Op: "|/", X: &ast.ColumnRef{Name: "a"}}
	n, err := typepipeline.Compile(expr, tbl, typelattice.Unknown)
	require.NoError(t, err)
	require.True(t, n.Fam().Equal(typelattice.FloatT(typelattice.Double)))
}
