// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package analyzer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minipgdb/minipg/analyzer"
	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/catalog/plan"
	"github.com/minipgdb/minipg/kv"
	"github.com/minipgdb/minipg/typelattice"
)

func withTable(t *testing.T) *catalog.Catalog {
	t.Helper()
	ctx := context.Background()
	cat, err := catalog.Open(ctx, kv.NewMemStore())
	require.NoError(t, err)

	ops, err := plan.Build(&ast.CreateSchema{Name: catalog.PublicSchema})
	require.NoError(t, err)
	require.NoError(t, plan.Execute(ctx, cat, ops))

	ops, err = plan.Build(&ast.CreateTable{
		Name: "t",
		Columns: []ast.ColumnDef{
			{Name: "a", Type: typelattice.Int(typelattice.Integer)},
			{Name: "b", Type: typelattice.Int(typelattice.Integer)},
		},
	})
	require.NoError(t, err)
	require.NoError(t, plan.Execute(ctx, cat, ops))
	return cat
}

func TestAnalyzeInsertReshapesProjection(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Insert{
		Table:   ast.QualifiedName{Name: "t"},
		Columns: []string{"b", "a"},
		Rows: [][]ast.Expr{
			{&ast.IntLiteral{Value: 2}, &ast.IntLiteral{Value: 1}},
		},
	}
	q, err := analyzer.Analyze(stmt, cat)
	require.NoError(t, err)
	ins, ok := q.(*analyzer.UntypedInsert)
	require.True(t, ok)
	require.Equal(t, &ast.IntLiteral{Value: 1}, ins.Rows[0][0])
	require.Equal(t, &ast.IntLiteral{Value: 2}, ins.Rows[0][1])
}

func TestAnalyzeInsertPartialRowGetsNullPlaceholders(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Insert{
		Table:   ast.QualifiedName{Name: "t"},
		Columns: []string{"a"},
		Rows:    [][]ast.Expr{{&ast.IntLiteral{Value: 7}}},
	}
	q, err := analyzer.Analyze(stmt, cat)
	require.NoError(t, err)
	ins := q.(*analyzer.UntypedInsert)
	require.Equal(t, &ast.IntLiteral{Value: 7}, ins.Rows[0][0])
	require.IsType(t, &ast.NullLiteral{}, ins.Rows[0][1])
}

func TestAnalyzeInsertDuplicateColumnErrors(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Insert{
		Table:   ast.QualifiedName{Name: "t"},
		Columns: []string{"a", "a"},
		Rows:    [][]ast.Expr{{&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}}},
	}
	_, err := analyzer.Analyze(stmt, cat)
	require.ErrorIs(t, err, analyzer.ErrDuplicateColumn)
}

func TestAnalyzeInsertTooManyValuesErrors(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Insert{
		Table: ast.QualifiedName{Name: "t"},
		Rows: [][]ast.Expr{
			{&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}, &ast.IntLiteral{Value: 3}},
		},
	}
	_, err := analyzer.Analyze(stmt, cat)
	require.ErrorIs(t, err, analyzer.ErrTooManyInsertExpressions)
}

func TestAnalyzeUpdateResolvesWhere(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Update{
		Table:       ast.QualifiedName{Name: "t"},
		Assignments: []ast.Assignment{{Column: "a", Value: &ast.IntLiteral{Value: 9}}},
		Where:       &ast.BinaryExpr{Op: "=", Left: &ast.ColumnRef{Name: "b"}, Right: &ast.IntLiteral{Value: 1}},
	}
	q, err := analyzer.Analyze(stmt, cat)
	require.NoError(t, err)
	upd := q.(*analyzer.UntypedUpdate)
	require.Equal(t, 0, upd.Assignments[0].Ordinal)
	require.NotNil(t, upd.Where)
}

func TestAnalyzeUpdateUnknownColumnErrors(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Update{
		Table:       ast.QualifiedName{Name: "t"},
		Assignments: []ast.Assignment{{Column: "nope", Value: &ast.IntLiteral{Value: 9}}},
	}
	_, err := analyzer.Analyze(stmt, cat)
	require.ErrorIs(t, err, catalog.ErrColumnNotFound)
}

func TestAnalyzeSelectStarExpandsColumns(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Select{
		Items: []ast.SelectItem{{Star: true}},
		Table: ast.QualifiedName{Name: "t"},
	}
	q, err := analyzer.Analyze(stmt, cat)
	require.NoError(t, err)
	sel := q.(*analyzer.UntypedSelect)
	require.Len(t, sel.Items, 2)
	require.Equal(t, "a", sel.Items[0].Name)
	require.Equal(t, "b", sel.Items[1].Name)
}

func TestAnalyzeTableDoesNotExist(t *testing.T) {
	cat := withTable(t)
	_, err := analyzer.Analyze(&ast.Delete{Table: ast.QualifiedName{Name: "nosuch"}}, cat)
	require.ErrorIs(t, err, catalog.ErrTableNotFound)
}
