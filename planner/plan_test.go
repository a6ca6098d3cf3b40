// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package planner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minipgdb/minipg/analyzer"
	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/catalog/plan"
	"github.com/minipgdb/minipg/kv"
	"github.com/minipgdb/minipg/planner"
	"github.com/minipgdb/minipg/typelattice"
	"github.com/minipgdb/minipg/typepipeline"
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
			{Name: "a", Type: typelattice.Int(typelattice.Integer), NotNull: true},
			{Name: "b", Type: typelattice.Int(typelattice.Integer)},
		},
	})
	require.NoError(t, err)
	require.NoError(t, plan.Execute(ctx, cat, ops))
	return cat
}

func TestBuildInsertCompilesEveryColumn(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Insert{
		Table: ast.QualifiedName{Name: "t"},
		Rows:  [][]ast.Expr{{&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}}},
	}
	q, err := analyzer.Analyze(stmt, cat)
	require.NoError(t, err)
	p, err := planner.Build(q)
	require.NoError(t, err)
	ins := p.(*planner.InsertPlan)
	require.Len(t, ins.Rows, 1)
	require.Len(t, ins.Rows[0], 2)
}

func TestBuildInsertRejectsNullIntoNotNullColumn(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Insert{
		Table:   ast.QualifiedName{Name: "t"},
		Columns: []string{"b"},
		Rows:    [][]ast.Expr{{&ast.IntLiteral{Value: 2}}},
	}
	q, err := analyzer.Analyze(stmt, cat)
	require.NoError(t, err)
	_, err = planner.Build(q)
	require.ErrorIs(t, err, typepipeline.ErrDatatypeMismatch)
}

func TestBuildUpdateCompilesWherePredicate(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Update{
		Table:       ast.QualifiedName{Name: "t"},
		Assignments: []ast.Assignment{{Column: "a", Value: &ast.IntLiteral{Value: 9}}},
		Where:       &ast.BinaryExpr{Op: "=", Left: &ast.ColumnRef{Name: "b"}, Right: &ast.IntLiteral{Value: 1}},
	}
	q, err := analyzer.Analyze(stmt, cat)
	require.NoError(t, err)
	p, err := planner.Build(q)
	require.NoError(t, err)
	upd := p.(*planner.UpdatePlan)
	require.NotNil(t, upd.Where)
	require.Equal(t, typelattice.KBool, upd.Where.Fam().Kind)
}

func TestBuildDeleteNoWhereIsFullTable(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Delete{Table: ast.QualifiedName{Name: "t"}}
	q, err := analyzer.Analyze(stmt, cat)
	require.NoError(t, err)
	p, err := planner.Build(q)
	require.NoError(t, err)
	del := p.(*planner.DeletePlan)
	require.Nil(t, del.Where)
}

func TestBuildSelectStarProjectsAllColumns(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Select{Items: []ast.SelectItem{{Star: true}}, Table: ast.QualifiedName{Name: "t"}}
	q, err := analyzer.Analyze(stmt, cat)
	require.NoError(t, err)
	p, err := planner.Build(q)
	require.NoError(t, err)
	sel := p.(*planner.ReadPlan)
	require.Len(t, sel.Projection, 2)
	require.Equal(t, "a", sel.Projection[0].Name)
}

func TestBuildUpdateWhereMustBeBool(t *testing.T) {
	cat := withTable(t)
	stmt := &ast.Update{
		Table:       ast.QualifiedName{Name: "t"},
		Assignments: []ast.Assignment{{Column: "a", Value: &ast.IntLiteral{Value: 9}}},
		Where:       &ast.ColumnRef{Name: "b"},
	}
	q, err := analyzer.Analyze(stmt, cat)
	require.NoError(t, err)
	_, err = planner.Build(q)
	require.ErrorIs(t, err, typepipeline.ErrDatatypeMismatch)
}
