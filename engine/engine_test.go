// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/engine"
	"github.com/minipgdb/minipg/kv"
	"github.com/minipgdb/minipg/protocol"
	"github.com/minipgdb/minipg/typelattice"
)

func intFamily() typelattice.Family      { return typelattice.Int(typelattice.Integer) }
func smallIntFamily() typelattice.Family { return typelattice.Int(typelattice.SmallInt) }
func bigIntFamily() typelattice.Family   { return typelattice.Int(typelattice.BigInt) }
func boolFamily() typelattice.Family     { return typelattice.Bool }

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cat, err := catalog.Open(context.Background(), kv.NewMemStore())
	require.NoError(t, err)
	return engine.New(cat, nil)
}

// TestCreateInsertSelectSingleRow grounds spec.md §8 scenario 1.
func TestCreateInsertSelectSingleRow(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	events := e.Exec(ctx, &ast.CreateSchema{Name: "schema_name"})
	require.Len(t, events, 2)
	require.IsType(t, &protocol.SchemaCreated{}, events[0])
	require.IsType(t, &protocol.QueryComplete{}, events[1])

	events = e.Exec(ctx, &ast.CreateTable{
		Schema:  "schema_name",
		Name:    "table_name",
		Columns: []ast.ColumnDef{{Name: "column_test", Type: smallIntFamily()}},
	})
	require.Len(t, events, 2)
	created := events[0].(*protocol.TableCreated)
	require.Equal(t, "schema_name", created.Schema)
	require.Equal(t, "table_name", created.Name)

	events = e.Exec(ctx, &ast.Insert{
		Table: ast.QualifiedName{Schema: "schema_name", Name: "table_name"},
		Rows:  [][]ast.Expr{{&ast.IntLiteral{Value: 123}}},
	})
	require.Len(t, events, 2)
	require.Equal(t, 1, events[0].(*protocol.RecordsInserted).N)

	events = e.Exec(ctx, &ast.Select{
		Items: []ast.SelectItem{{Star: true}},
		Table: ast.QualifiedName{Schema: "schema_name", Name: "table_name"},
	})
	require.Len(t, events, 4) // RowDescription, DataRow, RecordsSelected, QueryComplete
	desc := events[0].(*protocol.RowDescription)
	require.Equal(t, "column_test", desc.Fields[0].Name)
	require.Equal(t, protocol.OIDInt2, desc.Fields[0].OID)
	row := events[1].(*protocol.DataRow)
	require.Equal(t, "123", *row.Values[0])
	require.Equal(t, 1, events[2].(*protocol.RecordsSelected).N)
}

// TestNamedColumnInsertReordering grounds spec.md §8 scenario 2.
func TestNamedColumnInsertReordering(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	requireNoErr(t, e.Exec(ctx, &ast.CreateSchema{Name: catalog.PublicSchema}))
	requireNoErr(t, e.Exec(ctx, &ast.CreateTable{
		Name: "t",
		Columns: []ast.ColumnDef{
			{Name: "col1", Type: intFamily()},
			{Name: "col2", Type: intFamily()},
			{Name: "col3", Type: intFamily()},
		},
	}))
	requireNoErr(t, e.Exec(ctx, &ast.Insert{
		Table:   ast.QualifiedName{Name: "t"},
		Columns: []string{"col2", "col3", "col1"},
		Rows: [][]ast.Expr{
			{&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}, &ast.IntLiteral{Value: 3}},
			{&ast.IntLiteral{Value: 4}, &ast.IntLiteral{Value: 5}, &ast.IntLiteral{Value: 6}},
		},
	}))

	events := e.Exec(ctx, &ast.Select{Items: []ast.SelectItem{{Star: true}}, Table: ast.QualifiedName{Name: "t"}})
	row0 := events[1].(*protocol.DataRow)
	row1 := events[2].(*protocol.DataRow)
	require.Equal(t, []string{"3", "1", "2"}, deref(row0.Values))
	require.Equal(t, []string{"6", "4", "5"}, deref(row1.Values))
}

// TestFullIntegerDomainRoundTrip grounds spec.md §8 scenario 3.
func TestFullIntegerDomainRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	requireNoErr(t, e.Exec(ctx, &ast.CreateSchema{Name: catalog.PublicSchema}))
	requireNoErr(t, e.Exec(ctx, &ast.CreateTable{
		Name: "t",
		Columns: []ast.ColumnDef{
			{Name: "s", Type: smallIntFamily()},
			{Name: "i", Type: intFamily()},
			{Name: "b", Type: bigIntFamily()},
		},
	}))
	requireNoErr(t, e.Exec(ctx, &ast.Insert{
		Table: ast.QualifiedName{Name: "t"},
		Rows: [][]ast.Expr{
			{&ast.IntLiteral{Value: -32768}, &ast.IntLiteral{Value: -2147483648}, &ast.IntLiteral{Value: -9223372036854775808}},
			{&ast.IntLiteral{Value: 32767}, &ast.IntLiteral{Value: 2147483647}, &ast.IntLiteral{Value: 9223372036854775807}},
		},
	}))

	events := e.Exec(ctx, &ast.Select{Items: []ast.SelectItem{{Star: true}}, Table: ast.QualifiedName{Name: "t"}})
	row0 := events[1].(*protocol.DataRow)
	row1 := events[2].(*protocol.DataRow)
	require.Equal(t, []string{"-32768", "-2147483648", "-9223372036854775808"}, deref(row0.Values))
	require.Equal(t, []string{"32767", "2147483647", "9223372036854775807"}, deref(row1.Values))
}

// TestIncompatibleTypesRaiseDatatypeMismatch grounds spec.md §8 scenario 4.
func TestIncompatibleTypesRaiseDatatypeMismatch(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	requireNoErr(t, e.Exec(ctx, &ast.CreateSchema{Name: catalog.PublicSchema}))
	requireNoErr(t, e.Exec(ctx, &ast.CreateTable{
		Name:    "t",
		Columns: []ast.ColumnDef{{Name: "b", Type: boolFamily()}},
	}))

	events := e.Exec(ctx, &ast.Insert{
		Table: ast.QualifiedName{Name: "t"},
		Rows: [][]ast.Expr{{&ast.BinaryExpr{
			Op:    "||",
			Left:  &ast.StringLiteral{Text: "true"},
			Right: &ast.StringLiteral{Text: "false"},
		}}},
	})
	require.Len(t, events, 2)
	qerr := events[0].(*protocol.QueryError)
	require.Equal(t, protocol.CodeDatatypeMismatch, qerr.Code)
}

// TestUpdateExpressionUsesRowPreImage grounds spec.md §8 scenario 5.
func TestUpdateExpressionUsesRowPreImage(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	requireNoErr(t, e.Exec(ctx, &ast.CreateSchema{Name: catalog.PublicSchema}))
	requireNoErr(t, e.Exec(ctx, &ast.CreateTable{
		Name: "t",
		Columns: []ast.ColumnDef{
			{Name: "a", Type: smallIntFamily()},
			{Name: "b", Type: smallIntFamily()},
			{Name: "c", Type: smallIntFamily()},
		},
	}))
	requireNoErr(t, e.Exec(ctx, &ast.Insert{
		Table: ast.QualifiedName{Name: "t"},
		Rows: [][]ast.Expr{
			{&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}, &ast.IntLiteral{Value: 3}},
			{&ast.IntLiteral{Value: 4}, &ast.IntLiteral{Value: 5}, &ast.IntLiteral{Value: 6}},
			{&ast.IntLiteral{Value: 7}, &ast.IntLiteral{Value: 8}, &ast.IntLiteral{Value: 9}},
		},
	}))

	colRef := func(name string) ast.Expr { return &ast.ColumnRef{Name: name} }
	aPlusB := &ast.BinaryExpr{Op: "+", Left: colRef("a"), Right: colRef("b")}
	requireNoErr(t, e.Exec(ctx, &ast.Update{
		Table: ast.QualifiedName{Name: "t"},
		Assignments: []ast.Assignment{
			{Column: "a", Value: &ast.BinaryExpr{Op: "*", Left: &ast.IntLiteral{Value: 2}, Right: colRef("a")}},
			{Column: "b", Value: &ast.BinaryExpr{Op: "*", Left: &ast.IntLiteral{Value: 2}, Right: aPlusB}},
			{Column: "c", Value: &ast.BinaryExpr{Op: "+", Left: colRef("c"), Right: &ast.BinaryExpr{Op: "*", Left: &ast.IntLiteral{Value: 2}, Right: aPlusB}}},
		},
	}))

	events := e.Exec(ctx, &ast.Select{Items: []ast.SelectItem{{Star: true}}, Table: ast.QualifiedName{Name: "t"}})
	want := [][]string{
		{"2", "6", "9"},
		{"8", "18", "24"},
		{"14", "30", "39"},
	}
	for i, w := range want {
		row := events[1+i].(*protocol.DataRow)
		require.Equal(t, w, deref(row.Values))
	}
}

// TestSchemaDropCascading grounds spec.md §8 scenario 6.
func TestSchemaDropCascading(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	events := e.Exec(ctx, &ast.CreateSchema{Name: "s"})
	require.IsType(t, &protocol.SchemaCreated{}, events[0])

	events = e.Exec(ctx, &ast.CreateTable{Schema: "s", Name: "t1", Columns: []ast.ColumnDef{{Name: "x", Type: intFamily()}}})
	require.IsType(t, &protocol.TableCreated{}, events[0])

	events = e.Exec(ctx, &ast.CreateTable{Schema: "s", Name: "t2", Columns: []ast.ColumnDef{{Name: "y", Type: intFamily()}}})
	require.IsType(t, &protocol.TableCreated{}, events[0])

	events = e.Exec(ctx, &ast.DropSchemas{Names: []string{"s"}, Cascade: true})
	require.Len(t, events, 2)
	require.IsType(t, &protocol.SchemaDropped{}, events[0])

	events = e.Exec(ctx, &ast.Select{
		Items: []ast.SelectItem{{Star: true}},
		Table: ast.QualifiedName{Schema: "s", Name: "t1"},
	})
	require.Len(t, events, 2)
	qerr := events[0].(*protocol.QueryError)
	require.Equal(t, protocol.CodeSchemaDoesNotExist, qerr.Code)
}

// TestPrepareExecuteDeallocate exercises the extended-protocol statement
// bookkeeping (Open Question decision #1): a prepared statement with no
// parameters can be executed by name and replayed verbatim.
func TestPrepareExecuteDeallocate(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	requireNoErr(t, e.Exec(ctx, &ast.CreateSchema{Name: catalog.PublicSchema}))
	requireNoErr(t, e.Exec(ctx, &ast.CreateTable{Name: "t", Columns: []ast.ColumnDef{{Name: "a", Type: intFamily()}}}))

	events := e.Exec(ctx, &ast.Prepare{
		Name: "ins1",
		Statement: &ast.Insert{
			Table: ast.QualifiedName{Name: "t"},
			Rows:  [][]ast.Expr{{&ast.IntLiteral{Value: 7}}},
		},
	})
	require.IsType(t, &protocol.StatementPrepared{}, events[0])

	events = e.Exec(ctx, &ast.ExecutePrepared{Portal: "ins1"})
	require.Equal(t, 1, events[0].(*protocol.RecordsInserted).N)

	events = e.Exec(ctx, &ast.Deallocate{Name: "ins1"})
	require.IsType(t, &protocol.StatementDeallocated{}, events[0])

	events = e.Exec(ctx, &ast.ExecutePrepared{Portal: "ins1"})
	qerr := events[0].(*protocol.QueryError)
	require.Equal(t, protocol.CodePreparedStatementNotFound, qerr.Code)
}

// TestExecutePreparedWithParametersRefused grounds Open Question
// decision #1: a portal whose statement declared parameters cannot be
// run since there is no substitution step to bind them.
func TestExecutePreparedWithParametersRefused(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	requireNoErr(t, e.Exec(ctx, &ast.CreateSchema{Name: catalog.PublicSchema}))
	requireNoErr(t, e.Exec(ctx, &ast.CreateTable{Name: "t", Columns: []ast.ColumnDef{{Name: "a", Type: intFamily()}}}))

	events := e.Exec(ctx, &ast.Prepare{
		Name:      "ins1",
		Statement: &ast.Insert{Table: ast.QualifiedName{Name: "t"}, Rows: [][]ast.Expr{{&ast.IntLiteral{Value: 1}}}},
		ParamOIDs: []uint32{protocol.OIDInt4},
	})
	require.IsType(t, &protocol.StatementPrepared{}, events[0])

	events = e.Exec(ctx, &ast.ExecutePrepared{Portal: "ins1"})
	qerr := events[0].(*protocol.QueryError)
	require.Equal(t, protocol.CodeFeatureNotSupported, qerr.Code)
}

func requireNoErr(t *testing.T, events []protocol.QueryEvent) {
	t.Helper()
	for _, ev := range events {
		if qerr, ok := ev.(*protocol.QueryError); ok {
			t.Fatalf("unexpected QueryError: %s", qerr.Error())
		}
	}
}

func deref(values []*string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}
