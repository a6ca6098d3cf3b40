// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package sqlparse_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/cmd/minipgd/sqlparse"
	"github.com/minipgdb/minipg/typelattice"
)

func TestParseCreateTable(t *testing.T) {
	stmt, err := sqlparse.Parse("create table schema_name.table_name (column_test smallint);")
	require.NoError(t, err)
	ct, ok := stmt.(*ast.CreateTable)
	require.True(t, ok)
	require.Equal(t, "schema_name", ct.Schema)
	require.Equal(t, "table_name", ct.Name)
	require.Len(t, ct.Columns, 1)
	require.Equal(t, "column_test", ct.Columns[0].Name)
	require.Equal(t, typelattice.Int(typelattice.SmallInt), ct.Columns[0].Type)
}

func TestParseInsertUnqualifiedColumns(t *testing.T) {
	stmt, err := sqlparse.Parse("insert into schema_name.table_name values (123);")
	require.NoError(t, err)
	ins, ok := stmt.(*ast.Insert)
	require.True(t, ok)
	require.Equal(t, "schema_name", ins.Table.Schema)
	require.Equal(t, "table_name", ins.Table.Name)
	require.Empty(t, ins.Columns)
	require.Len(t, ins.Rows, 1)
	require.Len(t, ins.Rows[0], 1)
	lit, ok := ins.Rows[0][0].(*ast.IntLiteral)
	require.True(t, ok)
	require.Equal(t, int64(123), lit.Value)
}

func TestParseSelectStar(t *testing.T) {
	stmt, err := sqlparse.Parse("select * from schema_name.table_name;")
	require.NoError(t, err)
	sel, ok := stmt.(*ast.Select)
	require.True(t, ok)
	require.Len(t, sel.Items, 1)
	require.True(t, sel.Items[0].Star)
	require.Equal(t, "table_name", sel.Table.Name)
}

func TestParseNamedColumnInsertReordering(t *testing.T) {
	stmt, err := sqlparse.Parse("insert into t (col2,col3,col1) values (1,2,3),(4,5,6);")
	require.NoError(t, err)
	ins, ok := stmt.(*ast.Insert)
	require.True(t, ok)
	require.Equal(t, []string{"col2", "col3", "col1"}, ins.Columns)
	require.Len(t, ins.Rows, 2)
	require.Len(t, ins.Rows[0], 3)
}

func TestParseIncompatibleTypesExpr(t *testing.T) {
	stmt, err := sqlparse.Parse("insert into t (b) values ('true' || 'false');")
	require.NoError(t, err)
	ins := stmt.(*ast.Insert)
	bin, ok := ins.Rows[0][0].(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "||", bin.Op)
	left, ok := bin.Left.(*ast.StringLiteral)
	require.True(t, ok)
	require.Equal(t, "true", left.Text)
}

func TestParseUpdateWithPreImageExpr(t *testing.T) {
	stmt, err := sqlparse.Parse("update t set a = 2*a, b = 2*(a+b), c = c + 2*(a+b);")
	require.NoError(t, err)
	upd, ok := stmt.(*ast.Update)
	require.True(t, ok)
	require.Len(t, upd.Assignments, 3)
	require.Equal(t, "a", upd.Assignments[0].Column)
	require.Nil(t, upd.Where)
}

func TestParseSchemaDropCascade(t *testing.T) {
	stmt, err := sqlparse.Parse("drop schema s cascade;")
	require.NoError(t, err)
	drop, ok := stmt.(*ast.DropSchemas)
	require.True(t, ok)
	require.Equal(t, []string{"s"}, drop.Names)
	require.True(t, drop.Cascade)
}

func TestParseCreateSchemaAndTableSequence(t *testing.T) {
	for _, sql := range []string{
		"create schema s;",
		"create table s.t1(x int);",
		"create table s.t2(y int);",
	} {
		_, err := sqlparse.Parse(sql)
		require.NoError(t, err, sql)
	}
}

func TestParseSelectWithWhereAndComparison(t *testing.T) {
	stmt, err := sqlparse.Parse("select * from t where x = 1 and y <> 2;")
	require.NoError(t, err)
	sel := stmt.(*ast.Select)
	where, ok := sel.Where.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "AND", where.Op)
	left := where.Left.(*ast.BinaryExpr)
	require.Equal(t, "=", left.Op)
}

func TestParseDeleteWithWhere(t *testing.T) {
	stmt, err := sqlparse.Parse("delete from t where x = 1;")
	require.NoError(t, err)
	del, ok := stmt.(*ast.Delete)
	require.True(t, ok)
	require.NotNil(t, del.Where)
}

func TestParsePrepareExecuteDeallocate(t *testing.T) {
	stmt, err := sqlparse.Parse("prepare p1 as select * from t;")
	require.NoError(t, err)
	prep, ok := stmt.(*ast.Prepare)
	require.True(t, ok)
	require.Equal(t, "p1", prep.Name)
	_, ok = prep.Statement.(*ast.Select)
	require.True(t, ok)

	stmt, err = sqlparse.Parse("execute p1;")
	require.NoError(t, err)
	exec, ok := stmt.(*ast.ExecutePrepared)
	require.True(t, ok)
	require.Equal(t, "p1", exec.Portal)

	stmt, err = sqlparse.Parse("deallocate p1;")
	require.NoError(t, err)
	dealloc, ok := stmt.(*ast.Deallocate)
	require.True(t, ok)
	require.Equal(t, "p1", dealloc.Name)
}

func TestParseStartTransactionAndCommit(t *testing.T) {
	stmt, err := sqlparse.Parse("start_transaction;")
	require.NoError(t, err)
	sv, ok := stmt.(*ast.SetVariable)
	require.True(t, ok)
	require.Equal(t, "start_transaction", sv.Name)

	stmt, err = sqlparse.Parse("commit;")
	require.NoError(t, err)
	sv, ok = stmt.(*ast.SetVariable)
	require.True(t, ok)
	require.Equal(t, "commit", sv.Name)
}

func TestParseCreateIndexUnique(t *testing.T) {
	stmt, err := sqlparse.Parse("create unique index idx1 on schema_name.table_name (column_test);")
	require.NoError(t, err)
	idx, ok := stmt.(*ast.CreateIndex)
	require.True(t, ok)
	require.True(t, idx.Unique)
	require.Equal(t, []string{"column_test"}, idx.Columns)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := sqlparse.Parse("frobnicate everything;")
	require.Error(t, err)
}
