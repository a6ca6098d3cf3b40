// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package ast names the parsed Statement surface that a SQL parser
// collaborator produces (spec.md §6 "Parsed AST surface"). Tokenizing
// and parsing SQL text is out of scope for this core (spec.md §1); this
// package only describes the shape the rest of the pipeline consumes,
// the same way spec.md's Command/QueryEvent vocabulary describes the
// wire-protocol boundary without implementing the codec.
package ast

import "github.com/minipgdb/minipg/typelattice"

// Statement is the closed sum type over every statement kind the core
// accepts: DDL, DML, Config and Extended (prepared-statement) surfaces.
type Statement interface{ statement() }

// ColumnDef describes one column in a CREATE TABLE statement.
type ColumnDef struct {
	Name    string
	Type    typelattice.Family
	NotNull bool
	Default Expr // nil if no DEFAULT clause
}

// --- DDL ---

// CreateSchema is `CREATE SCHEMA name [IF NOT EXISTS]`.
type CreateSchema struct {
	Name        string
	IfNotExists bool
}

func (*CreateSchema) statement() {}

// DropSchemas is `DROP SCHEMA name[,...] [CASCADE|RESTRICT] [IF EXISTS]`.
type DropSchemas struct {
	Names    []string
	Cascade  bool
	IfExists bool
}

func (*DropSchemas) statement() {}

// CreateTable is `CREATE TABLE [schema.]name (cols...) [IF NOT EXISTS]`.
type CreateTable struct {
	Schema      string
	Name        string
	Columns     []ColumnDef
	IfNotExists bool
}

func (*CreateTable) statement() {}

// DropTables is `DROP TABLE [schema.]name[,...] [CASCADE|RESTRICT] [IF EXISTS]`.
type DropTables struct {
	Tables   []QualifiedName
	Cascade  bool
	IfExists bool
}

func (*DropTables) statement() {}

// QualifiedName is an optionally schema-qualified object name.
type QualifiedName struct {
	Schema string // "" means unqualified: default schema applies
	Name   string
}

// CreateIndex is `CREATE [UNIQUE] INDEX name ON [schema.]table(cols...)`.
type CreateIndex struct {
	Name    string
	Schema  string
	Table   string
	Columns []string
	Unique  bool
}

func (*CreateIndex) statement() {}

// DropIndex is `DROP INDEX [schema.]name [IF EXISTS]`.
type DropIndex struct {
	Schema   string
	Name     string
	IfExists bool
}

func (*DropIndex) statement() {}

// --- DML ---

// Insert is `INSERT INTO [schema.]table [(cols...)] VALUES (rows...)`.
type Insert struct {
	Table   QualifiedName
	Columns []string // empty means "all declared columns, in order"
	Rows    [][]Expr
}

func (*Insert) statement() {}

// Assignment is one `column = expr` pair in an UPDATE's SET clause.
type Assignment struct {
	Column string
	Value  Expr
}

// Update is `UPDATE [schema.]table SET col=expr,... [WHERE pred]`.
type Update struct {
	Table       QualifiedName
	Assignments []Assignment
	Where       Expr // nil means no predicate
}

func (*Update) statement() {}

// Delete is `DELETE FROM [schema.]table [WHERE pred]`.
type Delete struct {
	Table QualifiedName
	Where Expr
}

func (*Delete) statement() {}

// SelectItem is one projected expression, optionally aliased.
type SelectItem struct {
	Expr  Expr
	Alias string // "" means no AS alias
	Star  bool   // true for unqualified `*`
}

// Select is `SELECT items FROM [schema.]table [WHERE pred]`. Joins,
// aggregates, GROUP BY, ORDER BY and subqueries are out of scope
// (spec.md §1 Non-goals); a parser may accept them but the analyzer
// rejects with FeatureNotSupported.
type Select struct {
	Items []SelectItem
	Table QualifiedName
	Where Expr
}

func (*Select) statement() {}

// --- Config ---

// SetVariable is `SET name = value` / `start_transaction` / `commit`
// style session configuration commands (spec.md §9 Open Questions).
type SetVariable struct {
	Name  string
	Value string
}

func (*SetVariable) statement() {}

// --- Extended query protocol bookkeeping ---

// Prepare is the statement-text half of Parse (spec.md §6 Command.Parse).
type Prepare struct {
	Name      string
	Statement Statement
	ParamOIDs []uint32
}

func (*Prepare) statement() {}

// ExecutePrepared is an Extended-protocol Execute against a previously
// bound portal (spec.md's Open Question #1: parameter substitution is
// not functionally complete; see engine.Engine).
type ExecutePrepared struct {
	Portal string
}

func (*ExecutePrepared) statement() {}

// Deallocate is `DEALLOCATE name`.
type Deallocate struct {
	Name string
}

func (*Deallocate) statement() {}
