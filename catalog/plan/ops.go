// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package plan implements the definition planner of spec.md §4.2: it
// turns a parsed DDL ast.Statement into a totally ordered list of
// primitive SystemOperations and executes them in order against the
// catalog and storage substrate. Execution is not atomic: when an
// operation fails, the operations that already ran are not rolled back.
package plan

import "github.com/minipgdb/minipg/catalog"

// ObjectKind names what kind of catalog object a check/dependants
// operation reasons about.
type ObjectKind uint8

const (
	KindSchema ObjectKind = iota
	KindTable
	KindColumn
	KindIndex
)

// ExistState is the predicate SkipIf branches on.
type ExistState uint8

const (
	StateExists ExistState = iota
	StateNotExists
)

// Op is the closed set of primitive operations (spec.md §4.2). Each
// primitive is either a recoverable check (fails with a SQL error) or a
// storage mutation (a failure is fatal for the statement, per spec.md's
// execution rule).
type Op interface{ op() }

// CheckExistence asserts that an object either does or does not exist,
// and fails the statement (a recoverable error) when the assertion does
// not hold. MustExist selects which direction the assertion runs in:
// true for DROP-style "the object must be there", false for CREATE-style
// "the object must not be there yet".
//
// This is a planner-design decision where spec.md's bracket notation
// ("Check(schema, s); [SkipIf Exists s;]") is ambiguous about whether
// Check still runs (and would then always fail) when IF NOT EXISTS /
// IF EXISTS is given: Build never emits both a CheckExistence and a
// SkipIf for the same name — when the IF-clause is present, Build emits
// only the SkipIf, which subsumes the check.
type CheckExistence struct {
	Kind      ObjectKind
	Schema    string
	Name      string // table or schema or index name, depending on Kind
	Column    string // set only when Kind == KindColumn: Name is the table
	MustExist bool
}

func (*CheckExistence) op() {}

// SkipIf short-circuits the remainder of the current statement's plan,
// returning success immediately, when the named object's existence
// matches State.
type SkipIf struct {
	State  ExistState
	Kind   ObjectKind
	Schema string
	Name   string
}

func (*SkipIf) op() {}

// CheckDependants fails (RESTRICT semantics) if any dependent objects of
// the named object exist.
type CheckDependants struct {
	Kind   ObjectKind
	Schema string
	Name   string
}

func (*CheckDependants) op() {}

// RemoveDependants removes every dependent object of the named object
// (CASCADE semantics) before the object itself is removed.
type RemoveDependants struct {
	Kind   ObjectKind
	Schema string
	Name   string
}

func (*RemoveDependants) op() {}

// CreateFolder/RemoveFolder are schema-level key-space (namespace) operations.
type CreateFolder struct{ Name string }

func (*CreateFolder) op() {}

type RemoveFolder struct{ Name string }

func (*RemoveFolder) op() {}

// CreateFile/RemoveFile are table-level object operations within a
// schema's key-space.
type CreateFile struct{ Folder, Name string }

func (*CreateFile) op() {}

type RemoveFile struct{ Folder, Name string }

func (*RemoveFile) op() {}

// CreateSchemaRecord/RemoveSchemaRecord mutate the SCHEMATA system table.
type CreateSchemaRecord struct{ Name string }

func (*CreateSchemaRecord) op() {}

type RemoveSchemaRecord struct{ Name string }

func (*RemoveSchemaRecord) op() {}

// CreateTableRecord/RemoveTableRecord mutate the TABLES system table.
type CreateTableRecord struct{ Schema, Name string }

func (*CreateTableRecord) op() {}

type RemoveTableRecord struct{ Schema, Name string }

func (*RemoveTableRecord) op() {}

// CreateColumnRecord appends one row to the COLUMNS system table.
type CreateColumnRecord struct {
	Schema, Table string
	Column        catalog.Column
}

func (*CreateColumnRecord) op() {}

// RemoveColumns bulk-deletes every COLUMNS row for (Schema, Table).
type RemoveColumns struct{ Schema, Table string }

func (*RemoveColumns) op() {}

// CreateIndexRecord/RemoveIndexRecord mutate the INDEXES system table
// (SPEC_FULL.md §4.2 supplement).
type CreateIndexRecord struct{ Index catalog.Index }

func (*CreateIndexRecord) op() {}

type RemoveIndexRecord struct{ Schema, Name string }

func (*RemoveIndexRecord) op() {}
