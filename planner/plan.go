// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package planner compiles an analyzer.UntypedQuery into one of the four
// small, direct execution plans of spec.md §4.5: InsertPlan, UpdatePlan,
// DeletePlan, ReadPlan. Every expression in the plan has already been
// run through the type pipeline (typepipeline.Compile) against its
// destination context, so the executor only evaluates.
package planner

import (
	"fmt"

	"github.com/minipgdb/minipg/analyzer"
	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/typelattice"
	"github.com/minipgdb/minipg/typepipeline"
)

// Plan is the closed sum type over the four plan shapes.
type Plan interface{ plan() }

// InsertPlan holds, per row, one compiled typed-tree node per declared
// table column, already coerced into that column's family.
type InsertPlan struct {
	Table *catalog.Table
	Rows  [][]typepipeline.Node
}

func (*InsertPlan) plan() {}

// Assignment pairs a resolved 0-based column ordinal with its compiled
// RHS expression.
type Assignment struct {
	Ordinal int
	Value   typepipeline.Node
}

// UpdatePlan is `UPDATE ... SET ... [WHERE ...]` compiled.
type UpdatePlan struct {
	Table       *catalog.Table
	Assignments []Assignment
	Where       typepipeline.Node // nil means no predicate: full-table update
}

func (*UpdatePlan) plan() {}

// DeletePlan is `DELETE FROM ... [WHERE ...]` compiled.
type DeletePlan struct {
	Table *catalog.Table
	Where typepipeline.Node // nil means full-table delete
}

func (*DeletePlan) plan() {}

// ProjItem is one compiled SELECT list entry.
type ProjItem struct {
	Name string
	Expr typepipeline.Node
}

// ReadPlan is `SELECT ... FROM ... [WHERE ...]` compiled.
type ReadPlan struct {
	Table      *catalog.Table
	Projection []ProjItem
	Where      typepipeline.Node
}

func (*ReadPlan) plan() {}

// Build compiles q into its Plan.
func Build(q analyzer.UntypedQuery) (Plan, error) {
	switch v := q.(type) {
	case *analyzer.UntypedInsert:
		return buildInsert(v)
	case *analyzer.UntypedUpdate:
		return buildUpdate(v)
	case *analyzer.UntypedDelete:
		return buildDelete(v)
	case *analyzer.UntypedSelect:
		return buildSelect(v)
	default:
		return nil, fmt.Errorf("planner: unknown untyped query %T", q)
	}
}

func buildInsert(u *analyzer.UntypedInsert) (*InsertPlan, error) {
	rows := make([][]typepipeline.Node, len(u.Rows))
	for r, row := range u.Rows {
		nodes := make([]typepipeline.Node, len(row))
		for i, expr := range row {
			col := u.Table.Columns[i]
			n, err := typepipeline.Compile(expr, u.Table, col.Type)
			if err != nil {
				return nil, err
			}
			if err := typepipeline.CheckNotNullable(n, col); err != nil {
				return nil, err
			}
			nodes[i] = n
		}
		rows[r] = nodes
	}
	return &InsertPlan{Table: u.Table, Rows: rows}, nil
}

func buildUpdate(u *analyzer.UntypedUpdate) (*UpdatePlan, error) {
	assignments := make([]Assignment, len(u.Assignments))
	for i, a := range u.Assignments {
		col := u.Table.Columns[a.Ordinal]
		n, err := typepipeline.Compile(a.Value, u.Table, col.Type)
		if err != nil {
			return nil, err
		}
		if err := typepipeline.CheckNotNullable(n, col); err != nil {
			return nil, err
		}
		assignments[i] = Assignment{Ordinal: a.Ordinal, Value: n}
	}
	where, err := compilePredicate(u.Where, u.Table)
	if err != nil {
		return nil, err
	}
	return &UpdatePlan{Table: u.Table, Assignments: assignments, Where: where}, nil
}

func buildDelete(u *analyzer.UntypedDelete) (*DeletePlan, error) {
	where, err := compilePredicate(u.Where, u.Table)
	if err != nil {
		return nil, err
	}
	return &DeletePlan{Table: u.Table, Where: where}, nil
}

func buildSelect(u *analyzer.UntypedSelect) (*ReadPlan, error) {
	items := make([]ProjItem, len(u.Items))
	for i, it := range u.Items {
		n, err := typepipeline.Compile(it.Expr, u.Table, typelattice.Unknown)
		if err != nil {
			return nil, err
		}
		items[i] = ProjItem{Name: it.Name, Expr: n}
	}
	where, err := compilePredicate(u.Where, u.Table)
	if err != nil {
		return nil, err
	}
	return &ReadPlan{Table: u.Table, Projection: items, Where: where}, nil
}

// compilePredicate compiles an optional WHERE expression with no fixed
// destination context, verifying the result is Bool.
func compilePredicate(expr ast.Expr, tbl *catalog.Table) (typepipeline.Node, error) {
	if expr == nil {
		return nil, nil
	}
	n, err := typepipeline.Compile(expr, tbl, typelattice.Unknown)
	if err != nil {
		return nil, err
	}
	if n.Fam().Kind != typelattice.KBool {
		return nil, &typepipeline.DatatypeMismatchError{Expected: typelattice.Bool, Actual: n.Fam()}
	}
	return n, nil
}
