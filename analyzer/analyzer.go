// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package analyzer implements the query analyzer of spec.md §4.3: it
// resolves a parsed DML ast.Statement against the catalog into an
// UntypedQuery whose table/column references are bound to catalog
// ordinals, applying the default schema and reshaping INSERT
// projections. Types are not yet assigned; that is typepipeline's job.
package analyzer

import (
	"errors"
	"fmt"

	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/catalog"
)

// Errors specific to name resolution; TableDoesNotExist/ColumnDoesNotExist
// reuse the catalog's own sentinels since they mean the same condition.
var (
	ErrDuplicateColumn          = errors.New("analyzer: duplicate column target")
	ErrTooManyInsertExpressions = errors.New("analyzer: too many values in INSERT row")
	ErrFeatureNotSupported      = errors.New("analyzer: feature not supported")
)

// UntypedQuery is the closed sum type over the four DML shapes the
// analyzer produces (spec.md §4.3).
type UntypedQuery interface{ untypedQuery() }

// UntypedInsert carries value rows reshaped into table-declared column
// order; a row position with no supplied value holds an ast.NullLiteral.
type UntypedInsert struct {
	Table *catalog.Table
	Rows  [][]ast.Expr
}

func (*UntypedInsert) untypedQuery() {}

// Assignment pairs a resolved column ordinal with its RHS expression.
type Assignment struct {
	Ordinal int
	Value   ast.Expr
}

// UntypedUpdate is a resolved `UPDATE ... SET ... [WHERE ...]`.
type UntypedUpdate struct {
	Table       *catalog.Table
	Assignments []Assignment
	Where       ast.Expr // nil means no predicate
}

func (*UntypedUpdate) untypedQuery() {}

// UntypedDelete is a resolved `DELETE FROM ... [WHERE ...]`.
type UntypedDelete struct {
	Table *catalog.Table
	Where ast.Expr
}

func (*UntypedDelete) untypedQuery() {}

// ProjItem is one resolved SELECT list entry.
type ProjItem struct {
	Name string
	Expr ast.Expr
}

// UntypedSelect is a resolved `SELECT ... FROM ... [WHERE ...]`.
type UntypedSelect struct {
	Table *catalog.Table
	Items []ProjItem
	Where ast.Expr
}

func (*UntypedSelect) untypedQuery() {}

// Analyze resolves stmt against cat, producing an UntypedQuery. Only DML
// statements (Insert/Update/Delete/Select) are accepted; DDL goes through
// catalog/plan, and Config/Extended statements are handled directly by
// the engine.
func Analyze(stmt ast.Statement, cat *catalog.Catalog) (UntypedQuery, error) {
	switch s := stmt.(type) {
	case *ast.Insert:
		return analyzeInsert(s, cat)
	case *ast.Update:
		return analyzeUpdate(s, cat)
	case *ast.Delete:
		return analyzeDelete(s, cat)
	case *ast.Select:
		return analyzeSelect(s, cat)
	default:
		return nil, fmt.Errorf("%w: %T", ErrFeatureNotSupported, stmt)
	}
}

func resolveTable(qn ast.QualifiedName, cat *catalog.Catalog) (*catalog.Table, error) {
	return cat.Table(qn.Schema, qn.Name)
}

func analyzeInsert(s *ast.Insert, cat *catalog.Catalog) (UntypedQuery, error) {
	tbl, err := resolveTable(s.Table, cat)
	if err != nil {
		return nil, err
	}

	// target ordinal for each listed column, or table order when none given.
	targets := make([]int, len(s.Columns))
	if len(s.Columns) == 0 {
		targets = make([]int, len(tbl.Columns))
		for i := range tbl.Columns {
			targets[i] = i
		}
	} else {
		seen := make(map[string]bool, len(s.Columns))
		for i, name := range s.Columns {
			if seen[name] {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
			}
			seen[name] = true
			col, ok := tbl.ColumnByName(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", catalog.ErrColumnNotFound, name)
			}
			targets[i] = col.Ordinal - 1
		}
	}

	out := make([][]ast.Expr, len(s.Rows))
	for r, row := range s.Rows {
		if len(row) > len(tbl.Columns) || len(row) > len(targets) {
			return nil, ErrTooManyInsertExpressions
		}
		reshaped := make([]ast.Expr, len(tbl.Columns))
		for i := range reshaped {
			reshaped[i] = &ast.NullLiteral{}
		}
		for i, v := range row {
			reshaped[targets[i]] = v
		}
		out[r] = reshaped
	}
	return &UntypedInsert{Table: tbl, Rows: out}, nil
}

func analyzeUpdate(s *ast.Update, cat *catalog.Catalog) (UntypedQuery, error) {
	tbl, err := resolveTable(s.Table, cat)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(s.Assignments))
	assignments := make([]Assignment, len(s.Assignments))
	for i, a := range s.Assignments {
		if seen[a.Column] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, a.Column)
		}
		seen[a.Column] = true
		col, ok := tbl.ColumnByName(a.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %s", catalog.ErrColumnNotFound, a.Column)
		}
		assignments[i] = Assignment{Ordinal: col.Ordinal - 1, Value: a.Value}
	}
	where, err := resolveExpr(s.Where, tbl)
	if err != nil {
		return nil, err
	}
	return &UntypedUpdate{Table: tbl, Assignments: assignments, Where: where}, nil
}

func analyzeDelete(s *ast.Delete, cat *catalog.Catalog) (UntypedQuery, error) {
	tbl, err := resolveTable(s.Table, cat)
	if err != nil {
		return nil, err
	}
	where, err := resolveExpr(s.Where, tbl)
	if err != nil {
		return nil, err
	}
	return &UntypedDelete{Table: tbl, Where: where}, nil
}

func analyzeSelect(s *ast.Select, cat *catalog.Catalog) (UntypedQuery, error) {
	tbl, err := resolveTable(s.Table, cat)
	if err != nil {
		return nil, err
	}
	var items []ProjItem
	for _, item := range s.Items {
		if item.Star {
			for _, col := range tbl.Columns {
				items = append(items, ProjItem{Name: col.Name, Expr: &ast.ColumnRef{Name: col.Name}})
			}
			continue
		}
		expr, err := resolveExpr(item.Expr, tbl)
		if err != nil {
			return nil, err
		}
		name := item.Alias
		if name == "" {
			if ref, ok := item.Expr.(*ast.ColumnRef); ok {
				name = ref.Name
			}
		}
		items = append(items, ProjItem{Name: name, Expr: expr})
	}
	where, err := resolveExpr(s.Where, tbl)
	if err != nil {
		return nil, err
	}
	return &UntypedSelect{Table: tbl, Items: items, Where: where}, nil
}

// resolveExpr walks expr checking that every ColumnRef names a real
// column of tbl; it returns expr unchanged (resolution here is a
// validity check, ordinals are looked up again by typepipeline/exec
// against the column name, same as the rest of this tree).
func resolveExpr(expr ast.Expr, tbl *catalog.Table) (ast.Expr, error) {
	if expr == nil {
		return nil, nil
	}
	switch e := expr.(type) {
	case *ast.ColumnRef:
		if _, ok := tbl.ColumnByName(e.Name); !ok {
			return nil, fmt.Errorf("%w: %s", catalog.ErrColumnNotFound, e.Name)
		}
		return e, nil
	case *ast.UnaryExpr:
		x, err := resolveExpr(e.X, tbl)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: e.Op, X: x}, nil
	case *ast.BinaryExpr:
		l, err := resolveExpr(e.Left, tbl)
		if err != nil {
			return nil, err
		}
		r, err := resolveExpr(e.Right, tbl)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: e.Op, Left: l, Right: r}, nil
	default:
		return expr, nil
	}
}
