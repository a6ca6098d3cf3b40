// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package plan

import (
	"fmt"

	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/catalog"
)

// ErrUnsupportedStatement is returned by Build for any ast.Statement that
// is not a DDL change (DML/Config/Extended statements never reach the
// definition planner).
var ErrUnsupportedStatement = fmt.Errorf("plan: statement is not a DDL change")

func defaultSchema(s string) string {
	if s == "" {
		return catalog.PublicSchema
	}
	return s
}

// Build translates a parsed DDL ast.Statement into its ordered list of
// primitive operations, per spec.md §4.2's planning rules.
func Build(stmt ast.Statement) ([]Op, error) {
	switch s := stmt.(type) {
	case *ast.CreateSchema:
		return buildCreateSchema(s), nil
	case *ast.DropSchemas:
		return buildDropSchemas(s), nil
	case *ast.CreateTable:
		return buildCreateTable(s), nil
	case *ast.DropTables:
		return buildDropTables(s), nil
	case *ast.CreateIndex:
		return buildCreateIndex(s), nil
	case *ast.DropIndex:
		return buildDropIndex(s), nil
	default:
		return nil, ErrUnsupportedStatement
	}
}

func buildCreateSchema(s *ast.CreateSchema) []Op {
	var ops []Op
	if s.IfNotExists {
		ops = append(ops, &SkipIf{State: StateExists, Kind: KindSchema, Name: s.Name})
	} else {
		ops = append(ops, &CheckExistence{Kind: KindSchema, Name: s.Name, MustExist: false})
	}
	ops = append(ops,
		&CreateFolder{Name: s.Name},
		&CreateSchemaRecord{Name: s.Name},
	)
	return ops
}

func buildDropSchemas(s *ast.DropSchemas) []Op {
	var ops []Op
	for _, name := range s.Names {
		if s.IfExists {
			ops = append(ops, &SkipIf{State: StateNotExists, Kind: KindSchema, Name: name})
		} else {
			ops = append(ops, &CheckExistence{Kind: KindSchema, Name: name, MustExist: true})
		}
		if s.Cascade {
			ops = append(ops, &RemoveDependants{Kind: KindSchema, Name: name})
		} else {
			ops = append(ops, &CheckDependants{Kind: KindSchema, Name: name})
		}
		ops = append(ops,
			&RemoveSchemaRecord{Name: name},
			&RemoveFolder{Name: name},
		)
	}
	return ops
}

func buildCreateTable(s *ast.CreateTable) []Op {
	schema := defaultSchema(s.Schema)
	ops := []Op{
		&CheckExistence{Kind: KindSchema, Name: schema, MustExist: true},
	}
	if s.IfNotExists {
		ops = append(ops, &SkipIf{State: StateExists, Kind: KindTable, Schema: schema, Name: s.Name})
	} else {
		ops = append(ops, &CheckExistence{Kind: KindTable, Schema: schema, Name: s.Name, MustExist: false})
	}
	ops = append(ops, &CreateFile{Folder: schema, Name: s.Name})
	ops = append(ops, &CreateTableRecord{Schema: schema, Name: s.Name})
	for i, col := range s.Columns {
		ops = append(ops, &CreateColumnRecord{
			Schema: schema,
			Table:  s.Name,
			Column: catalog.Column{
				Name:    col.Name,
				Ordinal: i + 1,
				Type:    col.Type,
				NotNull: col.NotNull,
				HasDflt: col.Default != nil,
			},
		})
	}
	return ops
}

func buildDropTables(s *ast.DropTables) []Op {
	var ops []Op
	for _, qn := range s.Tables {
		schema := defaultSchema(qn.Schema)
		if s.IfExists {
			ops = append(ops, &SkipIf{State: StateNotExists, Kind: KindTable, Schema: schema, Name: qn.Name})
		} else {
			ops = append(ops, &CheckExistence{Kind: KindTable, Schema: schema, Name: qn.Name, MustExist: true})
		}
		if s.Cascade {
			ops = append(ops, &RemoveDependants{Kind: KindTable, Schema: schema, Name: qn.Name})
		} else {
			ops = append(ops, &CheckDependants{Kind: KindTable, Schema: schema, Name: qn.Name})
		}
		ops = append(ops,
			&RemoveColumns{Schema: schema, Table: qn.Name},
			&RemoveTableRecord{Schema: schema, Name: qn.Name},
			&RemoveFile{Folder: schema, Name: qn.Name},
		)
	}
	return ops
}

func buildCreateIndex(s *ast.CreateIndex) []Op {
	schema := defaultSchema(s.Schema)
	ops := []Op{
		&CheckExistence{Kind: KindSchema, Name: schema, MustExist: true},
		&CheckExistence{Kind: KindTable, Schema: schema, Name: s.Table, MustExist: true},
	}
	for _, col := range s.Columns {
		ops = append(ops, &CheckExistence{Kind: KindColumn, Schema: schema, Name: s.Table, Column: col, MustExist: true})
	}
	ops = append(ops, &CheckExistence{Kind: KindIndex, Schema: schema, Name: s.Name, MustExist: false})
	ops = append(ops, &CreateIndexRecord{Index: catalog.Index{
		Name:    s.Name,
		Schema:  schema,
		Table:   s.Table,
		Columns: s.Columns,
		Unique:  s.Unique,
	}})
	return ops
}

func buildDropIndex(s *ast.DropIndex) []Op {
	schema := defaultSchema(s.Schema)
	var ops []Op
	if s.IfExists {
		ops = append(ops, &SkipIf{State: StateNotExists, Kind: KindIndex, Schema: schema, Name: s.Name})
	} else {
		ops = append(ops, &CheckExistence{Kind: KindIndex, Schema: schema, Name: s.Name, MustExist: true})
	}
	ops = append(ops, &RemoveIndexRecord{Schema: schema, Name: s.Name})
	return ops
}
