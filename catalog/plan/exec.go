// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package plan

import (
	"context"
	"fmt"

	"github.com/minipgdb/minipg/catalog"
)

// Execute interprets ops sequentially against cat/store (spec.md §4.2
// "Execution"). A Check... op that fails returns a recoverable SQL-level
// error; a storage primitive that fails is wrapped and treated as fatal
// by the caller. A SkipIf whose predicate holds terminates the plan
// successfully without running the remaining ops.
func Execute(ctx context.Context, cat *catalog.Catalog, ops []Op) error {
	for _, op := range ops {
		done, err := execOne(ctx, cat, op)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return nil
}

// execOne runs a single op, returning done=true when a SkipIf predicate
// held and the remainder of the plan must not run.
func execOne(ctx context.Context, cat *catalog.Catalog, op Op) (done bool, err error) {
	switch o := op.(type) {
	case *CheckExistence:
		exists := objectExists(cat, o.Kind, o.Schema, o.Name, o.Column)
		if o.MustExist && !exists {
			return false, notFoundError(o.Kind)
		}
		if !o.MustExist && exists {
			return false, existsError(o.Kind)
		}
		return false, nil

	case *SkipIf:
		exists := objectExists(cat, o.Kind, o.Schema, o.Name, "")
		switch o.State {
		case StateExists:
			return exists, nil
		case StateNotExists:
			return !exists, nil
		}
		return false, fmt.Errorf("plan: unknown ExistState %d", o.State)

	case *CheckDependants:
		if hasDependants(cat, o.Kind, o.Schema, o.Name) {
			return false, catalog.ErrHasDependants
		}
		return false, nil

	case *RemoveDependants:
		return false, removeDependants(ctx, cat, o.Kind, o.Schema, o.Name)

	case *CreateFolder:
		return false, cat.Store.CreateNamespace(ctx, o.Name)

	case *RemoveFolder:
		return false, cat.Store.DropNamespace(ctx, o.Name)

	case *CreateFile:
		return false, cat.Store.CreateObject(ctx, o.Folder, o.Name)

	case *RemoveFile:
		return false, cat.Store.DropObject(ctx, o.Folder, o.Name)

	case *CreateSchemaRecord:
		return false, cat.CreateSchemaRecord(ctx, o.Name)

	case *RemoveSchemaRecord:
		return false, cat.RemoveSchemaRecord(ctx, o.Name)

	case *CreateTableRecord:
		return false, cat.CreateTableRecord(ctx, o.Schema, o.Name)

	case *RemoveTableRecord:
		return false, cat.RemoveTableRecord(ctx, o.Schema, o.Name)

	case *CreateColumnRecord:
		return false, cat.CreateColumnRecord(ctx, o.Schema, o.Table, o.Column)

	case *RemoveColumns:
		return false, cat.RemoveColumnsRecord(ctx, o.Schema, o.Table)

	case *CreateIndexRecord:
		return false, cat.CreateIndexRecord(ctx, o.Index)

	case *RemoveIndexRecord:
		return false, cat.RemoveIndexRecord(ctx, o.Schema, o.Name)

	default:
		return false, fmt.Errorf("plan: unknown op %T", op)
	}
}

func objectExists(cat *catalog.Catalog, kind ObjectKind, schema, name, column string) bool {
	switch kind {
	case KindSchema:
		return cat.SchemaExists(name)
	case KindTable:
		return cat.TableExists(schema, name)
	case KindColumn:
		tbl, err := cat.Table(schema, name)
		if err != nil {
			return false
		}
		_, ok := tbl.ColumnByName(column)
		return ok
	case KindIndex:
		return cat.IndexExists(schema, name)
	default:
		return false
	}
}

func hasDependants(cat *catalog.Catalog, kind ObjectKind, schema, name string) bool {
	switch kind {
	case KindSchema:
		return len(cat.TablesInSchema(name)) > 0
	case KindTable:
		return len(cat.IndexesOnTable(schema, name)) > 0
	default:
		return false
	}
}

// removeDependants implements CASCADE: for a schema, every table (and
// each table's own indexes) is dropped first; for a table, every index
// defined on it is dropped first.
func removeDependants(ctx context.Context, cat *catalog.Catalog, kind ObjectKind, schema, name string) error {
	switch kind {
	case KindSchema:
		for _, t := range cat.TablesInSchema(name) {
			for _, idx := range cat.IndexesOnTable(t.Schema, t.Name) {
				if err := cat.RemoveIndexRecord(ctx, idx.Schema, idx.Name); err != nil {
					return err
				}
			}
			if err := cat.RemoveColumnsRecord(ctx, t.Schema, t.Name); err != nil {
				return err
			}
			if err := cat.RemoveTableRecord(ctx, t.Schema, t.Name); err != nil {
				return err
			}
			if err := cat.Store.DropObject(ctx, t.Schema, t.Name); err != nil {
				return err
			}
		}
		return nil
	case KindTable:
		for _, idx := range cat.IndexesOnTable(schema, name) {
			if err := cat.RemoveIndexRecord(ctx, idx.Schema, idx.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func notFoundError(kind ObjectKind) error {
	switch kind {
	case KindSchema:
		return catalog.ErrSchemaNotFound
	case KindTable:
		return catalog.ErrTableNotFound
	case KindColumn:
		return catalog.ErrColumnNotFound
	case KindIndex:
		return catalog.ErrIndexNotFound
	default:
		return fmt.Errorf("plan: unknown object kind %d", kind)
	}
}

func existsError(kind ObjectKind) error {
	switch kind {
	case KindSchema:
		return catalog.ErrSchemaExists
	case KindTable:
		return catalog.ErrTableExists
	case KindIndex:
		return catalog.ErrIndexExists
	default:
		return fmt.Errorf("plan: unknown object kind %d", kind)
	}
}
