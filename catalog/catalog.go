// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package catalog implements the DEFINITION_SCHEMA substrate of spec.md
// §3-§4.2: the self-describing SCHEMATA/TABLES/COLUMNS/INDEXES system
// tables, bootstrapped on first open, plus the record-id sequences and
// in-memory catalog cache that the analyzer resolves names against.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/minipgdb/minipg/kv"
	"github.com/minipgdb/minipg/typelattice"
)

// DefinitionSchema is the name of the self-describing system schema.
const DefinitionSchema = "definition_schema"

// System table names within DefinitionSchema.
const (
	TableSchemata = "schemata"
	TableTables   = "tables"
	TableColumns  = "columns"
	TableIndexes  = "indexes"
)

// PublicSchema is the default schema applied to unqualified names
// (spec.md §4.3).
const PublicSchema = "public"

// Catalog errors are recoverable; the engine maps them to SQLSTATEs.
var (
	ErrSchemaExists   = errors.New("catalog: schema already exists")
	ErrSchemaNotFound = errors.New("catalog: schema does not exist")
	ErrTableExists    = errors.New("catalog: table already exists")
	ErrTableNotFound  = errors.New("catalog: table does not exist")
	ErrColumnNotFound = errors.New("catalog: column does not exist")
	ErrIndexExists    = errors.New("catalog: index already exists")
	ErrIndexNotFound  = errors.New("catalog: index does not exist")
	ErrHasDependants  = errors.New("catalog: schema has dependent objects")
)

// Column describes one declared column of a table.
type Column struct {
	Name    string
	Ordinal int // dense, contiguous, 1-based within the table
	Type    typelattice.Family
	NotNull bool
	// HasDflt records whether the DDL declared a DEFAULT for the column.
	// The DDL planner does not record the default expression itself, so
	// Default stays empty, and no default is ever evaluated: an INSERT
	// that omits the column supplies NULL for it.
	Default string
	HasDflt bool
}

// Table describes one user table's shape as seen by the analyzer.
type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// ColumnByName returns the column with the given name, if any.
func (t *Table) ColumnByName(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Index describes metadata-only index (spec.md §4.2 supplement).
type Index struct {
	Name    string
	Schema  string
	Table   string
	Columns []string
	Unique  bool
}

// Catalog wraps a kv.Store with the bootstrapped DEFINITION_SCHEMA and an
// in-process read cache of schema/table/column metadata. There is one
// Catalog per process, constructed explicitly and passed down rather than
// held as an ambient global (spec.md §9).
type Catalog struct {
	Store kv.Store

	mu      sync.RWMutex
	schemas map[string]struct{}
	tables  map[string]*Table // key: schema + "." + table
	indexes map[string]*Index // key: schema + "." + index name
}

// Open bootstraps DEFINITION_SCHEMA on first start (creating its four
// system tables if absent) and loads the catalog cache from the store.
func Open(ctx context.Context, store kv.Store) (*Catalog, error) {
	c := &Catalog{
		Store:   store,
		schemas: make(map[string]struct{}),
		tables:  make(map[string]*Table),
		indexes: make(map[string]*Index),
	}
	if err := c.bootstrap(ctx); err != nil {
		return nil, err
	}
	if err := c.reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) bootstrap(ctx context.Context) error {
	err := c.Store.CreateNamespace(ctx, DefinitionSchema)
	switch {
	case err == nil:
		// first start: create the four system tables.
		for _, tbl := range []string{TableSchemata, TableTables, TableColumns, TableIndexes} {
			if err := c.Store.CreateObject(ctx, DefinitionSchema, tbl); err != nil {
				return fmt.Errorf("catalog: bootstrapping %s: %w", tbl, err)
			}
		}
		// DEFINITION_SCHEMA must itself appear in SCHEMATA.
		if err := c.insertSchemaRow(ctx, DefinitionSchema); err != nil {
			return err
		}
	case errors.Is(err, kv.ErrNamespaceExists):
		// already bootstrapped.
	default:
		return fmt.Errorf("catalog: bootstrapping definition schema: %w", err)
	}
	return nil
}

// reload rebuilds the in-memory cache by scanning the system tables.
// Called once on Open; individual mutations update the cache in place
// so a rescan is never needed mid-process.
func (c *Catalog) reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	schemaRows, err := c.scanSchemata(ctx)
	if err != nil {
		return err
	}
	c.schemas = make(map[string]struct{}, len(schemaRows))
	for _, s := range schemaRows {
		c.schemas[s] = struct{}{}
	}

	tableRows, err := c.scanTables(ctx)
	if err != nil {
		return err
	}
	c.tables = make(map[string]*Table, len(tableRows))
	for _, tr := range tableRows {
		c.tables[tableKey(tr.Schema, tr.Name)] = &Table{Schema: tr.Schema, Name: tr.Name}
	}

	colRows, err := c.scanColumns(ctx)
	if err != nil {
		return err
	}
	for _, cr := range colRows {
		t, ok := c.tables[tableKey(cr.Schema, cr.Table)]
		if !ok {
			continue
		}
		t.Columns = append(t.Columns, Column{
			Name:    cr.Name,
			Ordinal: cr.Ordinal,
			Type:    cr.Type,
			NotNull: cr.NotNull,
			Default: cr.Default,
			HasDflt: cr.HasDflt,
		})
	}
	for _, t := range c.tables {
		sortColumnsByOrdinal(t.Columns)
	}

	idxRows, err := c.scanIndexes(ctx)
	if err != nil {
		return err
	}
	c.indexes = make(map[string]*Index, len(idxRows))
	for _, ir := range idxRows {
		ir := ir
		c.indexes[tableKey(ir.Schema, ir.Name)] = &ir
	}
	return nil
}

func tableKey(schema, table string) string { return schema + "." + table }

func sortColumnsByOrdinal(cols []Column) {
	for i := 1; i < len(cols); i++ {
		for j := i; j > 0 && cols[j].Ordinal < cols[j-1].Ordinal; j-- {
			cols[j], cols[j-1] = cols[j-1], cols[j]
		}
	}
}

// SchemaExists reports whether a schema with the given name is known.
func (c *Catalog) SchemaExists(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.schemas[name]
	return ok
}

// Table returns the cached table definition, resolving schema/table
// existence per spec.md §4.3.
func (c *Catalog) Table(schema, name string) (*Table, error) {
	if schema == "" {
		schema = PublicSchema
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.schemas[schema]; !ok {
		return nil, ErrSchemaNotFound
	}
	t, ok := c.tables[tableKey(schema, name)]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// TableExists reports whether the given schema-qualified table exists.
func (c *Catalog) TableExists(schema, name string) bool {
	_, err := c.Table(schema, name)
	return err == nil
}

// TablesInSchema returns every table belonging to schema, for
// cascade-drop dependant checks.
func (c *Catalog) TablesInSchema(schema string) []*Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*Table
	for _, t := range c.tables {
		if t.Schema == schema {
			out = append(out, t)
		}
	}
	return out
}

// IndexExists reports whether a named index exists in schema.
func (c *Catalog) IndexExists(schema, name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.indexes[tableKey(schema, name)]
	return ok
}

// IndexesOnTable returns every index defined on (schema, table), for
// cascade-drop dependant checks.
func (c *Catalog) IndexesOnTable(schema, table string) []*Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*Index
	for _, idx := range c.indexes {
		if idx.Schema == schema && idx.Table == table {
			out = append(out, idx)
		}
	}
	return out
}
