// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package catalog

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/minipgdb/minipg/kv"
	"github.com/minipgdb/minipg/typelattice"
)

// System table row shapes (spec.md §3 "Persistence model"). This is a
// single-catalog core, so the catalog name is not stored: a schema row
// is keyed by its schema name alone.

type schemaRow struct {
	Name string
}

type tableRow struct {
	Schema, Name string
}

type columnRow struct {
	Schema, Table, Name string
	Ordinal             int
	Type                typelattice.Family
	NotNull             bool
	HasDflt             bool
	Default             string
}

func recordKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

// schemaFamilies/tableFamilies/columnFamilies/indexFamilies describe the
// fixed, compile-time shape of each system table's packed tuple, fed to
// typelattice.EncodeRow/DecodeRow the same way a user table's declared
// column families would be.
var schemaFamilies = []typelattice.Family{typelattice.StringT(typelattice.Text, 0)}
var tableFamilies = []typelattice.Family{
	typelattice.StringT(typelattice.Text, 0), // schema
	typelattice.StringT(typelattice.Text, 0), // name
}
var columnFamilies = []typelattice.Family{
	typelattice.StringT(typelattice.Text, 0), // schema
	typelattice.StringT(typelattice.Text, 0), // table
	typelattice.StringT(typelattice.Text, 0), // name
	typelattice.Int(typelattice.Integer),     // ordinal
	typelattice.StringT(typelattice.Text, 0), // type (rendered)
	typelattice.Bool,                         // not null
	typelattice.Bool,                         // has default
	typelattice.StringT(typelattice.Text, 0), // default text
}
var indexFamilies = []typelattice.Family{
	typelattice.StringT(typelattice.Text, 0), // schema
	typelattice.StringT(typelattice.Text, 0), // table
	typelattice.StringT(typelattice.Text, 0), // name
	typelattice.StringT(typelattice.Text, 0), // columns, comma joined
	typelattice.Bool,                         // unique
}

func (c *Catalog) insertSchemaRow(ctx context.Context, name string) error {
	id, err := c.Store.NextSeq(ctx, DefinitionSchema, TableSchemata)
	if err != nil {
		return fmt.Errorf("catalog: minting schema record id: %w", err)
	}
	row := typelattice.EncodeRow([]typelattice.Value{typelattice.NewString(typelattice.Text, 0, name)})
	_, err = c.Store.Write(ctx, DefinitionSchema, TableSchemata, []kv.Pair{{Key: recordKey(id), Value: row}})
	return err
}

// CreateSchemaRecord inserts a SCHEMATA row and updates the cache.
// Primitive: CreateRecord{SCHEMATA} (spec.md §4.2).
func (c *Catalog) CreateSchemaRecord(ctx context.Context, name string) error {
	if err := c.insertSchemaRow(ctx, name); err != nil {
		return err
	}
	c.mu.Lock()
	c.schemas[name] = struct{}{}
	c.mu.Unlock()
	return nil
}

// RemoveSchemaRecord deletes the SCHEMATA row for name. Primitive:
// RemoveRecord{SCHEMATA}.
func (c *Catalog) RemoveSchemaRecord(ctx context.Context, name string) error {
	keys, err := c.matchingKeys(ctx, TableSchemata, schemaFamilies, func(v []typelattice.Value) bool {
		return v[0].Str() == name
	})
	if err != nil {
		return err
	}
	if _, err := c.Store.Delete(ctx, DefinitionSchema, TableSchemata, keys); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.schemas, name)
	c.mu.Unlock()
	return nil
}

// CreateTableRecord inserts a TABLES row. Primitive: CreateRecord{TABLES}.
func (c *Catalog) CreateTableRecord(ctx context.Context, schema, name string) error {
	id, err := c.Store.NextSeq(ctx, DefinitionSchema, TableTables)
	if err != nil {
		return err
	}
	row := typelattice.EncodeRow([]typelattice.Value{
		typelattice.NewString(typelattice.Text, 0, schema),
		typelattice.NewString(typelattice.Text, 0, name),
	})
	if _, err := c.Store.Write(ctx, DefinitionSchema, TableTables, []kv.Pair{{Key: recordKey(id), Value: row}}); err != nil {
		return err
	}
	c.mu.Lock()
	c.tables[tableKey(schema, name)] = &Table{Schema: schema, Name: name}
	c.mu.Unlock()
	return nil
}

// RemoveTableRecord deletes the TABLES row. Primitive: RemoveRecord{TABLES}.
func (c *Catalog) RemoveTableRecord(ctx context.Context, schema, name string) error {
	keys, err := c.matchingKeys(ctx, TableTables, tableFamilies, func(v []typelattice.Value) bool {
		return v[0].Str() == schema && v[1].Str() == name
	})
	if err != nil {
		return err
	}
	if _, err := c.Store.Delete(ctx, DefinitionSchema, TableTables, keys); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.tables, tableKey(schema, name))
	c.mu.Unlock()
	return nil
}

// CreateColumnRecord inserts one COLUMNS row. Primitive: CreateRecord{COLUMNS}.
func (c *Catalog) CreateColumnRecord(ctx context.Context, schema, table string, col Column) error {
	id, err := c.Store.NextSeq(ctx, DefinitionSchema, TableColumns)
	if err != nil {
		return err
	}
	row := typelattice.EncodeRow([]typelattice.Value{
		typelattice.NewString(typelattice.Text, 0, schema),
		typelattice.NewString(typelattice.Text, 0, table),
		typelattice.NewString(typelattice.Text, 0, col.Name),
		typelattice.NewInt(typelattice.Integer, int64(col.Ordinal)),
		typelattice.NewString(typelattice.Text, 0, encodeFamily(col.Type)),
		typelattice.NewBool(col.NotNull),
		typelattice.NewBool(col.HasDflt),
		typelattice.NewString(typelattice.Text, 0, col.Default),
	})
	if _, err := c.Store.Write(ctx, DefinitionSchema, TableColumns, []kv.Pair{{Key: recordKey(id), Value: row}}); err != nil {
		return err
	}
	c.mu.Lock()
	if t, ok := c.tables[tableKey(schema, table)]; ok {
		t.Columns = append(t.Columns, col)
		sortColumnsByOrdinal(t.Columns)
	}
	c.mu.Unlock()
	return nil
}

// RemoveColumnsRecord bulk-deletes every COLUMNS row for (schema, table).
// Primitive: RemoveColumns{schema, table}.
func (c *Catalog) RemoveColumnsRecord(ctx context.Context, schema, table string) error {
	keys, err := c.matchingKeys(ctx, TableColumns, columnFamilies, func(v []typelattice.Value) bool {
		return v[0].Str() == schema && v[1].Str() == table
	})
	if err != nil {
		return err
	}
	if _, err := c.Store.Delete(ctx, DefinitionSchema, TableColumns, keys); err != nil {
		return err
	}
	c.mu.Lock()
	if t, ok := c.tables[tableKey(schema, table)]; ok {
		t.Columns = nil
	}
	c.mu.Unlock()
	return nil
}

// CreateIndexRecord inserts one INDEXES row (SPEC_FULL.md §4.2 supplement).
func (c *Catalog) CreateIndexRecord(ctx context.Context, idx Index) error {
	id, err := c.Store.NextSeq(ctx, DefinitionSchema, TableIndexes)
	if err != nil {
		return err
	}
	row := typelattice.EncodeRow([]typelattice.Value{
		typelattice.NewString(typelattice.Text, 0, idx.Schema),
		typelattice.NewString(typelattice.Text, 0, idx.Table),
		typelattice.NewString(typelattice.Text, 0, idx.Name),
		typelattice.NewString(typelattice.Text, 0, joinColumns(idx.Columns)),
		typelattice.NewBool(idx.Unique),
	})
	if _, err := c.Store.Write(ctx, DefinitionSchema, TableIndexes, []kv.Pair{{Key: recordKey(id), Value: row}}); err != nil {
		return err
	}
	c.mu.Lock()
	idxCopy := idx
	c.indexes[tableKey(idx.Schema, idx.Name)] = &idxCopy
	c.mu.Unlock()
	return nil
}

// RemoveIndexRecord deletes the INDEXES row for (schema, name).
func (c *Catalog) RemoveIndexRecord(ctx context.Context, schema, name string) error {
	keys, err := c.matchingKeys(ctx, TableIndexes, indexFamilies, func(v []typelattice.Value) bool {
		return v[0].Str() == schema && v[2].Str() == name
	})
	if err != nil {
		return err
	}
	if _, err := c.Store.Delete(ctx, DefinitionSchema, TableIndexes, keys); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.indexes, tableKey(schema, name))
	c.mu.Unlock()
	return nil
}

func (c *Catalog) matchingKeys(ctx context.Context, table string, families []typelattice.Family, match func([]typelattice.Value) bool) ([][]byte, error) {
	cur, err := c.Store.Read(ctx, DefinitionSchema, table)
	if err != nil {
		return nil, err
	}
	defer cur.Close()
	var keys [][]byte
	for cur.Next() {
		p := cur.Pair()
		values, err := typelattice.DecodeRow(p.Value, families)
		if err != nil {
			return nil, &kv.CorruptionError{Namespace: DefinitionSchema, Object: table, Err: err}
		}
		if match(values) {
			keys = append(keys, p.Key)
		}
	}
	return keys, cur.Err()
}

func (c *Catalog) scanSchemata(ctx context.Context) ([]string, error) {
	cur, err := c.Store.Read(ctx, DefinitionSchema, TableSchemata)
	if err != nil {
		return nil, err
	}
	defer cur.Close()
	var out []string
	for cur.Next() {
		values, err := typelattice.DecodeRow(cur.Pair().Value, schemaFamilies)
		if err != nil {
			return nil, err
		}
		out = append(out, values[0].Str())
	}
	return out, cur.Err()
}

func (c *Catalog) scanTables(ctx context.Context) ([]tableRow, error) {
	cur, err := c.Store.Read(ctx, DefinitionSchema, TableTables)
	if err != nil {
		return nil, err
	}
	defer cur.Close()
	var out []tableRow
	for cur.Next() {
		values, err := typelattice.DecodeRow(cur.Pair().Value, tableFamilies)
		if err != nil {
			return nil, err
		}
		out = append(out, tableRow{Schema: values[0].Str(), Name: values[1].Str()})
	}
	return out, cur.Err()
}

func (c *Catalog) scanColumns(ctx context.Context) ([]columnRow, error) {
	cur, err := c.Store.Read(ctx, DefinitionSchema, TableColumns)
	if err != nil {
		return nil, err
	}
	defer cur.Close()
	var out []columnRow
	for cur.Next() {
		values, err := typelattice.DecodeRow(cur.Pair().Value, columnFamilies)
		if err != nil {
			return nil, err
		}
		typ, err := decodeFamily(values[4].Str())
		if err != nil {
			return nil, err
		}
		out = append(out, columnRow{
			Schema:  values[0].Str(),
			Table:   values[1].Str(),
			Name:    values[2].Str(),
			Ordinal: int(values[3].Int64()),
			Type:    typ,
			NotNull: values[5].Bool(),
			HasDflt: values[6].Bool(),
			Default: values[7].Str(),
		})
	}
	return out, cur.Err()
}

func (c *Catalog) scanIndexes(ctx context.Context) ([]Index, error) {
	cur, err := c.Store.Read(ctx, DefinitionSchema, TableIndexes)
	if err != nil {
		return nil, err
	}
	defer cur.Close()
	var out []Index
	for cur.Next() {
		values, err := typelattice.DecodeRow(cur.Pair().Value, indexFamilies)
		if err != nil {
			return nil, err
		}
		out = append(out, Index{
			Schema:  values[0].Str(),
			Table:   values[1].Str(),
			Name:    values[2].Str(),
			Columns: splitColumns(values[3].Str()),
			Unique:  values[4].Bool(),
		})
	}
	return out, cur.Err()
}

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ","
		}
		out += c
	}
	return out
}

func splitColumns(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}
