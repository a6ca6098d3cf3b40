// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/kv"
	"github.com/minipgdb/minipg/typelattice"
)

func TestBootstrapIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemStore()

	c1, err := catalog.Open(ctx, store)
	require.NoError(t, err)
	require.True(t, c1.SchemaExists(catalog.DefinitionSchema))

	c2, err := catalog.Open(ctx, store)
	require.NoError(t, err)
	require.True(t, c2.SchemaExists(catalog.DefinitionSchema))
}

func TestSchemaCreateDropRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemStore()
	c, err := catalog.Open(ctx, store)
	require.NoError(t, err)

	require.NoError(t, store.CreateNamespace(ctx, "s"))
	require.NoError(t, c.CreateSchemaRecord(ctx, "s"))
	require.True(t, c.SchemaExists("s"))

	require.NoError(t, c.RemoveSchemaRecord(ctx, "s"))
	require.NoError(t, store.DropNamespace(ctx, "s"))
	require.False(t, c.SchemaExists("s"))

	// idempotent: creating then dropping the same name returns to the
	// pre-state (spec.md §8 universal invariant).
	require.NoError(t, store.CreateNamespace(ctx, "s"))
	require.NoError(t, c.CreateSchemaRecord(ctx, "s"))
	require.NoError(t, c.RemoveSchemaRecord(ctx, "s"))
	require.NoError(t, store.DropNamespace(ctx, "s"))
	require.False(t, c.SchemaExists("s"))
}

func TestTableAndColumnsCache(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemStore()
	c, err := catalog.Open(ctx, store)
	require.NoError(t, err)

	require.NoError(t, store.CreateNamespace(ctx, catalog.PublicSchema))
	require.NoError(t, c.CreateSchemaRecord(ctx, catalog.PublicSchema))
	require.NoError(t, store.CreateObject(ctx, catalog.PublicSchema, "t"))
	require.NoError(t, c.CreateTableRecord(ctx, catalog.PublicSchema, "t"))
	require.NoError(t, c.CreateColumnRecord(ctx, catalog.PublicSchema, "t", catalog.Column{
		Name: "b", Ordinal: 2, Type: typelattice.Int(typelattice.Integer),
	}))
	require.NoError(t, c.CreateColumnRecord(ctx, catalog.PublicSchema, "t", catalog.Column{
		Name: "a", Ordinal: 1, Type: typelattice.Int(typelattice.SmallInt),
	}))

	tbl, err := c.Table("", "t")
	require.NoError(t, err)
	require.Len(t, tbl.Columns, 2)
	require.Equal(t, "a", tbl.Columns[0].Name)
	require.Equal(t, "b", tbl.Columns[1].Name)

	// invariant: column count for (schema, table) matches every row's arity
	// is enforced by the write executor, tested in exec package.

	_, err = c.Table("", "missing")
	require.ErrorIs(t, err, catalog.ErrTableNotFound)

	_, err = c.Table("nosuch", "t")
	require.ErrorIs(t, err, catalog.ErrSchemaNotFound)
}

func TestSequencesAreMonotonic(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemStore()
	require.NoError(t, store.CreateNamespace(ctx, catalog.PublicSchema))
	require.NoError(t, store.CreateObject(ctx, catalog.PublicSchema, "t"))

	first, err := store.NextSeq(ctx, catalog.PublicSchema, "t")
	require.NoError(t, err)
	second, err := store.NextSeq(ctx, catalog.PublicSchema, "t")
	require.NoError(t, err)
	require.Greater(t, second, first)
}
