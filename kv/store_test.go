// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minipgdb/minipg/kv"
)

func stores(t *testing.T) map[string]kv.Store {
	bs, err := kv.OpenBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })
	return map[string]kv.Store{
		"mem":  kv.NewMemStore(),
		"bolt": bs,
	}
}

func TestNamespaceObjectLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.CreateNamespace(ctx, "s"))
			require.ErrorIs(t, s.CreateNamespace(ctx, "s"), kv.ErrNamespaceExists)

			require.NoError(t, s.CreateObject(ctx, "s", "t"))
			require.ErrorIs(t, s.CreateObject(ctx, "s", "t"), kv.ErrObjectExists)
			require.ErrorIs(t, s.CreateObject(ctx, "missing", "t"), kv.ErrNamespaceNotFound)

			require.NoError(t, s.DropObject(ctx, "s", "t"))
			require.ErrorIs(t, s.DropObject(ctx, "s", "t"), kv.ErrObjectNotFound)

			require.NoError(t, s.DropNamespace(ctx, "s"))
			require.ErrorIs(t, s.DropNamespace(ctx, "s"), kv.ErrNamespaceNotFound)
		})
	}
}

func TestWriteReadDeleteOrdering(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.CreateNamespace(ctx, "s"))
			require.NoError(t, s.CreateObject(ctx, "s", "t"))

			n, err := s.Write(ctx, "s", "t", []kv.Pair{
				{Key: []byte{0, 0, 0, 0, 0, 0, 0, 3}, Value: []byte("c")},
				{Key: []byte{0, 0, 0, 0, 0, 0, 0, 1}, Value: []byte("a")},
				{Key: []byte{0, 0, 0, 0, 0, 0, 0, 2}, Value: []byte("b")},
			})
			require.NoError(t, err)
			require.Equal(t, 3, n)

			c, err := s.Read(ctx, "s", "t")
			require.NoError(t, err)
			var got []string
			for c.Next() {
				got = append(got, string(c.Pair().Value))
			}
			require.NoError(t, c.Err())
			require.NoError(t, c.Close())
			require.Equal(t, []string{"a", "b", "c"}, got)

			// upsert semantics: rewriting an existing key replaces the value.
			_, err = s.Write(ctx, "s", "t", []kv.Pair{{Key: []byte{0, 0, 0, 0, 0, 0, 0, 1}, Value: []byte("a2")}})
			require.NoError(t, err)
			c, _ = s.Read(ctx, "s", "t")
			c.Next()
			require.Equal(t, "a2", string(c.Pair().Value))
			require.NoError(t, c.Close())

			deleted, err := s.Delete(ctx, "s", "t", [][]byte{{0, 0, 0, 0, 0, 0, 0, 2}, {0, 0, 0, 0, 0, 0, 0, 99}})
			require.NoError(t, err)
			require.Equal(t, 1, deleted)
		})
	}
}

func TestSequenceMonotonic(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.CreateNamespace(ctx, "s"))
			require.NoError(t, s.CreateObject(ctx, "s", "t"))
			var last uint64
			for i := 0; i < 5; i++ {
				next, err := s.NextSeq(ctx, "s", "t")
				require.NoError(t, err)
				require.Greater(t, next, last)
				last = next
			}
		})
	}
}
