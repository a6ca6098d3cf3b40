// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package kv

import (
	"context"
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// seqKey is a reserved key inside every object bucket holding its
// persisted record-id sequence, so sequences survive restart without a
// rescan (spec.md §5 "Shared-resource policy").
var seqKey = []byte("\x00__seq__")

// BoltStore is the on-disk Store backend, grounded on
// denisvmedia-inventario/go/registry/boltdb's bucket-per-entity,
// db.Update/db.View transaction pattern. A namespace is a top-level
// bucket; an object is a bucket nested inside it.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if absent) a bbolt database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("kv: opening bolt store at %q: %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) CreateNamespace(_ context.Context, namespace string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(namespace)) != nil {
			return ErrNamespaceExists
		}
		_, err := tx.CreateBucket([]byte(namespace))
		return err
	})
}

func (s *BoltStore) DropNamespace(_ context.Context, namespace string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(namespace)) == nil {
			return ErrNamespaceNotFound
		}
		return tx.DeleteBucket([]byte(namespace))
	})
}

func (s *BoltStore) CreateObject(_ context.Context, namespace, object string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		ns := tx.Bucket([]byte(namespace))
		if ns == nil {
			return ErrNamespaceNotFound
		}
		if ns.Bucket([]byte(object)) != nil {
			return ErrObjectExists
		}
		_, err := ns.CreateBucket([]byte(object))
		return err
	})
}

func (s *BoltStore) DropObject(_ context.Context, namespace, object string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		ns := tx.Bucket([]byte(namespace))
		if ns == nil {
			return ErrNamespaceNotFound
		}
		if ns.Bucket([]byte(object)) == nil {
			return ErrObjectNotFound
		}
		return ns.DeleteBucket([]byte(object))
	})
}

func (s *BoltStore) objectBucket(tx *bolt.Tx, namespace, object string) (*bolt.Bucket, error) {
	ns := tx.Bucket([]byte(namespace))
	if ns == nil {
		return nil, ErrNamespaceNotFound
	}
	obj := ns.Bucket([]byte(object))
	if obj == nil {
		return nil, ErrObjectNotFound
	}
	return obj, nil
}

func (s *BoltStore) Write(_ context.Context, namespace, object string, rows []Pair) (int, error) {
	var n int
	err := s.db.Update(func(tx *bolt.Tx) error {
		obj, err := s.objectBucket(tx, namespace, object)
		if err != nil {
			return err
		}
		for _, p := range rows {
			if err := obj.Put(p.Key, p.Value); err != nil {
				return &CorruptionError{Namespace: namespace, Object: object, Err: err}
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *BoltStore) Read(_ context.Context, namespace, object string) (Cursor, error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("kv: begin read tx: %w", err)
	}
	obj, err := s.objectBucket(tx, namespace, object)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return &boltCursor{tx: tx, c: obj.Cursor(), started: false}, nil
}

func (s *BoltStore) Delete(_ context.Context, namespace, object string, keys [][]byte) (int, error) {
	var n int
	err := s.db.Update(func(tx *bolt.Tx) error {
		obj, err := s.objectBucket(tx, namespace, object)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if obj.Get(k) == nil {
				continue
			}
			if err := obj.Delete(k); err != nil {
				return &CorruptionError{Namespace: namespace, Object: object, Err: err}
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *BoltStore) NextSeq(_ context.Context, namespace, object string) (uint64, error) {
	var next uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		obj, err := s.objectBucket(tx, namespace, object)
		if err != nil {
			return err
		}
		cur := uint64(0)
		if v := obj.Get(seqKey); v != nil {
			cur = binary.BigEndian.Uint64(v)
		}
		next = cur + 1
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, next)
		return obj.Put(seqKey, buf)
	})
	return next, err
}

func (s *BoltStore) Close() error { return s.db.Close() }

// boltCursor skips the reserved sequence key so callers never see it as
// a data row.
type boltCursor struct {
	tx      *bolt.Tx
	c       *bolt.Cursor
	started bool
	k, v    []byte
}

func (c *boltCursor) Next() bool {
	var k, v []byte
	if !c.started {
		c.started = true
		k, v = c.c.First()
	} else {
		k, v = c.c.Next()
	}
	for k != nil && isSeqKey(k) {
		k, v = c.c.Next()
	}
	if k == nil {
		return false
	}
	c.k, c.v = append([]byte(nil), k...), append([]byte(nil), v...)
	return true
}

func isSeqKey(k []byte) bool {
	return len(k) == len(seqKey) && string(k) == string(seqKey)
}

func (c *boltCursor) Pair() Pair   { return Pair{Key: c.k, Value: c.v} }
func (c *boltCursor) Err() error   { return nil }
func (c *boltCursor) Close() error { return c.tx.Rollback() }
