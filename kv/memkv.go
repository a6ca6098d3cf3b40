// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package kv

import (
	"bytes"
	"context"
	"sort"
	"sync"
)

// memObject is a sorted slice of pairs, kept ordered by Key so Read can
// hand back an ascending cursor without a separate sort step per read.
type memObject struct {
	rows []Pair
	seq  uint64
}

func (o *memObject) search(key []byte) (int, bool) {
	i := sort.Search(len(o.rows), func(i int) bool {
		return bytes.Compare(o.rows[i].Key, key) >= 0
	})
	return i, i < len(o.rows) && bytes.Equal(o.rows[i].Key, key)
}

func (o *memObject) upsert(p Pair) {
	i, found := o.search(p.Key)
	if found {
		o.rows[i].Value = p.Value
		return
	}
	o.rows = append(o.rows, Pair{})
	copy(o.rows[i+1:], o.rows[i:])
	o.rows[i] = p
}

func (o *memObject) remove(key []byte) bool {
	i, found := o.search(key)
	if !found {
		return false
	}
	o.rows = append(o.rows[:i], o.rows[i+1:]...)
	return true
}

func (o *memObject) snapshot() []Pair {
	out := make([]Pair, len(o.rows))
	copy(out, o.rows)
	return out
}

// MemStore is a process-local, in-memory Store with the same semantics
// as the on-disk boltkv backend. It is the default for tests and
// ephemeral instances; see DESIGN.md for why it needs no third-party
// dependency.
type MemStore struct {
	mu         sync.Mutex
	namespaces map[string]map[string]*memObject
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{namespaces: make(map[string]map[string]*memObject)}
}

func (m *MemStore) CreateNamespace(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.namespaces[namespace]; ok {
		return ErrNamespaceExists
	}
	m.namespaces[namespace] = make(map[string]*memObject)
	return nil
}

func (m *MemStore) DropNamespace(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.namespaces[namespace]; !ok {
		return ErrNamespaceNotFound
	}
	delete(m.namespaces, namespace)
	return nil
}

func (m *MemStore) CreateObject(_ context.Context, namespace, object string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.namespaces[namespace]
	if !ok {
		return ErrNamespaceNotFound
	}
	if _, ok := ns[object]; ok {
		return ErrObjectExists
	}
	ns[object] = &memObject{}
	return nil
}

func (m *MemStore) DropObject(_ context.Context, namespace, object string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.namespaces[namespace]
	if !ok {
		return ErrNamespaceNotFound
	}
	if _, ok := ns[object]; !ok {
		return ErrObjectNotFound
	}
	delete(ns, object)
	return nil
}

func (m *MemStore) object(namespace, object string) (*memObject, error) {
	ns, ok := m.namespaces[namespace]
	if !ok {
		return nil, ErrNamespaceNotFound
	}
	obj, ok := ns[object]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return obj, nil
}

func (m *MemStore) Write(_ context.Context, namespace, object string, rows []Pair) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, err := m.object(namespace, object)
	if err != nil {
		return 0, err
	}
	for _, p := range rows {
		obj.upsert(p)
	}
	return len(rows), nil
}

func (m *MemStore) Read(_ context.Context, namespace, object string) (Cursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, err := m.object(namespace, object)
	if err != nil {
		return nil, err
	}
	return &memCursor{rows: obj.snapshot(), idx: -1}, nil
}

func (m *MemStore) Delete(_ context.Context, namespace, object string, keys [][]byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, err := m.object(namespace, object)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, k := range keys {
		if obj.remove(k) {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) NextSeq(_ context.Context, namespace, object string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, err := m.object(namespace, object)
	if err != nil {
		return 0, err
	}
	obj.seq++
	return obj.seq, nil
}

func (m *MemStore) Close() error { return nil }

type memCursor struct {
	rows []Pair
	idx  int
}

func (c *memCursor) Next() bool {
	c.idx++
	return c.idx < len(c.rows)
}

func (c *memCursor) Pair() Pair { return c.rows[c.idx] }
func (c *memCursor) Err() error { return nil }
func (c *memCursor) Close() error { return nil }
