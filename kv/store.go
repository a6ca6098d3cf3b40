// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package kv implements the storage substrate described in spec.md §4.1:
// durable, sorted key/value storage with nested key-spaces (namespace →
// object → key → value), plus an in-memory variant with identical
// semantics for tests and ephemeral instances.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for recoverable existence failures; upper layers (the
// definition planner, the catalog) map these into SQL errors. Any other
// error returned by a Store method is an unrecoverable system error per
// spec.md §4.1's failure semantics.
var (
	ErrNamespaceExists   = errors.New("kv: namespace already exists")
	ErrNamespaceNotFound = errors.New("kv: namespace does not exist")
	ErrObjectExists      = errors.New("kv: object already exists")
	ErrObjectNotFound    = errors.New("kv: object does not exist")
)

// Pair is one (key, value) record.
type Pair struct {
	Key   []byte
	Value []byte
}

// Cursor is a lazy, finite, non-restartable iterator over a key-space's
// (key, value) pairs in ascending key order (spec.md GLOSSARY).
type Cursor interface {
	// Next advances the cursor and reports whether a pair is available.
	Next() bool
	// Pair returns the current pair. Valid only after Next returns true.
	Pair() Pair
	// Err returns any error encountered while iterating.
	Err() error
	// Close releases resources held by the cursor. The executor must
	// call Close before returning control (spec.md §5 "Suspension points").
	Close() error
}

// Store is the storage substrate contract. Implementations: memkv (in-
// memory) and boltkv (on-disk, backed by go.etcd.io/bbolt).
type Store interface {
	CreateNamespace(ctx context.Context, namespace string) error
	DropNamespace(ctx context.Context, namespace string) error

	CreateObject(ctx context.Context, namespace, object string) error
	DropObject(ctx context.Context, namespace, object string) error

	// Write upserts rows by key and returns the count written. Each row
	// is atomic: either fully visible afterward or not written at all.
	Write(ctx context.Context, namespace, object string, rows []Pair) (int, error)

	// Read returns a cursor over (key, value) pairs in ascending key
	// order. The returned cursor is a snapshot for its duration.
	Read(ctx context.Context, namespace, object string) (Cursor, error)

	// Delete removes the given keys and returns how many existed.
	Delete(ctx context.Context, namespace, object string, keys [][]byte) (int, error)

	// NextSeq returns the next value of the monotonically increasing,
	// per-object sequence used to mint record ids, persisting it before
	// returning so sequences never regress across restarts.
	NextSeq(ctx context.Context, namespace, object string) (uint64, error)

	// Close flushes any buffered writes and releases the store's
	// resources. One instance per process (spec.md §9 "Global state").
	Close() error
}

// CorruptionError wraps a storage error with enough context to locate
// the failing object, per spec.md §4.1's failure semantics.
type CorruptionError struct {
	Namespace, Object string
	Err               error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("kv: corruption in %s/%s: %v", e.Namespace, e.Object, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }
