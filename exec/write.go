// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package exec

import (
	"context"
	"encoding/binary"

	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/kv"
	"github.com/minipgdb/minipg/planner"
	"github.com/minipgdb/minipg/typelattice"
	"github.com/minipgdb/minipg/typepipeline"
)

// recordKey renders a record id the same way the catalog's own system
// tables do: an 8-byte big-endian key, so every object in the store
// (system or user) sorts and scans the same way.
func recordKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

func families(tbl *catalog.Table) []typelattice.Family {
	fs := make([]typelattice.Family, len(tbl.Columns))
	for i, c := range tbl.Columns {
		fs[i] = c.Type
	}
	return fs
}

// Insert evaluates every value expression of plan (no current row: an
// INSERT's value list cannot reference other columns) and writes the
// rows in a single batched Write, minting one fresh record id per row
// via NextSeq (spec.md §4.1 "Shared-resource policy").
func Insert(ctx context.Context, store kv.Store, plan *planner.InsertPlan) (int, error) {
	pairs := make([]kv.Pair, 0, len(plan.Rows))
	for _, row := range plan.Rows {
		values := make([]typelattice.Value, len(row))
		for i, n := range row {
			v, err := Eval(n, nil)
			if err != nil {
				return 0, err
			}
			values[i] = v
		}
		id, err := store.NextSeq(ctx, plan.Table.Schema, plan.Table.Name)
		if err != nil {
			return 0, err
		}
		pairs = append(pairs, kv.Pair{Key: recordKey(id), Value: typelattice.EncodeRow(values)})
	}
	return store.Write(ctx, plan.Table.Schema, plan.Table.Name, pairs)
}

// Update streams every row, evaluating the WHERE predicate (if any)
// against the pre-image, then evaluating every assignment's RHS against
// that same pre-image before any column in the row is overwritten, so
// `SET a = b, b = a` reads consistently. Matching rows are collected and
// written back in one batched Write.
func Update(ctx context.Context, store kv.Store, plan *planner.UpdatePlan) (int, error) {
	fams := families(plan.Table)
	cur, err := store.Read(ctx, plan.Table.Schema, plan.Table.Name)
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	var pairs []kv.Pair
	for cur.Next() {
		pair := cur.Pair()
		preImage, err := typelattice.DecodeRow(pair.Value, fams)
		if err != nil {
			return 0, err
		}
		match, err := matchesWhere(plan.Where, preImage)
		if err != nil {
			return 0, err
		}
		if !match {
			continue
		}
		newRow := append([]typelattice.Value(nil), preImage...)
		for _, a := range plan.Assignments {
			v, err := Eval(a.Value, preImage)
			if err != nil {
				return 0, err
			}
			newRow[a.Ordinal] = v
		}
		pairs = append(pairs, kv.Pair{Key: append([]byte(nil), pair.Key...), Value: typelattice.EncodeRow(newRow)})
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}
	if len(pairs) == 0 {
		return 0, nil
	}
	return store.Write(ctx, plan.Table.Schema, plan.Table.Name, pairs)
}

// Delete streams every row, evaluating the WHERE predicate against each
// pre-image, then deletes every matching key in one batched Delete.
func Delete(ctx context.Context, store kv.Store, plan *planner.DeletePlan) (int, error) {
	fams := families(plan.Table)
	cur, err := store.Read(ctx, plan.Table.Schema, plan.Table.Name)
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	var keys [][]byte
	for cur.Next() {
		pair := cur.Pair()
		row, err := typelattice.DecodeRow(pair.Value, fams)
		if err != nil {
			return 0, err
		}
		match, err := matchesWhere(plan.Where, row)
		if err != nil {
			return 0, err
		}
		if match {
			keys = append(keys, append([]byte(nil), pair.Key...))
		}
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	return store.Delete(ctx, plan.Table.Schema, plan.Table.Name, keys)
}

// matchesWhere reports whether row satisfies the (possibly nil)
// compiled predicate; NULL evaluates to "does not match", the same as
// SQL's three-valued WHERE semantics.
func matchesWhere(where typepipeline.Node, row []typelattice.Value) (bool, error) {
	if where == nil {
		return true, nil
	}
	v, err := Eval(where, row)
	if err != nil {
		return false, err
	}
	return !v.Null && v.Bool(), nil
}
