// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package exec

import (
	"context"

	"github.com/minipgdb/minipg/kv"
	"github.com/minipgdb/minipg/planner"
	"github.com/minipgdb/minipg/protocol"
	"github.com/minipgdb/minipg/typelattice"
)

// Select streams plan.Table, filters by WHERE, evaluates the projection
// against each surviving row, and returns the RowDescription/DataRow/
// RecordsSelected event sequence spec.md §6 fixes for a successful
// SELECT.
func Select(ctx context.Context, store kv.Store, plan *planner.ReadPlan) ([]protocol.QueryEvent, error) {
	fams := families(plan.Table)
	cur, err := store.Read(ctx, plan.Table.Schema, plan.Table.Name)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	desc := &protocol.RowDescription{Fields: make([]protocol.FieldDescription, len(plan.Projection))}
	for i, item := range plan.Projection {
		desc.Fields[i] = protocol.FieldDescription{Name: item.Name, OID: protocol.OIDFor(item.Expr.Fam())}
	}

	events := []protocol.QueryEvent{desc}
	n := 0
	for cur.Next() {
		pair := cur.Pair()
		row, err := typelattice.DecodeRow(pair.Value, fams)
		if err != nil {
			return nil, err
		}
		match, err := matchesWhere(plan.Where, row)
		if err != nil {
			return nil, err
		}
		if !match {
			continue
		}
		values := make([]*string, len(plan.Projection))
		for i, item := range plan.Projection {
			v, err := Eval(item.Expr, row)
			if err != nil {
				return nil, err
			}
			if !v.Null {
				text := v.Text()
				values[i] = &text
			}
		}
		events = append(events, &protocol.DataRow{Values: values})
		n++
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	events = append(events, &protocol.RecordsSelected{N: n})
	return events, nil
}
