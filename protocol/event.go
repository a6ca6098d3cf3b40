// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package protocol

// QueryEvent is the closed sum type the engine emits outbound, per
// spec.md §6. Every statement concludes with a QueryComplete so the
// protocol collaborator can emit ReadyForQuery.
type QueryEvent interface{ queryEvent() }

type SchemaCreated struct{ Name string }

func (*SchemaCreated) queryEvent() {}

type SchemaDropped struct{ Name string }

func (*SchemaDropped) queryEvent() {}

type TableCreated struct{ Schema, Name string }

func (*TableCreated) queryEvent() {}

type TableDropped struct{ Schema, Name string }

func (*TableDropped) queryEvent() {}

type IndexCreated struct{ Schema, Name string }

func (*IndexCreated) queryEvent() {}

type IndexDropped struct{ Schema, Name string }

func (*IndexDropped) queryEvent() {}

type VariableSet struct{ Name, Value string }

func (*VariableSet) queryEvent() {}

// TransactionStarted is the only transaction-boundary event spec.md §6
// names; `commit` is a recognized Config statement but emits no event
// of its own (Open Question decision #3) beyond the QueryComplete every
// statement concludes with.
type TransactionStarted struct{}

func (*TransactionStarted) queryEvent() {}

type RecordsInserted struct{ N int }

func (*RecordsInserted) queryEvent() {}

type RecordsUpdated struct{ N int }

func (*RecordsUpdated) queryEvent() {}

type RecordsDeleted struct{ N int }

func (*RecordsDeleted) queryEvent() {}

type RecordsSelected struct{ N int }

func (*RecordsSelected) queryEvent() {}

// FieldDescription is one entry of a RowDescription/StatementDescription,
// with the bit-exact wire OID of its declared type (spec.md §6).
type FieldDescription struct {
	Name string
	OID  uint32
}

type RowDescription struct{ Fields []FieldDescription }

func (*RowDescription) queryEvent() {}

// DataRow carries one row's fields, each already stringified in
// PostgreSQL text format; a nil element means SQL NULL.
type DataRow struct{ Values []*string }

func (*DataRow) queryEvent() {}

type StatementPrepared struct{ Name string }

func (*StatementPrepared) queryEvent() {}

type StatementDeallocated struct{ Name string }

func (*StatementDeallocated) queryEvent() {}

type StatementParameters struct{ OIDs []uint32 }

func (*StatementParameters) queryEvent() {}

type StatementDescription struct{ Fields []FieldDescription }

func (*StatementDescription) queryEvent() {}

type ParseComplete struct{}

func (*ParseComplete) queryEvent() {}

type BindComplete struct{}

func (*BindComplete) queryEvent() {}

// QueryComplete ends every statement's event sequence.
type QueryComplete struct{}

func (*QueryComplete) queryEvent() {}
