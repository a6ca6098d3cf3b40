// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package engine implements the session-level facade of spec.md §4.5:
// the Idle -> Parse -> Analyze -> Type-pipeline -> Plan -> Execute state
// machine that turns one parsed ast.Statement into the QueryEvent
// sequence spec.md §6 fixes for it, plus the prepared-statement
// bookkeeping the extended query protocol needs (spec.md's Open
// Question decision #1: statements are stored and re-run verbatim, no
// parameter substitution).
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/minipgdb/minipg/analyzer"
	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/catalog/plan"
	"github.com/minipgdb/minipg/exec"
	"github.com/minipgdb/minipg/planner"
	"github.com/minipgdb/minipg/protocol"
)

// Engine is one session's view of a shared Catalog. Sessions never share
// prepared-statement state; the Catalog and its underlying kv.Store are
// the only state shared across concurrently open Engines (spec.md §5).
type Engine struct {
	cat *catalog.Catalog
	log *logrus.Entry
	id  uuid.UUID

	mu       sync.Mutex
	prepared map[string]preparedStatement
}

// preparedStatement is one PREPARE's bookkeeping: the statement to
// replay plus the parameter OIDs it declared, so Execute can refuse a
// parameterized statement it cannot bind (Open Question decision #1)
// instead of silently running it with its placeholders unfilled.
type preparedStatement struct {
	stmt      ast.Statement
	paramOIDs []uint32
}

// New opens a session against cat. A nil log falls back to the package
// default logger (SPEC_FULL.md's AMBIENT-LOG).
func New(cat *catalog.Catalog, log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	id := uuid.New()
	return &Engine{
		cat:      cat,
		log:      log.WithField("session", id),
		id:       id,
		prepared: make(map[string]preparedStatement),
	}
}

// Exec runs stmt through the full pipeline and returns its outbound
// event sequence, always ending in QueryComplete (spec.md §6). On error
// the sequence is exactly [QueryError, QueryComplete]; no partial rows
// are ever emitted ahead of an error (spec.md §7).
func (e *Engine) Exec(ctx context.Context, stmt ast.Statement) []protocol.QueryEvent {
	e.log.WithField("statement", fmt.Sprintf("%T", stmt)).Debug("executing statement")

	events, err := e.dispatch(ctx, stmt)
	if err != nil {
		qe := translate(err)
		entry := e.log.WithFields(logrus.Fields{"code": qe.Code, "severity": qe.Severity})
		if qe.Severity == protocol.SeverityFatal {
			entry.Error(qe.Message)
		} else {
			entry.Warn(qe.Message)
		}
		return []protocol.QueryEvent{qe, &protocol.QueryComplete{}}
	}
	return append(events, &protocol.QueryComplete{})
}

func (e *Engine) dispatch(ctx context.Context, stmt ast.Statement) ([]protocol.QueryEvent, error) {
	switch s := stmt.(type) {
	case *ast.CreateSchema, *ast.DropSchemas, *ast.CreateTable, *ast.DropTables,
		*ast.CreateIndex, *ast.DropIndex:
		return e.execDDL(ctx, stmt)
	case *ast.Insert, *ast.Update, *ast.Delete, *ast.Select:
		return e.execDML(ctx, stmt)
	case *ast.SetVariable:
		return e.execConfig(s)
	case *ast.Prepare:
		return e.execPrepare(s)
	case *ast.ExecutePrepared:
		return e.execExecutePrepared(ctx, s)
	case *ast.Deallocate:
		return e.execDeallocate(s)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownStatement, stmt)
	}
}

// execDDL runs a definition change through catalog/plan and reports the
// one QueryEvent (or, for a multi-name DROP, one per name) spec.md §6
// assigns to that statement kind.
func (e *Engine) execDDL(ctx context.Context, stmt ast.Statement) ([]protocol.QueryEvent, error) {
	ops, err := plan.Build(stmt)
	if err != nil {
		return nil, err
	}
	if err := plan.Execute(ctx, e.cat, ops); err != nil {
		return nil, err
	}
	return ddlEvents(stmt), nil
}

func ddlEvents(stmt ast.Statement) []protocol.QueryEvent {
	switch s := stmt.(type) {
	case *ast.CreateSchema:
		return []protocol.QueryEvent{&protocol.SchemaCreated{Name: s.Name}}
	case *ast.DropSchemas:
		events := make([]protocol.QueryEvent, len(s.Names))
		for i, name := range s.Names {
			events[i] = &protocol.SchemaDropped{Name: name}
		}
		return events
	case *ast.CreateTable:
		schema := s.Schema
		if schema == "" {
			schema = catalog.PublicSchema
		}
		return []protocol.QueryEvent{&protocol.TableCreated{Schema: schema, Name: s.Name}}
	case *ast.DropTables:
		events := make([]protocol.QueryEvent, len(s.Tables))
		for i, qn := range s.Tables {
			schema := qn.Schema
			if schema == "" {
				schema = catalog.PublicSchema
			}
			events[i] = &protocol.TableDropped{Schema: schema, Name: qn.Name}
		}
		return events
	case *ast.CreateIndex:
		schema := s.Schema
		if schema == "" {
			schema = catalog.PublicSchema
		}
		return []protocol.QueryEvent{&protocol.IndexCreated{Schema: schema, Name: s.Name}}
	case *ast.DropIndex:
		schema := s.Schema
		if schema == "" {
			schema = catalog.PublicSchema
		}
		return []protocol.QueryEvent{&protocol.IndexDropped{Schema: schema, Name: s.Name}}
	default:
		return nil
	}
}

// execDML resolves, types, plans and runs one DML statement against the
// shared kv.Store, returning the RecordsInserted/Updated/Deleted or
// RowDescription/DataRow.../RecordsSelected sequence.
func (e *Engine) execDML(ctx context.Context, stmt ast.Statement) ([]protocol.QueryEvent, error) {
	q, err := analyzer.Analyze(stmt, e.cat)
	if err != nil {
		return nil, err
	}
	p, err := planner.Build(q)
	if err != nil {
		return nil, err
	}
	switch pl := p.(type) {
	case *planner.InsertPlan:
		n, err := exec.Insert(ctx, e.cat.Store, pl)
		if err != nil {
			return nil, err
		}
		return []protocol.QueryEvent{&protocol.RecordsInserted{N: n}}, nil
	case *planner.UpdatePlan:
		n, err := exec.Update(ctx, e.cat.Store, pl)
		if err != nil {
			return nil, err
		}
		return []protocol.QueryEvent{&protocol.RecordsUpdated{N: n}}, nil
	case *planner.DeletePlan:
		n, err := exec.Delete(ctx, e.cat.Store, pl)
		if err != nil {
			return nil, err
		}
		return []protocol.QueryEvent{&protocol.RecordsDeleted{N: n}}, nil
	case *planner.ReadPlan:
		return exec.Select(ctx, e.cat.Store, pl)
	default:
		return nil, fmt.Errorf("engine: unknown plan %T", p)
	}
}

// execConfig handles the Config surface: `SET name = value`,
// `start_transaction`, and `commit` (spec.md §9 Open Questions,
// decision #3). Only start_transaction has a dedicated event; commit is
// a recognized no-op beyond the QueryComplete every statement gets.
func (e *Engine) execConfig(s *ast.SetVariable) ([]protocol.QueryEvent, error) {
	switch s.Name {
	case "start_transaction":
		return []protocol.QueryEvent{&protocol.TransactionStarted{}}, nil
	case "commit":
		return nil, nil
	default:
		return []protocol.QueryEvent{&protocol.VariableSet{Name: s.Name, Value: s.Value}}, nil
	}
}

// execPrepare stores s.Statement under s.Name for later ExecutePrepared,
// overwriting any earlier statement of the same name (matching `PREPARE`
// semantics: a session may re-prepare a name after DEALLOCATE).
func (e *Engine) execPrepare(s *ast.Prepare) ([]protocol.QueryEvent, error) {
	e.mu.Lock()
	e.prepared[s.Name] = preparedStatement{stmt: s.Statement, paramOIDs: s.ParamOIDs}
	e.mu.Unlock()
	return []protocol.QueryEvent{&protocol.StatementPrepared{Name: s.Name}}, nil
}

// execExecutePrepared re-runs the statement stored under s.Portal.
// Parameter substitution is not implemented (Open Question decision #1):
// a portal whose statement declared any parameters cannot be bound, so
// Execute refuses it with FeatureNotSupported instead of running it with
// its placeholders unfilled; a parameterless statement is simply
// replayed.
func (e *Engine) execExecutePrepared(ctx context.Context, s *ast.ExecutePrepared) ([]protocol.QueryEvent, error) {
	e.mu.Lock()
	ps, ok := e.prepared[s.Portal]
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPreparedStatementNotFound, s.Portal)
	}
	if len(ps.paramOIDs) > 0 {
		return nil, fmt.Errorf("%w: portal %s has %d parameter(s)", ErrParameterizedStatement, s.Portal, len(ps.paramOIDs))
	}
	return e.dispatch(ctx, ps.stmt)
}

func (e *Engine) execDeallocate(s *ast.Deallocate) ([]protocol.QueryEvent, error) {
	e.mu.Lock()
	delete(e.prepared, s.Name)
	e.mu.Unlock()
	return []protocol.QueryEvent{&protocol.StatementDeallocated{Name: s.Name}}, nil
}
