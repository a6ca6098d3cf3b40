// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package server is minipgd's demo Postgres wire-protocol listener: the
// one concrete realization of the wire-protocol adapter spec.md §1
// leaves external. It decodes the frontend simple Query protocol with
// jackc/pgproto3, hands the SQL text to sqlparse, drives one
// engine.Engine per connection, and encodes the resulting
// protocol.QueryEvents back onto the wire. Extended-protocol messages
// (Parse/Bind/Describe/Execute) are accepted by the engine internally
// but are not exposed on this demo listener; only the simple Query
// protocol is wired here, keeping the wire surface minimal.
package server

import (
	"context"
	"fmt"
	"net"

	"github.com/jackc/pgproto3/v2"
	"github.com/sirupsen/logrus"

	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/cmd/minipgd/sqlparse"
	"github.com/minipgdb/minipg/engine"
	"github.com/minipgdb/minipg/protocol"
)

// Server accepts TCP connections and speaks the Postgres simple Query
// protocol against a shared catalog.Catalog.
type Server struct {
	Addr string
	Cat  *catalog.Catalog
	Log  *logrus.Entry
}

// ListenAndServe blocks accepting connections until ctx is cancelled or
// the listener errors.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("server: listening on %s: %w", s.Addr, err)
	}
	defer lis.Close()

	go func() {
		<-ctx.Done()
		lis.Close()
	}()

	s.Log.WithField("addr", s.Addr).Info("listening for connections")
	for {
		conn, err := lis.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("server: accept: %w", err)
			}
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	backend := pgproto3.NewBackend(pgproto3.NewChunkReader(conn), conn)
	log := s.Log.WithField("remote", conn.RemoteAddr().String())

	if err := s.handshake(backend); err != nil {
		log.WithError(err).Warn("handshake failed")
		return
	}

	eng := engine.New(s.Cat, log)

	for {
		msg, err := backend.Receive()
		if err != nil {
			log.WithError(err).Debug("connection closed")
			return
		}
		switch m := msg.(type) {
		case *pgproto3.Query:
			s.runQuery(ctx, backend, eng, log, m.String)
		case *pgproto3.Terminate:
			return
		default:
			// Extended-protocol wire messages are not decoded by this
			// demo listener; engine.Engine already supports their
			// ast-level equivalents for a richer front-end to drive.
			writeError(backend, &protocol.QueryError{
				Severity: protocol.SeverityError,
				Code:     protocol.CodeFeatureNotSupported,
				Message:  "minipgd: only the simple query protocol is supported by this listener",
			})
			_ = backend.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
			if err := backend.Flush(); err != nil {
				return
			}
		}
	}
}

func (s *Server) handshake(backend *pgproto3.Backend) error {
	startup, err := backend.ReceiveStartupMessage()
	if err != nil {
		return fmt.Errorf("server: receiving startup message: %w", err)
	}
	switch startup.(type) {
	case *pgproto3.StartupMessage:
		backend.Send(&pgproto3.AuthenticationOk{})
		backend.Send(&pgproto3.BackendKeyData{ProcessID: 0, SecretKey: 0})
		backend.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
		return backend.Flush()
	case *pgproto3.SSLRequest, *pgproto3.GSSEncRequest:
		return fmt.Errorf("server: SSL/GSS negotiation is not supported")
	default:
		return fmt.Errorf("server: unexpected startup message %T", startup)
	}
}

func (s *Server) runQuery(ctx context.Context, backend *pgproto3.Backend, eng *engine.Engine, log *logrus.Entry, sql string) {
	stmt, err := sqlparse.Parse(sql)
	if err != nil {
		writeError(backend, &protocol.QueryError{
			Severity: protocol.SeverityError,
			Code:     protocol.CodeSyntaxError,
			Message:  err.Error(),
		})
		_ = backend.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
		if flushErr := backend.Flush(); flushErr != nil {
			log.WithError(flushErr).Warn("flush failed")
		}
		return
	}

	events := eng.Exec(ctx, stmt)
	writeEvents(backend, events)
	backend.Send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
	if err := backend.Flush(); err != nil {
		log.WithError(err).Warn("flush failed")
	}
}

// writeEvents translates one statement's QueryEvent sequence into the
// matching backend wire messages, in order.
func writeEvents(backend *pgproto3.Backend, events []protocol.QueryEvent) {
	for _, ev := range events {
		switch e := ev.(type) {
		case *protocol.RowDescription:
			fields := make([]pgproto3.FieldDescription, len(e.Fields))
			for i, f := range e.Fields {
				fields[i] = pgproto3.FieldDescription{
					Name:         []byte(f.Name),
					DataTypeOID:  f.OID,
					TypeModifier: -1,
					Format:       0,
				}
			}
			backend.Send(&pgproto3.RowDescription{Fields: fields})
		case *protocol.DataRow:
			vals := make([][]byte, len(e.Values))
			for i, v := range e.Values {
				if v == nil {
					vals[i] = nil
					continue
				}
				vals[i] = []byte(*v)
			}
			backend.Send(&pgproto3.DataRow{Values: vals})
		case *protocol.RecordsSelected:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte(fmt.Sprintf("SELECT %d", e.N))})
		case *protocol.RecordsInserted:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte(fmt.Sprintf("INSERT 0 %d", e.N))})
		case *protocol.RecordsUpdated:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte(fmt.Sprintf("UPDATE %d", e.N))})
		case *protocol.RecordsDeleted:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte(fmt.Sprintf("DELETE %d", e.N))})
		case *protocol.SchemaCreated:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte("CREATE SCHEMA")})
		case *protocol.SchemaDropped:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte("DROP SCHEMA")})
		case *protocol.TableCreated:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte("CREATE TABLE")})
		case *protocol.TableDropped:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte("DROP TABLE")})
		case *protocol.IndexCreated:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte("CREATE INDEX")})
		case *protocol.IndexDropped:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte("DROP INDEX")})
		case *protocol.TransactionStarted:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte("START TRANSACTION")})
		case *protocol.VariableSet:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte("SET")})
		case *protocol.StatementPrepared:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte("PREPARE")})
		case *protocol.StatementDeallocated:
			backend.Send(&pgproto3.CommandComplete{CommandTag: []byte("DEALLOCATE")})
		case *protocol.QueryError:
			writeError(backend, e)
		case *protocol.QueryComplete:
			// No wire message of its own; it only marks the boundary
			// where ReadyForQuery follows.
		}
	}
}

func writeError(backend *pgproto3.Backend, qe *protocol.QueryError) {
	sev := "ERROR"
	if qe.Severity == protocol.SeverityFatal {
		sev = "FATAL"
	}
	code := string(qe.Code)
	if code == "" {
		code = "XX000"
	}
	backend.Send(&pgproto3.ErrorResponse{
		Severity: sev,
		Code:     code,
		Message:  qe.Message,
	})
}
