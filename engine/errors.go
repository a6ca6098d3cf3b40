// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package engine

import (
	"errors"

	"github.com/minipgdb/minipg/analyzer"
	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/catalog/plan"
	"github.com/minipgdb/minipg/exec"
	"github.com/minipgdb/minipg/protocol"
	"github.com/minipgdb/minipg/typepipeline"
)

// ErrUnknownStatement is returned for an ast.Statement variant Exec does
// not recognize; it should be unreachable since ast.Statement is closed.
var ErrUnknownStatement = errors.New("engine: unrecognized statement")

// ErrPreparedStatementNotFound backs the extended query protocol's
// prepared-statement bookkeeping (spec.md §6, Open Question decision #1:
// no parameter substitution, so "portal" and "prepared statement" are
// the same map entry here).
var ErrPreparedStatementNotFound = errors.New("engine: prepared statement does not exist")

// ErrParameterizedStatement backs Open Question decision #1: Execute
// against a portal whose statement declared parameters is refused
// rather than run with its placeholders unfilled.
var ErrParameterizedStatement = errors.New("engine: parameter substitution is not supported")

// translate maps a typed error from any pipeline layer into the outbound
// QueryError shape of spec.md §7. Storage-substrate faults that were not
// already turned into a recoverable sentinel by catalog/kv are escalated
// to FATAL, per the propagation policy in spec.md §7.
func translate(err error) *protocol.QueryError {
	var (
		dm  *typepipeline.DatatypeMismatchError
		uf  *typepipeline.UndefinedFunctionError
		rng *exec.NumericTypeOutOfRangeError
		pow *exec.InvalidArgumentForPowerError
		txt *exec.InvalidTextRepresentationError
	)

	switch {
	case errors.Is(err, catalog.ErrSchemaExists):
		return qerr(protocol.CodeSchemaAlreadyExists, err)
	case errors.Is(err, catalog.ErrSchemaNotFound):
		return qerr(protocol.CodeSchemaDoesNotExist, err)
	case errors.Is(err, catalog.ErrHasDependants):
		return qerr(protocol.CodeSchemaHasDependentObjects, err)
	case errors.Is(err, catalog.ErrTableExists):
		return qerr(protocol.CodeTableAlreadyExists, err)
	case errors.Is(err, catalog.ErrTableNotFound):
		return qerr(protocol.CodeTableDoesNotExist, err)
	// An index is a relation in the same namespace as a table (matching
	// real PostgreSQL, which reuses 42P07/42P01 for both kinds), and the
	// taxonomy names no separate index-specific code.
	case errors.Is(err, catalog.ErrIndexExists):
		return qerr(protocol.CodeTableAlreadyExists, err)
	case errors.Is(err, catalog.ErrIndexNotFound):
		return qerr(protocol.CodeTableDoesNotExist, err)
	case errors.Is(err, catalog.ErrColumnNotFound):
		return qerr(protocol.CodeUndefinedColumn, err)
	case errors.Is(err, analyzer.ErrDuplicateColumn):
		return qerr(protocol.CodeDuplicateColumn, err)
	case errors.Is(err, analyzer.ErrTooManyInsertExpressions):
		return qerr(protocol.CodeSyntaxError, err)
	case errors.Is(err, analyzer.ErrFeatureNotSupported),
		errors.Is(err, plan.ErrUnsupportedStatement):
		return qerr(protocol.CodeFeatureNotSupported, err)
	case errors.As(err, &uf):
		return qerr(protocol.CodeUndefinedFunction, err)
	case errors.As(err, &dm):
		return qerr(protocol.CodeDatatypeMismatch, err)
	case errors.As(err, &rng):
		return qerr(protocol.CodeNumericTypeOutOfRange, err)
	case errors.As(err, &pow):
		return qerr(protocol.CodeInvalidArgumentForPower, err)
	case errors.As(err, &txt):
		return qerr(protocol.CodeInvalidTextRepresentation, err)
	// 22012 (division_by_zero) has no slot in spec.md §7's closed
	// taxonomy; InvalidParameterValue is the nearest fit for a bad
	// runtime operand value.
	case errors.Is(err, exec.ErrDivisionByZero):
		return qerr(protocol.CodeInvalidParameterValue, err)
	case errors.Is(err, ErrPreparedStatementNotFound):
		return qerr(protocol.CodePreparedStatementNotFound, err)
	case errors.Is(err, ErrParameterizedStatement):
		return qerr(protocol.CodeFeatureNotSupported, err)
	default:
		// An error this function does not recognize originates below the
		// SQL-semantic layers (the kv storage substrate): not caused by
		// user input, so the session-ending severity is FATAL even
		// though no SQLSTATE in the taxonomy names the condition.
		return &protocol.QueryError{Severity: protocol.SeverityFatal, Message: err.Error()}
	}
}

func qerr(code protocol.Code, err error) *protocol.QueryError {
	return &protocol.QueryError{Severity: protocol.SeverityError, Code: code, Message: err.Error()}
}
