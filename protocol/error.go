// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package protocol

import "fmt"

// Severity is the outbound error's severity level.
type Severity string

const (
	SeverityError Severity = "ERROR"
	SeverityFatal Severity = "FATAL"
)

// Code is a SQLSTATE five-character error code (spec.md §7).
type Code string

// The SQLSTATE taxonomy of spec.md §7.
const (
	CodeSchemaAlreadyExists        Code = "42P06"
	CodeSchemaDoesNotExist         Code = "3F000"
	CodeSchemaHasDependentObjects  Code = "2BP01"
	CodeTableAlreadyExists         Code = "42P07"
	CodeTableDoesNotExist          Code = "42P01"
	CodeUndefinedColumn            Code = "42703"
	CodeUndefinedFunction          Code = "42883"
	CodeAmbiguousColumnName        Code = "42702"
	CodeDuplicateColumn            Code = "42701"
	CodeSyntaxError                Code = "42601"
	CodeIndeterminateParameterType Code = "42P18"
	CodeInvalidParameterValue      Code = "22023"
	CodePreparedStatementNotFound  Code = "26000"
	CodeTypeDoesNotExist           Code = "42704"
	CodeFeatureNotSupported        Code = "0A000"
	CodeNumericTypeOutOfRange      Code = "22003"
	CodeStringTypeLengthMismatch   Code = "22026"
	CodeMostSpecificTypeMismatch   Code = "2200G"
	CodeInvalidTextRepresentation  Code = "22P02"
	CodeDatatypeMismatch           Code = "42804"
	CodeInvalidArgumentForPower    Code = "2201F"
	CodeCannotCoerce               Code = "42846"
	CodeProtocolViolation          Code = "08P01"
)

// QueryError is the outbound error shape of spec.md §6-7. Every layer
// below the engine reports a typed Go error (catalog/analyzer/
// typepipeline/exec sentinels); within the core, the engine is the only
// place that translates one into a QueryError. The demo server in
// cmd/minipgd builds QueryErrors of its own for SQL it cannot parse and
// for frontend messages it does not handle.
type QueryError struct {
	Severity Severity
	Code     Code
	Message  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s[%s]: %s", e.Severity, e.Code, e.Message)
}

func (*QueryError) queryEvent() {}
