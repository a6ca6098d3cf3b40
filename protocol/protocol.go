// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package protocol names the wire-protocol boundary of spec.md §6: the
// inbound Command vocabulary a frame-codec collaborator produces, and
// the outbound QueryEvent vocabulary the engine emits for it to encode.
// Neither byte-level framing nor the SQL parser lives here — only the
// shapes that cross the boundary.
package protocol

// Command is the closed sum type over the inbound session messages of
// the wire boundary. engine.Engine does not take Commands: its entry
// point is the parsed ast.Statement.
type Command interface{ command() }

// Query is a simple-query-protocol statement.
type Query struct{ SQL string }

func (*Query) command() {}

// Parse is the extended-protocol statement-preparation step.
type Parse struct {
	Name      string
	SQL       string
	ParamOIDs []uint32
}

func (*Parse) command() {}

// Bind attaches parameter values and result formats to a prepared
// statement, producing a portal.
type Bind struct {
	Portal        string
	Statement     string
	ParamFormats  []int16
	RawParams     [][]byte
	ResultFormats []int16
}

func (*Bind) command() {}

// DescribeStatement asks for a prepared statement's parameter/result shape.
type DescribeStatement struct{ Name string }

func (*DescribeStatement) command() {}

// DescribePortal asks for a bound portal's result shape.
type DescribePortal struct{ Name string }

func (*DescribePortal) command() {}

// Execute runs a bound portal, stopping after MaxRows rows (0 means unlimited).
type Execute struct {
	Portal  string
	MaxRows int
}

func (*Execute) command() {}

// Flush and Continue are sync/ready punctuation with no statement payload.
type Flush struct{}

func (*Flush) command() {}

type Continue struct{}

func (*Continue) command() {}

// Terminate ends the session.
type Terminate struct{}

func (*Terminate) command() {}
