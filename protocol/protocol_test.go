// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minipgdb/minipg/protocol"
	"github.com/minipgdb/minipg/typelattice"
)

func TestOIDMappingIsBitExact(t *testing.T) {
	require.Equal(t, uint32(16), protocol.OIDFor(typelattice.Bool))
	require.Equal(t, uint32(1042), protocol.OIDFor(typelattice.StringT(typelattice.Char, 1)))
	require.Equal(t, uint32(1043), protocol.OIDFor(typelattice.StringT(typelattice.VarChar, 10)))
	require.Equal(t, uint32(21), protocol.OIDFor(typelattice.Int(typelattice.SmallInt)))
	require.Equal(t, uint32(23), protocol.OIDFor(typelattice.Int(typelattice.Integer)))
	require.Equal(t, uint32(20), protocol.OIDFor(typelattice.Int(typelattice.BigInt)))
}

func TestTypeSizeVariableLengthIsNegativeOne(t *testing.T) {
	require.Equal(t, -1, protocol.TypeSize(protocol.OIDVarChar))
	require.Equal(t, 2, protocol.TypeSize(protocol.OIDInt2))
	require.Equal(t, 4, protocol.TypeSize(protocol.OIDInt4))
	require.Equal(t, 8, protocol.TypeSize(protocol.OIDInt8))
}
