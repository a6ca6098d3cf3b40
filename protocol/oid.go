// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package protocol

import "github.com/minipgdb/minipg/typelattice"

// PostgreSQL wire type OIDs, bit-exact per spec.md §6: bool=16,
// char=1042, varchar=1043, bpchar=1042, int2=21, int4=23, int8=20.
const (
	OIDBool      uint32 = 16
	OIDBPChar    uint32 = 1042
	OIDVarChar   uint32 = 1043
	OIDText      uint32 = 25
	OIDInt2      uint32 = 21
	OIDInt4      uint32 = 23
	OIDInt8      uint32 = 20
	OIDFloat4    uint32 = 700
	OIDFloat8    uint32 = 701
	OIDNumeric   uint32 = 1700
	OIDDate      uint32 = 1082
	OIDTime      uint32 = 1083
	OIDTimestamp uint32 = 1114
	OIDInterval  uint32 = 1186
)

// TypeSize is the wire-format size in bytes for a fixed-width OID, or -1
// for a variable-length one (spec.md §6).
func TypeSize(oid uint32) int {
	switch oid {
	case OIDBool:
		return 1
	case OIDInt2:
		return 2
	case OIDInt4, OIDFloat4:
		return 4
	case OIDInt8, OIDFloat8:
		return 8
	default:
		return -1
	}
}

// OIDFor maps a declared Family to its wire type OID.
func OIDFor(f typelattice.Family) uint32 {
	switch f.Kind {
	case typelattice.KBool:
		return OIDBool
	case typelattice.KInt:
		switch f.IntWidth {
		case typelattice.SmallInt:
			return OIDInt2
		case typelattice.Integer:
			return OIDInt4
		default:
			return OIDInt8
		}
	case typelattice.KFloat:
		if f.FloatWidth == typelattice.Real {
			return OIDFloat4
		}
		return OIDFloat8
	case typelattice.KString:
		switch f.StrKind {
		case typelattice.Char:
			return OIDBPChar
		case typelattice.VarChar:
			return OIDVarChar
		default:
			return OIDText
		}
	case typelattice.KNumeric:
		return OIDNumeric
	case typelattice.KTemporal:
		switch f.Temporal {
		case typelattice.Date:
			return OIDDate
		case typelattice.Time:
			return OIDTime
		case typelattice.Timestamp:
			return OIDTimestamp
		default:
			return OIDInterval
		}
	default:
		return OIDText
	}
}
