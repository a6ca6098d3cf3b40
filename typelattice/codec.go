// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package typelattice

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// discriminator tags a Value's family on the wire. Family parameters
// (width, string kind, precision/scale, temporal leaf) are re-derived
// from the column's declared type by the caller, not re-encoded per
// row — only the family.Kind-level shape and nullness travel with the
// value itself (spec.md §3 "Values").
type discriminator byte

const (
	tagNullBit discriminator = 0x80

	tagSmallInt  discriminator = 0x01
	tagInteger   discriminator = 0x02
	tagBigInt    discriminator = 0x03
	tagReal      discriminator = 0x04
	tagDouble    discriminator = 0x05
	tagString    discriminator = 0x06
	tagNumeric   discriminator = 0x07
	tagBool      discriminator = 0x08
	tagTemporal  discriminator = 0x09
)

// EncodeRow packs a tuple of typed values into the row format persisted
// in a table's key-space: each column prefixed by a discriminator byte,
// and by a 4-byte big-endian length for variable-width families.
func EncodeRow(values []Value) []byte {
	var buf []byte
	for _, v := range values {
		buf = append(buf, encodeValue(v)...)
	}
	return buf
}

func encodeValue(v Value) []byte {
	tag := familyTag(v.Family)
	if v.Null {
		out := []byte{byte(tag | tagNullBit)}
		return out
	}
	switch v.Family.Kind {
	case KInt:
		out := make([]byte, 1+8)
		out[0] = byte(tag)
		binary.BigEndian.PutUint64(out[1:], uint64(v.i))
		return out
	case KFloat:
		out := make([]byte, 1+8)
		out[0] = byte(tag)
		binary.BigEndian.PutUint64(out[1:], math.Float64bits(v.f))
		return out
	case KString, KTemporal:
		return encodeVarWidth(tag, []byte(v.s))
	case KBool:
		b := byte(0)
		if v.b {
			b = 1
		}
		return []byte{byte(tag), b}
	case KNumeric:
		return encodeVarWidth(tag, []byte(v.numeric.String()))
	default:
		return []byte{byte(tag)}
	}
}

func encodeVarWidth(tag discriminator, payload []byte) []byte {
	out := make([]byte, 1+4+len(payload))
	out[0] = byte(tag)
	binary.BigEndian.PutUint32(out[1:5], uint32(len(payload)))
	copy(out[5:], payload)
	return out
}

func familyTag(f Family) discriminator {
	switch f.Kind {
	case KInt:
		switch f.IntWidth {
		case SmallInt:
			return tagSmallInt
		case Integer:
			return tagInteger
		default:
			return tagBigInt
		}
	case KFloat:
		if f.FloatWidth == Real {
			return tagReal
		}
		return tagDouble
	case KString:
		return tagString
	case KNumeric:
		return tagNumeric
	case KBool:
		return tagBool
	case KTemporal:
		return tagTemporal
	default:
		return tagString
	}
}

// DecodeRow unpacks a row previously written by EncodeRow, given the
// declared families of each column in table/ordinal order.
func DecodeRow(data []byte, families []Family) ([]Value, error) {
	values := make([]Value, 0, len(families))
	off := 0
	for _, fam := range families {
		if off >= len(data) {
			return nil, fmt.Errorf("typelattice: row truncated decoding column of family %s", fam)
		}
		tag := discriminator(data[off])
		null := tag&tagNullBit != 0
		tag &^= tagNullBit
		off++
		if null {
			values = append(values, NewNull(fam))
			continue
		}
		switch tag {
		case tagSmallInt, tagInteger, tagBigInt:
			if off+8 > len(data) {
				return nil, fmt.Errorf("typelattice: truncated int payload")
			}
			iv := int64(binary.BigEndian.Uint64(data[off : off+8]))
			off += 8
			values = append(values, NewInt(fam.IntWidth, iv))
		case tagReal, tagDouble:
			if off+8 > len(data) {
				return nil, fmt.Errorf("typelattice: truncated float payload")
			}
			fv := math.Float64frombits(binary.BigEndian.Uint64(data[off : off+8]))
			off += 8
			values = append(values, NewFloat(fam.FloatWidth, fv))
		case tagString, tagTemporal, tagNumeric:
			if off+4 > len(data) {
				return nil, fmt.Errorf("typelattice: truncated length prefix")
			}
			n := int(binary.BigEndian.Uint32(data[off : off+4]))
			off += 4
			if off+n > len(data) {
				return nil, fmt.Errorf("typelattice: truncated var-width payload")
			}
			s := string(data[off : off+n])
			off += n
			switch tag {
			case tagString:
				values = append(values, NewString(fam.StrKind, fam.StrLen, s))
			case tagTemporal:
				values = append(values, NewTemporal(fam.Temporal, s))
			default:
				d, err := decimal.NewFromString(s)
				if err != nil {
					return nil, fmt.Errorf("typelattice: decoding numeric %q: %w", s, err)
				}
				values = append(values, NewNumeric(fam.Precision, fam.Scale, d))
			}
		case tagBool:
			if off+1 > len(data) {
				return nil, fmt.Errorf("typelattice: truncated bool payload")
			}
			values = append(values, NewBool(data[off] == 1))
			off++
		default:
			return nil, fmt.Errorf("typelattice: unknown discriminator 0x%x", tag)
		}
	}
	return values, nil
}
