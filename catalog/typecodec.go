// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minipgdb/minipg/typelattice"
)

// encodeFamily/decodeFamily persist a declared column's Family across
// restarts as a compact, self-describing string inside the COLUMNS
// system table row, since typelattice.Family's parameters (width,
// string kind/length, precision/scale, temporal leaf) must round-trip
// exactly for DecodeRow to later interpret that column's stored values.
func encodeFamily(f typelattice.Family) string {
	switch f.Kind {
	case typelattice.KInt:
		return fmt.Sprintf("int:%d", f.IntWidth)
	case typelattice.KFloat:
		return fmt.Sprintf("float:%d", f.FloatWidth)
	case typelattice.KString:
		return fmt.Sprintf("string:%d:%d", f.StrKind, f.StrLen)
	case typelattice.KNumeric:
		return fmt.Sprintf("numeric:%d:%d", f.Precision, f.Scale)
	case typelattice.KBool:
		return "bool"
	case typelattice.KTemporal:
		return fmt.Sprintf("temporal:%d", f.Temporal)
	default:
		return "unknown"
	}
}

func decodeFamily(s string) (typelattice.Family, error) {
	parts := strings.Split(s, ":")
	switch parts[0] {
	case "int":
		w, err := strconv.Atoi(parts[1])
		if err != nil {
			return typelattice.Family{}, err
		}
		return typelattice.Int(typelattice.IntWidth(w)), nil
	case "float":
		w, err := strconv.Atoi(parts[1])
		if err != nil {
			return typelattice.Family{}, err
		}
		return typelattice.FloatT(typelattice.FloatWidth(w)), nil
	case "string":
		k, err := strconv.Atoi(parts[1])
		if err != nil {
			return typelattice.Family{}, err
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return typelattice.Family{}, err
		}
		return typelattice.StringT(typelattice.StringKind(k), n), nil
	case "numeric":
		p, err := strconv.Atoi(parts[1])
		if err != nil {
			return typelattice.Family{}, err
		}
		sc, err := strconv.Atoi(parts[2])
		if err != nil {
			return typelattice.Family{}, err
		}
		return typelattice.NumericT(p, sc), nil
	case "bool":
		return typelattice.Bool, nil
	case "temporal":
		k, err := strconv.Atoi(parts[1])
		if err != nil {
			return typelattice.Family{}, err
		}
		return typelattice.TemporalT(typelattice.TemporalKind(k)), nil
	default:
		return typelattice.Family{}, fmt.Errorf("catalog: unknown encoded family %q", s)
	}
}
