// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package exec implements spec.md §4.5's last mile: evaluating a
// type-pipeline-compiled Node tree against a row, and the write/read
// executors that drive that evaluation against a kv.Store-backed table.
package exec

import (
	"fmt"
	"strconv"
	"time"

	"github.com/minipgdb/minipg/typelattice"
	"github.com/minipgdb/minipg/typepipeline"
)

// Eval reduces a compiled Node to a runtime Value. row holds the
// pre-image column values a Column node indexes into by ordinal; row is
// nil when evaluating an expression with no current row (an INSERT
// value list, which cannot reference other columns).
func Eval(n typepipeline.Node, row []typelattice.Value) (typelattice.Value, error) {
	switch v := n.(type) {
	case *typepipeline.Const:
		return evalConst(v)
	case *typepipeline.Column:
		if row == nil || v.Ordinal >= len(row) {
			return typelattice.Value{}, fmt.Errorf("exec: column %q has no row to evaluate against", v.Name)
		}
		return row[v.Ordinal], nil
	case *typepipeline.Cast:
		inner, err := Eval(v.X, row)
		if err != nil {
			return typelattice.Value{}, err
		}
		return castValue(inner, v.F)
	case *typepipeline.UnOp:
		return evalUnOp(v, row)
	case *typepipeline.BiOp:
		return evalBiOp(v, row)
	default:
		return typelattice.Value{}, fmt.Errorf("exec: unevaluable node %T", n)
	}
}

func evalConst(c *typepipeline.Const) (typelattice.Value, error) {
	switch {
	case c.Null:
		return typelattice.NewNull(c.F), nil
	case c.F.Kind == typelattice.KInt:
		return typelattice.NewInt(c.F.IntWidth, c.I), nil
	case c.F.Kind == typelattice.KFloat:
		return typelattice.NewFloat(c.F.FloatWidth, c.Fl), nil
	case c.F.Kind == typelattice.KNumeric:
		return castValue(typelattice.NewString(typelattice.Text, 0, c.Text), c.F)
	case c.F.Kind == typelattice.KBool:
		return typelattice.NewBool(c.B), nil
	case c.F.Kind == typelattice.KUnknown:
		// An uncast literal: no surrounding context demanded a cast, so
		// it stands for its own raw text (e.g. a bare `SELECT 'hi'`).
		return typelattice.NewString(typelattice.Text, 0, c.Text), nil
	default:
		return typelattice.Value{}, fmt.Errorf("exec: unevaluable const family %s", c.F)
	}
}

func evalUnOp(u *typepipeline.UnOp, row []typelattice.Value) (typelattice.Value, error) {
	x, err := Eval(u.X, row)
	if err != nil {
		return typelattice.Value{}, err
	}
	if x.Null {
		return typelattice.NewNull(u.F), nil
	}
	switch u.Op {
	case "!", "!!":
		return evalFactorial(x)
	case "|/", "||/":
		return evalRoot(u.Op, x)
	default:
		return evalUnaryArith(u.Op, x, u.F)
	}
}

func evalBiOp(b *typepipeline.BiOp, row []typelattice.Value) (typelattice.Value, error) {
	l, err := Eval(b.Left, row)
	if err != nil {
		return typelattice.Value{}, err
	}
	r, err := Eval(b.Right, row)
	if err != nil {
		return typelattice.Value{}, err
	}
	if l.Null || r.Null {
		return typelattice.NewNull(b.F), nil
	}
	switch {
	case isArithmeticOp(b.Op):
		return evalArithmetic(b.Op, l, r, b.F)
	case isComparisonOp(b.Op):
		return evalCompare(b.Op, l, r)
	case b.Op == "AND":
		return typelattice.NewBool(l.Bool() && r.Bool()), nil
	case b.Op == "OR":
		return typelattice.NewBool(l.Bool() || r.Bool()), nil
	case b.Op == "||":
		return typelattice.NewString(b.F.StrKind, b.F.StrLen, l.Str()+r.Str()), nil
	case isBitwiseOp(b.Op):
		return evalBitwise(b.Op, l, r, b.F)
	default:
		return typelattice.Value{}, unsupportedOp(b.Op, l.Family, r.Family)
	}
}

func isArithmeticOp(op string) bool {
	switch op {
	case "+", "-", "*", "/", "%", "^":
		return true
	}
	return false
}

func isComparisonOp(op string) bool {
	switch op {
	case "=", "<>", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func isBitwiseOp(op string) bool {
	switch op {
	case "&", "|", "#", "<<", ">>":
		return true
	}
	return false
}

func unsupportedOp(op string, l, r typelattice.Family) error {
	return fmt.Errorf("exec: no evaluation rule for %s %s %s", l, op, r)
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// dateLayout/timeLayout/timestampLayout are the canonical text forms a
// Temporal Value's Str() carries, per typelattice.NewTemporal's doc.
const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05"
	timestampLayout = "2006-01-02 15:04:05"
)

// evalTemporalArithmetic evaluates date/time/timestamp +/- int/interval,
// grounded on typepipeline's temporalArithmetic table deciding which
// combinations are legal; here they are actually computed. Interval
// values are stored in their own canonical text as a signed day count
// (e.g. "3" meaning 3 days), the smallest interval shape spec.md's
// supplemented Temporal family needs.
func evalTemporalArithmetic(op string, l, r typelattice.Value, result typelattice.Family) (typelattice.Value, error) {
	if result.Kind == typelattice.KTemporal && result.Temporal == typelattice.Interval &&
		l.Family.Kind == typelattice.KTemporal && r.Family.Kind == typelattice.KTemporal {
		ld, err := parseDays(l)
		if err != nil {
			return typelattice.Value{}, err
		}
		rd, err := parseDays(r)
		if err != nil {
			return typelattice.Value{}, err
		}
		if op == "-" {
			return typelattice.NewTemporal(typelattice.Interval, itoa(ld-rd)), nil
		}
		return typelattice.NewTemporal(typelattice.Interval, itoa(ld+rd)), nil
	}

	if l.Family.Kind == typelattice.KTemporal && l.Family.Temporal != typelattice.Interval {
		days, err := intervalDays(r)
		if err != nil {
			return typelattice.Value{}, err
		}
		return shiftDate(l, days, op)
	}
	// rIsTemporal, l is the int/interval operand (only "+" reaches here
	// per typepipeline's table).
	days, err := intervalDays(l)
	if err != nil {
		return typelattice.Value{}, err
	}
	return shiftDate(r, days, op)
}

func parseDays(v typelattice.Value) (int64, error) {
	if v.Family.Temporal == typelattice.Interval {
		return intervalDays(v)
	}
	t, err := time.Parse(layoutOf(v.Family.Temporal), v.Str())
	if err != nil {
		return 0, &InvalidTextRepresentationError{Target: v.Family, Text: v.Str()}
	}
	return t.Unix() / 86400, nil
}

// layoutOf returns the canonical text layout of a date, time or
// timestamp leaf.
func layoutOf(k typelattice.TemporalKind) string {
	switch k {
	case typelattice.Time:
		return timeLayout
	case typelattice.Timestamp:
		return timestampLayout
	}
	return dateLayout
}

func intervalDays(v typelattice.Value) (int64, error) {
	if v.Family.Kind == typelattice.KInt {
		return v.Int64(), nil
	}
	n, err := strconv.ParseInt(v.Str(), 10, 64)
	if err != nil {
		return 0, &InvalidTextRepresentationError{Target: v.Family, Text: v.Str()}
	}
	return n, nil
}

func shiftDate(v typelattice.Value, days int64, op string) (typelattice.Value, error) {
	if op == "-" {
		days = -days
	}
	layout := layoutOf(v.Family.Temporal)
	t, err := time.Parse(layout, v.Str())
	if err != nil {
		return typelattice.Value{}, &InvalidTextRepresentationError{Target: v.Family, Text: v.Str()}
	}
	return typelattice.NewTemporal(v.Family.Temporal, t.AddDate(0, 0, int(days)).Format(layout)), nil
}
