// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package typepipeline

import (
	"errors"
	"fmt"

	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/typelattice"
)

// Sentinel errors; DatatypeMismatchError/UndefinedFunctionError wrap
// these so callers can both errors.Is and inspect the offending families.
var (
	ErrDatatypeMismatch  = errors.New("typepipeline: datatype mismatch")
	ErrUndefinedFunction = errors.New("typepipeline: undefined function")
)

// DatatypeMismatchError is spec.md §4.4.2's DatatypeMismatch{expected, actual}.
type DatatypeMismatchError struct {
	Expected, Actual typelattice.Family
}

func (e *DatatypeMismatchError) Error() string {
	return fmt.Sprintf("typepipeline: cannot coerce %s to %s", e.Actual, e.Expected)
}

func (e *DatatypeMismatchError) Unwrap() error { return ErrDatatypeMismatch }

// UndefinedFunctionError is spec.md §4.4.2's UndefinedFunction{op, left, right}.
type UndefinedFunctionError struct {
	Op          string
	Left, Right typelattice.Family // Right is the zero Family for unary ops
}

func (e *UndefinedFunctionError) Error() string {
	if e.Right == (typelattice.Family{}) {
		return fmt.Sprintf("typepipeline: operator %s is undefined for %s", e.Op, e.Left)
	}
	return fmt.Sprintf("typepipeline: operator %s is undefined for %s, %s", e.Op, e.Left, e.Right)
}

func (e *UndefinedFunctionError) Unwrap() error { return ErrUndefinedFunction }

// Check verifies that every operator application in n has a table entry
// (spec.md §4.4.2), then, when ctx is not Unknown, that n's family is
// legal in that context (the destination column of an INSERT/UPDATE
// value, or no fixed context for WHERE/SELECT expressions).
func Check(n Node, ctx typelattice.Family) error {
	if err := checkNode(n); err != nil {
		return err
	}
	if ctx.Kind != typelattice.KUnknown && !coercible(n.Fam(), ctx) {
		return &DatatypeMismatchError{Expected: ctx, Actual: n.Fam()}
	}
	return nil
}

func checkNode(n Node) error {
	switch v := n.(type) {
	case *Const, *Column:
		return nil
	case *UnOp:
		if err := checkNode(v.X); err != nil {
			return err
		}
		if v.F.Kind == typelattice.KUnknown {
			return &UndefinedFunctionError{Op: v.Op, Left: v.X.Fam()}
		}
		return nil
	case *BiOp:
		if err := checkNode(v.Left); err != nil {
			return err
		}
		if err := checkNode(v.Right); err != nil {
			return err
		}
		if v.F.Kind == typelattice.KUnknown {
			return &UndefinedFunctionError{Op: v.Op, Left: v.Left.Fam(), Right: v.Right.Fam()}
		}
		return nil
	case *Cast:
		return checkNode(v.X)
	default:
		return fmt.Errorf("typepipeline: unknown node %T", n)
	}
}

// coercible reports whether a value of family actual may appear in a
// context of family ctx: any Unknown literal may, same-family values
// always may (narrowing is range-checked at evaluation, not here), and
// otherwise the lattice order must hold. Temporal values coerce only to
// their own leaf, since different leaves are mutually incomparable.
func coercible(actual, ctx typelattice.Family) bool {
	if actual.Kind == typelattice.KUnknown {
		return true
	}
	if actual.Kind == typelattice.KTemporal || ctx.Kind == typelattice.KTemporal {
		return actual.Equal(ctx)
	}
	if actual.Kind == ctx.Kind {
		return true
	}
	return typelattice.LessEq(actual, ctx)
}

// CheckNotNullable implements SPEC_FULL.md §3's supplement: a NULL value
// (literal or defaulted placeholder) assigned to a NotNull column raises
// DatatypeMismatch at coercion time.
func CheckNotNullable(n Node, col catalog.Column) error {
	if !col.NotNull || !isNullLiteral(n) {
		return nil
	}
	return &DatatypeMismatchError{Expected: col.Type, Actual: typelattice.Unknown}
}

func isNullLiteral(n Node) bool {
	switch v := n.(type) {
	case *Const:
		return v.Null
	case *Cast:
		return isNullLiteral(v.X)
	default:
		return false
	}
}
