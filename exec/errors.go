// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package exec

import (
	"errors"
	"fmt"

	"github.com/minipgdb/minipg/typelattice"
)

// ErrDivisionByZero is returned evaluating `/` or `%` with a zero divisor,
// whatever the numeric family (spec.md §7, grounded on
// original_source/postgre_sql/query_response/src/lib.rs's division-by-zero
// QueryError constructor).
var ErrDivisionByZero = errors.New("exec: division by zero")

// InvalidArgumentForPowerError is raised evaluating `^` with a negative
// base and a non-integer exponent, `^` on integers with a negative
// exponent, factorial of a negative integer, and a square or cube root
// of a negative number (original_source/postgre_sql/query_response/src/lib.rs
// invalid_argument_for_power_function).
type InvalidArgumentForPowerError struct {
	Base, Exponent string
}

func (e *InvalidArgumentForPowerError) Error() string {
	return fmt.Sprintf("exec: invalid argument for power function: %s ^ %s", e.Base, e.Exponent)
}

// NumericTypeOutOfRangeError is raised when a coerced/computed integer
// value falls outside the target Int width's range.
type NumericTypeOutOfRangeError struct {
	Target typelattice.Family
	Value  int64
}

func (e *NumericTypeOutOfRangeError) Error() string {
	return fmt.Sprintf("exec: %d out of range for %s", e.Value, e.Target)
}

// InvalidTextRepresentationError is raised casting a literal's raw text
// into a target family whose Go parser rejects it (e.g. "abc"::integer).
type InvalidTextRepresentationError struct {
	Target typelattice.Family
	Text   string
}

func (e *InvalidTextRepresentationError) Error() string {
	return fmt.Sprintf("exec: invalid input syntax for %s: %q", e.Target, e.Text)
}
