// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package typepipeline

import (
	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/catalog"
	"github.com/minipgdb/minipg/typelattice"
)

// Compile runs the three passes in order — infer, check, coerce — over
// expr against tbl's columns, typed into ctx (the zero Family/Unknown
// for WHERE/SELECT expressions with no fixed destination type, or a
// column's declared family for INSERT values and UPDATE assignments).
func Compile(expr ast.Expr, tbl *catalog.Table, ctx typelattice.Family) (Node, error) {
	n := Infer(expr, tbl)
	if err := Check(n, ctx); err != nil {
		return nil, err
	}
	return Coerce(n, ctx), nil
}
