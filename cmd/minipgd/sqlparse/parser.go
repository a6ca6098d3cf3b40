// Copyright 2021-present The Atlas Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

package sqlparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minipgdb/minipg/ast"
	"github.com/minipgdb/minipg/typelattice"
)

// Parser turns one SQL statement's token stream into an ast.Statement.
// It is a small recursive-descent parser scoped to exactly the grammar
// minipg's core names; anything else reports an error rather than
// guessing.
type Parser struct {
	lex  *Lexer
	cur  Token
	next Token
}

// Parse parses a single SQL statement (an optional trailing `;` is
// consumed if present) out of src.
func Parse(src string) (ast.Statement, error) {
	p := &Parser{lex: NewLexer(src)}
	p.advance()
	p.advance()
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind == TokSemicolon {
		p.advance()
	}
	if p.cur.Kind != TokEOF {
		return nil, fmt.Errorf("sqlparse: unexpected trailing input near %q", p.cur.Text)
	}
	return stmt, nil
}

func (p *Parser) advance() {
	p.cur = p.next
	p.next = p.lex.Next()
}

func (p *Parser) kw(word string) bool {
	return (p.cur.Kind == TokKeyword || p.cur.Kind == TokIdent) && strings.EqualFold(p.cur.Text, word)
}

func (p *Parser) expectKw(word string) error {
	if !p.kw(word) {
		return fmt.Errorf("sqlparse: expected %q, got %q", word, p.cur.Text)
	}
	p.advance()
	return nil
}

func (p *Parser) expectOp(op string) error {
	ok := p.cur.Kind == TokOp && p.cur.Text == op
	switch op {
	case "(":
		ok = p.cur.Kind == TokLParen
	case ")":
		ok = p.cur.Kind == TokRParen
	}
	if !ok {
		return fmt.Errorf("sqlparse: expected %q, got %q", op, p.cur.Text)
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdent() (string, error) {
	if p.cur.Kind != TokIdent && p.cur.Kind != TokKeyword {
		return "", fmt.Errorf("sqlparse: expected identifier, got %q", p.cur.Text)
	}
	name := p.cur.Text
	p.advance()
	return name, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.kw("create"):
		return p.parseCreate()
	case p.kw("drop"):
		return p.parseDrop()
	case p.kw("insert"):
		return p.parseInsert()
	case p.kw("update"):
		return p.parseUpdate()
	case p.kw("delete"):
		return p.parseDelete()
	case p.kw("select"):
		return p.parseSelect()
	case p.kw("set"):
		return p.parseSet()
	case p.kw("start_transaction"):
		p.advance()
		return &ast.SetVariable{Name: "start_transaction"}, nil
	case p.kw("commit"):
		p.advance()
		return &ast.SetVariable{Name: "commit"}, nil
	case p.kw("prepare"):
		return p.parsePrepare()
	case p.kw("execute"):
		return p.parseExecute()
	case p.kw("deallocate"):
		return p.parseDeallocate()
	default:
		return nil, fmt.Errorf("sqlparse: unrecognized statement starting at %q", p.cur.Text)
	}
}

// --- DDL ---

func (p *Parser) parseCreate() (ast.Statement, error) {
	p.advance() // CREATE
	switch {
	case p.kw("schema"):
		p.advance()
		ifNotExists, err := p.parseIfNotExists()
		if err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.CreateSchema{Name: name, IfNotExists: ifNotExists}, nil
	case p.kw("table"):
		p.advance()
		ifNotExists, err := p.parseIfNotExists()
		if err != nil {
			return nil, err
		}
		schema, table, err := p.parseQualifiedIdent()
		if err != nil {
			return nil, err
		}
		cols, err := p.parseColumnDefs()
		if err != nil {
			return nil, err
		}
		return &ast.CreateTable{Schema: schema, Name: table, Columns: cols, IfNotExists: ifNotExists}, nil
	case p.kw("unique"), p.kw("index"):
		unique := false
		if p.kw("unique") {
			unique = true
			p.advance()
		}
		if err := p.expectKw("index"); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectKw("on"); err != nil {
			return nil, err
		}
		schema, table, err := p.parseQualifiedIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		var cols []string
		for {
			col, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
			if p.cur.Kind == TokComma {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &ast.CreateIndex{Name: name, Schema: schema, Table: table, Columns: cols, Unique: unique}, nil
	default:
		return nil, fmt.Errorf("sqlparse: expected SCHEMA, TABLE or INDEX after CREATE, got %q", p.cur.Text)
	}
}

func (p *Parser) parseIfNotExists() (bool, error) {
	if !p.kw("if") {
		return false, nil
	}
	p.advance()
	if err := p.expectKw("not"); err != nil {
		return false, err
	}
	if err := p.expectKw("exists"); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Parser) parseIfExists() (bool, error) {
	if !p.kw("if") {
		return false, nil
	}
	p.advance()
	if err := p.expectKw("exists"); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Parser) parseQualifiedIdent() (schema, name string, err error) {
	first, err := p.expectIdent()
	if err != nil {
		return "", "", err
	}
	if p.cur.Kind == TokDot {
		p.advance()
		second, err := p.expectIdent()
		if err != nil {
			return "", "", err
		}
		return first, second, nil
	}
	return "", first, nil
}

func (p *Parser) parseColumnDefs() ([]ast.ColumnDef, error) {
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	var cols []ast.ColumnDef
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		fam, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		col := ast.ColumnDef{Name: name, Type: fam}
		for p.kw("not") || p.kw("default") {
			switch {
			case p.kw("not"):
				p.advance()
				if err := p.expectKw("null"); err != nil {
					return nil, err
				}
				col.NotNull = true
			case p.kw("default"):
				p.advance()
				defExpr, err := p.parseExpr(0)
				if err != nil {
					return nil, err
				}
				col.Default = defExpr
			}
		}
		cols = append(cols, col)
		if p.cur.Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return cols, nil
}

func (p *Parser) parseTypeName() (typelattice.Family, error) {
	name, err := p.expectIdent()
	if err != nil {
		return typelattice.Family{}, err
	}
	switch strings.ToLower(name) {
	case "smallint":
		return typelattice.Int(typelattice.SmallInt), nil
	case "integer", "int":
		return typelattice.Int(typelattice.Integer), nil
	case "bigint":
		return typelattice.Int(typelattice.BigInt), nil
	case "real":
		return typelattice.FloatT(typelattice.Real), nil
	case "double":
		if err := p.expectKw("precision"); err != nil {
			return typelattice.Family{}, err
		}
		return typelattice.FloatT(typelattice.Double), nil
	case "numeric", "decimal":
		precision, scale := 0, 0
		if p.cur.Kind == TokLParen {
			p.advance()
			pr, err := p.expectInt()
			if err != nil {
				return typelattice.Family{}, err
			}
			precision = pr
			if p.cur.Kind == TokComma {
				p.advance()
				sc, err := p.expectInt()
				if err != nil {
					return typelattice.Family{}, err
				}
				scale = sc
			}
			if err := p.expectOp(")"); err != nil {
				return typelattice.Family{}, err
			}
		}
		return typelattice.NumericT(precision, scale), nil
	case "char":
		length, err := p.parseOptionalLength()
		if err != nil {
			return typelattice.Family{}, err
		}
		return typelattice.StringT(typelattice.Char, length), nil
	case "varchar":
		length, err := p.parseOptionalLength()
		if err != nil {
			return typelattice.Family{}, err
		}
		return typelattice.StringT(typelattice.VarChar, length), nil
	case "text":
		return typelattice.StringT(typelattice.Text, 0), nil
	case "boolean", "bool":
		return typelattice.Bool, nil
	case "date":
		return typelattice.TemporalT(typelattice.Date), nil
	case "time":
		return typelattice.TemporalT(typelattice.Time), nil
	case "timestamp":
		return typelattice.TemporalT(typelattice.Timestamp), nil
	case "interval":
		return typelattice.TemporalT(typelattice.Interval), nil
	default:
		return typelattice.Family{}, fmt.Errorf("sqlparse: unknown type name %q", name)
	}
}

func (p *Parser) parseOptionalLength() (int, error) {
	if p.cur.Kind != TokLParen {
		return 0, nil
	}
	p.advance()
	n, err := p.expectInt()
	if err != nil {
		return 0, err
	}
	if err := p.expectOp(")"); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *Parser) expectInt() (int, error) {
	if p.cur.Kind != TokInt {
		return 0, fmt.Errorf("sqlparse: expected integer, got %q", p.cur.Text)
	}
	n, err := strconv.Atoi(p.cur.Text)
	if err != nil {
		return 0, fmt.Errorf("sqlparse: invalid integer %q: %w", p.cur.Text, err)
	}
	p.advance()
	return n, nil
}

func (p *Parser) parseDrop() (ast.Statement, error) {
	p.advance() // DROP
	switch {
	case p.kw("schema"):
		p.advance()
		ifExists, err := p.parseIfExists()
		if err != nil {
			return nil, err
		}
		var names []string
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			names = append(names, name)
			if p.cur.Kind == TokComma {
				p.advance()
				continue
			}
			break
		}
		cascade, err := p.parseCascadeRestrict()
		if err != nil {
			return nil, err
		}
		return &ast.DropSchemas{Names: names, Cascade: cascade, IfExists: ifExists}, nil
	case p.kw("table"):
		p.advance()
		ifExists, err := p.parseIfExists()
		if err != nil {
			return nil, err
		}
		var tables []ast.QualifiedName
		for {
			schema, name, err := p.parseQualifiedIdent()
			if err != nil {
				return nil, err
			}
			tables = append(tables, ast.QualifiedName{Schema: schema, Name: name})
			if p.cur.Kind == TokComma {
				p.advance()
				continue
			}
			break
		}
		cascade, err := p.parseCascadeRestrict()
		if err != nil {
			return nil, err
		}
		return &ast.DropTables{Tables: tables, Cascade: cascade, IfExists: ifExists}, nil
	case p.kw("index"):
		p.advance()
		ifExists, err := p.parseIfExists()
		if err != nil {
			return nil, err
		}
		schema, name, err := p.parseQualifiedIdent()
		if err != nil {
			return nil, err
		}
		return &ast.DropIndex{Schema: schema, Name: name, IfExists: ifExists}, nil
	default:
		return nil, fmt.Errorf("sqlparse: expected SCHEMA, TABLE or INDEX after DROP, got %q", p.cur.Text)
	}
}

func (p *Parser) parseCascadeRestrict() (bool, error) {
	switch {
	case p.kw("cascade"):
		p.advance()
		return true, nil
	case p.kw("restrict"):
		p.advance()
		return false, nil
	default:
		return false, nil
	}
}

// --- DML ---

func (p *Parser) parseInsert() (ast.Statement, error) {
	p.advance() // INSERT
	if err := p.expectKw("into"); err != nil {
		return nil, err
	}
	schema, table, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	var cols []string
	if p.cur.Kind == TokLParen {
		p.advance()
		for {
			c, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
			if p.cur.Kind == TokComma {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	if err := p.expectKw("values"); err != nil {
		return nil, err
	}
	var rows [][]ast.Expr
	for {
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		var row []ast.Expr
		for {
			e, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			row = append(row, e)
			if p.cur.Kind == TokComma {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if p.cur.Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	return &ast.Insert{Table: ast.QualifiedName{Schema: schema, Name: table}, Columns: cols, Rows: rows}, nil
}

func (p *Parser) parseUpdate() (ast.Statement, error) {
	p.advance() // UPDATE
	schema, table, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKw("set"); err != nil {
		return nil, err
	}
	var assigns []ast.Assignment
	for {
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp("="); err != nil {
			return nil, err
		}
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		assigns = append(assigns, ast.Assignment{Column: col, Value: val})
		if p.cur.Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	var where ast.Expr
	if p.kw("where") {
		p.advance()
		where, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	return &ast.Update{Table: ast.QualifiedName{Schema: schema, Name: table}, Assignments: assigns, Where: where}, nil
}

func (p *Parser) parseDelete() (ast.Statement, error) {
	p.advance() // DELETE
	if err := p.expectKw("from"); err != nil {
		return nil, err
	}
	schema, table, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	var where ast.Expr
	if p.kw("where") {
		p.advance()
		where, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	return &ast.Delete{Table: ast.QualifiedName{Schema: schema, Name: table}, Where: where}, nil
}

func (p *Parser) parseSelect() (ast.Statement, error) {
	p.advance() // SELECT
	var items []ast.SelectItem
	for {
		if p.cur.Kind == TokOp && p.cur.Text == "*" {
			p.advance()
			items = append(items, ast.SelectItem{Star: true})
		} else {
			e, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			item := ast.SelectItem{Expr: e}
			if p.kw("as") {
				p.advance()
				alias, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				item.Alias = alias
			}
			items = append(items, item)
		}
		if p.cur.Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectKw("from"); err != nil {
		return nil, err
	}
	schema, table, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	var where ast.Expr
	if p.kw("where") {
		p.advance()
		where, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	return &ast.Select{Items: items, Table: ast.QualifiedName{Schema: schema, Name: table}, Where: where}, nil
}

// --- Config / Extended protocol ---

func (p *Parser) parseSet() (ast.Statement, error) {
	p.advance() // SET
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp("="); err != nil {
		return nil, err
	}
	var value string
	switch p.cur.Kind {
	case TokString, TokIdent, TokKeyword, TokInt, TokFloat:
		value = p.cur.Text
		p.advance()
	default:
		return nil, fmt.Errorf("sqlparse: expected value after SET %s =, got %q", name, p.cur.Text)
	}
	return &ast.SetVariable{Name: name, Value: value}, nil
}

func (p *Parser) parsePrepare() (ast.Statement, error) {
	p.advance() // PREPARE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKw("as"); err != nil {
		return nil, err
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.Prepare{Name: name, Statement: stmt}, nil
}

func (p *Parser) parseExecute() (ast.Statement, error) {
	p.advance() // EXECUTE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &ast.ExecutePrepared{Portal: name}, nil
}

func (p *Parser) parseDeallocate() (ast.Statement, error) {
	p.advance() // DEALLOCATE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &ast.Deallocate{Name: name}, nil
}

// --- Expressions ---
//
// A small precedence-climbing parser: OR < AND < comparison/equality <
// additive/concat < multiplicative < unary < primary. Enough for
// spec.md §4.4's closed operator set, no more.

// Binary operator node.Op values are compared verbatim against
// typepipeline's operator tables (typepipeline/ops.go), which expect
// "AND"/"OR" upper-case and the arithmetic/comparison/bitwise operators
// exactly as spelled here.
var precedence = map[string]int{
	"OR": 1, "AND": 2,
	"=": 3, "<>": 3, "!=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"&": 3, "|": 3, "#": 3, "<<": 3, ">>": 3,
	"+": 4, "-": 4, "||": 4,
	"*": 5, "/": 5, "%": 5, "^": 6,
}

func (p *Parser) peekOp() (string, bool) {
	switch p.cur.Kind {
	case TokOp:
		return p.cur.Text, true
	case TokKeyword, TokIdent:
		switch strings.ToLower(p.cur.Text) {
		case "and":
			return "AND", true
		case "or":
			return "OR", true
		}
	}
	return "", false
}

func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp()
		if !ok {
			break
		}
		prec, known := precedence[op]
		if !known || prec < minPrec {
			break
		}
		p.advance()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseUnary parses the unary operators that appear before their operand:
// identity/negate/abs, bitwise NOT, prefix factorial, square/cube root
// (spec.md §4.4.4's unary operator table). Postfix "!" (factorial) is
// handled separately in parsePostfix.
func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.cur.Kind == TokOp {
		switch p.cur.Text {
		case "-", "+", "@", "~", "!!", "|/", "||/":
			op := p.cur.Text
			p.advance()
			x, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &ast.UnaryExpr{Op: op, X: x}, nil
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokOp && p.cur.Text == "!" {
		p.advance()
		x = &ast.UnaryExpr{Op: "!", X: x}
	}
	return x, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.cur.Kind {
	case TokInt:
		v, err := strconv.ParseInt(p.cur.Text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("sqlparse: invalid integer literal %q: %w", p.cur.Text, err)
		}
		p.advance()
		return &ast.IntLiteral{Value: v}, nil
	case TokFloat:
		text := p.cur.Text
		p.advance()
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("sqlparse: invalid float literal %q: %w", text, err)
		}
		return &ast.FloatLiteral{Value: v}, nil
	case TokString:
		text := p.cur.Text
		p.advance()
		return &ast.StringLiteral{Text: text}, nil
	case TokLParen:
		p.advance()
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return e, nil
	case TokKeyword, TokIdent:
		switch strings.ToLower(p.cur.Text) {
		case "true":
			p.advance()
			return &ast.BoolLiteral{Value: true}, nil
		case "false":
			p.advance()
			return &ast.BoolLiteral{Value: false}, nil
		case "null":
			p.advance()
			return &ast.NullLiteral{}, nil
		default:
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			return &ast.ColumnRef{Name: name}, nil
		}
	default:
		return nil, fmt.Errorf("sqlparse: unexpected token %q in expression", p.cur.Text)
	}
}
