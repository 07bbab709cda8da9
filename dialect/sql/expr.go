package sql

import (
	"fmt"

	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

// Expr is one node of the expression algebra the generator composes
// filters, join conditions, and computed columns from. Render writes the
// node's SQL text (and, for leaf values, a bind parameter) onto b.
//
// This mirrors the Expression tree of the original engine (ConstExpr,
// ColumnExpr, UnaryOpExpr, BinaryOpExpr, JoinExpr) rather than Velox's
// own Selector/Predicate, which only ever builds flat WHERE clauses; a
// Unit-of-Work session also needs to render join conditions and
// parenthesized combinator trees structurally, hence the separate type.
type Expr interface {
	Render(b *Builder)
}

// ConstExpr renders a literal value. By default it is bound as a
// parameter (Arg); set Inline to splice it directly as SQL text instead
// (used for DDL defaults and literals that must not be parameterized,
// e.g. inside CHECK constraints).
type ConstExpr struct {
	Value  value.Value
	Inline bool
}

func (e ConstExpr) Render(b *Builder) {
	if e.Inline {
		b.WriteString(e.Value.SQLLiteral())
		return
	}
	v, err := valueToArg(e.Value)
	if err != nil {
		b.WriteString(e.Value.SQLLiteral())
		return
	}
	b.WriteString(b.Arg(v))
}

func valueToArg(v value.Value) (any, error) {
	switch v.Tag() {
	case value.Null:
		return nil, nil
	case value.Integer:
		return v.AsInteger()
	case value.LongInt:
		return v.AsLongInt()
	case value.String:
		return v.AsString()
	case value.Decimal:
		d, err := v.AsDecimal()
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case value.DateTime:
		return v.AsDateTime()
	case value.Float:
		return v.AsFloat()
	case value.Blob:
		return v.AsBlob()
	default:
		return nil, fmt.Errorf("dialect/sql: unsupported value tag %v", v.Tag())
	}
}

// ColumnExpr renders a table-qualified column reference: "table"."column".
// Table may be empty for an unqualified reference.
type ColumnExpr struct {
	Table  string
	Column string
}

func (e ColumnExpr) Render(b *Builder) {
	if e.Table != "" {
		b.WriteString(b.Ident(e.Table)).WriteByte('.')
	}
	b.WriteString(b.Ident(e.Column))
}

// UnaryOpExpr renders "<op> (<operand>)", e.g. "NOT (...)" or "-(...)".
type UnaryOpExpr struct {
	Op      string
	Operand Expr
}

func (e UnaryOpExpr) Render(b *Builder) {
	b.WriteString(e.Op).WriteString(" (")
	e.Operand.Render(b)
	b.WriteByte(')')
}

// BinaryOpExpr renders "(<left> <op> <right>)".
type BinaryOpExpr struct {
	Left  Expr
	Op    string
	Right Expr
}

func (e BinaryOpExpr) Render(b *Builder) {
	b.WriteByte('(')
	e.Left.Render(b)
	b.WriteByte(' ').WriteString(e.Op).WriteByte(' ')
	e.Right.Render(b)
	b.WriteByte(')')
}

// And combines two predicates with AND, folding away an empty operand
// (the Expression-algebra zero value) so callers can accumulate filters
// in a loop without special-casing the first iteration.
func And(left, right Expr) Expr {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	return BinaryOpExpr{Left: left, Op: "AND", Right: right}
}

// Or combines two predicates with OR.
func Or(left, right Expr) Expr {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	return BinaryOpExpr{Left: left, Op: "OR", Right: right}
}

// ExpressionList renders a parenthesized, comma-separated list, used for
// IN (...) right-hand sides and multi-column constructs.
type ExpressionList struct {
	Items []Expr
}

func (e ExpressionList) Render(b *Builder) {
	b.WriteByte('(')
	for i, item := range e.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		item.Render(b)
	}
	b.WriteByte(')')
}

// JoinExpr renders "<left> JOIN <table> ON <condition>".
type JoinExpr struct {
	Left      Expr
	Table     string
	Condition Expr
	Outer     bool
}

func (e JoinExpr) Render(b *Builder) {
	e.Left.Render(b)
	if e.Outer {
		b.WriteString(" LEFT JOIN ")
	} else {
		b.WriteString(" JOIN ")
	}
	b.WriteString(b.Ident(e.Table))
	if e.Condition != nil {
		b.WriteString(" ON ")
		e.Condition.Render(b)
	}
}

// TableExpr renders a bare table reference, the left-most leaf of a
// JoinExpr chain.
type TableExpr struct {
	Table string
}

func (e TableExpr) Render(b *Builder) { b.WriteString(b.Ident(e.Table)) }

// JoinPlanToExpr turns a schema.JoinPlan (see schema.Schema.JoinPlan)
// into a renderable FROM-clause Expr, translating each step's
// schema.ColumnPair equalities into an AND-ed ON condition.
func JoinPlanToExpr(plan []schema.JoinPath) Expr {
	if len(plan) == 0 {
		return nil
	}
	var expr Expr = TableExpr{Table: plan[0].Table}
	for _, step := range plan[1:] {
		var cond Expr
		for _, pair := range step.Conditions {
			eq := BinaryOpExpr{
				Left:  ColumnExpr{Table: plan[0].Table, Column: pair.MasterColumn},
				Op:    "=",
				Right: ColumnExpr{Table: step.Table, Column: pair.SlaveColumn},
			}
			cond = And(cond, eq)
		}
		expr = JoinExpr{Left: expr, Table: step.Table, Condition: cond}
	}
	return expr
}

// FilterByPK renders "<pk columns> = <key values>" as an AND-ed
// equality predicate — the WHERE clause every UPDATE/DELETE-by-identity
// and single-row re-SELECT issues (original engine's
// FilterBackendByPK/gen_sql_update/gen_sql_delete).
func FilterByPK(table string, key schema.Key) Expr {
	var expr Expr
	for _, f := range key.Fields {
		eq := BinaryOpExpr{
			Left:  ColumnExpr{Table: table, Column: f.Name},
			Op:    "=",
			Right: ConstExpr{Value: f.Value},
		}
		expr = And(expr, eq)
	}
	return expr
}
