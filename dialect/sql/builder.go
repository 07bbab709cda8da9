package sql

import (
	"strings"

	"github.com/ormkit/ormkit/dialect"
)

// Builder accumulates a SQL statement incrementally: literal fragments
// written with WriteString, bind parameters added with Arg (which both
// appends to Args() and renders the placeholder the target dialect
// expects — "?" for MySQL/SQLite, "$1"/"$2" for Postgres, ":1" for
// Oracle, "@p1" for MSSQL).
//
// It plays the role ent's internal sql.Builder plays for Velox's own
// Selector/Predicate types; this project also layers the Expr tree
// (see expr.go) on top of it for the join/filter algebra a Unit-of-Work
// session needs beyond simple WHERE clauses.
type Builder struct {
	sb      strings.Builder
	args    []any
	dialect string
}

// NewBuilder returns a Builder that renders placeholders for the named
// dialect (one of the dialect.* constants). An unrecognized or empty
// name falls back to "?" placeholders.
func NewBuilder(dialectName string) *Builder {
	return &Builder{dialect: dialectName}
}

// Dialect returns the builder's target dialect name.
func (b *Builder) Dialect() string { return b.dialect }

// WriteString appends a literal SQL fragment.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte appends a single literal byte.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Ident quotes name per the target dialect's identifier rules.
func (b *Builder) Ident(name string) string {
	if d, ok := dialect.Lookup(b.dialect); ok {
		return d.QuoteIdentifier(name)
	}
	return name
}

// Arg appends v as a bind parameter and returns the placeholder text to
// splice into the statement in its place.
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	if d, ok := dialect.Lookup(b.dialect); ok {
		return d.Placeholder(len(b.args))
	}
	return "?"
}

// Args returns the bind parameters collected so far, in placeholder
// order.
func (b *Builder) Args() []any { return b.args }

// String returns the SQL text accumulated so far.
func (b *Builder) String() string { return b.sb.String() }

// Join appends the rendering of each expr in turn, writing sep between
// them.
func (b *Builder) Join(sep string, exprs ...Expr) *Builder {
	for i, e := range exprs {
		if i > 0 {
			b.WriteString(sep)
		}
		e.Render(b)
	}
	return b
}

// joinStrings is a small helper used by the generator for non-Expr
// string lists (column name lists, etc).
func joinStrings(parts []string, sep string) string {
	return strings.Join(parts, sep)
}
