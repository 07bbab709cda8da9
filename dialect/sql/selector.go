package sql

import (
	"fmt"

	"github.com/ormkit/ormkit/dialect"
)

// exprFunc adapts a plain rendering closure to the Expr interface, the
// common representation every predicate builder below returns.
type exprFunc func(b *Builder)

func (f exprFunc) Render(b *Builder) { f(b) }

// Selector builds a single SELECT statement: the FROM clause (a bare
// table or, via WithFrom, an already-rendered join tree from
// JoinPlanToExpr), a column list, a WHERE predicate, ordering, and
// limit/offset rendered per the dialect's pagination model.
//
// The predicate builders in predicate_builders.go (EQ, NEQ, In, ...)
// compose through Selector.C and Selector.Where.
type Selector struct {
	dialect string
	table   string
	from    Expr
	columns []string
	where   Expr
	orderBy []string
	limit   int
	offset  int
	forUpdate bool
}

// NewSelector starts a SELECT against table for the given dialect name.
func NewSelector(dialectName, table string) *Selector {
	return &Selector{dialect: dialectName, table: table}
}

// WithFrom overrides the FROM clause with an arbitrary Expr (typically
// the result of JoinPlanToExpr), for multi-table selects.
func (s *Selector) WithFrom(from Expr) *Selector {
	s.from = from
	return s
}

// Select sets the projected column list; an empty list renders "*".
func (s *Selector) Select(columns ...string) *Selector {
	s.columns = columns
	return s
}

// C returns a dialect-quoted, table-qualified reference to column name,
// for use as the left-hand side of a predicate or as an OrderBy entry.
func (s *Selector) C(name string) string {
	b := NewBuilder(s.dialect)
	ColumnExpr{Table: s.table, Column: name}.Render(b)
	return b.String()
}

// Where ANDs p onto the selector's filter.
func (s *Selector) Where(p Expr) *Selector {
	s.where = And(s.where, p)
	return s
}

// OrderBy appends column names (as returned by C, or "col DESC") to the
// ORDER BY clause.
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.orderBy = append(s.orderBy, columns...)
	return s
}

// Limit sets the maximum row count; 0 means unbounded.
func (s *Selector) Limit(n int) *Selector {
	s.limit = n
	return s
}

// Offset sets the number of rows to skip.
func (s *Selector) Offset(n int) *Selector {
	s.offset = n
	return s
}

// ForUpdate appends a locking clause ("FOR UPDATE") to the statement.
func (s *Selector) ForUpdate() *Selector {
	s.forUpdate = true
	return s
}

// Query renders the accumulated statement and its bind parameters.
func (s *Selector) Query() (string, []any) {
	b := NewBuilder(s.dialect)
	b.WriteString("SELECT ")
	if d, ok := dialect.Lookup(s.dialect); ok && d.Pager() == dialect.PagerInterbase {
		if s.limit > 0 {
			b.WriteString(fmt.Sprintf("FIRST %d ", s.limit))
		}
		if s.offset > 0 {
			b.WriteString(fmt.Sprintf("SKIP %d ", s.offset))
		}
	}
	if len(s.columns) == 0 {
		b.WriteByte('*')
	} else {
		b.WriteString(joinStrings(s.columns, ", "))
	}
	b.WriteString(" FROM ")
	if s.from != nil {
		s.from.Render(b)
	} else {
		b.WriteString(b.Ident(s.table))
	}
	if s.where != nil {
		b.WriteString(" WHERE ")
		s.where.Render(b)
	}
	if len(s.orderBy) > 0 {
		b.WriteString(" ORDER BY ").WriteString(joinStrings(s.orderBy, ", "))
	}
	s.writePagination(b)
	query := b.String()
	if d, ok := dialect.Lookup(s.dialect); ok && d.Pager() == dialect.PagerOracle && (s.limit > 0 || s.offset > 0) {
		inner := "SELECT q_.*, ROWNUM rn_ FROM (" + query + ") q_"
		if s.limit > 0 {
			inner += fmt.Sprintf(" WHERE ROWNUM <= %d", s.offset+s.limit)
		}
		query = fmt.Sprintf("SELECT * FROM (%s) WHERE rn_ > %d", inner, s.offset)
	}
	if s.forUpdate {
		query += " FOR UPDATE"
	}
	return query, b.Args()
}

// writePagination renders the trailing pagination clause for the
// PagerPostfix model (OFFSET/FETCH on MSSQL) and the PagerMySQL model.
// Interbase's FIRST/SKIP and Oracle's ROWNUM double wrap sit before the
// column list and around the whole statement, so Query renders those.
func (s *Selector) writePagination(b *Builder) {
	if s.limit == 0 && s.offset == 0 {
		return
	}
	d, ok := dialect.Lookup(s.dialect)
	pager := dialect.PagerPostfix
	if ok {
		pager = d.Pager()
	}
	switch pager {
	case dialect.PagerMySQL:
		count := fmt.Sprint(s.limit)
		if s.limit == 0 {
			count = "18446744073709551615" // MySQL's spelling of "all remaining rows"
		}
		b.WriteString(fmt.Sprintf(" LIMIT %d, %s", s.offset, count))
	case dialect.PagerInterbase, dialect.PagerOracle:
		// Rendered by Query.
	default:
		if ok && d.Name() == dialect.MSSQL {
			b.WriteString(fmt.Sprintf(" OFFSET %d ROWS", s.offset))
			if s.limit > 0 {
				b.WriteString(fmt.Sprintf(" FETCH NEXT %d ROWS ONLY", s.limit))
			}
			return
		}
		if s.limit > 0 {
			b.WriteString(fmt.Sprintf(" LIMIT %d", s.limit))
		}
		if s.offset > 0 {
			b.WriteString(fmt.Sprintf(" OFFSET %d", s.offset))
		}
	}
}
