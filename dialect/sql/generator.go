package sql

import (
	"fmt"
	"strings"

	"github.com/ormkit/ormkit/dialect"
	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

// Row is one table row as (column name, value) pairs in column order —
// the wire format DataObjects hand to the generator and get back from a
// Select.
type Row struct {
	Table  string
	Fields []schema.KeyField
}

// Get returns the value of the named field and whether it was present.
func (r Row) Get(name string) (value.Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return value.Nil, false
}

// InsertBuilder renders INSERT statements for a Table, one row per
// statement.
type InsertBuilder struct {
	dialectName string
	table       *schema.Table
}

// NewInsertBuilder returns an InsertBuilder for table under the named
// dialect.
func NewInsertBuilder(dialectName string, table *schema.Table) *InsertBuilder {
	return &InsertBuilder{dialectName: dialectName, table: table}
}

// Build renders "INSERT INTO t (c1, c2) VALUES (?, ?)" for a single row,
// skipping any column absent from row (letting its SQL-level DEFAULT
// apply) and a null primary-key column when the table is
// AutoIncrement (the database generates that value).
func (g *InsertBuilder) Build(row Row) (string, []any, error) {
	d, _ := dialect.Lookup(g.dialectName)
	b := NewBuilder(g.dialectName)
	var cols []string
	var placeholders []string
	for _, c := range g.table.Columns() {
		v, ok := row.Get(c.Name())
		if !ok {
			continue
		}
		if v.IsNull() && c.IsPK() && g.table.AutoIncrement() {
			continue
		}
		cols = append(cols, b.Ident(c.Name()))
		arg, err := valueToArg(v)
		if err != nil {
			return "", nil, fmt.Errorf("dialect/sql: insert %s.%s: %w", g.table.Name(), c.Name(), err)
		}
		if d != nil && v.Tag() == value.String {
			if s, _ := v.AsString(); s == value.SysdateSentinel {
				placeholders = append(placeholders, d.SQLValue(v))
				continue
			}
		}
		placeholders = append(placeholders, b.Arg(arg))
	}
	b.WriteString("INSERT INTO ").WriteString(b.Ident(g.table.Name()))
	b.WriteString(" (").WriteString(strings.Join(cols, ", ")).WriteString(")")
	b.WriteString(" VALUES (").WriteString(strings.Join(placeholders, ", ")).WriteByte(')')
	if d != nil && d.Supports(dialect.CapReturningInto) {
		if pk, err := g.table.SurrogatePK(); err == nil {
			b.WriteString(" RETURNING ").WriteString(b.Ident(pk))
		}
	}
	return b.String(), b.Args(), nil
}

// UpdateBuilder renders UPDATE statements that write every non-PK,
// non-read-only field present in the row and filter by the row's
// primary key.
type UpdateBuilder struct {
	dialectName string
	table       *schema.Table
}

// NewUpdateBuilder returns an UpdateBuilder for table under the named
// dialect.
func NewUpdateBuilder(dialectName string, table *schema.Table) *UpdateBuilder {
	return &UpdateBuilder{dialectName: dialectName, table: table}
}

// Build renders "UPDATE t SET c1 = ? WHERE pk = ?" for row, keyed by
// key. Returns an error if row supplies no writable column (nothing to
// update).
func (g *UpdateBuilder) Build(row Row, key schema.Key) (string, []any, error) {
	b := NewBuilder(g.dialectName)
	var sets []string
	for _, c := range g.table.Columns() {
		if c.IsPK() || c.IsReadOnly() {
			continue
		}
		v, ok := row.Get(c.Name())
		if !ok {
			continue
		}
		arg, err := valueToArg(v)
		if err != nil {
			return "", nil, fmt.Errorf("dialect/sql: update %s.%s: %w", g.table.Name(), c.Name(), err)
		}
		sets = append(sets, fmt.Sprintf("%s = %s", b.Ident(c.Name()), b.Arg(arg)))
	}
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("dialect/sql: update %s: no writable columns in row", g.table.Name())
	}
	b.WriteString("UPDATE ").WriteString(b.Ident(g.table.Name()))
	b.WriteString(" SET ").WriteString(strings.Join(sets, ", "))
	b.WriteString(" WHERE ")
	FilterByPK(g.table.Name(), key).Render(b)
	return b.String(), b.Args(), nil
}

// DeleteBuilder renders "DELETE FROM t WHERE <pk> = ?".
type DeleteBuilder struct {
	dialectName string
	table       *schema.Table
}

// NewDeleteBuilder returns a DeleteBuilder for table under the named
// dialect.
func NewDeleteBuilder(dialectName string, table *schema.Table) *DeleteBuilder {
	return &DeleteBuilder{dialectName: dialectName, table: table}
}

// Build renders the DELETE statement filtering by key.
func (g *DeleteBuilder) Build(key schema.Key) (string, []any) {
	b := NewBuilder(g.dialectName)
	b.WriteString("DELETE FROM ").WriteString(b.Ident(g.table.Name()))
	b.WriteString(" WHERE ")
	FilterByPK(g.table.Name(), key).Render(b)
	return b.String(), b.Args()
}

// CreateTableStatements renders the "CREATE TABLE", any surrogate-key
// sequence ("CREATE SEQUENCE"), and deferred "ALTER TABLE ... ADD
// CONSTRAINT ... FOREIGN KEY" statements for table, in the order they
// must execute. Foreign keys are deferred to ALTER TABLE so tables can
// be created in any order and only need a second pass once every table
// in the schema exists (see engine.CreateSchema).
func CreateTableStatements(dialectName string, table *schema.Table) []string {
	d, ok := dialect.Lookup(dialectName)
	var stmts []string
	if ok && d.HasSequences() && table.SeqName() != "" {
		stmts = append(stmts, fmt.Sprintf("CREATE SEQUENCE %s", table.SeqName()))
	}
	b := NewBuilder(dialectName)
	b.WriteString("CREATE TABLE ").WriteString(b.Ident(table.Name())).WriteString(" (\n")
	var lines []string
	for _, c := range table.Columns() {
		line := "  " + b.Ident(c.Name()) + " "
		if ok {
			line += d.TypeToSQL(c.Tag(), c.Size())
		} else {
			line += c.Tag().String()
		}
		if c.IsPK() && table.AutoIncrement() && ok {
			if inc := d.AutoIncrement(); inc != "" {
				line += " " + inc
			}
		}
		if !c.IsNullable() {
			line += " NOT NULL"
		}
		lines = append(lines, line)
	}
	if len(table.PKFields()) > 0 {
		quoted := make([]string, len(table.PKFields()))
		for i, f := range table.PKFields() {
			quoted[i] = b.Ident(f)
		}
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
	}
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")
	stmts = append(stmts, b.String())
	for _, c := range table.Columns() {
		if !c.HasFK() {
			continue
		}
		fk := NewBuilder(dialectName)
		fk.WriteString("ALTER TABLE ").WriteString(fk.Ident(table.Name()))
		fk.WriteString(" ADD CONSTRAINT ").WriteString(fk.Ident(fmt.Sprintf("fk_%s_%s", table.Name(), c.Name())))
		fk.WriteString(" FOREIGN KEY (").WriteString(fk.Ident(c.Name())).WriteString(")")
		fk.WriteString(" REFERENCES ").WriteString(fk.Ident(c.FKTableName()))
		fk.WriteString(" (").WriteString(fk.Ident(c.FKName())).WriteString(")")
		stmts = append(stmts, fk.String())
	}
	return stmts
}

// DropTableStatement renders "DROP TABLE t".
func DropTableStatement(dialectName string, table *schema.Table) string {
	b := NewBuilder(dialectName)
	b.WriteString("DROP TABLE ").WriteString(b.Ident(table.Name()))
	return b.String()
}
