package schema

import (
	"strings"

	"github.com/ormkit/ormkit/value"
)

// ColumnFlag is a bitmask of the structural roles a column can play.
type ColumnFlag int

const (
	// PK marks a column as (part of) the table's primary key.
	PK ColumnFlag = 1 << iota
	// ReadOnly marks a column the ORM never includes in UPDATE statements.
	ReadOnly
	// Nullable marks a column that accepts value.Nil.
	Nullable
)

// Has reports whether flags contains all the bits set in want.
func (f ColumnFlag) Has(want ColumnFlag) bool { return f&want == want }

// Column describes one column of a Table: its storage type, structural
// role, and (if any) the foreign key it participates in.
type Column struct {
	table *Table

	name     string
	xmlName  string
	propName string
	indexName string

	tag   value.Tag
	flags ColumnFlag
	size  int

	defaultValue value.Value

	fkTableName string
	fkName      string
}

// ColumnOption configures a Column built with NewColumn.
type ColumnOption func(*Column)

// WithSize sets the storage size (string/decimal length) of a column.
func WithSize(size int) ColumnOption {
	return func(c *Column) { c.size = size }
}

// WithDefault sets the column's default value.
func WithDefault(v value.Value) ColumnOption {
	return func(c *Column) { c.defaultValue = v }
}

// WithForeignKey marks the column as a foreign key referencing fkTable.
// fkColumn may be empty, in which case Schema.FillForeignKeys defaults it
// to the referenced table's surrogate primary key.
func WithForeignKey(fkTable, fkColumn string) ColumnOption {
	return func(c *Column) {
		c.fkTableName = fkTable
		c.fkName = fkColumn
	}
}

// WithXMLName overrides the column's name in schema XML files. The name
// is stored as given; this option gives "-" no special meaning.
func WithXMLName(name string) ColumnOption {
	return func(c *Column) { c.xmlName = name }
}

// WithPropertyName overrides the column's domain-object property name
// (defaults to the lowercased column name).
func WithPropertyName(name string) ColumnOption {
	return func(c *Column) { c.propName = name }
}

// WithIndexName names the index the column participates in.
func WithIndexName(name string) ColumnOption {
	return func(c *Column) { c.indexName = name }
}

// NewColumn builds a Column named name, storing values of tag, with the
// given structural flags.
func NewColumn(name string, tag value.Tag, flags ColumnFlag, opts ...ColumnOption) *Column {
	c := &Column{
		name:     name,
		xmlName:  mkXMLName(name, ""),
		propName: lowerIdent.String(name),
		tag:      tag,
		flags:    flags,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func mkXMLName(name, xmlName string) string {
	if xmlName == "-" {
		return ""
	}
	if xmlName != "" {
		return xmlName
	}
	return strings.ReplaceAll(lowerIdent.String(name), "_", "-")
}

func (c *Column) Name() string        { return c.name }
func (c *Column) XMLName() string     { return c.xmlName }
func (c *Column) PropertyName() string { return c.propName }
func (c *Column) IndexName() string   { return c.indexName }
func (c *Column) Tag() value.Tag      { return c.tag }
func (c *Column) Flags() ColumnFlag   { return c.flags }
func (c *Column) Size() int           { return c.size }
func (c *Column) Default() value.Value { return c.defaultValue }

func (c *Column) IsPK() bool       { return c.flags.Has(PK) }
func (c *Column) IsReadOnly() bool { return c.flags.Has(ReadOnly) }
func (c *Column) IsNullable() bool { return c.flags.Has(Nullable) }

// CheckWritable returns a *ReadOnlyColumnError if the column is flagged
// ReadOnly. The entity layer calls this before accepting an assignment
// through DataObject.Set.
func (c *Column) CheckWritable() error {
	if c.IsReadOnly() {
		return &ReadOnlyColumnError{Table: c.tableName(), Column: c.name}
	}
	return nil
}

func (c *Column) tableName() string {
	if c.table == nil {
		return ""
	}
	return c.table.Name()
}

func (c *Column) HasFK() bool          { return c.fkTableName != "" }
func (c *Column) FKTableName() string  { return c.fkTableName }
func (c *Column) FKName() string       { return c.fkName }
func (c *Column) SetFKName(name string) { c.fkName = name }

// Table returns the table this column belongs to, or nil if the column
// has not been added to one yet.
func (c *Column) Table() *Table { return c.table }

func (c *Column) setTable(t *Table) { c.table = t }

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
