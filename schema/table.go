package schema

import (
	"github.com/ormkit/ormkit/value"
)

// Table is a named collection of columns plus the indexing and
// primary-key bookkeeping the rest of the library needs: key
// construction, foreign-key resolution, and flush-order depth.
type Table struct {
	schema *Schema

	name      string
	xmlName   string
	className string
	seqName   string
	autoInc   bool
	depth     int

	columns     []*Column
	byName      map[string]int
	pkFields    []string
}

// NewTable creates an empty table named name for the given entity class.
// className defaults to name when empty. Columns are added with AddColumn.
func NewTable(name, className string) *Table {
	if className == "" {
		className = name
	}
	return &Table{
		name:      name,
		xmlName:   mkXMLName(name, ""),
		className: className,
		byName:    make(map[string]int),
	}
}

func (t *Table) Name() string      { return t.name }
func (t *Table) XMLName() string   { return t.xmlName }
func (t *Table) ClassName() string { return t.className }
func (t *Table) SeqName() string   { return t.seqName }
func (t *Table) AutoIncrement() bool { return t.autoInc }
func (t *Table) Depth() int        { return t.depth }
func (t *Table) Schema() *Schema   { return t.schema }
func (t *Table) Columns() []*Column { return t.columns }
func (t *Table) PKFields() []string { return t.pkFields }
func (t *Table) Size() int         { return len(t.columns) }

// SetSeqName names the sequence object used to generate surrogate keys on
// dialects without AUTO_INCREMENT semantics (Oracle, PostgreSQL, Firebird).
func (t *Table) SetSeqName(name string) { t.seqName = name }

// SetAutoIncrement marks the table's surrogate key as database-generated
// on INSERT (MySQL AUTO_INCREMENT / SQLite ROWID / Postgres IDENTITY).
func (t *Table) SetAutoIncrement(v bool) { t.autoInc = v }

// SetXMLName overrides the table's name in schema XML files.
func (t *Table) SetXMLName(name string) { t.xmlName = name }

func (t *Table) setSchema(s *Schema) { t.schema = s }
func (t *Table) setDepth(d int)      { t.depth = d }

// AddColumn appends column to the table, or replaces the column of the
// same name if one is already registered. It returns a
// *BadColumnNameError if the name fails the identifier grammar.
func (t *Table) AddColumn(column *Column) error {
	if !isIdentifier(column.name) {
		return &BadColumnNameError{Table: t.name, Column: column.name}
	}
	upper := upperIdent.String(column.name)
	lower := lowerIdent.String(column.name)
	idx, exists := t.byName[column.name]
	if !exists {
		idx = len(t.columns)
		t.columns = append(t.columns, column)
	} else {
		t.columns[idx] = column
	}
	t.byName[column.name] = idx
	t.byName[upper] = idx
	t.byName[lower] = idx
	column.setTable(t)
	if column.IsPK() {
		t.pkFields = append(t.pkFields, column.name)
	}
	return nil
}

// Column looks up a column by name (case sensitivity matches however it
// was registered: original, upper, and lower forms are all indexed).
func (t *Table) Column(name string) (*Column, error) {
	idx, ok := t.byName[name]
	if !ok {
		return nil, &ColumnNotFoundError{Table: t.name, Column: name}
	}
	return t.columns[idx], nil
}

// IndexByName returns the ordinal position of the named column within
// Columns(), for use indexing parallel Values/Row slices.
func (t *Table) IndexByName(name string) (int, error) {
	idx, ok := t.byName[name]
	if !ok {
		return 0, &ColumnNotFoundError{Table: t.name, Column: name}
	}
	return idx, nil
}

// SurrogatePK returns the name of the table's single auto-incrementable
// integer primary-key column. It returns a *TableHasNoSurrogatePKError
// for composite keys or non-integer keys.
func (t *Table) SurrogatePK() (string, error) {
	if len(t.pkFields) != 1 {
		return "", &TableHasNoSurrogatePKError{Table: t.name}
	}
	c, err := t.Column(t.pkFields[0])
	if err != nil {
		return "", &TableHasNoSurrogatePKError{Table: t.name}
	}
	if c.Tag() != value.LongInt && c.Tag() != value.Integer {
		return "", &TableHasNoSurrogatePKError{Table: t.name}
	}
	return c.Name(), nil
}

// FindFKFor resolves the list of foreign-key columns on t that reference
// rel's master-side table, either from an explicit "key" attribute on
// rel's slave-side endpoint or, absent that, by scanning every FK column
// of t that targets the master table.
func (t *Table) FindFKFor(rel *Relation, explicitKey []string) ([]string, error) {
	masterTable := rel.Table(0).Name()
	if len(explicitKey) > 0 {
		parts := make([]string, 0, len(explicitKey))
		for _, name := range explicitKey {
			c, err := t.Column(name)
			if err != nil {
				return nil, &BadColumnNameError{Table: t.name, Column: name}
			}
			if !c.HasFK() || c.FKTableName() != masterTable {
				return nil, &BadColumnNameError{Table: t.name, Column: name}
			}
			parts = append(parts, c.Name())
		}
		return parts, nil
	}
	var parts []string
	for _, c := range t.columns {
		if c.HasFK() && c.FKTableName() == masterTable {
			parts = append(parts, c.Name())
		}
	}
	return parts, nil
}

// MakeKey constructs the identity Key for a fully-populated row given in
// column order (same order as Columns()). It reports whether every
// primary-key field ended up non-null (an "assigned" key, ready for the
// identity map) versus one still awaiting a database-generated value.
func (t *Table) MakeKey(row []value.Value) (Key, bool, error) {
	k := Key{Table: t.name}
	assigned := true
	for _, name := range t.pkFields {
		idx, err := t.IndexByName(name)
		if err != nil {
			return Key{}, false, err
		}
		v := row[idx]
		if v.IsNull() {
			assigned = false
		}
		k.Fields = append(k.Fields, KeyField{Name: name, Value: v})
	}
	return k, assigned, nil
}

// MakeKeyFromID constructs the identity Key for a table with a surrogate
// integer primary key, given its value.
func (t *Table) MakeKeyFromID(id int64) (Key, error) {
	pk, err := t.SurrogatePK()
	if err != nil {
		return Key{}, err
	}
	return Key{Table: t.name, Fields: []KeyField{{Name: pk, Value: value.NewLongInt(id)}}}, nil
}
