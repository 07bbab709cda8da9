package schema

import (
	"sort"
	"strings"

	"github.com/ormkit/ormkit/value"
)

// KeyField is one (column name, value) pair of a Key.
type KeyField struct {
	Name  string
	Value value.Value
}

// Key is a row's identity: a table name plus its ordered primary-key
// column values. Sessions use Key as the identity-map lookup key, so two
// Keys naming the same table and the same field values in any order must
// compare equal; String canonicalizes the field order to make that true
// for map/string-based lookups too.
type Key struct {
	Table  string
	Fields []KeyField
}

// String renders a canonical "table(col1=v1,col2=v2)" form with fields
// sorted by name, suitable as a map key or log field.
func (k Key) String() string {
	fields := make([]KeyField, len(k.Fields))
	copy(fields, k.Fields)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	var b strings.Builder
	b.WriteString(k.Table)
	b.WriteByte('(')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(f.Value.SQLLiteral())
	}
	b.WriteByte(')')
	return b.String()
}

// Equal reports whether k and o name the same table and the same set of
// (column, value) pairs, independent of field order.
func (k Key) Equal(o Key) bool {
	return k.String() == o.String()
}

// Get returns the value of the named field and whether it was present.
func (k Key) Get(name string) (value.Value, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return value.Nil, false
}
