// Package oracle registers the Oracle dialect.Dialect.
package oracle

import (
	"fmt"
	"strconv"

	"github.com/ormkit/ormkit/dialect"
	"github.com/ormkit/ormkit/value"
)

func init() {
	dialect.Register(Dialect{})
}

// Dialect implements dialect.SQLDialect for Oracle: sequence-generated
// surrogate keys, ":N" bind placeholders, and the double-ROWNUM-wrap
// pagination legacy Oracle (pre-12c, no OFFSET/FETCH) requires.
type Dialect struct{}

func (Dialect) Name() string { return dialect.Oracle }

func (Dialect) TypeToSQL(tag value.Tag, size int) string {
	switch tag {
	case value.Integer:
		return "NUMBER(10)"
	case value.LongInt:
		return "NUMBER(18)"
	case value.String:
		if size > 0 {
			return fmt.Sprintf("VARCHAR2(%d)", size)
		}
		return "CLOB"
	case value.Decimal:
		return "NUMBER(30,10)"
	case value.DateTime:
		return "TIMESTAMP"
	case value.Float:
		return "BINARY_DOUBLE"
	case value.Blob:
		return "BLOB"
	default:
		return "VARCHAR2(4000)"
	}
}

func (Dialect) HasSequences() bool    { return true }
func (Dialect) AutoIncrement() string { return "" }
func (Dialect) SysdateFunc() string   { return "SYSDATE" }

func (Dialect) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (Dialect) Placeholder(i int) string { return ":" + strconv.Itoa(i) }

func (Dialect) Pager() dialect.PagerModel { return dialect.PagerOracle }

func (Dialect) Supports(c dialect.Capability) bool {
	switch c {
	case dialect.CapSequences, dialect.CapReturningInto, dialect.CapSchemas:
		return true
	default:
		return false
	}
}

func (Dialect) GrantInsertID() bool { return true }

func (Dialect) SQLValue(v value.Value) string {
	if v.Tag() == value.String {
		if s, _ := v.AsString(); s == value.SysdateSentinel {
			return "SYSDATE"
		}
	}
	return v.SQLLiteral()
}

func (Dialect) NextValSQL(seqName string) string {
	return seqName + ".NEXTVAL"
}
