// Package interbase registers the Firebird/Interbase dialect.Dialect.
package interbase

import (
	"fmt"

	"github.com/ormkit/ormkit/dialect"
	"github.com/ormkit/ormkit/value"
)

func init() {
	dialect.Register(Dialect{})
}

// Dialect implements dialect.SQLDialect for Firebird/Interbase:
// generator (sequence)-based surrogate keys, "?" placeholders, and
// "FIRST n SKIP m" pagination.
type Dialect struct{}

func (Dialect) Name() string { return dialect.Interbase }

func (Dialect) TypeToSQL(tag value.Tag, size int) string {
	switch tag {
	case value.Integer:
		return "INTEGER"
	case value.LongInt:
		return "BIGINT"
	case value.String:
		if size > 0 {
			return fmt.Sprintf("VARCHAR(%d)", size)
		}
		return "BLOB SUB_TYPE TEXT"
	case value.Decimal:
		return "DECIMAL(18,4)"
	case value.DateTime:
		return "TIMESTAMP"
	case value.Float:
		return "DOUBLE PRECISION"
	case value.Blob:
		return "BLOB"
	default:
		return "VARCHAR(255)"
	}
}

func (Dialect) HasSequences() bool    { return true }
func (Dialect) AutoIncrement() string { return "" }
func (Dialect) SysdateFunc() string   { return "CURRENT_TIMESTAMP" }

func (Dialect) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) Pager() dialect.PagerModel { return dialect.PagerInterbase }

func (Dialect) Supports(c dialect.Capability) bool {
	switch c {
	case dialect.CapSequences:
		return true
	default:
		return false
	}
}

func (Dialect) GrantInsertID() bool { return true }

func (Dialect) SQLValue(v value.Value) string {
	if v.Tag() == value.String {
		if s, _ := v.AsString(); s == value.SysdateSentinel {
			return "CURRENT_TIMESTAMP"
		}
	}
	return v.SQLLiteral()
}

func (Dialect) NextValSQL(seqName string) string {
	return fmt.Sprintf("GEN_ID(%s, 1)", seqName)
}
