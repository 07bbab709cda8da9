// Package postgres registers the PostgreSQL dialect.Dialect.
package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ormkit/ormkit/dialect"
	"github.com/ormkit/ormkit/value"
)

func init() {
	dialect.Register(Dialect{})
}

// Dialect implements dialect.SQLDialect for PostgreSQL: sequences for
// surrogate keys, RETURNING for generated-id retrieval, dollar-number
// placeholders, and double-quoted identifiers.
type Dialect struct{}

func (Dialect) Name() string { return dialect.Postgres }

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
		return "TEXT"
	case value.Decimal:
		return "NUMERIC(30,10)"
	case value.DateTime:
		return "TIMESTAMP"
	case value.Float:
		return "DOUBLE PRECISION"
	case value.Blob:
		return "BYTEA"
	default:
		return "TEXT"
	}
}

func (Dialect) HasSequences() bool  { return true }
func (Dialect) AutoIncrement() string { return "" }
func (Dialect) SysdateFunc() string { return "CURRENT_TIMESTAMP" }

func (Dialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Dialect) Placeholder(i int) string { return "$" + strconv.Itoa(i) }

func (Dialect) Pager() dialect.PagerModel { return dialect.PagerPostfix }

func (Dialect) Supports(c dialect.Capability) bool {
	switch c {
	case dialect.CapSequences, dialect.CapReturningInto, dialect.CapILike, dialect.CapSchemas:
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
	return fmt.Sprintf("nextval('%s')", seqName)
}
