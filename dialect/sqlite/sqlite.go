// Package sqlite registers the SQLite dialect.Dialect, used for local
// development and the library's own integration tests
// (modernc.org/sqlite, a pure-Go driver needing no cgo toolchain).
package sqlite

import (
	"fmt"
	"strings"

	"github.com/ormkit/ormkit/dialect"
	"github.com/ormkit/ormkit/value"
)

func init() {
	dialect.Register(Dialect{})
}

// Dialect implements dialect.SQLDialect for SQLite.
type Dialect struct{}

func (Dialect) Name() string { return dialect.SQLite }

func (Dialect) TypeToSQL(tag value.Tag, size int) string {
	switch tag {
	case value.Integer, value.LongInt:
		return "INTEGER"
	case value.String:
		if size > 0 {
			return fmt.Sprintf("VARCHAR(%d)", size)
		}
		return "TEXT"
	case value.Decimal:
		return "NUMERIC"
	case value.DateTime:
		return "TIMESTAMP"
	case value.Float:
		return "REAL"
	case value.Blob:
		return "BLOB"
	default:
		return "TEXT"
	}
}

func (Dialect) HasSequences() bool    { return false }
func (Dialect) AutoIncrement() string { return "AUTOINCREMENT" }
func (Dialect) SysdateFunc() string   { return "CURRENT_TIMESTAMP" }

func (Dialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) Pager() dialect.PagerModel { return dialect.PagerPostfix }

func (Dialect) Supports(c dialect.Capability) bool { return false }

func (Dialect) GrantInsertID() bool { return true }

func (Dialect) SQLValue(v value.Value) string {
	if v.Tag() == value.String {
		if s, _ := v.AsString(); s == value.SysdateSentinel {
			return "CURRENT_TIMESTAMP"
		}
	}
	return v.SQLLiteral()
}

func (Dialect) NextValSQL(string) string { return "" }
