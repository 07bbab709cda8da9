// Package mysql registers the MySQL/MariaDB dialect.Dialect.
package mysql

import (
	"fmt"
	"strings"

	"github.com/ormkit/ormkit/dialect"
	"github.com/ormkit/ormkit/value"
)

func init() {
	dialect.Register(Dialect{})
}

// Dialect implements dialect.SQLDialect for MySQL: AUTO_INCREMENT
// surrogate keys, "?" placeholders, backtick-quoted identifiers, and
// "LIMIT offset, count" pagination.
type Dialect struct{}

func (Dialect) Name() string { return dialect.MySQL }

func (Dialect) TypeToSQL(tag value.Tag, size int) string {
	switch tag {
	case value.Integer:
		return "INT"
	case value.LongInt:
		return "BIGINT"
	case value.String:
		if size > 0 {
			return fmt.Sprintf("VARCHAR(%d)", size)
		}
		return "TEXT"
	case value.Decimal:
		return "DECIMAL(30,10)"
	case value.DateTime:
		return "DATETIME"
	case value.Float:
		return "DOUBLE"
	case value.Blob:
		return "BLOB"
	default:
		return "TEXT"
	}
}

func (Dialect) HasSequences() bool    { return false }
func (Dialect) AutoIncrement() string { return "AUTO_INCREMENT" }
func (Dialect) SysdateFunc() string   { return "NOW()" }

func (Dialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) Pager() dialect.PagerModel { return dialect.PagerMySQL }

func (Dialect) Supports(c dialect.Capability) bool {
	switch c {
	case dialect.CapILike:
		return true
	default:
		return false
	}
}

func (Dialect) GrantInsertID() bool { return true }

func (Dialect) SQLValue(v value.Value) string {
	if v.Tag() == value.String {
		if s, _ := v.AsString(); s == value.SysdateSentinel {
			return "NOW()"
		}
	}
	return v.SQLLiteral()
}

func (Dialect) NextValSQL(string) string { return "" }
