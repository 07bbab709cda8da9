// Package mssql registers the Microsoft SQL Server dialect.Dialect.
package mssql

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

// Dialect implements dialect.SQLDialect for MSSQL: IDENTITY surrogate
// keys, "@pN" placeholders, bracket-quoted identifiers, and
// OFFSET/FETCH pagination (requires SQL Server 2012+; older versions
// needing the ROW_NUMBER() wrap are out of scope).
type Dialect struct{}

func (Dialect) Name() string { return dialect.MSSQL }

func (Dialect) TypeToSQL(tag value.Tag, size int) string {
	switch tag {
	case value.Integer:
		return "INT"
	case value.LongInt:
		return "BIGINT"
	case value.String:
		if size > 0 {
			return fmt.Sprintf("NVARCHAR(%d)", size)
		}
		return "NVARCHAR(MAX)"
	case value.Decimal:
		return "DECIMAL(30,10)"
	case value.DateTime:
		return "DATETIME2"
	case value.Float:
		return "FLOAT"
	case value.Blob:
		return "VARBINARY(MAX)"
	default:
		return "NVARCHAR(MAX)"
	}
}

func (Dialect) HasSequences() bool    { return false }
func (Dialect) AutoIncrement() string { return "IDENTITY(1,1)" }
func (Dialect) SysdateFunc() string   { return "SYSUTCDATETIME()" }

func (Dialect) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (Dialect) Placeholder(i int) string { return "@p" + strconv.Itoa(i) }

func (Dialect) Pager() dialect.PagerModel { return dialect.PagerPostfix }

func (Dialect) Supports(c dialect.Capability) bool {
	switch c {
	case dialect.CapSchemas:
		return true
	default:
		return false
	}
}

func (Dialect) GrantInsertID() bool { return true }

func (Dialect) SQLValue(v value.Value) string {
	if v.Tag() == value.String {
		if s, _ := v.AsString(); s == value.SysdateSentinel {
			return "SYSUTCDATETIME()"
		}
	}
	return v.SQLLiteral()
}

func (Dialect) NextValSQL(string) string { return "" }
