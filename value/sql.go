package value

import (
	"fmt"
	"strings"
)

// SQLLiteral renders v as a dialect-agnostic SQL literal: NULL, a quoted
// string (single quotes doubled), a bare number, or a quoted timestamp.
// Dialects needing vendor-specific spelling (e.g. TIMESTAMP prefixes or
// the sysdate sentinel) render through dialect.SQLDialect.SQLValue instead,
// which falls back to SQLLiteral for every tag it does not special-case.
func (v Value) SQLLiteral() string {
	switch v.tag {
	case Null:
		return "NULL"
	case Integer, LongInt:
		return fmt.Sprintf("%d", v.i)
	case Float:
		return strconvFloat(v.f)
	case Decimal:
		return v.d.String()
	case String:
		return quoteSQLString(v.s)
	case DateTime:
		return quoteSQLString(FormatDateTime(v.t))
	case Blob:
		return quoteSQLString(string(v.b))
	default:
		return "NULL"
	}
}

func quoteSQLString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	b.WriteString(strings.ReplaceAll(s, "'", "''"))
	b.WriteByte('\'')
	return b.String()
}
