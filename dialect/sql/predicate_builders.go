package sql

import "fmt"

// EQ renders "<col> = ?".
func EQ(col string, arg any) Expr {
	return exprFunc(func(b *Builder) {
		b.WriteString(col).WriteString(" = ").WriteString(b.Arg(arg))
	})
}

// NEQ renders "<col> <> ?".
func NEQ(col string, arg any) Expr {
	return exprFunc(func(b *Builder) {
		b.WriteString(col).WriteString(" <> ").WriteString(b.Arg(arg))
	})
}

// GT renders "<col> > ?".
func GT(col string, arg any) Expr {
	return exprFunc(func(b *Builder) {
		b.WriteString(col).WriteString(" > ").WriteString(b.Arg(arg))
	})
}

// GTE renders "<col> >= ?".
func GTE(col string, arg any) Expr {
	return exprFunc(func(b *Builder) {
		b.WriteString(col).WriteString(" >= ").WriteString(b.Arg(arg))
	})
}

// LT renders "<col> < ?".
func LT(col string, arg any) Expr {
	return exprFunc(func(b *Builder) {
		b.WriteString(col).WriteString(" < ").WriteString(b.Arg(arg))
	})
}

// LTE renders "<col> <= ?".
func LTE(col string, arg any) Expr {
	return exprFunc(func(b *Builder) {
		b.WriteString(col).WriteString(" <= ").WriteString(b.Arg(arg))
	})
}

// In renders "<col> IN (?, ?, ...)". An empty arg list renders the
// always-false "1 = 0" so callers don't need to special-case it.
func In(col string, args ...any) Expr {
	return exprFunc(func(b *Builder) {
		if len(args) == 0 {
			b.WriteString("1 = 0")
			return
		}
		b.WriteString(col).WriteString(" IN (")
		for i, a := range args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(b.Arg(a))
		}
		b.WriteByte(')')
	})
}

// NotIn renders "<col> NOT IN (?, ?, ...)". An empty arg list renders
// the always-true "1 = 1".
func NotIn(col string, args ...any) Expr {
	return exprFunc(func(b *Builder) {
		if len(args) == 0 {
			b.WriteString("1 = 1")
			return
		}
		b.WriteString(col).WriteString(" NOT IN (")
		for i, a := range args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(b.Arg(a))
		}
		b.WriteByte(')')
	})
}

// Contains renders "<col> LIKE ?" with arg wrapped in "%...%".
func Contains(col string, arg string) Expr {
	return likePredicate(col, "%"+arg+"%", false)
}

// ContainsFold renders a case-insensitive Contains using the dialect's
// UPPER()/LOWER() folding, since not every backend has a native ILIKE.
func ContainsFold(col string, arg string) Expr {
	return likePredicate(col, "%"+arg+"%", true)
}

// HasPrefix renders "<col> LIKE ?" with arg suffixed by "%".
func HasPrefix(col string, arg string) Expr {
	return likePredicate(col, arg+"%", false)
}

// HasSuffix renders "<col> LIKE ?" with arg prefixed by "%".
func HasSuffix(col string, arg string) Expr {
	return likePredicate(col, "%"+arg, false)
}

// EqualFold renders a case-insensitive equality comparison.
func EqualFold(col string, arg string) Expr {
	return exprFunc(func(b *Builder) {
		b.WriteString(fmt.Sprintf("LOWER(%s) = LOWER(%s)", col, b.Arg(arg)))
	})
}

func likePredicate(col, pattern string, fold bool) Expr {
	return exprFunc(func(b *Builder) {
		if fold {
			b.WriteString(fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", col, b.Arg(pattern)))
			return
		}
		b.WriteString(col).WriteString(" LIKE ").WriteString(b.Arg(pattern))
	})
}

// IsNull renders "<col> IS NULL".
func IsNull(col string) Expr {
	return exprFunc(func(b *Builder) { b.WriteString(col).WriteString(" IS NULL") })
}

// NotNull renders "<col> IS NOT NULL".
func NotNull(col string) Expr {
	return exprFunc(func(b *Builder) { b.WriteString(col).WriteString(" IS NOT NULL") })
}

