package dialect

import (
	"context"

	"github.com/ormkit/ormkit/value"
)

// Dialect name constants, matched against the driver name passed to
// dialect/sql.Open and used to key the registry in registry.go.
const (
	Postgres  = "postgres"
	MySQL     = "mysql"
	SQLite    = "sqlite"
	MSSQL     = "mssql"
	Oracle    = "oracle"
	Interbase = "interbase"
)

// Driver is the minimal surface every SQL backend exposes to the query
// builder and the connection pool.
type Driver interface {
	// Exec executes a query that doesn't return rows.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows.
	Query(ctx context.Context, query string, args, v any) error
	// Tx starts and returns a new transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the backend's dialect name.
	Dialect() string
}

// Tx is the operations available once a transaction has started: the
// same Exec/Query surface as Driver, plus Commit/Rollback. It
// deliberately does not extend Driver — a *sql.Tx wraps a single
// connection already checked out of the pool, and has no Dialect/Close/
// nested-Tx operations of its own.
type Tx interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
	Commit() error
	Rollback() error
}

// ExecQuerier is implemented by both Driver and Tx, and by the plain
// *sql.DB/*sql.Tx wrappers in dialect/sql.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// PagerModel names the SQL pagination strategy a dialect supports; the
// query builder picks its LIMIT/OFFSET rendering accordingly.
type PagerModel int

const (
	// PagerPostfix appends "LIMIT n OFFSET m" (PostgreSQL, SQLite); for
	// MSSQL 2012+ it is rendered as "OFFSET m ROWS FETCH NEXT n ROWS ONLY".
	PagerPostfix PagerModel = iota
	// PagerMySQL appends "LIMIT m, n" (MySQL/MariaDB).
	PagerMySQL
	// PagerInterbase puts "FIRST n SKIP m" right after SELECT (Firebird/Interbase).
	PagerInterbase
	// PagerOracle wraps the query twice with ROWNUM predicates (legacy Oracle
	// without OFFSET/FETCH support).
	PagerOracle
)

// Capability is a feature flag a Dialect may or may not support, queried
// by the query builder before relying on it.
type Capability int

const (
	// CapSequences means the dialect generates surrogate keys through
	// CREATE SEQUENCE / NEXTVAL rather than an auto-increment column.
	CapSequences Capability = iota
	// CapReturningInto means INSERT can return the generated key in the
	// same round-trip (PostgreSQL RETURNING, Oracle RETURNING INTO).
	CapReturningInto
	// CapILike means the dialect has a native case-insensitive LIKE.
	CapILike
	// CapSchemas means the dialect namespaces tables under a schema
	// distinct from the database/catalog.
	CapSchemas
)

// SQLDialect is the full capability surface the query generator and
// schema-DDL builder consult to render vendor-correct SQL: type mapping,
// identifier quoting, pagination, sequence/auto-increment handling, and
// literal rendering for values the ANSI-SQL default doesn't cover (e.g.
// the "sysdate" sentinel).
type SQLDialect interface {
	// Name returns one of the constants above.
	Name() string
	// TypeToSQL renders a column definition's physical type, e.g.
	// "VARCHAR(100)" or "NUMBER(18,2)".
	TypeToSQL(tag value.Tag, size int) string
	// HasSequences reports whether surrogate keys are generated via a
	// named sequence object rather than an auto-increment column.
	HasSequences() bool
	// AutoIncrement renders the auto-increment column modifier, or ""
	// if HasSequences is true.
	AutoIncrement() string
	// SysdateFunc returns the SQL expression for "current timestamp".
	SysdateFunc() string
	// QuoteIdentifier quotes a table/column name for safe inclusion in
	// generated SQL.
	QuoteIdentifier(name string) string
	// Placeholder renders the i'th (1-based) bind parameter marker.
	Placeholder(i int) string
	// Pager returns the pagination strategy this dialect supports.
	Pager() PagerModel
	// Supports reports whether the dialect has the given capability.
	Supports(c Capability) bool
	// GrantInsertID reports whether an explicit value may be supplied
	// for an auto-increment/identity column on INSERT (requires session
	// state like MSSQL's SET IDENTITY_INSERT or Postgres's OVERRIDING
	// SYSTEM VALUE).
	GrantInsertID() bool
	// SQLValue renders v as a literal in this dialect's syntax, handling
	// the value.SysdateSentinel marker and any other vendor-specific
	// spelling; it falls back to v.SQLLiteral() for every tag it doesn't
	// special-case.
	SQLValue(v value.Value) string
	// NextValSQL renders the expression that advances and returns the
	// named sequence's next value. Empty for dialects without
	// HasSequences (surrogate keys there come from the auto-increment
	// column itself).
	NextValSQL(seqName string) string
}
