// Package dialect provides the database dialect abstraction for ormkit.
//
// This package defines the execution interfaces (Driver, Tx,
// ExecQuerier) and the SQLDialect capability surface that the query
// generator consults for type mapping, quoting, placeholders,
// pagination (PagerModel) and sequence handling.
//
// # Supported Dialects
//
// Each dialect is identified by a constant string and implemented by a
// sub-package that calls Register from its init func:
//
//	dialect.Postgres  = "postgres"   // dialect/postgres
//	dialect.MySQL     = "mysql"      // dialect/mysql
//	dialect.SQLite    = "sqlite"     // dialect/sqlite
//	dialect.MSSQL     = "mssql"      // dialect/mssql
//	dialect.Oracle    = "oracle"     // dialect/oracle
//	dialect.Interbase = "interbase"  // dialect/interbase
//
// Lookup returns the registered SQLDialect for a name.
//
// # Driver Interface
//
// The package defines the Driver interface for database operations:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Transaction Interface
//
// The Tx interface has the same Exec/Query surface as Driver plus the
// transaction methods; it does not embed Driver:
//
//	type Tx interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Commit() error
//	    Rollback() error
//	}
//
// # ExecQuerier Interface
//
// The ExecQuerier interface is implemented by both Driver and Tx:
//
//	type ExecQuerier interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	}
//
// # Usage
//
// Opening a database connection:
//
//	import (
//	    "github.com/ormkit/ormkit/dialect"
//	    "github.com/ormkit/ormkit/dialect/sql"
//	)
//
//	db, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// Using it with an Engine:
//
//	e := engine.New(engine.ReadWrite, db)
//
// # Sub-packages
//
// The dialect package contains several sub-packages:
//
//   - dialect/sql: driver implementation, SQL builders and statement
//     generators, query statistics
//   - dialect/sql/pool: connection pool with YAML configuration
//   - dialect/postgres, dialect/mysql, dialect/sqlite, dialect/mssql,
//     dialect/oracle, dialect/interbase: the concrete dialects
package dialect
