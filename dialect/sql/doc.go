// Package sql provides ormkit's SQL layer over database/sql: the
// Driver/Tx wrappers, SQL builders, statement generators for a
// schema.Table, row scanning into value.Value, and optional query
// statistics and debug logging.
//
// Every builder is created for a dialect name (dialect.Postgres,
// dialect.MySQL, ...) and renders identifiers, placeholders and
// pagination the way the registered dialect.SQLDialect of that name
// requires.
//
// # Builder Types
//
//   - Builder: low-level SQL string builder with identifier quoting and
//     bind-parameter collection
//   - Selector: SELECT builder with a WHERE predicate, ORDER BY,
//     limit/offset and FOR UPDATE
//   - InsertBuilder: single-row INSERT, with RETURNING where the dialect
//     supports it
//   - UpdateBuilder: UPDATE of a row's writable columns, keyed by PK
//   - DeleteBuilder: DELETE keyed by PK
//   - CreateTableStatements / DropTableStatement: DDL for a schema.Table
//
// # Selecting
//
// NewSelector starts a SELECT for a dialect and a table; Query renders
// the statement text and its bind arguments:
//
//	s := sql.NewSelector(dialect.Postgres, "users")
//	s.Select(s.C("id"), s.C("name")).
//	    Where(sql.EQ(s.C("status"), "active")).
//	    OrderBy(s.C("name"))
//	query, args := s.Query()
//
// # Predicates
//
// Predicates take a column reference (usually from Selector.C) and bind
// their arguments as parameters:
//
//	sql.EQ(col, v), sql.NEQ(col, v)
//	sql.GT(col, v), sql.GTE(col, v), sql.LT(col, v), sql.LTE(col, v)
//	sql.In(col, "active", "pending"), sql.NotIn(col, ...)
//	sql.Contains(col, s), sql.ContainsFold(col, s)
//	sql.HasPrefix(col, s), sql.HasSuffix(col, s), sql.EqualFold(col, s)
//	sql.IsNull(col), sql.NotNull(col)
//	sql.And(p1, p2), sql.Or(p1, p2)
//
// # Joins
//
// A multi-table FROM clause comes from a schema join plan:
//
//	plan, err := sch.JoinPlan([]string{"t_user", "t_order"})
//	s := sql.NewSelector(dialect.Postgres, "t_user").
//	    WithFrom(sql.JoinPlanToExpr(plan))
//
// # Pagination
//
// Limit and Offset are rendered per the dialect's dialect.PagerModel:
// "LIMIT n OFFSET m" (MSSQL: "OFFSET m ROWS FETCH NEXT n ROWS ONLY"),
// MySQL's "LIMIT m, n", Interbase's "FIRST n SKIP m" after SELECT, and
// Oracle's ROWNUM double wrap around the whole statement:
//
//	s.Offset(20).Limit(10)
//
// # Row-Level Locking
//
//	s.Where(sql.EQ(s.C("id"), 1)).ForUpdate() // SELECT ... FOR UPDATE
package sql
