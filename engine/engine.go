// Package engine is the transactional facade every query and write in
// the library ultimately goes through: a thin, mode-guarded wrapper
// around a dialect.Driver (or dialect.Tx) that turns schema.Table/
// dialect/sql generator calls into actual round trips, and tracks
// whether it owns a transaction it must commit or roll back.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ormkit/ormkit/dialect"
	"github.com/ormkit/ormkit/dialect/sql"
	"github.com/ormkit/ormkit/dialect/sql/pool"
	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

// Mode restricts which operations an Engine allows, mirroring the
// original engine's READ_ONLY/READ_WRITE split.
type Mode int

const (
	// ReadWrite allows every operation.
	ReadWrite Mode = iota
	// ReadOnly rejects Insert/Update/Delete/CreateSchema/DropSchema with
	// a *ReadOnlyModeError.
	ReadOnly
)

func (m Mode) String() string {
	if m == ReadOnly {
		return "read-only"
	}
	return "read-write"
}

// ReadOnlyModeError is returned by any write operation attempted on an
// Engine opened in ReadOnly mode.
type ReadOnlyModeError struct {
	Op string
}

func (e *ReadOnlyModeError) Error() string {
	return fmt.Sprintf("engine: %s not allowed: engine is read-only", e.Op)
}

// conn is the subset of dialect.Driver/dialect.Tx the engine needs;
// satisfied by both a plain connection and an open transaction. Unlike
// dialect.Driver, it carries no Dialect() of its own — a dialect.Tx
// doesn't have one, so the Engine tracks the dialect name itself and
// carries it across Begin.
type conn interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Engine executes generated SQL against one connection (or, once Begin
// is called, one transaction) and enforces its Mode.
type Engine struct {
	mode    Mode
	c       conn
	dialect string
	logger  *slog.Logger
	stats   *sql.QueryStats

	checkout *pool.Checkout // set only when the Engine owns a pooled connection
}

// New wraps an already-open dialect.Driver. The caller remains
// responsible for closing it.
func New(mode Mode, drv *sql.Driver, opts ...Option) *Engine {
	e := &Engine{mode: mode, c: drv, dialect: drv.Dialect(), logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option configures an Engine built with New or FromPool.
type Option func(*Engine)

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithStats wraps the Engine's connection in a sql.StatsDriver,
// collecting query/exec counts, total duration, and slow-query
// detection for every Select/Insert/Update/Delete the Engine issues.
// It only takes effect when the Engine owns a *sql.Driver (New/Open);
// FromPool's pooled checkout is left alone, since the pool owns that
// connection's lifetime and wrapping it here would outlive the checkout.
func WithStats(opts ...sql.StatsOption) Option {
	return func(e *Engine) {
		if e.checkout != nil {
			return
		}
		drv, ok := e.c.(*sql.Driver)
		if !ok {
			return
		}
		sd := sql.NewStatsDriver(drv, opts...)
		e.c = sd
		e.stats = sd.QueryStats()
	}
}

// Stats returns the query statistics collected since WithStats was
// passed to New or Open, or nil if the Engine wasn't built with it.
func (e *Engine) Stats() *sql.QueryStats { return e.stats }

// Open opens a fresh connection via sql.Open and wraps it in an Engine.
// The caller owns the returned Engine's lifetime; call Close when done.
func Open(mode Mode, dialectName, dsn string, opts ...Option) (*Engine, error) {
	drv, err := sql.Open(dialectName, dsn)
	if err != nil {
		return nil, fmt.Errorf("engine: open %s: %w", dialectName, err)
	}
	return New(mode, drv, opts...), nil
}

// FromPool checks out a connection for sourceID from p and wraps it in
// an Engine; Close both releases the checkout back to the pool and
// (unlike Open/New) does not close the underlying connection, since the
// pool owns its lifetime.
func FromPool(ctx context.Context, mode Mode, p *pool.Pool, sourceID string, timeout time.Duration, opts ...Option) (*Engine, error) {
	co, err := p.Get(ctx, sourceID, timeout)
	if err != nil {
		return nil, fmt.Errorf("engine: checkout %s: %w", sourceID, err)
	}
	e := &Engine{mode: mode, c: co.Driver, dialect: co.Driver.Dialect(), logger: slog.Default(), checkout: co}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// closer is satisfied by *sql.Driver and, through its embedded *Driver,
// by *sql.StatsDriver — whichever concrete connection New/Open left
// behind in e.c after Options ran.
type closer interface{ Close() error }

// Close releases whatever resource the Engine holds: a pooled checkout
// is returned to the pool; a directly-opened driver is closed.
func (e *Engine) Close() error {
	if e.checkout != nil {
		e.checkout.Put(false)
		return nil
	}
	if c, ok := e.c.(closer); ok {
		return c.Close()
	}
	return nil
}

// Mode returns the engine's access mode.
func (e *Engine) Mode() Mode { return e.mode }

// Dialect returns the underlying connection's dialect name.
func (e *Engine) Dialect() string { return e.dialect }

func (e *Engine) checkWritable(op string) error {
	if e.mode == ReadOnly {
		return &ReadOnlyModeError{Op: op}
	}
	return nil
}

// Begin starts a transaction and returns a new Engine bound to it; the
// original Engine's underlying connection is left untouched (mirrors
// EngineCloned: a lightweight view over one transaction).
func (e *Engine) Begin(ctx context.Context) (*Engine, error) {
	drv, ok := e.c.(interface {
		Tx(ctx context.Context) (dialect.Tx, error)
	})
	if !ok {
		return nil, fmt.Errorf("engine: underlying connection cannot start transactions")
	}
	tx, err := drv.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: begin: %w", err)
	}
	return &Engine{mode: e.mode, c: tx, dialect: e.dialect, logger: e.logger}, nil
}

// Commit commits the transaction this Engine was bound to by Begin.
func (e *Engine) Commit() error {
	tx, ok := e.c.(dialect.Tx)
	if !ok {
		return fmt.Errorf("engine: not inside a transaction")
	}
	return tx.Commit()
}

// Rollback rolls back the transaction this Engine was bound to by Begin.
func (e *Engine) Rollback() error {
	tx, ok := e.c.(dialect.Tx)
	if !ok {
		return fmt.Errorf("engine: not inside a transaction")
	}
	return tx.Rollback()
}

// Select runs sel and scans every returned row into a value.Value slice
// per row, positioned the same as cols.
func (e *Engine) Select(ctx context.Context, sel *sql.Selector, cols []*schema.Column) ([][]value.Value, error) {
	query, args := sel.Query()
	tags := make([]value.Tag, len(cols))
	for i, c := range cols {
		tags[i] = c.Tag()
	}
	rows := &sql.Rows{}
	if err := e.c.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("engine: select: %w", err)
	}
	defer rows.Close()
	var out [][]value.Value
	for rows.Next() {
		row, err := sql.ScanRow(rows, tags)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Insert writes row to table and returns the generated surrogate key
// when the dialect supports RETURNING/OUTPUT; otherwise it falls back to
// the driver's LastInsertId.
func (e *Engine) Insert(ctx context.Context, table *schema.Table, row sql.Row) (int64, error) {
	if err := e.checkWritable("insert"); err != nil {
		return 0, err
	}
	g := sql.NewInsertBuilder(e.Dialect(), table)
	query, args, err := g.Build(row)
	if err != nil {
		return 0, err
	}
	d, found := dialect.Lookup(e.Dialect())
	if found && d.Supports(dialect.CapReturningInto) {
		if _, err := table.SurrogatePK(); err == nil {
			rows := &sql.Rows{}
			if err := e.c.Query(ctx, query, args, rows); err != nil {
				return 0, fmt.Errorf("engine: insert %s: %w", table.Name(), err)
			}
			defer rows.Close()
			if !rows.Next() {
				return 0, fmt.Errorf("engine: insert %s: RETURNING produced no row", table.Name())
			}
			var id int64
			if err := rows.Scan(&id); err != nil {
				return 0, fmt.Errorf("engine: insert %s: scan generated id: %w", table.Name(), err)
			}
			return id, nil
		}
	}
	var res sql.Result
	if err := e.c.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("engine: insert %s: %w", table.Name(), err)
	}
	if res == nil {
		return 0, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, nil // driver doesn't support LastInsertId; caller supplied a key already
	}
	return id, nil
}

// Update writes row's non-PK, non-read-only fields to table, filtered by
// key.
func (e *Engine) Update(ctx context.Context, table *schema.Table, row sql.Row, key schema.Key) error {
	if err := e.checkWritable("update"); err != nil {
		return err
	}
	g := sql.NewUpdateBuilder(e.Dialect(), table)
	query, args, err := g.Build(row, key)
	if err != nil {
		return err
	}
	if err := e.c.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("engine: update %s: %w", table.Name(), err)
	}
	return nil
}

// Delete removes the row of table identified by key.
func (e *Engine) Delete(ctx context.Context, table *schema.Table, key schema.Key) error {
	if err := e.checkWritable("delete"); err != nil {
		return err
	}
	g := sql.NewDeleteBuilder(e.Dialect(), table)
	query, args := g.Build(key)
	if err := e.c.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("engine: delete %s: %w", table.Name(), err)
	}
	return nil
}

// Count returns the number of rows of table whose columns satisfy
// filter (an equality filter, not necessarily table's own primary key —
// RelationObject.CountSlaves uses this keyed by its foreign-key column).
// An empty filter counts every row.
func (e *Engine) Count(ctx context.Context, table *schema.Table, filter schema.Key) (int64, error) {
	sel := sql.NewSelector(e.Dialect(), table.Name()).Select("COUNT(*)")
	if len(filter.Fields) > 0 {
		sel.Where(sql.FilterByPK(table.Name(), filter))
	}
	query, args := sel.Query()
	rows := &sql.Rows{}
	if err := e.c.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("engine: count %s: %w", table.Name(), err)
	}
	defer rows.Close()
	if !rows.Next() {
		return 0, fmt.Errorf("engine: count %s: no row returned", table.Name())
	}
	var n int64
	if err := rows.Scan(&n); err != nil {
		return 0, fmt.Errorf("engine: count %s: %w", table.Name(), err)
	}
	return n, rows.Err()
}

// NextValue advances and returns seqName's next value. It errors if the
// dialect has no native sequence support.
func (e *Engine) NextValue(ctx context.Context, seqName string) (int64, error) {
	d, ok := dialect.Lookup(e.Dialect())
	if !ok || !d.HasSequences() {
		return 0, fmt.Errorf("engine: dialect %s has no sequences", e.Dialect())
	}
	expr := d.NextValSQL(seqName)
	rows := &sql.Rows{}
	if err := e.c.Query(ctx, "SELECT "+expr, []any{}, rows); err != nil {
		return 0, fmt.Errorf("engine: next value %s: %w", seqName, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return 0, fmt.Errorf("engine: next value %s: no row returned", seqName)
	}
	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, fmt.Errorf("engine: next value %s: %w", seqName, err)
	}
	return id, nil
}

// CreateSchema issues every table's CREATE TABLE (in ascending
// Table.Depth order, so a table is always created before anything that
// references it) followed by every table's deferred ALTER TABLE ... ADD
// CONSTRAINT FOREIGN KEY statements, once every table exists. With
// ignoreErrors, a failing statement is logged and skipped rather than
// aborting the rest (used for idempotent "create if missing" setup).
func (e *Engine) CreateSchema(ctx context.Context, s *schema.Schema, ignoreErrors bool) error {
	if err := e.checkWritable("create schema"); err != nil {
		return err
	}
	tables := orderedByDepth(s.Tables())
	var fkStatements []string
	for _, t := range tables {
		stmts := sql.CreateTableStatements(e.Dialect(), t)
		for _, stmt := range stmts {
			if isAlterTable(stmt) {
				fkStatements = append(fkStatements, stmt)
				continue
			}
			if err := e.execDDL(ctx, stmt, ignoreErrors); err != nil {
				return err
			}
		}
	}
	for _, stmt := range fkStatements {
		if err := e.execDDL(ctx, stmt, ignoreErrors); err != nil {
			return err
		}
	}
	return nil
}

// DropSchema drops every table in descending Table.Depth order, so
// dependents are dropped before whatever they reference.
func (e *Engine) DropSchema(ctx context.Context, s *schema.Schema, ignoreErrors bool) error {
	if err := e.checkWritable("drop schema"); err != nil {
		return err
	}
	tables := orderedByDepth(s.Tables())
	for i := len(tables) - 1; i >= 0; i-- {
		stmt := sql.DropTableStatement(e.Dialect(), tables[i])
		if err := e.execDDL(ctx, stmt, ignoreErrors); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) execDDL(ctx context.Context, stmt string, ignoreErrors bool) error {
	if err := e.c.Exec(ctx, stmt, []any{}, nil); err != nil {
		if ignoreErrors {
			e.logger.Warn("engine: ddl statement failed, ignoring", "stmt", stmt, "error", err)
			return nil
		}
		return fmt.Errorf("engine: ddl %q: %w", stmt, err)
	}
	return nil
}

func orderedByDepth(tables []*schema.Table) []*schema.Table {
	out := make([]*schema.Table, len(tables))
	copy(out, tables)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Depth() > out[j].Depth(); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func isAlterTable(stmt string) bool {
	return len(stmt) >= 11 && stmt[:11] == "ALTER TABLE"
}
