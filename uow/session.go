// Package uow implements the unit-of-work layer: Session owns the
// identity map and pending set described by entity.DataObject/
// entity.RelationObject, and drives the engine through a three-phase
// flush (insert, update, delete) in dependency order.
package uow

import (
	"context"
	"log/slog"

	sqlgen "github.com/ormkit/ormkit/dialect/sql"
	"github.com/ormkit/ormkit/engine"
	"github.com/ormkit/ormkit/entity"
	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

// Session is a single-owner, not-thread-safe identity map bound to one
// Engine (normally one opened with Engine.Begin, so its statements share
// a transaction). Confine a Session to one goroutine at a time; sharing
// it across goroutines without external synchronization is a race on
// its identity map and pending set, same as the DataObjects it owns.
type Session struct {
	schema *schema.Schema
	engine *engine.Engine
	logger *slog.Logger

	identity map[string]*entity.DataObject
	pending  map[*entity.DataObject]struct{}
}

// Option configures a Session built with New.
type Option func(*Session)

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New returns an empty Session reading and writing through e, against s.
func New(s *schema.Schema, e *engine.Engine, opts ...Option) *Session {
	sess := &Session{
		schema:   s,
		engine:   e,
		logger:   slog.Default(),
		identity: make(map[string]*entity.DataObject),
		pending:  make(map[*entity.DataObject]struct{}),
	}
	for _, opt := range opts {
		opt(sess)
	}
	return sess
}

// Schema returns the metadata the session was opened against.
func (s *Session) Schema() *schema.Schema { return s.schema }

// Engine returns the Engine the session reads and writes through.
func (s *Session) Engine() *engine.Engine { return s.engine }

// GetLazy returns the identity-mapped object for key, creating a new
// Ghost-status placeholder and registering it if none exists yet. It
// never touches the database.
func (s *Session) GetLazy(key schema.Key) *entity.DataObject {
	k := key.String()
	if obj, ok := s.identity[k]; ok {
		return obj
	}
	tbl, err := s.schema.Table(key.Table)
	if err != nil {
		return nil
	}
	obj := entity.NewDataObject(tbl, entity.Ghost)
	for _, f := range key.Fields {
		_ = obj.Set(f.Name, f.Value)
	}
	_ = obj.SetSession(s)
	s.identity[k] = obj
	s.pending[obj] = struct{}{}
	return obj
}

// Save registers obj with the session: added to the pending set (so a
// flush will consider it), and to the identity map if it already has an
// assigned key. Idempotent — saving the same object twice is a no-op the
// second time.
func (s *Session) Save(obj *entity.DataObject) error {
	if err := obj.SetSession(s); err != nil {
		return err
	}
	s.pending[obj] = struct{}{}
	if obj.AssignedKey() {
		s.identity[obj.Key().String()] = obj
	}
	return nil
}

// Detach removes obj from the identity map (if present by its current
// key) and the pending set. A no-op if obj isn't tracked.
func (s *Session) Detach(obj *entity.DataObject) {
	if obj.AssignedKey() {
		if existing, ok := s.identity[obj.Key().String()]; ok && existing == obj {
			delete(s.identity, obj.Key().String())
		}
	}
	delete(s.pending, obj)
	obj.ForgetSession()
}

// LoadRow fetches the single row identified by key.
func (s *Session) LoadRow(ctx context.Context, key schema.Key) ([]value.Value, error) {
	tbl, err := s.schema.Table(key.Table)
	if err != nil {
		return nil, err
	}
	sel := sqlgen.NewSelector(s.engine.Dialect(), tbl.Name())
	cols := tbl.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = sel.C(c.Name())
	}
	sel.Select(names...).Where(sqlgen.FilterByPK(tbl.Name(), key))
	rows, err := s.engine.Select(ctx, sel, cols)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, &entity.ObjectNotFoundError{Key: key.String()}
	}
	return rows[0], nil
}

// LoadRows fetches every row of tableName whose columns satisfy
// filterKey.
func (s *Session) LoadRows(ctx context.Context, tableName string, filterKey schema.Key) ([][]value.Value, error) {
	tbl, err := s.schema.Table(tableName)
	if err != nil {
		return nil, err
	}
	sel := sqlgen.NewSelector(s.engine.Dialect(), tbl.Name())
	cols := tbl.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = sel.C(c.Name())
	}
	sel.Select(names...)
	if len(filterKey.Fields) > 0 {
		sel.Where(sqlgen.FilterByPK(tbl.Name(), filterKey))
	}
	return s.engine.Select(ctx, sel, cols)
}

// CountRows counts the rows of tableName satisfying filterKey, without
// fetching them.
func (s *Session) CountRows(ctx context.Context, tableName string, filterKey schema.Key) (int64, error) {
	tbl, err := s.schema.Table(tableName)
	if err != nil {
		return 0, err
	}
	return s.engine.Count(ctx, tbl, filterKey)
}

var _ entity.Session = (*Session)(nil)
