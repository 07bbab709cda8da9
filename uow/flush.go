package uow

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	sqlgen "github.com/ormkit/ormkit/dialect/sql"
	"github.com/ormkit/ormkit/entity"
	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

// Flush runs the session's three ordered phases against a snapshot of
// the pending set: flush_new (ascending depth), flush_update, then
// flush_delete (descending depth). Every statement runs through the
// session's Engine, so the caller is expected to have opened it inside
// a transaction (Engine.Begin) and to commit or roll back around Flush.
// A driver error aborts the remaining phase and is returned wrapped in
// *FlushError; the session's in-memory FSM is left exactly where the
// failure found it — Flush never attempts to revert it, matching the
// "roll back and drop the session" contract.
func (s *Session) Flush(ctx context.Context) error {
	if err := s.flushNew(ctx); err != nil {
		return err
	}
	if err := s.flushUpdate(ctx); err != nil {
		return err
	}
	if err := s.flushDelete(ctx); err != nil {
		return err
	}
	return nil
}

func (s *Session) pendingByStatus(want entity.Status) []*entity.DataObject {
	var out []*entity.DataObject
	for obj := range s.pending {
		if obj.Status() == want {
			out = append(out, obj)
		}
	}
	return out
}

// toRow captures every column of obj, in Table().Columns() order, as a
// generator Row. InsertBuilder/UpdateBuilder each apply their own
// column filtering (skipping an unset autoincrement PK on insert,
// skipping PK/read-only columns on update), so one full row serves
// both.
func toRow(obj *entity.DataObject) sqlgen.Row {
	tbl := obj.Table()
	cols := tbl.Columns()
	row := sqlgen.Row{Table: tbl.Name(), Fields: make([]schema.KeyField, len(cols))}
	for i, c := range cols {
		row.Fields[i] = schema.KeyField{Name: c.Name(), Value: obj.GetByIndex(i)}
	}
	return row
}

// buildRows renders objs into generator Rows concurrently — the
// construction errgroup.WithContext(ctx) call-out SPEC_FULL names: each
// table's batch within a flush phase/depth has no ordering dependency
// on any other table's, only the row values themselves need computing,
// and that's pure in-memory work with nothing to synchronize against
// the engine's single connection.
func buildRows(ctx context.Context, objs []*entity.DataObject) ([]sqlgen.Row, error) {
	rows := make([]sqlgen.Row, len(objs))
	g, _ := errgroup.WithContext(ctx)
	for i, obj := range objs {
		i, obj := i, obj
		g.Go(func() error {
			rows[i] = toRow(obj)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func groupByTable(objs []*entity.DataObject) map[string][]*entity.DataObject {
	out := make(map[string][]*entity.DataObject)
	for _, obj := range objs {
		name := obj.Table().Name()
		out[name] = append(out[name], obj)
	}
	return out
}

func sortedTableNames(byTable map[string][]*entity.DataObject) []string {
	names := make([]string, 0, len(byTable))
	for name := range byTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// flushNew buckets every New pending object by depth (ascending) and,
// within a depth, by table; per table it assigns a key (sequence,
// autoincrement, or the one already set) and inserts, then propagates
// the generated key to any already-linked slaves and re-adds the object
// to the identity map under its new key.
func (s *Session) flushNew(ctx context.Context) error {
	objs := s.pendingByStatus(entity.New)
	// Normalize every object's depth before bucketing any of them:
	// CalcDepth on one object can raise an already-linked slave's depth
	// as a side effect, so every depth must settle before the first
	// Depth() read below, independent of pending's iteration order.
	for _, obj := range objs {
		if obj.Depth() < 0 {
			if err := obj.CalcDepth(0, nil); err != nil {
				return err
			}
		}
	}
	byDepth := make(map[int][]*entity.DataObject)
	for _, obj := range objs {
		byDepth[obj.Depth()] = append(byDepth[obj.Depth()], obj)
	}
	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	for _, d := range depths {
		byTable := groupByTable(byDepth[d])
		for _, tableName := range sortedTableNames(byTable) {
			if err := s.flushNewTable(ctx, tableName, byTable[tableName]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) flushNewTable(ctx context.Context, tableName string, objs []*entity.DataObject) error {
	tbl, err := s.schema.Table(tableName)
	if err != nil {
		return &FlushError{Phase: "new", Table: tableName, Err: err}
	}
	for _, obj := range objs {
		if err := s.assignKey(ctx, tbl, obj); err != nil {
			return &FlushError{Phase: "new", Table: tableName, Err: err}
		}
	}
	rows, err := buildRows(ctx, objs)
	if err != nil {
		return &FlushError{Phase: "new", Table: tableName, Err: err}
	}
	for i, obj := range objs {
		id, err := s.engine.Insert(ctx, tbl, rows[i])
		if err != nil {
			return &FlushError{Phase: "new", Table: tableName, Err: err}
		}
		if !obj.AssignedKey() {
			pk, err := tbl.SurrogatePK()
			if err != nil {
				return &FlushError{Phase: "new", Table: tableName, Err: err}
			}
			if err := obj.Set(pk, value.NewLongInt(id)); err != nil {
				return &FlushError{Phase: "new", Table: tableName, Err: err}
			}
		}
		if err := obj.RefreshSlavesFKeys(); err != nil {
			return &FlushError{Phase: "new", Table: tableName, Err: err}
		}
		obj.SetStatus(entity.Ghost)
		s.identity[obj.Key().String()] = obj
	}
	return nil
}

// assignKey gives obj a primary key before insert when it doesn't
// already have one: a native sequence's NEXTVAL if the table names one,
// otherwise nothing if the table auto-increments (the driver supplies
// it), otherwise *MissingKeyError — a multi-column or unrecognized
// unassigned key can't be synthesized.
func (s *Session) assignKey(ctx context.Context, tbl *schema.Table, obj *entity.DataObject) error {
	if obj.AssignedKey() {
		return nil
	}
	if tbl.AutoIncrement() {
		return nil
	}
	pk, err := tbl.SurrogatePK()
	if err != nil || tbl.SeqName() == "" {
		return &MissingKeyError{Table: tbl.Name()}
	}
	id, err := s.engine.NextValue(ctx, tbl.SeqName())
	if err != nil {
		return err
	}
	return obj.Set(pk, value.NewLongInt(id))
}

// flushUpdate batches every Dirty pending object by table and issues a
// keyed UPDATE for each; on success the object becomes Ghost, since the
// in-memory non-key values may now be stale relative to DB-side
// defaults or triggers.
func (s *Session) flushUpdate(ctx context.Context) error {
	objs := s.pendingByStatus(entity.Dirty)
	byTable := groupByTable(objs)
	for _, tableName := range sortedTableNames(byTable) {
		tableObjs := byTable[tableName]
		tbl, err := s.schema.Table(tableName)
		if err != nil {
			return &FlushError{Phase: "update", Table: tableName, Err: err}
		}
		rows, err := buildRows(ctx, tableObjs)
		if err != nil {
			return &FlushError{Phase: "update", Table: tableName, Err: err}
		}
		for i, obj := range tableObjs {
			if err := s.engine.Update(ctx, tbl, rows[i], obj.Key()); err != nil {
				return &FlushError{Phase: "update", Table: tableName, Err: err}
			}
			obj.SetStatus(entity.Ghost)
		}
	}
	return nil
}

// flushDelete buckets every ToBeDeleted pending object by depth
// (descending, so a slave is deleted before whatever it still points
// to) and, within a depth, by table, issuing a keyed DELETE for each;
// on success the object becomes Deleted and drops out of both the
// identity map and the pending set.
func (s *Session) flushDelete(ctx context.Context) error {
	objs := s.pendingByStatus(entity.ToBeDeleted)
	byDepth := make(map[int][]*entity.DataObject)
	for _, obj := range objs {
		byDepth[obj.Depth()] = append(byDepth[obj.Depth()], obj)
	}
	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(depths)))

	for _, d := range depths {
		byTable := groupByTable(byDepth[d])
		for _, tableName := range sortedTableNames(byTable) {
			tableObjs := byTable[tableName]
			tbl, err := s.schema.Table(tableName)
			if err != nil {
				return &FlushError{Phase: "delete", Table: tableName, Err: err}
			}
			for _, obj := range tableObjs {
				if err := s.engine.Delete(ctx, tbl, obj.Key()); err != nil {
					return &FlushError{Phase: "delete", Table: tableName, Err: err}
				}
				obj.SetStatus(entity.Deleted)
				delete(s.identity, obj.Key().String())
				delete(s.pending, obj)
			}
		}
	}
	return nil
}
