package entity

import (
	"context"

	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

// DataObject is one row of a table, tracked through the unit-of-work
// lifecycle: its Status says whether it needs inserting, has unflushed
// column changes, or is queued for deletion, and its master/slave
// RelationObject links let a Session cascade deletes and repair foreign
// keys without a query per object.
type DataObject struct {
	table  *schema.Table
	values []value.Value
	status Status
	depth  int

	key         schema.Key
	keyValid    bool
	assignedKey bool

	session Session

	// masterRelations are the relations where this object plays the
	// master (one) side; slaveRelations are the relations where it plays
	// the slave (many) side. A DataObject owns its masterRelations: a
	// RelationObject is created lazily the first time a slave is linked
	// or requested, and lives as long as its master does.
	masterRelations []*RelationObject
	slaveRelations  []*RelationObject
}

// NewDataObject returns a fresh DataObject for table in the given
// status, with every column initialized to value.Nil.
func NewDataObject(table *schema.Table, status Status) *DataObject {
	return &DataObject{
		table:  table,
		values: make([]value.Value, len(table.Columns())),
		status: status,
		depth:  -1,
	}
}

// ResetDepth clears o's flush-depth mark back to unvisited, so a
// subsequent CalcDepth pass recomputes it from scratch. Session calls
// this on every New object before each flush's depth pass.
func (o *DataObject) ResetDepth() { o.depth = -1 }

func (o *DataObject) Table() *schema.Table { return o.table }
func (o *DataObject) Status() Status       { return o.status }
func (o *DataObject) SetStatus(s Status)   { o.status = s }
func (o *DataObject) Depth() int           { return o.depth }
func (o *DataObject) Session() Session     { return o.session }

// SetSession attaches o to s. It fails if o is already attached to a
// different session.
func (o *DataObject) SetSession(s Session) error {
	if o.session != nil && o.session != s {
		return &AlreadyInSessionError{Table: o.table.Name()}
	}
	o.session = s
	return nil
}

// ForgetSession detaches o from whatever session it's in, if any.
func (o *DataObject) ForgetSession() { o.session = nil }

// GetByIndex returns the value of the i'th column (Table().Columns()
// order).
func (o *DataObject) GetByIndex(i int) value.Value { return o.values[i] }

// Get returns the value of the named column.
func (o *DataObject) Get(name string) (value.Value, error) {
	i, err := o.table.IndexByName(name)
	if err != nil {
		return value.Nil, err
	}
	return o.values[i], nil
}

// SetByIndex assigns the i'th column. Overwriting an already-assigned
// primary-key column with a different value is rejected once the object
// is attached to a session (a loaded row's identity can't change
// underneath the identity map); assigning a non-key column on a Sync
// object transitions it to Dirty.
//
// Writing a non-key column of a Ghost object fetches the rest of the
// row first, so the overwrite lands on a fully populated row instead
// of leaving every other column at its zero value. Set's signature has
// no caller context to thread through that fetch (it mirrors the
// original's parameterless set(i, v)), so the lazy Load runs against
// context.Background.
func (o *DataObject) SetByIndex(i int, v value.Value) error {
	c := o.table.Columns()[i]
	if !c.IsPK() && o.status == Ghost {
		if err := o.Load(context.Background()); err != nil {
			return err
		}
	}
	if c.IsPK() && o.session != nil && !o.values[i].IsNull() && !o.values[i].Equal(v) {
		return &ReadOnlyColumnError{Table: o.table.Name(), Column: c.Name()}
	}
	o.values[i] = v
	if c.IsPK() {
		o.invalidateKey()
	} else if o.status == Sync {
		o.status = Dirty
	}
	return nil
}

// Set assigns the named column. See SetByIndex.
func (o *DataObject) Set(name string, v value.Value) error {
	i, err := o.table.IndexByName(name)
	if err != nil {
		return err
	}
	return o.SetByIndex(i, v)
}

func (o *DataObject) invalidateKey() { o.keyValid = false }

func (o *DataObject) updateKey() {
	k := schema.Key{Table: o.table.Name()}
	assigned := true
	for _, name := range o.table.PKFields() {
		idx, err := o.table.IndexByName(name)
		if err != nil {
			continue
		}
		v := o.values[idx]
		if v.IsNull() {
			assigned = false
		}
		k.Fields = append(k.Fields, schema.KeyField{Name: name, Value: v})
	}
	o.key = k
	o.assignedKey = assigned
	o.keyValid = true
}

// Key returns o's identity key, recomputing it from the current primary
// key column values if a Set since the last call may have changed them.
func (o *DataObject) Key() schema.Key {
	if !o.keyValid {
		o.updateKey()
	}
	return o.key
}

// AssignedKey reports whether every primary-key column currently holds
// a non-null value (i.e. the row has an identity ready for the identity
// map, whether or not it has been flushed yet).
func (o *DataObject) AssignedKey() bool {
	if !o.keyValid {
		o.updateKey()
	}
	return o.assignedKey
}

// Values returns every column's value in Table().Columns() order,
// either skipping or including the primary-key columns — a flush
// building an INSERT/UPDATE statement needs includeKey to vary: an
// auto-generated surrogate key is never supplied on insert, but a
// natural or already-assigned key is.
func (o *DataObject) Values(includeKey bool) []value.Value {
	if includeKey {
		out := make([]value.Value, len(o.values))
		copy(out, o.values)
		return out
	}
	out := make([]value.Value, 0, len(o.values))
	for i, c := range o.table.Columns() {
		if !c.IsPK() {
			out = append(out, o.values[i])
		}
	}
	return out
}

// Load fetches o's row by key through its session and applies it via
// FillFromRow. It requires o to be attached to a session and to have an
// assigned key.
func (o *DataObject) Load(ctx context.Context) error {
	if o.session == nil {
		return &NoSessionError{Table: o.table.Name()}
	}
	row, err := o.session.LoadRow(ctx, o.Key())
	if err != nil {
		return err
	}
	return o.FillFromRow(row)
}

// FillFromRow overwrites every column from row (Table().Columns()
// order) and marks the object Sync. Status is held at Sync throughout
// so intermediate Set calls don't spuriously flip it to Dirty.
func (o *DataObject) FillFromRow(row []value.Value) error {
	if len(row) != len(o.table.Columns()) {
		return newEntityError("fill from row: table %s expects %d columns, got %d",
			o.table.Name(), len(o.table.Columns()), len(row))
	}
	o.status = Sync
	for i, v := range row {
		if err := o.SetByIndex(i, v); err != nil {
			return err
		}
	}
	o.status = Sync
	return nil
}

// CalcDepth propagates flush depth d down through every relation where
// o is the master, detecting a cycle if parent reappears as one of its
// own descendants.
func (o *DataObject) CalcDepth(d int, parent *DataObject) error {
	if d <= o.depth {
		return nil
	}
	o.depth = d
	for _, ro := range o.masterRelations {
		if err := ro.CalcDepth(d+1, parent); err != nil {
			return err
		}
	}
	return nil
}

// Link registers slave as a dependent of master under relation rel,
// creating master's RelationObject for rel if this is its first slave.
func Link(master, slave *DataObject, rel *schema.Relation) error {
	ro := master.masterRelationFor(rel)
	if ro == nil {
		ro = NewRelationObject(rel, master)
		master.masterRelations = append(master.masterRelations, ro)
	}
	ro.addSlave(slave)
	slave.slaveRelations = append(slave.slaveRelations, ro)
	return slave.CalcDepth(master.depth+1, master)
}

// LinkByName resolves relationName between master's and slave's classes
// and links them (see Link).
func LinkByName(master, slave *DataObject, relationName string) error {
	s := master.table.Schema()
	rel := s.FindRelation(master.table.ClassName(), relationName, slave.table.ClassName(), 0)
	if rel == nil {
		return &RelationNotFoundError{Class: master.table.ClassName(), Relation: relationName}
	}
	return Link(master, slave, rel)
}

func (o *DataObject) masterRelationFor(rel *schema.Relation) *RelationObject {
	for _, ro := range o.masterRelations {
		if ro.relation == rel {
			return ro
		}
	}
	return nil
}

// GetMaster resolves and returns (creating a Ghost placeholder through
// the session's identity map if necessary) the master-side object of
// the named one-to-many relation o participates in as a slave. An empty
// relationName picks the first relation naming o's class on the slave
// side.
func (o *DataObject) GetMaster(ctx context.Context, relationName string) (*DataObject, error) {
	if o.session == nil {
		return nil, &NoSessionError{Table: o.table.Name()}
	}
	s := o.table.Schema()
	rel := s.FindRelation(o.table.ClassName(), relationName, "", 1)
	if rel == nil {
		return nil, &RelationNotFoundError{Class: o.table.ClassName(), Relation: relationName}
	}
	masterTbl := rel.Table(0)
	fkFields, err := o.table.FindFKFor(rel, rel.End(1).Key)
	if err != nil {
		return nil, err
	}
	pk := masterTbl.PKFields()
	fkValues := schema.Key{Table: masterTbl.Name()}
	for i, pkName := range pk {
		if i >= len(fkFields) {
			break
		}
		v, err := o.Get(fkFields[i])
		if err != nil {
			return nil, err
		}
		fkValues.Fields = append(fkValues.Fields, schema.KeyField{Name: pkName, Value: v})
	}
	master := o.session.GetLazy(fkValues)
	if err := Link(master, o, rel); err != nil {
		return nil, err
	}
	return master, nil
}

// GetSlaves returns the RelationObject tracking the named one-to-many
// relation o participates in as the master, creating it (empty,
// Incomplete) if this is the first access.
func (o *DataObject) GetSlaves(relationName string) (*RelationObject, error) {
	s := o.table.Schema()
	rel := s.FindRelation(o.table.ClassName(), relationName, "", 0)
	if rel == nil {
		return nil, &RelationNotFoundError{Class: o.table.ClassName(), Relation: relationName}
	}
	ro := o.masterRelationFor(rel)
	if ro == nil {
		ro = NewRelationObject(rel, o)
		o.masterRelations = append(o.masterRelations, ro)
	}
	return ro, nil
}

// Delete queues o for deletion (DeletionMode controls whether that's
// checked, committed, or both) and recurses into every relation where o
// is the master, applying each one's cascade policy.
func (o *DataObject) Delete(mode DeletionMode, depth int) error {
	if mode != DeleteUnchecked {
		if err := o.deleteMasterRelations(DeleteDryRun, depth+1); err != nil {
			return err
		}
	}
	if mode != DeleteDryRun {
		if err := o.deleteMasterRelations(DeleteUnchecked, depth+1); err != nil {
			return err
		}
		o.excludeFromSlaveRelations()
		if o.status == New {
			o.status = Deleted
		} else {
			o.depth = depth
			o.status = ToBeDeleted
		}
	}
	return nil
}

func (o *DataObject) deleteMasterRelations(mode DeletionMode, depth int) error {
	for _, ro := range o.masterRelations {
		if err := ro.DeleteMaster(mode, depth); err != nil {
			return err
		}
	}
	if mode != DeleteDryRun {
		o.masterRelations = nil
	}
	return nil
}

func (o *DataObject) excludeFromSlaveRelations() {
	for _, ro := range o.slaveRelations {
		ro.ExcludeSlave(o)
	}
	o.slaveRelations = nil
}

// SetFreeFrom clears the foreign-key columns o holds for rel, used when
// rel's cascade policy is CascadeNullify and its master is deleted.
func (o *DataObject) SetFreeFrom(ro *RelationObject) error {
	fkFields, err := o.table.FindFKFor(ro.relation, ro.relation.End(1).Key)
	if err != nil {
		return err
	}
	for _, name := range fkFields {
		if err := o.Set(name, value.Nil); err != nil {
			return err
		}
	}
	return nil
}

// RefreshSlavesFKeys pushes o's current surrogate key into every slave
// row linked through a master relation, after an insert assigns o its
// generated id.
func (o *DataObject) RefreshSlavesFKeys() error {
	for _, ro := range o.masterRelations {
		if err := ro.RefreshSlavesFKeys(); err != nil {
			return err
		}
	}
	return nil
}
