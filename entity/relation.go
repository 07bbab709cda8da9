package entity

import (
	"context"

	"github.com/ormkit/ormkit/schema"
)

// RelationObject tracks the slave side of one one-to-many relation for
// a single master DataObject: which slaves are currently known, and
// whether that set is known to be complete (RelationSync) or might
// still be missing rows the database has but nothing has linked in
// memory yet (Incomplete).
type RelationObject struct {
	relation *schema.Relation
	master   *DataObject
	status   RelationStatus

	slaves []*DataObject
}

// NewRelationObject returns an empty, Incomplete RelationObject for
// relation rel rooted at master.
func NewRelationObject(rel *schema.Relation, master *DataObject) *RelationObject {
	return &RelationObject{relation: rel, master: master, status: Incomplete}
}

func (ro *RelationObject) Relation() *schema.Relation { return ro.relation }
func (ro *RelationObject) Master() *DataObject        { return ro.master }
func (ro *RelationObject) Status() RelationStatus     { return ro.status }

// Slaves returns the currently known slave objects, in link order. Call
// LazyLoadSlaves first if the full set (not just what's been linked in
// memory this session) is needed.
func (ro *RelationObject) Slaves() []*DataObject {
	out := make([]*DataObject, len(ro.slaves))
	copy(out, ro.slaves)
	return out
}

func (ro *RelationObject) addSlave(obj *DataObject) {
	for _, s := range ro.slaves {
		if s == obj {
			return
		}
	}
	ro.slaves = append(ro.slaves, obj)
}

// CalcDepth propagates flush depth d into every slave, detecting a
// cycle if parent (the object that originated this walk) reappears as
// one of its own descendants.
func (ro *RelationObject) CalcDepth(d int, parent *DataObject) error {
	for _, s := range ro.slaves {
		if parent != nil && s == parent {
			return &CycleDetectedError{Table: s.table.Name()}
		}
		if err := s.CalcDepth(d, parent); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMaster applies ro's cascade policy (read from the slave-side
// RelationEnd, i.e. what happens to the slaves when the master is
// deleted) as part of deleting ro's master object.
func (ro *RelationObject) DeleteMaster(mode DeletionMode, depth int) error {
	switch ro.relation.End(1).Cascade {
	case schema.CascadeNullify:
		if mode != DeleteDryRun {
			for _, s := range ro.slaves {
				if err := s.SetFreeFrom(ro); err != nil {
					return err
				}
			}
			ro.slaves = nil
		}
	case schema.CascadeDelete:
		slavesCopy := ro.Slaves()
		for _, s := range slavesCopy {
			if err := s.Delete(mode, depth); err != nil {
				return err
			}
		}
	default: // CascadeRestrict
		if len(ro.slaves) != 0 {
			return &CascadeDeleteError{Relation: ro.relation.Name()}
		}
	}
	return nil
}

// ForeignKey builds the Key filtering ro's slave table to exactly the
// rows belonging to ro's master (the slave-side foreign-key columns
// equal to the master's primary key values).
func (ro *RelationObject) ForeignKey() (schema.Key, error) {
	masterTbl := ro.relation.Table(0)
	slaveTbl := ro.relation.Table(1)
	fkFields, err := slaveTbl.FindFKFor(ro.relation, ro.relation.End(1).Key)
	if err != nil {
		return schema.Key{}, err
	}
	pk := masterTbl.PKFields()
	k := schema.Key{Table: slaveTbl.Name()}
	for i, fkName := range fkFields {
		if i >= len(pk) {
			break
		}
		v, err := ro.master.Get(pk[i])
		if err != nil {
			return schema.Key{}, err
		}
		k.Fields = append(k.Fields, schema.KeyField{Name: fkName, Value: v})
	}
	return k, nil
}

// CountSlaves returns the number of slave rows, without fetching them:
// the in-memory count once Status is RelationSync (including for a New
// master, which by definition has no rows in the database yet to miss),
// otherwise a COUNT(*) through the session.
func (ro *RelationObject) CountSlaves(ctx context.Context) (int64, error) {
	if ro.status == RelationSync || ro.master.status == New {
		return int64(len(ro.slaves)), nil
	}
	if ro.master.session == nil {
		return 0, &NoSessionError{Table: ro.relation.Table(1).Name()}
	}
	fk, err := ro.ForeignKey()
	if err != nil {
		return 0, err
	}
	return ro.master.session.CountRows(ctx, ro.relation.Table(1).Name(), fk)
}

// LazyLoadSlaves fetches every slave row from the database and links it
// in, unless the set is already known complete. Rows already present in
// the identity map (including ones linked purely in memory, still New)
// are reused rather than re-created.
func (ro *RelationObject) LazyLoadSlaves(ctx context.Context) error {
	if ro.status != Incomplete {
		return nil
	}
	if ro.master.session == nil {
		return &NoSessionError{Table: ro.relation.Table(1).Name()}
	}
	slaveTbl := ro.relation.Table(1)
	fk, err := ro.ForeignKey()
	if err != nil {
		return err
	}
	rows, err := ro.master.session.LoadRows(ctx, slaveTbl.Name(), fk)
	if err != nil {
		return err
	}
	if ro.master.masterRelationFor(ro.relation) == nil {
		ro.master.masterRelations = append(ro.master.masterRelations, ro)
	}
	for _, row := range rows {
		key, _, err := slaveTbl.MakeKey(row)
		if err != nil {
			return err
		}
		obj := ro.master.session.GetLazy(key)
		if err := obj.FillFromRow(row); err != nil {
			return err
		}
		if err := Link(ro.master, obj, ro.relation); err != nil {
			return err
		}
	}
	ro.status = RelationSync
	return nil
}

// RefreshSlavesFKeys overwrites every linked slave's foreign-key column
// with the master's current primary-key value, used right after an
// insert assigns the master a generated surrogate key.
func (ro *RelationObject) RefreshSlavesFKeys() error {
	masterTbl := ro.relation.Table(0)
	slaveTbl := ro.relation.Table(1)
	fkFields, err := slaveTbl.FindFKFor(ro.relation, ro.relation.End(1).Key)
	if err != nil {
		return err
	}
	pk := masterTbl.PKFields()
	for _, s := range ro.slaves {
		for i, fkName := range fkFields {
			if i >= len(pk) {
				break
			}
			v, err := ro.master.Get(pk[i])
			if err != nil {
				return err
			}
			if err := s.Set(fkName, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExcludeSlave removes obj from the slave set without touching the
// database, used when obj itself is being deleted and must no longer
// appear as one of ro's slaves.
func (ro *RelationObject) ExcludeSlave(obj *DataObject) {
	for i, s := range ro.slaves {
		if s == obj {
			ro.slaves = append(ro.slaves[:i], ro.slaves[i+1:]...)
			return
		}
	}
}
