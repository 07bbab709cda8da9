// Package entity implements the identity-tracked row wrapper at the
// center of the unit-of-work layer: DataObject carries one row's values
// through New -> Ghost -> Sync -> Dirty -> ToBeDeleted -> Deleted, and
// RelationObject tracks the slave side of a one-to-many association so
// a Session can cascade deletes and keep foreign keys in sync without
// an extra round trip per object.
package entity

// Status is a DataObject's position in the unit-of-work lifecycle.
type Status int

const (
	// New is a row created in memory that has never been flushed.
	New Status = iota
	// Ghost is a row the identity map knows by key but whose other
	// columns haven't been loaded yet.
	Ghost
	// Sync is a fully loaded row matching the database.
	Sync
	// Dirty is a loaded row with unflushed column changes.
	Dirty
	// ToBeDeleted is a persisted row queued for deletion on the next flush.
	ToBeDeleted
	// Deleted is a row flush has already removed from the database.
	Deleted
)

func (s Status) String() string {
	switch s {
	case New:
		return "new"
	case Ghost:
		return "ghost"
	case Sync:
		return "sync"
	case Dirty:
		return "dirty"
	case ToBeDeleted:
		return "to-be-deleted"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// RelationStatus is a RelationObject's own, independent lazy-load state:
// whether its slave set still needs a database round trip before it can
// answer Count/iterate accurately.
type RelationStatus int

const (
	// Incomplete means the slave set hasn't been loaded from the
	// database yet; only objects linked in memory are present.
	Incomplete RelationStatus = iota
	// RelationSync means the slave set is known to be complete.
	RelationSync
)

func (s RelationStatus) String() string {
	if s == RelationSync {
		return "sync"
	}
	return "incomplete"
}

// DeletionMode controls how DataObject.Delete walks the master-relation
// graph: Normal both dry-runs the cascade check and then commits it,
// DryRun only checks that every cascade policy permits the delete
// without mutating anything, and Unchecked skips the dry-run pass and
// commits directly (used internally once a dry run elsewhere already
// vouched for the whole subgraph).
type DeletionMode int

const (
	// DeleteNormal dry-runs the cascade, then commits it.
	DeleteNormal DeletionMode = iota
	// DeleteDryRun only verifies every CascadeRestrict relation is empty.
	DeleteDryRun
	// DeleteUnchecked commits the cascade without a prior dry run.
	DeleteUnchecked
)
