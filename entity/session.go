package entity

import (
	"context"

	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

// Session is the slice of the unit-of-work layer a DataObject/
// RelationObject needs to reach the database and the identity map,
// without entity importing package uow back (uow.Session implements
// this structurally). Every method that can run without a round trip
// (GetLazy, Schema) is synchronous; everything that touches the engine
// takes a context.
type Session interface {
	// Schema returns the metadata the session was opened against.
	Schema() *schema.Schema

	// GetLazy returns the identity-mapped DataObject for key, creating a
	// new Ghost-status one and registering it if none exists yet. It
	// never touches the database.
	GetLazy(key schema.Key) *DataObject

	// LoadRow fetches the single row identified by key, in the order of
	// key.Table's Columns(). It returns *ObjectNotFoundError unless
	// exactly one row matches.
	LoadRow(ctx context.Context, key schema.Key) ([]value.Value, error)

	// LoadRows fetches every row of tableName whose columns satisfy
	// filterKey (an equality filter, not necessarily the table's own
	// primary key — RelationObject uses this keyed by its foreign-key
	// column), in the order of tableName's Columns().
	LoadRows(ctx context.Context, tableName string, filterKey schema.Key) ([][]value.Value, error)

	// CountRows counts the rows of tableName satisfying filterKey,
	// without fetching them.
	CountRows(ctx context.Context, tableName string, filterKey schema.Key) (int64, error)
}
