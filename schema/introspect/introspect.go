// Package introspect builds a schema.Schema by reading a live
// database's own catalog — the read path behind the generator tool's
// --extract-schema subcommand. Column-level metadata (size, nullability,
// primary/foreign keys) comes straight from the catalog; class names and
// XML names fall back to the table/column names themselves, since a
// catalog has no notion of either.
package introspect

import (
	"context"
	"fmt"

	"github.com/ormkit/ormkit/dialect/sql"
	"github.com/ormkit/ormkit/schema"
)

// Extract reads every table drv's database exposes (its own catalog
// only — no cross-database introspection) and returns the Schema they
// describe, with foreign keys resolved and cycles checked exactly as
// xmlschema.Parse does for a hand-written file.
func Extract(ctx context.Context, drv *sql.Driver) (*schema.Schema, error) {
	switch drv.Dialect() {
	case "postgres":
		return extractPostgres(ctx, drv)
	case "sqlite":
		return extractSQLite(ctx, drv)
	default:
		return nil, fmt.Errorf("introspect: unsupported dialect %q", drv.Dialect())
	}
}

func finish(s *schema.Schema) (*schema.Schema, error) {
	if err := s.FillForeignKeys(); err != nil {
		return nil, fmt.Errorf("introspect: %w", err)
	}
	if err := s.CheckCycles(); err != nil {
		return nil, fmt.Errorf("introspect: %w", err)
	}
	return s, nil
}
