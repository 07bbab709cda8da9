package introspect

import (
	"context"
	"fmt"

	"github.com/ormkit/ormkit/dialect/sql"
	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

const sqliteTablesQuery = `
SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`

func extractSQLite(ctx context.Context, drv *sql.Driver) (*schema.Schema, error) {
	names, err := queryStrings(ctx, drv, sqliteTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("introspect: list tables: %w", err)
	}

	s := schema.New()
	for _, name := range names {
		t := schema.NewTable(name, name)

		fks, err := sqliteFKs(ctx, drv, name)
		if err != nil {
			return nil, fmt.Errorf("introspect: %s foreign keys: %w", name, err)
		}

		rows := &sql.Rows{}
		if err := drv.Query(ctx, fmt.Sprintf("PRAGMA table_info(%q)", name), []any{}, rows); err != nil {
			return nil, fmt.Errorf("introspect: %s columns: %w", name, err)
		}
		for rows.Next() {
			var cid int
			var colName, colType string
			var notNull, pk int
			var dflt any
			if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
				rows.Close()
				return nil, fmt.Errorf("introspect: %s scan column: %w", name, err)
			}
			var flags schema.ColumnFlag
			if pk > 0 {
				flags |= schema.PK
			}
			if notNull == 0 {
				flags |= schema.Nullable
			}
			var opts []schema.ColumnOption
			if fk, ok := fks[colName]; ok {
				opts = append(opts, schema.WithForeignKey(fk.table, fk.column))
			}
			if err := t.AddColumn(schema.NewColumn(colName, sqliteTypeToTag(colType), flags, opts...)); err != nil {
				rows.Close()
				return nil, fmt.Errorf("introspect: %s column %s: %w", name, colName, err)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		if err := s.AddTable(t); err != nil {
			return nil, fmt.Errorf("introspect: %s: %w", name, err)
		}
	}
	return finish(s)
}

func sqliteFKs(ctx context.Context, drv *sql.Driver, table string) (map[string]fkRef, error) {
	rows := &sql.Rows{}
	if err := drv.Query(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", table), []any{}, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]fkRef)
	for rows.Next() {
		var id, seq int
		var fkTable, from, to, onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &fkTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		out[from] = fkRef{table: fkTable, column: to}
	}
	return out, rows.Err()
}

func sqliteTypeToTag(colType string) value.Tag {
	switch colType {
	case "INTEGER":
		return value.LongInt
	case "REAL":
		return value.Float
	case "NUMERIC":
		return value.Decimal
	case "BLOB":
		return value.Blob
	case "DATETIME", "TIMESTAMP":
		return value.DateTime
	default:
		return value.String
	}
}
