package introspect

import (
	"context"
	"fmt"

	"github.com/ormkit/ormkit/dialect/sql"
	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

const pgTablesQuery = `
SELECT table_name FROM information_schema.tables
WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
ORDER BY table_name`

const pgColumnsQuery = `
SELECT column_name, data_type, is_nullable, character_maximum_length
FROM information_schema.columns
WHERE table_schema = 'public' AND table_name = $1
ORDER BY ordinal_position`

const pgPKQuery = `
SELECT kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
WHERE tc.table_schema = 'public' AND tc.table_name = $1 AND tc.constraint_type = 'PRIMARY KEY'
ORDER BY kcu.ordinal_position`

const pgFKQuery = `
SELECT kcu.column_name, ccu.table_name AS foreign_table, ccu.column_name AS foreign_column
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
JOIN information_schema.constraint_column_usage ccu
  ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
WHERE tc.table_schema = 'public' AND tc.table_name = $1 AND tc.constraint_type = 'FOREIGN KEY'`

func extractPostgres(ctx context.Context, drv *sql.Driver) (*schema.Schema, error) {
	names, err := queryStrings(ctx, drv, pgTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("introspect: list tables: %w", err)
	}

	s := schema.New()
	for _, name := range names {
		t := schema.NewTable(name, name)

		pk, err := queryStrings(ctx, drv, pgPKQuery, name)
		if err != nil {
			return nil, fmt.Errorf("introspect: %s primary key: %w", name, err)
		}
		pkSet := make(map[string]bool, len(pk))
		for _, c := range pk {
			pkSet[c] = true
		}

		fks, err := queryFKs(ctx, drv, pgFKQuery, name)
		if err != nil {
			return nil, fmt.Errorf("introspect: %s foreign keys: %w", name, err)
		}

		rows := &sql.Rows{}
		if err := drv.Query(ctx, pgColumnsQuery, []any{name}, rows); err != nil {
			return nil, fmt.Errorf("introspect: %s columns: %w", name, err)
		}
		for rows.Next() {
			var colName, dataType, nullable string
			var maxLen *int
			if err := rows.Scan(&colName, &dataType, &nullable, &maxLen); err != nil {
				rows.Close()
				return nil, fmt.Errorf("introspect: %s scan column: %w", name, err)
			}
			var flags schema.ColumnFlag
			if pkSet[colName] {
				flags |= schema.PK
			}
			if nullable == "YES" {
				flags |= schema.Nullable
			}
			var opts []schema.ColumnOption
			if maxLen != nil {
				opts = append(opts, schema.WithSize(*maxLen))
			}
			if fkTable, ok := fks[colName]; ok {
				opts = append(opts, schema.WithForeignKey(fkTable.table, fkTable.column))
			}
			if err := t.AddColumn(schema.NewColumn(colName, pgTypeToTag(dataType), flags, opts...)); err != nil {
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

type fkRef struct{ table, column string }

func queryFKs(ctx context.Context, drv *sql.Driver, query, table string) (map[string]fkRef, error) {
	rows := &sql.Rows{}
	if err := drv.Query(ctx, query, []any{table}, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]fkRef)
	for rows.Next() {
		var col, fkTable, fkCol string
		if err := rows.Scan(&col, &fkTable, &fkCol); err != nil {
			return nil, err
		}
		out[col] = fkRef{table: fkTable, column: fkCol}
	}
	return out, rows.Err()
}

func queryStrings(ctx context.Context, drv *sql.Driver, query string, args ...any) ([]string, error) {
	rows := &sql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func pgTypeToTag(dataType string) value.Tag {
	switch dataType {
	case "integer", "smallint":
		return value.Integer
	case "bigint":
		return value.LongInt
	case "numeric", "decimal":
		return value.Decimal
	case "real", "double precision":
		return value.Float
	case "timestamp without time zone", "timestamp with time zone", "date":
		return value.DateTime
	case "bytea":
		return value.Blob
	default:
		return value.String
	}
}
