package introspect_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ormkit/ormkit/dialect/sql"
	"github.com/ormkit/ormkit/schema/introspect"
)

func TestExtractSQLiteReadsTablesColumnsAndForeignKeys(t *testing.T) {
	t.Parallel()

	drv, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer drv.DB().Close()

	ctx := context.Background()
	ddl := []string{
		`CREATE TABLE t_client (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE t_order (
			id INTEGER PRIMARY KEY,
			client_id INTEGER NOT NULL,
			placed_at DATETIME,
			FOREIGN KEY (client_id) REFERENCES t_client(id)
		)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, drv.Exec(ctx, stmt, []any{}, nil))
	}

	s, err := introspect.Extract(ctx, drv)
	require.NoError(t, err)

	client, err := s.Table("t_client")
	require.NoError(t, err)
	order, err := s.Table("t_order")
	require.NoError(t, err)

	idCol, err := client.Column("id")
	require.NoError(t, err)
	assert.True(t, idCol.IsPK())

	clientIDCol, err := order.Column("client_id")
	require.NoError(t, err)
	assert.Equal(t, "t_client", clientIDCol.FKTableName())
	assert.Equal(t, "id", clientIDCol.FKName())

	placedAtCol, err := order.Column("placed_at")
	require.NoError(t, err)
	assert.True(t, placedAtCol.IsNullable())
}

func TestExtractUnsupportedDialectFails(t *testing.T) {
	t.Parallel()

	drv, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer drv.DB().Close()

	fake := sql.NewDriver("oracle", drv.Conn)
	_, err = introspect.Extract(context.Background(), fake)
	assert.Error(t, err)
}
