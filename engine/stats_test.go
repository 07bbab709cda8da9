package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormkit/ormkit/dialect"
	_ "github.com/ormkit/ormkit/dialect/postgres"
	"github.com/ormkit/ormkit/dialect/sql"
	"github.com/ormkit/ormkit/engine"
)

func TestWithStatsRecordsQueriesAndSlowThreshold(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	drv := sql.OpenDB(dialect.Postgres, db)

	var slow []string
	e := engine.New(engine.ReadWrite, drv,
		engine.WithStats(
			sql.WithSlowThreshold(0),
			sql.WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
				slow = append(slow, query)
			}),
		),
	)
	require.NotNil(t, e.Stats())

	tbl := userTable(t)
	mock.ExpectQuery(`SELECT "t_user"\."id", "t_user"\."name" FROM "t_user"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "ann"))

	s := sql.NewSelector(dialect.Postgres, "t_user")
	s.Select(s.C("id"), s.C("name"))
	_, err = e.Select(context.Background(), s, tbl.Columns())
	require.NoError(t, err)

	snap := e.Stats().Stats()
	assert.Equal(t, int64(1), snap.TotalQueries)
	assert.Equal(t, int64(1), snap.SlowQueries)
	assert.Len(t, slow, 1)

	require.NoError(t, e.Close())
}

func TestStatsNilWithoutWithStats(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	drv := sql.OpenDB(dialect.Postgres, db)

	e := engine.New(engine.ReadWrite, drv)
	assert.Nil(t, e.Stats())
}
