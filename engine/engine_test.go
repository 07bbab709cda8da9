package engine_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormkit/ormkit/dialect"
	_ "github.com/ormkit/ormkit/dialect/postgres"
	"github.com/ormkit/ormkit/dialect/sql"
	"github.com/ormkit/ormkit/engine"
	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

func userTable(t *testing.T) *schema.Table {
	t.Helper()
	tbl := schema.NewTable("t_user", "User")
	tbl.SetAutoIncrement(true)
	require.NoError(t, tbl.AddColumn(schema.NewColumn("id", value.LongInt, schema.PK)))
	require.NoError(t, tbl.AddColumn(schema.NewColumn("name", value.String, 0)))
	return tbl
}

func newMockEngine(t *testing.T, mode engine.Mode) (*engine.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	drv := sql.OpenDB(dialect.Postgres, db)
	return engine.New(mode, drv), mock
}

func TestReadOnlyEngineRejectsWrites(t *testing.T) {
	t.Parallel()

	e, _ := newMockEngine(t, engine.ReadOnly)
	tbl := userTable(t)
	_, err := e.Insert(context.Background(), tbl, sql.Row{Table: "t_user"})
	require.Error(t, err)
	var roErr *engine.ReadOnlyModeError
	assert.ErrorAs(t, err, &roErr)
	assert.Equal(t, "insert", roErr.Op)
}

func TestSelectScansRowsIntoValues(t *testing.T) {
	t.Parallel()

	e, mock := newMockEngine(t, engine.ReadWrite)
	tbl := userTable(t)
	mock.ExpectQuery(`SELECT "t_user"\."id", "t_user"\."name" FROM "t_user"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "ann"))

	s := sql.NewSelector(dialect.Postgres, "t_user")
	s.Select(s.C("id"), s.C("name"))
	rows, err := e.Select(context.Background(), s, tbl.Columns())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	id, err := rows[0][0].AsLongInt()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	name, err := rows[0][1].AsString()
	require.NoError(t, err)
	assert.Equal(t, "ann", name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertUsesReturningForSurrogatePK(t *testing.T) {
	t.Parallel()

	e, mock := newMockEngine(t, engine.ReadWrite)
	tbl := userTable(t)
	mock.ExpectQuery(`INSERT INTO "t_user" \("name"\) VALUES \(\$1\) RETURNING "id"`).
		WithArgs("ann").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	row := sql.Row{Table: "t_user", Fields: []schema.KeyField{{Name: "name", Value: value.NewString("ann")}}}
	id, err := e.Insert(context.Background(), tbl, row)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDeleteExecAgainstKey(t *testing.T) {
	t.Parallel()

	e, mock := newMockEngine(t, engine.ReadWrite)
	tbl := userTable(t)
	key := schema.Key{Table: "t_user", Fields: []schema.KeyField{{Name: "id", Value: value.NewLongInt(1)}}}

	mock.ExpectExec(`UPDATE "t_user" SET "name" = \$1 WHERE \("t_user"\."id" = \$2\)`).
		WithArgs("bob", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	row := sql.Row{Table: "t_user", Fields: []schema.KeyField{{Name: "name", Value: value.NewString("bob")}}}
	require.NoError(t, e.Update(context.Background(), tbl, row, key))

	mock.ExpectExec(`DELETE FROM "t_user" WHERE \("t_user"\."id" = \$1\)`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, e.Delete(context.Background(), tbl, key))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBeginCommitRollback(t *testing.T) {
	t.Parallel()

	e, mock := newMockEngine(t, engine.ReadWrite)
	mock.ExpectBegin()
	tx, err := e.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dialect.Postgres, tx.Dialect())

	mock.ExpectCommit()
	require.NoError(t, tx.Commit())

	mock.ExpectBegin()
	tx2, err := e.Begin(context.Background())
	require.NoError(t, err)
	mock.ExpectRollback()
	require.NoError(t, tx2.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitWithoutBeginErrors(t *testing.T) {
	t.Parallel()

	e, _ := newMockEngine(t, engine.ReadWrite)
	assert.Error(t, e.Commit())
	assert.Error(t, e.Rollback())
}

func TestCreateSchemaOrdersByDepthAndDefersForeignKeys(t *testing.T) {
	t.Parallel()

	e, mock := newMockEngine(t, engine.ReadWrite)
	s := schema.New()
	users := schema.NewTable("t_user", "User")
	require.NoError(t, users.AddColumn(schema.NewColumn("id", value.LongInt, schema.PK)))
	orders := schema.NewTable("t_order", "Order")
	require.NoError(t, orders.AddColumn(schema.NewColumn("id", value.LongInt, schema.PK)))
	require.NoError(t, orders.AddColumn(schema.NewColumn("user_id", value.LongInt, 0, schema.WithForeignKey("t_user", "id"))))
	require.NoError(t, s.AddTable(orders))
	require.NoError(t, s.AddTable(users))
	s.AddRelation(schema.NewRelation(schema.OneToMany, "",
		schema.RelationEnd{Class: "User"}, schema.RelationEnd{Class: "Order"}))
	require.NoError(t, s.FillForeignKeys())
	require.NoError(t, s.CheckCycles())

	mock.ExpectExec(`CREATE TABLE "t_user"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE "t_order"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`ALTER TABLE "t_order"`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, e.CreateSchema(context.Background(), s, false))
	require.NoError(t, mock.ExpectationsWereMet())
}
