package uow_test

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
	"github.com/ormkit/ormkit/entity"
	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/uow"
	"github.com/ormkit/ormkit/value"
)

func ordersSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s := schema.New()

	users := schema.NewTable("t_user", "User")
	users.SetAutoIncrement(true)
	require.NoError(t, users.AddColumn(schema.NewColumn("id", value.LongInt, schema.PK)))
	require.NoError(t, users.AddColumn(schema.NewColumn("name", value.String, 0)))

	orders := schema.NewTable("t_order", "Order")
	orders.SetAutoIncrement(true)
	require.NoError(t, orders.AddColumn(schema.NewColumn("id", value.LongInt, schema.PK)))
	require.NoError(t, orders.AddColumn(schema.NewColumn("user_id", value.LongInt, 0, schema.WithForeignKey("t_user", "id"))))

	require.NoError(t, s.AddTable(users))
	require.NoError(t, s.AddTable(orders))

	rel := schema.NewRelation(schema.OneToMany, "",
		schema.RelationEnd{Class: "User", Property: "orders"},
		schema.RelationEnd{Class: "Order", Property: "user", Cascade: schema.CascadeDelete})
	s.AddRelation(rel)
	require.NoError(t, s.FillForeignKeys())
	require.NoError(t, s.CheckCycles())
	return s
}

func newMockSession(t *testing.T, s *schema.Schema) (*uow.Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	drv := sql.OpenDB(dialect.Postgres, db)
	e := engine.New(engine.ReadWrite, drv)
	return uow.New(s, e), mock
}

func TestSaveAndDetachAreIdempotent(t *testing.T) {
	t.Parallel()

	s := ordersSchema(t)
	sess, _ := newMockSession(t, s)
	users, err := s.Table("t_user")
	require.NoError(t, err)

	u := entity.NewDataObject(users, entity.New)
	require.NoError(t, sess.Save(u))
	require.NoError(t, sess.Save(u))

	sess.Detach(u)
	sess.Detach(u) // no-op the second time
}

func TestFlushInsertsAutoIncrementAndPropagatesFKToLinkedSlave(t *testing.T) {
	t.Parallel()

	s := ordersSchema(t)
	sess, mock := newMockSession(t, s)
	users, err := s.Table("t_user")
	require.NoError(t, err)
	orders, err := s.Table("t_order")
	require.NoError(t, err)
	rel := s.FindRelation("User", "orders", "", 0)
	require.NotNil(t, rel)

	u := entity.NewDataObject(users, entity.New)
	require.NoError(t, u.Set("name", value.NewString("ann")))
	o := entity.NewDataObject(orders, entity.New)
	require.NoError(t, entity.Link(u, o, rel))

	require.NoError(t, sess.Save(u))
	require.NoError(t, sess.Save(o))

	mock.ExpectQuery(`INSERT INTO "t_user" \("name"\) VALUES \(\$1\) RETURNING "id"`).
		WithArgs("ann").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(`INSERT INTO "t_order" \("user_id"\) VALUES \(\$1\) RETURNING "id"`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))

	require.NoError(t, sess.Flush(context.Background()))

	assert.Equal(t, entity.Ghost, u.Status())
	assert.Equal(t, entity.Ghost, o.Status())
	fk, err := o.Get("user_id")
	require.NoError(t, err)
	got, _ := fk.AsLongInt()
	assert.Equal(t, int64(7), got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlushUpdateMarksObjectGhost(t *testing.T) {
	t.Parallel()

	s := ordersSchema(t)
	sess, mock := newMockSession(t, s)
	users, err := s.Table("t_user")
	require.NoError(t, err)

	u := entity.NewDataObject(users, entity.Sync)
	require.NoError(t, u.Set("id", value.NewLongInt(1)))
	require.NoError(t, u.Set("name", value.NewString("bob")))
	require.NoError(t, sess.Save(u))
	require.NoError(t, u.Set("name", value.NewString("bobby")))
	assert.Equal(t, entity.Dirty, u.Status())

	mock.ExpectExec(`UPDATE "t_user" SET "name" = \$1 WHERE \("t_user"\."id" = \$2\)`).
		WithArgs("bobby", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, sess.Flush(context.Background()))
	assert.Equal(t, entity.Ghost, u.Status())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlushDeleteOrdersByDepthDescending(t *testing.T) {
	t.Parallel()

	s := ordersSchema(t)
	sess, mock := newMockSession(t, s)
	users, err := s.Table("t_user")
	require.NoError(t, err)
	orders, err := s.Table("t_order")
	require.NoError(t, err)
	rel := s.FindRelation("User", "orders", "", 0)
	require.NotNil(t, rel)

	u := entity.NewDataObject(users, entity.Sync)
	require.NoError(t, u.Set("id", value.NewLongInt(1)))
	o := entity.NewDataObject(orders, entity.Sync)
	require.NoError(t, o.Set("id", value.NewLongInt(100)))
	require.NoError(t, entity.Link(u, o, rel))
	require.NoError(t, sess.Save(u))
	require.NoError(t, sess.Save(o))

	require.NoError(t, u.Delete(entity.DeleteNormal, 0))
	assert.Equal(t, entity.ToBeDeleted, o.Status())

	mock.ExpectExec(`DELETE FROM "t_order" WHERE \("t_order"\."id" = \$1\)`).
		WithArgs(int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "t_user" WHERE \("t_user"\."id" = \$1\)`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, sess.Flush(context.Background()))
	assert.Equal(t, entity.Deleted, u.Status())
	assert.Equal(t, entity.Deleted, o.Status())
	require.NoError(t, mock.ExpectationsWereMet())
}
