package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

func usersTable() *schema.Table {
	t := schema.NewTable("T_USER", "User")
	_ = t.AddColumn(schema.NewColumn("ID", value.LongInt, schema.PK))
	_ = t.AddColumn(schema.NewColumn("NAME", value.String, schema.Nullable, schema.WithSize(100)))
	t.SetAutoIncrement(true)
	return t
}

func ordersTable() *schema.Table {
	t := schema.NewTable("T_ORDER", "Order")
	_ = t.AddColumn(schema.NewColumn("ID", value.LongInt, schema.PK))
	_ = t.AddColumn(schema.NewColumn("USER_ID", value.LongInt, schema.Nullable,
		schema.WithForeignKey("T_USER", "")))
	t.SetAutoIncrement(true)
	return t
}

func TestAddTableRejectsBadNameOrEmptyTable(t *testing.T) {
	t.Parallel()

	s := schema.New()
	empty := schema.NewTable("T_EMPTY", "")
	var badName *schema.TableWithoutColumnsError
	assert.ErrorAs(t, s.AddTable(empty), &badName)

	bad := schema.NewTable("1bad", "")
	_ = bad.AddColumn(schema.NewColumn("ID", value.LongInt, schema.PK))
	var nameErr *schema.BadTableNameError
	assert.ErrorAs(t, s.AddTable(bad), &nameErr)
}

func TestAddColumnRejectsBadName(t *testing.T) {
	t.Parallel()

	tbl := schema.NewTable("T_USER", "")
	err := tbl.AddColumn(schema.NewColumn("1bad", value.Integer, 0))
	var badCol *schema.BadColumnNameError
	require.ErrorAs(t, err, &badCol)
}

func TestSurrogatePK(t *testing.T) {
	t.Parallel()

	tbl := usersTable()
	pk, err := tbl.SurrogatePK()
	require.NoError(t, err)
	assert.Equal(t, "ID", pk)

	composite := schema.NewTable("T_LINK", "")
	_ = composite.AddColumn(schema.NewColumn("A", value.LongInt, schema.PK))
	_ = composite.AddColumn(schema.NewColumn("B", value.LongInt, schema.PK))
	_, err = composite.SurrogatePK()
	var noPK *schema.TableHasNoSurrogatePKError
	assert.ErrorAs(t, err, &noPK)
}

func TestFillForeignKeysDefaultsFKColumn(t *testing.T) {
	t.Parallel()

	s := schema.New()
	require.NoError(t, s.AddTable(usersTable()))
	require.NoError(t, s.AddTable(ordersTable()))
	require.NoError(t, s.FillForeignKeys())

	orders, err := s.Table("T_ORDER")
	require.NoError(t, err)
	c, err := orders.Column("USER_ID")
	require.NoError(t, err)
	assert.Equal(t, "ID", c.FKName())
}

func TestFillForeignKeysResolvesOneToManyFK(t *testing.T) {
	t.Parallel()

	s := schema.New()
	require.NoError(t, s.AddTable(usersTable()))
	require.NoError(t, s.AddTable(ordersTable()))
	s.AddRelation(schema.NewRelation(schema.OneToMany, "",
		schema.RelationEnd{Class: "User", Property: "orders"},
		schema.RelationEnd{Class: "Order", Property: "user"}))

	require.NoError(t, s.FillForeignKeys())

	rel := s.FindRelation("User", "orders", "Order", 0)
	require.NotNil(t, rel)
	assert.Equal(t, []string{"USER_ID"}, rel.FKFields())
	assert.Equal(t, "T_USER", rel.Table(0).Name())
	assert.Equal(t, "T_ORDER", rel.Table(1).Name())

	cond := rel.JoinCondition()
	require.Len(t, cond, 1)
	assert.Equal(t, schema.ColumnPair{MasterColumn: "ID", SlaveColumn: "USER_ID"}, cond[0])
}

func TestCheckCyclesAssignsDepthByFKDistance(t *testing.T) {
	t.Parallel()

	s := schema.New()
	require.NoError(t, s.AddTable(usersTable()))
	require.NoError(t, s.AddTable(ordersTable()))

	line := schema.NewTable("T_ORDER_LINE", "")
	_ = line.AddColumn(schema.NewColumn("ID", value.LongInt, schema.PK))
	_ = line.AddColumn(schema.NewColumn("ORDER_ID", value.LongInt, 0, schema.WithForeignKey("T_ORDER", "ID")))
	require.NoError(t, s.AddTable(line))

	require.NoError(t, s.FillForeignKeys())
	require.NoError(t, s.CheckCycles())

	users, _ := s.Table("T_USER")
	orders, _ := s.Table("T_ORDER")
	lines, _ := s.Table("T_ORDER_LINE")
	assert.Equal(t, 0, users.Depth())
	assert.Equal(t, 1, orders.Depth())
	assert.Equal(t, 2, lines.Depth())
}

func TestCheckCyclesDetectsCycle(t *testing.T) {
	t.Parallel()

	s := schema.New()
	a := schema.NewTable("T_A", "")
	_ = a.AddColumn(schema.NewColumn("ID", value.LongInt, schema.PK))
	_ = a.AddColumn(schema.NewColumn("B_ID", value.LongInt, 0, schema.WithForeignKey("T_B", "ID")))
	b := schema.NewTable("T_B", "")
	_ = b.AddColumn(schema.NewColumn("ID", value.LongInt, schema.PK))
	_ = b.AddColumn(schema.NewColumn("A_ID", value.LongInt, 0, schema.WithForeignKey("T_A", "ID")))
	require.NoError(t, s.AddTable(a))
	require.NoError(t, s.AddTable(b))

	err := s.CheckCycles()
	var integrity *schema.IntegrityCheckFailedError
	require.ErrorAs(t, err, &integrity)
	assert.True(t, errors.Is(err, schema.ErrMetaData))
}

func TestKeyEqualIgnoresFieldOrder(t *testing.T) {
	t.Parallel()

	k1 := schema.Key{Table: "T_ORDER", Fields: []schema.KeyField{
		{Name: "ID", Value: value.NewLongInt(1)},
		{Name: "USER_ID", Value: value.NewLongInt(2)},
	}}
	k2 := schema.Key{Table: "T_ORDER", Fields: []schema.KeyField{
		{Name: "USER_ID", Value: value.NewLongInt(2)},
		{Name: "ID", Value: value.NewLongInt(1)},
	}}
	assert.True(t, k1.Equal(k2))

	v, ok := k1.Get("USER_ID")
	require.True(t, ok)
	assert.Equal(t, value.NewLongInt(2), v)
}

func TestMakeKeyReportsUnassignedWhenPKNull(t *testing.T) {
	t.Parallel()

	tbl := usersTable()
	row := []value.Value{value.Nil, value.NewString("ann")}
	_, assigned, err := tbl.MakeKey(row)
	require.NoError(t, err)
	assert.False(t, assigned)

	row2 := []value.Value{value.NewLongInt(1), value.NewString("ann")}
	k, assigned2, err := tbl.MakeKey(row2)
	require.NoError(t, err)
	assert.True(t, assigned2)
	assert.Equal(t, "T_USER(ID=1)", k.String())
}

func TestJoinPlanWalksRelationChain(t *testing.T) {
	t.Parallel()

	s := schema.New()
	require.NoError(t, s.AddTable(usersTable()))
	require.NoError(t, s.AddTable(ordersTable()))
	s.AddRelation(schema.NewRelation(schema.OneToMany, "",
		schema.RelationEnd{Class: "User", Property: "orders"},
		schema.RelationEnd{Class: "Order", Property: "user"}))
	require.NoError(t, s.FillForeignKeys())

	plan, err := s.JoinPlan([]string{"T_USER", "T_ORDER"})
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "T_USER", plan[0].Table)
	assert.Empty(t, plan[0].Conditions)
	assert.Equal(t, "T_ORDER", plan[1].Table)
	assert.Equal(t, []schema.ColumnPair{{MasterColumn: "ID", SlaveColumn: "USER_ID"}}, plan[1].Conditions)
}
