package xmlschema_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormkit/ormkit/schema/xmlschema"
)

const sampleXML = `<?xml version="1.0"?>
<schema>
  <table name="t_user" class="User">
    <column name="id" type="longint">
      <primary-key/>
    </column>
    <column name="name" type="string" size="50"/>
  </table>
  <table name="t_order" class="Order">
    <column name="id" type="longint">
      <primary-key/>
    </column>
    <column name="user_id" type="longint">
      <foreign-key table="t_user" key="id"/>
    </column>
  </table>
  <relation type="one-to-many">
    <one class="User" property="orders"/>
    <many class="Order" property="user" key="user_id"/>
  </relation>
</schema>
`

func TestParseBuildsSchemaWithResolvedForeignKeysAndDepths(t *testing.T) {
	t.Parallel()

	s, err := xmlschema.Parse(strings.NewReader(sampleXML))
	require.NoError(t, err)

	users, err := s.Table("t_user")
	require.NoError(t, err)
	orders, err := s.Table("t_order")
	require.NoError(t, err)

	assert.Equal(t, 0, users.Depth())
	assert.Equal(t, 1, orders.Depth())

	userID, err := orders.Column("user_id")
	require.NoError(t, err)
	assert.True(t, userID.HasFK())
	assert.Equal(t, "t_user", userID.FKTableName())

	rel := s.FindRelation("User", "orders", "Order", 0)
	require.NotNil(t, rel)
	assert.Equal(t, []string{"user_id"}, rel.FKFields())
}

func TestWriteThenParseRoundTripsStructurally(t *testing.T) {
	t.Parallel()

	s, err := xmlschema.Parse(strings.NewReader(sampleXML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, xmlschema.Write(&buf, s))

	s2, err := xmlschema.Parse(&buf)
	require.NoError(t, err)

	for _, name := range []string{"t_user", "t_order"} {
		orig, err := s.Table(name)
		require.NoError(t, err)
		got, err := s2.Table(name)
		require.NoError(t, err)

		assert.Equal(t, orig.ClassName(), got.ClassName())
		require.Len(t, got.Columns(), len(orig.Columns()))
		for i, oc := range orig.Columns() {
			gc := got.Columns()[i]
			assert.Equal(t, oc.Name(), gc.Name())
			assert.Equal(t, oc.Tag(), gc.Tag())
			assert.Equal(t, oc.Flags(), gc.Flags())
			assert.Equal(t, oc.HasFK(), gc.HasFK())
			assert.Equal(t, oc.FKTableName(), gc.FKTableName())
		}
	}

	rel2 := s2.FindRelation("User", "orders", "Order", 0)
	require.NotNil(t, rel2)
	assert.Equal(t, []string{"user_id"}, rel2.FKFields())
}

func TestCascadeSetNullRoundTrips(t *testing.T) {
	t.Parallel()

	const doc = `<schema>
  <table name="t_user" class="User">
    <column name="id" type="longint"><primary-key/></column>
  </table>
  <table name="t_order" class="Order">
    <column name="id" type="longint"><primary-key/></column>
    <column name="user_id" type="longint" null="true">
      <foreign-key table="t_user" key="id"/>
    </column>
  </table>
  <relation type="one-to-many" cascade="set-null">
    <one class="User" property="orders"/>
    <many class="Order" property="user" key="user_id"/>
  </relation>
</schema>`

	s, err := xmlschema.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	rel := s.FindRelation("User", "orders", "Order", 0)
	require.NotNil(t, rel)
	assert.Equal(t, "nullify", rel.End(1).Cascade.String())

	var buf bytes.Buffer
	require.NoError(t, xmlschema.Write(&buf, s))
	assert.Contains(t, buf.String(), `cascade="set-null"`)
}
