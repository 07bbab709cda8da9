package domaingen_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/schema/domaingen"
	"github.com/ormkit/ormkit/value"
)

func TestGenerateEmitsGofmtCleanWrapperPerTable(t *testing.T) {
	t.Parallel()

	s := schema.New()
	users := schema.NewTable("t_user", "User")
	require.NoError(t, users.AddColumn(schema.NewColumn("id", value.LongInt, schema.PK|schema.ReadOnly)))
	require.NoError(t, users.AddColumn(schema.NewColumn("name", value.String, 0)))
	require.NoError(t, users.AddColumn(schema.NewColumn("joined_at", value.DateTime, schema.Nullable)))
	require.NoError(t, s.AddTable(users))

	var buf bytes.Buffer
	require.NoError(t, domaingen.Generate(&buf, "domain", s))

	out := buf.String()
	assert.Contains(t, out, "package domain")
	assert.Contains(t, out, "type User struct")
	assert.Contains(t, out, "func NewUser(t *schema.Table) *User")
	assert.Contains(t, out, "func (o *User) Name() (string, error)")
	assert.Contains(t, out, "func (o *User) SetName(v string) error")
	assert.Contains(t, out, `"time"`)
	// id is read-only: no setter generated.
	assert.NotContains(t, out, "func (o *User) SetId(")
}
