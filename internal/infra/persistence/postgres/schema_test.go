package postgres

import (
	"sync"
	"testing"

	"postly/internal/infra/persistence/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestPostModel_OwnerForeignKeyCascades(t *testing.T) {
	posts, err := schema.Parse(&model.PostModel{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	owner, ok := posts.Relationships.Relations["Owner"]
	require.True(t, ok)
	assert.Equal(t, schema.BelongsTo, owner.Type)

	constraint := owner.ParseConstraint()
	require.NotNil(t, constraint, "posts must declare the owner foreign key")

	assert.Equal(t, "posts", constraint.Schema.Table)
	assert.Equal(t, "users", constraint.ReferenceSchema.Table)
	require.Len(t, constraint.ForeignKeys, 1)
	assert.Equal(t, "user_id", constraint.ForeignKeys[0].DBName)
	assert.Equal(t, "id", constraint.References[0].DBName)
	assert.Equal(t, "CASCADE", constraint.OnDelete)
}

func TestUserModel_EmailIsUnique(t *testing.T) {
	users, err := schema.Parse(&model.UserModel{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	idx := users.LookIndex("idx_users_email")
	require.NotNil(t, idx)
	assert.Equal(t, "UNIQUE", idx.Class)
	require.Len(t, idx.Fields, 1)
	assert.Equal(t, "email", idx.Fields[0].DBName)
}
