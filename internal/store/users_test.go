package store

import (
	"context"
	"testing"

	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	defer db.Close()
	as := db.Admin()

	err := as.AddUser(ctx, "alice", "alice@aurelab.audio", "hash-one", entity.RoleStaff)
	require.NoError(t, err)

	u, err := as.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@aurelab.audio", u.Email)
	assert.Equal(t, entity.RoleStaff, u.Role)

	// adding the same username again updates hash and role in place
	err = as.AddUser(ctx, "alice", "alice@aurelab.audio", "hash-two", entity.RoleAdmin)
	require.NoError(t, err)
	hash, err := as.PasswordHashByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash-two", hash)

	err = as.ChangePassword(ctx, "alice", "hash-three")
	require.NoError(t, err)
	hash, err = as.PasswordHashByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash-three", hash)

	err = as.ChangeRole(ctx, "alice", entity.RoleSuperAdmin)
	require.NoError(t, err)
	u, err = as.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSuperAdmin, u.Role)

	err = as.AddUser(ctx, "bob", "bob@aurelab.audio", "hash-bob", entity.RoleStaff)
	require.NoError(t, err)
	users, err := as.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	err = as.DeleteUser(ctx, "bob")
	require.NoError(t, err)
	err = as.DeleteUser(ctx, "bob")
	assert.ErrorIs(t, err, gerr.ErrUserNotFound)

	_, err = as.GetUserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, gerr.ErrUserNotFound)
	_, err = as.PasswordHashByUsername(ctx, "bob")
	assert.ErrorIs(t, err, gerr.ErrUserNotFound)
}
