package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/store"
)

func ptr[T any](v T) *T { return &v }

func TestUserService_Me(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.identity(t, "alice", domain.RoleUser)

	u, err := f.users.Me(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = f.users.Me(ctx, policy.Identity{})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestUserService_UpdateMe_IgnoresRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.identity(t, "alice", domain.RoleUser)

	u, err := f.users.UpdateMe(ctx, alice, UpdateUserRequest{
		Bio:  ptr("reader"),
		Role: ptr(domain.RoleAdmin),
	})
	require.NoError(t, err)
	assert.Equal(t, "reader", u.Bio)
	assert.Equal(t, domain.RoleUser, u.Role)

	stored, err := f.store.GetUser(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, stored.Role)
	assert.Equal(t, "alice@example.com", stored.Email, "omitted fields are kept")
}

func TestUserService_UpdateMe_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.identity(t, "alice", domain.RoleUser)
	f.identity(t, "bob", domain.RoleUser)

	_, err := f.users.UpdateMe(ctx, alice, UpdateUserRequest{Username: ptr("ME")})
	assert.Contains(t, fieldErrors(t, err), "username")

	_, err = f.users.UpdateMe(ctx, alice, UpdateUserRequest{Email: ptr("")})
	assert.Contains(t, fieldErrors(t, err), "email")

	_, err = f.users.UpdateMe(ctx, alice, UpdateUserRequest{Username: ptr("bob")})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestUserService_AdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.identity(t, "alice", domain.RoleUser)
	mod := f.identity(t, "mod", domain.RoleModerator)

	_, err := f.users.List(ctx, policy.Identity{}, store.UserFilter{})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	_, err = f.users.List(ctx, user, store.UserFilter{})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	_, err = f.users.Get(ctx, mod, "alice")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	assert.ErrorIs(t, f.users.Delete(ctx, mod, "alice"), domainerrors.ErrForbidden)
}

func TestUserService_AdminCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.identity(t, "admin", domain.RoleAdmin)

	created, err := f.users.Create(ctx, admin, CreateUserRequest{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, created.Role)

	_, err = f.users.Create(ctx, admin, CreateUserRequest{Username: "bob", Email: "bob2@example.com"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	_, err = f.users.Create(ctx, admin, CreateUserRequest{Username: "carol", Email: "c@example.com", Role: "owner"})
	assert.Contains(t, fieldErrors(t, err), "role")

	updated, err := f.users.Update(ctx, admin, "bob", UpdateUserRequest{Role: ptr(domain.RoleModerator)})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, updated.Role)

	got, err := f.users.Get(ctx, admin, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, got.Role)

	list, err := f.users.List(ctx, admin, store.UserFilter{Search: "bo"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	require.NoError(t, f.users.Delete(ctx, admin, "bob"))
	_, err = f.users.Get(ctx, admin, "bob")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, f.users.Delete(ctx, admin, "bob"), domainerrors.ErrNotFound)
}

func TestUserService_StaffIsAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := &domain.User{Username: "staff", Email: "staff@example.com", Role: domain.RoleUser, IsStaff: true}
	require.NoError(t, f.store.CreateUser(ctx, u))

	_, err := f.users.List(ctx, policy.IdentityOf(u), store.UserFilter{})
	assert.NoError(t, err)
}
