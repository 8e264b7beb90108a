package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
)

func TestAuthService_Signup_SendsCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Signup(ctx, SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "alice@example.com", resp.Email)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "alice@example.com", f.mailer.sent[0].To)
	code := f.mailer.lastCode(t)
	assert.Len(t, code, 12)

	u, err := f.store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEmpty(t, u.ConfirmationCodeHash)
	assert.NotContains(t, u.ConfirmationCodeHash, code, "only the hash is stored")
}

func TestAuthService_Signup_ReservedUsername(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"me", "Me", "ME"} {
		_, err := f.auth.Signup(context.Background(), SignupRequest{Username: name, Email: "x@example.com"})
		assert.Contains(t, fieldErrors(t, err), "username", name)
	}
	assert.Empty(t, f.mailer.sent)
}

func TestAuthService_Signup_ResendsForSameUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := SignupRequest{Username: "alice", Email: "alice@example.com"}

	_, err := f.auth.Signup(ctx, req)
	require.NoError(t, err)
	first := f.mailer.lastCode(t)

	_, err = f.auth.Signup(ctx, req)
	require.NoError(t, err)
	second := f.mailer.lastCode(t)
	assert.Len(t, f.mailer.sent, 2)

	_, err = f.auth.IssueToken(ctx, TokenRequest{Username: "alice", ConfirmationCode: first})
	assert.ErrorIs(t, err, domainerrors.ErrValidation, "the previous code is replaced")

	_, err = f.auth.IssueToken(ctx, TokenRequest{Username: "alice", ConfirmationCode: second})
	assert.NoError(t, err)
}

func TestAuthService_Signup_Conflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Signup(ctx, SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  SignupRequest
	}{
		{"username taken", SignupRequest{Username: "alice", Email: "other@example.com"}},
		{"email taken", SignupRequest{Username: "bob", Email: "alice@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Signup(ctx, tt.req)
			require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

			var de *domainerrors.Error
			require.True(t, errors.As(err, &de))
			assert.Equal(t, http.StatusBadRequest, de.HTTPStatus())
			assert.Equal(t, msgSignupTaken, de.Message)
		})
	}
}

func TestAuthService_Signup_MailFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")

	_, err := f.auth.Signup(context.Background(), SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")

	var de *domainerrors.Error
	assert.False(t, errors.As(err, &de), "mail failures are internal errors")
}

func TestAuthService_IssueToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Signup(ctx, SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	code := f.mailer.lastCode(t)

	_, err = f.auth.IssueToken(ctx, TokenRequest{Username: "nobody", ConfirmationCode: code})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = f.auth.IssueToken(ctx, TokenRequest{Username: "alice", ConfirmationCode: "WRONGCODE234"})
	assert.Equal(t, msgCodeInvalid, fieldErrors(t, err)["confirmation_code"])

	resp, err := f.auth.IssueToken(ctx, TokenRequest{Username: "alice", ConfirmationCode: code})
	require.NoError(t, err)

	claims, err := f.tokens.VerifyAccessToken(resp.Token)
	require.NoError(t, err)
	u, err := f.store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Empty(t, u.ConfirmationCodeHash)

	_, err = f.auth.IssueToken(ctx, TokenRequest{Username: "alice", ConfirmationCode: code})
	assert.Equal(t, msgCodeInvalid, fieldErrors(t, err)["confirmation_code"], "codes are single use")
}

func TestAuthService_IssueToken_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.IssueToken(context.Background(), TokenRequest{})
	details := fieldErrors(t, err)
	assert.Contains(t, details, "username")
	assert.Contains(t, details, "confirmation_code")
}

func TestAuthService_Authenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mod := f.identity(t, "mod", domain.RoleModerator)

	u, err := f.store.GetUser(ctx, mod.UserID)
	require.NoError(t, err)
	token, err := f.tokens.IssueAccessToken(u)
	require.NoError(t, err)

	id, err := f.auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, mod, id)

	_, err = f.auth.Authenticate(ctx, "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	require.NoError(t, f.store.DeleteUser(ctx, u.ID))
	_, err = f.auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized, "tokens of deleted users stop working")
}

func TestAuthService_CreateSuperuser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, code, err := f.auth.CreateSuperuser(ctx, "root", "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsStaff)
	assert.Empty(t, f.mailer.sent, "the code is returned, not mailed")

	_, err = f.auth.IssueToken(ctx, TokenRequest{Username: "root", ConfirmationCode: code})
	assert.NoError(t, err)

	_, _, err = f.auth.CreateSuperuser(ctx, "root", "other@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}
