package users

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/postline/services/refreshtoken"
	"github.com/tech-arch1tect/postline/testutils"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutils.SetupTestDB(t, &User{}, &refreshtoken.RefreshToken{}, &refreshtoken.ConsumedRefreshToken{})
	return NewService(db, nil)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestService_Create(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	user, err := service.Create(ctx, NewUser{
		Username:       "alice",
		Email:          "Alice@Example.com",
		PasswordDigest: "digest",
	})
	require.NoError(t, err)

	assert.Len(t, user.ID, 36)
	assert.Equal(t, "alice@example.com", user.Email)

	t.Run("duplicate email differing in case", func(t *testing.T) {
		_, err := service.Create(ctx, NewUser{Username: "other", Email: "ALICE@example.com", PasswordDigest: "x"})
		assert.ErrorIs(t, err, ErrDuplicateEmail)

		stored, err := service.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "digest", stored.PasswordDigest)
		assert.Equal(t, "alice", stored.Username)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := service.Create(ctx, NewUser{Username: " alice ", Email: "second@example.com", PasswordDigest: "x"})
		assert.ErrorIs(t, err, ErrDuplicateUsername)

		_, err = service.FindByEmail(ctx, "second@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)

		found, err := service.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("bio limit", func(t *testing.T) {
		_, err := service.Create(ctx, NewUser{Username: "b", Email: "b@example.com", Bio: strings.Repeat("x", 501)})
		assert.ErrorIs(t, err, ErrBioTooLong)
	})
}

func TestService_Find(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	user, err := service.Create(ctx, NewUser{Username: "bob", Email: "bob@example.com", PasswordDigest: "d"})
	require.NoError(t, err)

	found, err := service.FindByEmail(ctx, " BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = service.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = service.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	exists, err := service.Exists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestService_Delete(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	user, err := service.Create(ctx, NewUser{Username: "carol", Email: "carol@example.com", PasswordDigest: "d"})
	require.NoError(t, err)

	tokens := refreshtoken.NewService(service.db, testutils.GetTestConfig(), nil)
	token, err := tokens.Generate()
	require.NoError(t, err)
	require.NoError(t, tokens.Add(ctx, user.ID, token, refreshtoken.SessionInfo{}))

	require.NoError(t, service.Delete(ctx, user.ID))

	_, err = service.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = tokens.FindOwner(ctx, token)
	assert.ErrorIs(t, err, refreshtoken.ErrTokenNotActive)

	assert.ErrorIs(t, service.Delete(ctx, user.ID), ErrUserNotFound)
}
