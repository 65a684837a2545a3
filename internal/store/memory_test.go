package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/jjudge-oj/accounts/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepositoryUniqueness(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, types.User{Username: "ana", Email: "ana@x.com"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, types.User{Username: "ana", Email: "other@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = repo.Create(ctx, types.User{Username: "other", Email: "ana@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	bob, err := repo.Create(ctx, types.User{Username: "bob", Email: "bob@x.com"})
	require.NoError(t, err)

	_, err = repo.Update(ctx, bob.ID, types.UserPatch{Email: strPtr("ana@x.com")})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	unchanged, err := repo.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", unchanged.Email)

	// Re-setting a user's own username is not a conflict.
	_, err = repo.Update(ctx, bob.ID, types.UserPatch{Username: strPtr("bob")})
	assert.NoError(t, err)
}

func TestMemoryUserRepositoryLookup(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	ana, err := repo.Create(ctx, types.User{Username: "ana", Email: "ana@x.com"})
	require.NoError(t, err)

	byName, err := repo.GetByUsernameOrEmail(ctx, "ana", "")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, byName.ID)

	byEmail, err := repo.GetByUsernameOrEmail(ctx, "", "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, byEmail.ID)

	_, err = repo.GetByUsernameOrEmail(ctx, "", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserRepositoryListInsertionOrder(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		_, err := repo.Create(ctx, types.User{
			Username: fmt.Sprintf("user%d", i),
			Email:    fmt.Sprintf("user%d@x.com", i),
		})
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, 5, 5)
	require.NoError(t, err)
	require.Len(t, page, 5)
	for i, user := range page {
		assert.Equal(t, fmt.Sprintf("user%d", i+6), user.Username)
	}

	tail, err := repo.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Len(t, tail, 2)

	empty, err := repo.List(ctx, 20, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryUserRepositoryDelete(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	ana, err := repo.Create(ctx, types.User{Username: "ana", Email: "ana@x.com"})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, deleted.ID)

	_, err = repo.Delete(ctx, ana.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, users)
}
