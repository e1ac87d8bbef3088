package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/member-auth/internal/auth"
	"github.com/spec-kit/member-auth/internal/domain"
	"github.com/spec-kit/member-auth/internal/repository"
)

type brokenDirectory struct{}

func (brokenDirectory) FindByRefreshToken(context.Context, string) (*domain.Member, error) {
	return nil, errors.New("directory offline")
}

func (brokenDirectory) UpdateRefreshToken(context.Context, string, *string) error {
	return errors.New("directory offline")
}

func TestRefreshStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMemberRepository()
	seedMember(t, repo, "alice", "correct", domain.RoleUser)
	store := auth.NewRefreshStore(repo)

	require.NoError(t, store.Store(ctx, "alice", "token-1"))
	member, found, err := store.FindByToken(ctx, "token-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alice", member.LoginName)

	require.NoError(t, store.Store(ctx, "alice", "token-2"))
	_, found, err = store.FindByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, found)

	member, found, err = store.FindByToken(ctx, "token-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alice", member.LoginName)
}

func TestRefreshStore_Clear(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMemberRepository()
	seedMember(t, repo, "alice", "correct", domain.RoleUser)
	store := auth.NewRefreshStore(repo)

	require.NoError(t, store.Store(ctx, "alice", "token-1"))
	require.NoError(t, store.Clear(ctx, "alice"))

	member, found, err := store.FindByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, member)
}

func TestRefreshStore_Misses(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMemberRepository()
	seedMember(t, repo, "alice", "correct", domain.RoleUser)
	store := auth.NewRefreshStore(repo)
	require.NoError(t, store.Store(ctx, "alice", "token-1"))

	for _, token := range []string{"", "token-", "token-1 ", "TOKEN-1"} {
		_, found, err := store.FindByToken(ctx, token)
		require.NoError(t, err)
		assert.False(t, found, "token %q", token)
	}

	assert.ErrorIs(t, store.Store(ctx, "ghost", "token-9"), repository.ErrMemberNotFound)
}

func TestRefreshStore_DirectoryError(t *testing.T) {
	store := auth.NewRefreshStore(brokenDirectory{})

	_, found, err := store.FindByToken(context.Background(), "token-1")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Error(t, store.Store(context.Background(), "alice", "token-1"))
}
