package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/member-auth/internal/domain"
	"github.com/spec-kit/member-auth/internal/repository"
)

func newAlice() *domain.Member {
	return &domain.Member{
		LoginName:    "alice",
		PasswordHash: "hash",
		DisplayName:  "Alice",
		Nickname:     "ali",
		Age:          30,
		Role:         domain.RoleUser,
	}
}

func TestMemoryMemberRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMemberRepository()

	alice := newAlice()
	require.NoError(t, repo.Create(ctx, alice))
	assert.NotEmpty(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	found, err := repo.FindByLoginName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)
	assert.Equal(t, "Alice", found.DisplayName)

	assert.ErrorIs(t, repo.Create(ctx, newAlice()), repository.ErrLoginNameTaken)

	_, err = repo.FindByLoginName(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)
}

func TestMemoryMemberRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMemberRepository()
	require.NoError(t, repo.Create(ctx, newAlice()))

	found, err := repo.FindByLoginName(ctx, "alice")
	require.NoError(t, err)
	found.DisplayName = "Mallory"

	again, err := repo.FindByLoginName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.DisplayName)
}

func TestMemoryMemberRepository_RefreshTokenIndex(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMemberRepository()
	require.NoError(t, repo.Create(ctx, newAlice()))

	first := "refresh-1"
	require.NoError(t, repo.UpdateRefreshToken(ctx, "alice", &first))
	found, err := repo.FindByRefreshToken(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.LoginName)
	assert.True(t, found.HasRefreshToken(first))

	second := "refresh-2"
	require.NoError(t, repo.UpdateRefreshToken(ctx, "alice", &second))
	_, err = repo.FindByRefreshToken(ctx, first)
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)

	require.NoError(t, repo.UpdateRefreshToken(ctx, "alice", nil))
	_, err = repo.FindByRefreshToken(ctx, second)
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)

	_, err = repo.FindByRefreshToken(ctx, "")
	assert.ErrorIs(t, err, repository.ErrMemberNotFound)

	assert.ErrorIs(t, repo.UpdateRefreshToken(ctx, "ghost", &first), repository.ErrMemberNotFound)
}

func TestMemoryMemberRepository_Save(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMemberRepository()
	require.NoError(t, repo.Create(ctx, newAlice()))

	member, err := repo.FindByLoginName(ctx, "alice")
	require.NoError(t, err)
	token := "refresh-1"
	member.Nickname = "al"
	member.RefreshToken = &token
	require.NoError(t, repo.Save(ctx, member))

	found, err := repo.FindByRefreshToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "al", found.Nickname)

	ghost := newAlice()
	ghost.LoginName = "ghost"
	assert.ErrorIs(t, repo.Save(ctx, ghost), repository.ErrMemberNotFound)
}
