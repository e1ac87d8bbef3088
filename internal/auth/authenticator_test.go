package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/member-auth/internal/auth"
	"github.com/spec-kit/member-auth/internal/domain"
	"github.com/spec-kit/member-auth/internal/repository"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(plain, hash string) bool {
	args := m.Called(plain, hash)
	return args.Bool(0)
}

type failingFinder struct {
	err error
}

func (f failingFinder) FindByLoginName(context.Context, string) (*domain.Member, error) {
	return nil, f.err
}

func TestCredentialAuthenticator_Success(t *testing.T) {
	repo := repository.NewMemoryMemberRepository()
	seedMember(t, repo, "alice", "correct", domain.RoleUser)

	authenticator := auth.NewCredentialAuthenticator(repo, auth.BcryptVerifier{}, bcrypt.MinCost, nil)
	member, err := authenticator.Authenticate(context.Background(), "alice", "correct")
	require.NoError(t, err)
	assert.Equal(t, "alice", member.LoginName)
	assert.Equal(t, domain.RoleUser, member.Role)
}

func TestCredentialAuthenticator_BadPassword(t *testing.T) {
	repo := repository.NewMemoryMemberRepository()
	alice := seedMember(t, repo, "alice", "correct", domain.RoleUser)

	verifier := &mockVerifier{}
	verifier.On("Verify", "wrong", alice.PasswordHash).Return(false).Once()

	authenticator := auth.NewCredentialAuthenticator(repo, verifier, bcrypt.MinCost, nil)
	member, err := authenticator.Authenticate(context.Background(), "alice", "wrong")
	assert.Nil(t, member)
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
	assert.Equal(t, "bad_credentials", auth.FailureReason(err))
	verifier.AssertExpectations(t)
}

func TestCredentialAuthenticator_UnknownUserStillComparesOnce(t *testing.T) {
	repo := repository.NewMemoryMemberRepository()

	verifier := &mockVerifier{}
	verifier.On("Verify", "whatever", mock.AnythingOfType("string")).Return(false).Once()

	authenticator := auth.NewCredentialAuthenticator(repo, verifier, bcrypt.MinCost, nil)
	member, err := authenticator.Authenticate(context.Background(), "ghost", "whatever")
	assert.Nil(t, member)
	assert.ErrorIs(t, err, auth.ErrUnknownUser)
	assert.ErrorIs(t, err, auth.ErrAuthenticationFailed)
	assert.False(t, errors.Is(err, auth.ErrBadCredentials))
	assert.Equal(t, "unknown_user", auth.FailureReason(err))
	verifier.AssertNumberOfCalls(t, "Verify", 1)
}

func TestCredentialAuthenticator_DirectoryError(t *testing.T) {
	boom := errors.New("connection reset")
	verifier := &mockVerifier{}

	authenticator := auth.NewCredentialAuthenticator(failingFinder{err: boom}, verifier, bcrypt.MinCost, nil)
	_, err := authenticator.Authenticate(context.Background(), "alice", "correct")
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, auth.ErrAuthenticationFailed))
	assert.Equal(t, "error", auth.FailureReason(err))
	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "correct", hash)
	assert.NoError(t, auth.ComparePassword(hash, "correct"))
	assert.Error(t, auth.ComparePassword(hash, "wrong"))

	verifier := auth.BcryptVerifier{}
	assert.True(t, verifier.Verify("correct", hash))
	assert.False(t, verifier.Verify("correct", "not-a-hash"))

	_, err = auth.HashPassword("", bcrypt.MinCost)
	assert.Error(t, err)
}
