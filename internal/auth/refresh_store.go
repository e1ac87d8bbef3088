package auth

import (
	"context"
	"errors"

	"github.com/spec-kit/member-auth/internal/domain"
	"github.com/spec-kit/member-auth/internal/repository"
)

// RefreshTokenDirectory is the slice of the member directory RefreshStore needs.
type RefreshTokenDirectory interface {
	FindByRefreshToken(ctx context.Context, token string) (*domain.Member, error)
	UpdateRefreshToken(ctx context.Context, loginName string, token *string) error
}

// RefreshStore holds the single active refresh token of each member.
type RefreshStore struct {
	directory RefreshTokenDirectory
}

// NewRefreshStore wraps the member directory.
func NewRefreshStore(directory RefreshTokenDirectory) *RefreshStore {
	return &RefreshStore{directory: directory}
}

// FindByToken returns the member whose stored token equals token exactly.
// A miss returns (nil, false, nil).
func (s *RefreshStore) FindByToken(ctx context.Context, token string) (*domain.Member, bool, error) {
	if token == "" {
		return nil, false, nil
	}
	member, err := s.directory.FindByRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !member.HasRefreshToken(token) {
		return nil, false, nil
	}
	return member, true, nil
}

// Store overwrites the member's refresh token. The last write wins.
func (s *RefreshStore) Store(ctx context.Context, loginName, token string) error {
	return s.directory.UpdateRefreshToken(ctx, loginName, &token)
}

// Clear removes the member's refresh token so it can no longer reissue.
func (s *RefreshStore) Clear(ctx context.Context, loginName string) error {
	return s.directory.UpdateRefreshToken(ctx, loginName, nil)
}
