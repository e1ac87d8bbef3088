package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/member-auth/internal/domain"
	"github.com/spec-kit/member-auth/internal/repository"
)

// ErrAuthenticationFailed is the umbrella for every credential failure.
// ErrUnknownUser and ErrBadCredentials both wrap it; only the umbrella is
// ever shown to clients.
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnknownUser          = fmt.Errorf("%w: unknown user", ErrAuthenticationFailed)
	ErrBadCredentials       = fmt.Errorf("%w: bad credentials", ErrAuthenticationFailed)
)

// MemberFinder looks members up by login name.
type MemberFinder interface {
	FindByLoginName(ctx context.Context, loginName string) (*domain.Member, error)
}

// CredentialAuthenticator validates login name / password pairs.
type CredentialAuthenticator struct {
	members     MemberFinder
	verifier    PasswordVerifier
	placeholder string
	logger      *zap.Logger
}

// NewCredentialAuthenticator constructs an authenticator. placeholderCost
// should match the cost used for stored hashes so that unknown users take as
// long to reject as wrong passwords.
func NewCredentialAuthenticator(members MemberFinder, verifier PasswordVerifier, placeholderCost int, logger *zap.Logger) *CredentialAuthenticator {
	if verifier == nil {
		verifier = BcryptVerifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialAuthenticator{
		members:     members,
		verifier:    verifier,
		placeholder: placeholderHash(placeholderCost),
		logger:      logger,
	}
}

// Authenticate returns the member when the password matches. It never
// mutates state.
func (a *CredentialAuthenticator) Authenticate(ctx context.Context, loginName, password string) (*domain.Member, error) {
	member, err := a.members.FindByLoginName(ctx, loginName)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			a.verifier.Verify(password, a.placeholder)
			a.logger.Debug("login rejected", zap.String("login_name", loginName), zap.String("reason", "unknown_user"))
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("find member: %w", err)
	}

	if !a.verifier.Verify(password, member.PasswordHash) {
		a.logger.Debug("login rejected", zap.String("login_name", loginName), zap.String("reason", "bad_credentials"))
		return nil, ErrBadCredentials
	}
	return member, nil
}

// FailureReason gives the internal label for an authentication error.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrBadCredentials):
		return "bad_credentials"
	default:
		return "error"
	}
}
