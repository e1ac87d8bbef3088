package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/member-auth/internal/auth"
	"github.com/spec-kit/member-auth/internal/config"
	"github.com/spec-kit/member-auth/internal/domain"
	"github.com/spec-kit/member-auth/internal/events"
	"github.com/spec-kit/member-auth/internal/repository"
	apperrors "github.com/spec-kit/member-auth/pkg/util"
)

const maxNameLength = 30

// TokenPair is what a successful login hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries self-registration fields.
type RegisterInput struct {
	LoginName   string
	Password    string
	DisplayName string
	Nickname    string
	Age         int
}

// AuthService coordinates registration, login and logout flows.
type AuthService struct {
	members       repository.MemberRepository
	attempts      repository.LoginAttemptRepository
	dispatcher    events.Dispatcher
	tokenMgr      *auth.TokenManager
	authenticator *auth.CredentialAuthenticator
	refresh       *auth.RefreshStore
	logger        *zap.Logger
	bcryptCost    int
	maxFailures   int
	lockout       time.Duration
}

// AuthDependencies encapsulates collaborators of the auth service. Attempts,
// Dispatcher, Verifier and Logger are optional.
type AuthDependencies struct {
	Members      repository.MemberRepository
	Attempts     repository.LoginAttemptRepository
	Dispatcher   events.Dispatcher
	Verifier     auth.PasswordVerifier
	Logger       *zap.Logger
	TokenOptions []auth.TokenOption
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		members:       deps.Members,
		attempts:      deps.Attempts,
		dispatcher:    deps.Dispatcher,
		tokenMgr:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL(), deps.TokenOptions...),
		authenticator: auth.NewCredentialAuthenticator(deps.Members, deps.Verifier, cfg.Auth.BcryptCost, logger),
		refresh:       auth.NewRefreshStore(deps.Members),
		logger:        logger,
		bcryptCost:    cfg.Auth.BcryptCost,
		maxFailures:   cfg.Auth.MaxFailedLogins,
		lockout:       cfg.Auth.LockoutWindow(),
	}
}

// Login authenticates the pair, issues a token pair and stores the refresh
// token as the member's only valid one.
func (s *AuthService) Login(ctx context.Context, loginName, password string) (*domain.Member, TokenPair, error) {
	if s.throttled(ctx, loginName) {
		s.publish(ctx, events.NewEvent(events.EventLoginThrottled, loginName, nil))
		return nil, TokenPair{}, apperrors.NewTooManyAttempts("too many failed login attempts, try again later")
	}

	member, err := s.authenticator.Authenticate(ctx, loginName, password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			s.recordFailure(ctx, loginName)
			reason := auth.FailureReason(err)
			s.logger.Info("login failed", zap.String("login_name", loginName), zap.String("reason", reason))
			s.publish(ctx, events.NewEvent(events.EventLoginFailed, loginName, events.LoginFailedPayload{Reason: reason}))
			return nil, TokenPair{}, apperrors.NewAuthenticationFailed(err)
		}
		return nil, TokenPair{}, apperrors.NewInternalError(err)
	}

	accessToken, err := s.tokenMgr.CreateAccessToken(member.LoginName)
	if err != nil {
		return nil, TokenPair{}, apperrors.NewInternalError(err)
	}
	refreshToken, err := s.tokenMgr.CreateRefreshToken()
	if err != nil {
		return nil, TokenPair{}, apperrors.NewInternalError(err)
	}
	if err := s.refresh.Store(ctx, member.LoginName, refreshToken); err != nil {
		return nil, TokenPair{}, apperrors.NewInternalError(fmt.Errorf("store refresh token: %w", err))
	}
	member.RefreshToken = &refreshToken

	s.resetFailures(ctx, loginName)
	s.logger.Info("login succeeded", zap.String("login_name", member.LoginName), zap.String("role", member.Role.String()))
	s.publish(ctx, events.NewEvent(events.EventLoginSucceeded, member.LoginName, nil))

	return member, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout clears the member's refresh token; outstanding refresh tokens stop
// reissuing immediately.
func (s *AuthService) Logout(ctx context.Context, loginName string) error {
	if err := s.refresh.Clear(ctx, loginName); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return apperrors.NewNotFound("member", map[string]any{"login_name": loginName})
		}
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("member logged out", zap.String("login_name", loginName))
	s.publish(ctx, events.NewEvent(events.EventMemberLoggedOut, loginName, nil))
	return nil
}

// Register creates a USER member. ADMIN members are provisioned out of band.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Member, error) {
	if details := validateRegistration(in); len(details) > 0 {
		return nil, apperrors.NewMalformedRequest("invalid registration", details)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	member := &domain.Member{
		LoginName:    in.LoginName,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		Nickname:     in.Nickname,
		Age:          in.Age,
		Role:         domain.RoleUser,
	}
	if err := s.members.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrLoginNameTaken) {
			return nil, apperrors.NewConflict("login name already registered", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.NewEvent(events.EventMemberRegistered, member.LoginName,
		events.MemberRegisteredPayload{Role: member.Role.String()}))
	return member, nil
}

// Member loads a member by login name.
func (s *AuthService) Member(ctx context.Context, loginName string) (*domain.Member, error) {
	member, err := s.members.FindByLoginName(ctx, loginName)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, apperrors.NewNotFound("member", map[string]any{"login_name": loginName})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return member, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RefreshStore exposes the refresh store for middleware usage.
func (s *AuthService) RefreshStore() *auth.RefreshStore {
	return s.refresh
}

func (s *AuthService) throttled(ctx context.Context, loginName string) bool {
	if s.attempts == nil || s.maxFailures <= 0 {
		return false
	}
	n, err := s.attempts.Failures(ctx, loginName)
	if err != nil {
		s.logger.Warn("login attempt lookup failed", zap.Error(err))
		return false
	}
	return n >= int64(s.maxFailures)
}

func (s *AuthService) recordFailure(ctx context.Context, loginName string) {
	if s.attempts == nil || s.maxFailures <= 0 {
		return
	}
	if _, err := s.attempts.RecordFailure(ctx, loginName, s.lockout); err != nil {
		s.logger.Warn("record login failure", zap.Error(err))
	}
}

func (s *AuthService) resetFailures(ctx context.Context, loginName string) {
	if s.attempts == nil || s.maxFailures <= 0 {
		return
	}
	if err := s.attempts.Reset(ctx, loginName); err != nil {
		s.logger.Warn("reset login failures", zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func validateRegistration(in RegisterInput) map[string]any {
	details := map[string]any{}
	checkName := func(field, value string) {
		switch n := utf8.RuneCountInString(value); {
		case n == 0:
			details[field] = "required"
		case n > maxNameLength:
			details[field] = fmt.Sprintf("at most %d characters", maxNameLength)
		}
	}
	checkName("loginName", in.LoginName)
	checkName("displayName", in.DisplayName)
	checkName("nickname", in.Nickname)
	if in.Password == "" {
		details["password"] = "required"
	}
	if in.Age < 0 {
		details["age"] = "must not be negative"
	}
	return details
}
