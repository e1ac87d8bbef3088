package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/member-auth/internal/domain"
)

// Token verification failures. Callers that only care about validity can
// treat all three alike.
var (
	ErrTokenMalformed   = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
)

const bearerPrefix = "Bearer "

// TokenManager issues and verifies access and refresh tokens. It holds no
// mutable state and is safe for concurrent use.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	method     jwt.SigningMethod
	now        func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration, opts ...TokenOption) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 14 * 24 * time.Hour
	}
	tm := &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		method:     jwt.SigningMethodHS512,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes JWT payload. Refresh tokens leave LoginName empty.
type Claims struct {
	LoginName string `json:"loginName,omitempty"`
	jwt.RegisteredClaims
}

// TokenClaims is the verified view of a token.
type TokenClaims struct {
	ID        string
	Subject   domain.TokenSubject
	LoginName string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// CreateAccessToken signs a short-lived token carrying the login name.
func (tm *TokenManager) CreateAccessToken(loginName string) (string, error) {
	if loginName == "" {
		return "", errors.New("login name required for access token")
	}
	return tm.sign(domain.TokenSubjectAccess, loginName, tm.accessTTL)
}

// CreateRefreshToken signs a long-lived token with no identity claim.
func (tm *TokenManager) CreateRefreshToken() (string, error) {
	return tm.sign(domain.TokenSubjectRefresh, "", tm.refreshTTL)
}

func (tm *TokenManager) sign(subject domain.TokenSubject, loginName string, ttl time.Duration) (string, error) {
	issuedAt := tm.now()
	claims := &Claims{
		LoginName: loginName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   string(subject),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(tm.method, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", subject, err)
	}
	return tokenString, nil
}

// Verify checks signature, structure and expiry. It has no side effects.
func (tm *TokenManager) Verify(tokenStr string) (*TokenClaims, error) {
	if tokenStr == "" {
		return nil, ErrTokenMalformed
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{tm.method.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	subject, err := domain.ParseTokenSubject(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if subject == domain.TokenSubjectAccess && claims.LoginName == "" {
		return nil, fmt.Errorf("%w: access token without login name", ErrTokenMalformed)
	}

	out := &TokenClaims{
		ID:        claims.ID,
		Subject:   subject,
		LoginName: claims.LoginName,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// ExtractLoginName returns the login name of a valid access token. Refresh
// tokens and anything unverifiable yield false.
func (tm *TokenManager) ExtractLoginName(tokenStr string) (string, bool) {
	claims, err := tm.Verify(tokenStr)
	if err != nil || claims.Subject != domain.TokenSubjectAccess {
		return "", false
	}
	return claims.LoginName, true
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}

// StripBearer accepts both "Bearer <token>" and a bare token.
func StripBearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		header = header[len(bearerPrefix):]
	}
	return strings.TrimSpace(header)
}
