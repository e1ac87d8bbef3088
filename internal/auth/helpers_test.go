package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/member-auth/internal/auth"
	"github.com/spec-kit/member-auth/internal/domain"
	"github.com/spec-kit/member-auth/internal/repository"
)

const (
	testSecret    = "test-secret"
	accessHeader  = "Authorization"
	refreshHeader = "Authorization-Refresh"
	loginPath     = "/login"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTokenManager(clock *fakeClock) *auth.TokenManager {
	return auth.NewTokenManager(testSecret, 30*time.Minute, 24*time.Hour, auth.WithClock(clock.Now))
}

func seedMember(t *testing.T, repo repository.MemberRepository, loginName, password string, role domain.Role) *domain.Member {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	member := &domain.Member{
		LoginName:    loginName,
		PasswordHash: hash,
		DisplayName:  strings.ToUpper(loginName),
		Nickname:     loginName + "-nick",
		Age:          30,
		Role:         role,
	}
	require.NoError(t, repo.Create(context.Background(), member))
	return member
}

// tamper flips one character in the middle of the signature segment.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	i := len(sig) / 2
	if sig[i] == 'A' {
		sig[i] = 'B'
	} else {
		sig[i] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}
