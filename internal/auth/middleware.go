package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-auth/internal/domain"
)

const principalKey = "auth_principal"

type principalCtxKey struct{}

// Principal is the request-scoped authenticated caller. It is never persisted.
type Principal struct {
	Member *domain.Member
	Role   domain.Role
}

// LoginName returns the caller's login name.
func (p *Principal) LoginName() string {
	if p == nil || p.Member == nil {
		return ""
	}
	return p.Member.LoginName
}

func newPrincipal(member *domain.Member) *Principal {
	return &Principal{Member: member, Role: member.Role}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// WithPrincipal stores the principal on a standard context.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, principal)
}

// PrincipalFrom retrieves the principal from a standard context.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return principal, ok && principal != nil
}

func attachPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
	c.SetUserContext(WithPrincipal(c.UserContext(), principal))
}
