package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-auth/internal/api/dto"
	"github.com/spec-kit/member-auth/internal/auth"
	"github.com/spec-kit/member-auth/internal/service"
	apperrors "github.com/spec-kit/member-auth/pkg/util"
)

// MembersHandler serves member lookups behind the auth filter.
type MembersHandler struct {
	auth *service.AuthService
}

// NewMembersHandler constructs handler.
func NewMembersHandler(authService *service.AuthService) *MembersHandler {
	return &MembersHandler{auth: authService}
}

// Me handles GET /members/me.
func (h *MembersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewMemberResponse(principal.Member)})
}

// Get handles GET /admin/members/:loginName.
func (h *MembersHandler) Get(c *fiber.Ctx) error {
	member, err := h.auth.Member(c.UserContext(), c.Params("loginName"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMemberResponse(member)})
}
