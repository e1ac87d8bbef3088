package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-auth/internal/api/dto"
	"github.com/spec-kit/member-auth/internal/auth"
	"github.com/spec-kit/member-auth/internal/service"
	apperrors "github.com/spec-kit/member-auth/pkg/util"
)

// AuthHandlerConfig names the headers and JSON keys of the login exchange.
type AuthHandlerConfig struct {
	AccessHeader  string
	RefreshHeader string
	LoginNameKey  string
	PasswordKey   string
}

// AuthHandler exposes login, logout and signup endpoints.
type AuthHandler struct {
	auth *service.AuthService
	cfg  AuthHandlerConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{auth: authService, cfg: cfg}
}

// Login handles POST on the login path. The body must be a flat JSON object
// of strings sent as exactly application/json.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if contentType := c.Get(fiber.HeaderContentType); contentType != fiber.MIMEApplicationJSON {
		return apperrors.NewUnsupportedMediaType(contentType)
	}

	var body map[string]string
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewMalformedRequest("invalid payload", nil)
	}
	loginName, okName := body[h.cfg.LoginNameKey]
	password, okPassword := body[h.cfg.PasswordKey]
	if !okName || !okPassword || loginName == "" || password == "" {
		return apperrors.NewMalformedRequest(h.cfg.LoginNameKey+" and "+h.cfg.PasswordKey+" required", nil)
	}

	member, tokens, err := h.auth.Login(c.UserContext(), loginName, password)
	if err != nil {
		return err
	}

	c.Set(h.cfg.AccessHeader, tokens.AccessToken)
	c.Set(h.cfg.RefreshHeader, tokens.RefreshToken)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"member": dto.NewMemberResponse(member),
		},
	})
}

// Logout handles POST /logout for an authenticated caller.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), principal.LoginName()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedRequest("invalid payload", nil)
	}

	member, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		LoginName:   req.LoginName,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Nickname:    req.Nickname,
		Age:         req.Age,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"member": dto.NewMemberResponse(member),
		},
	})
}
