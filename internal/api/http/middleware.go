package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/member-auth/internal/observability"
	apperrors "github.com/spec-kit/member-auth/pkg/util"
)

const (
	headerRequestID = "X-Request-ID"
	localRequestID  = "request_id"
)

// RegisterMiddlewares attaches the global middlewares. They must be
// registered before the auth filter so its rejections are rendered and
// logged like any handler error.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestIDMiddleware())
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

// requestIDMiddleware echoes the caller's request ID or mints one.
func requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localRequestID, id)
		c.Set(headerRequestID, id)
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.String("request_id", requestID(c)),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			err = renderError(c, logger, metrics, apperrors.ToDomainError(err))
		}()
		return c.Next()
	}
}

// renderError writes {"error":{code,message[,details]}}.
func renderError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, domainErr *apperrors.DomainError) error {
	metrics.RecordError(c.Path(), c.Method(), domainErr.Code)

	fields := []zap.Field{
		zap.String("request_id", requestID(c)),
		zap.String("path", c.Path()),
		zap.String("code", domainErr.Code),
	}
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed", append(fields, zap.Error(domainErr))...)
	} else {
		logger.Debug("request rejected", fields...)
	}

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}
