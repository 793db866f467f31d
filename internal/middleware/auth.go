package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/VariaSlu/js-project-api/internal/models"
	"github.com/VariaSlu/js-project-api/internal/services"
)

const subjectKey = "auth_subject"

var (
	errMissingToken = errors.New("missing token")
	errBadFormat    = errors.New("authorization header format must be 'Bearer <token>'")
)

// subjectFromHeader is the pure verification step: it extracts the bearer
// token from an Authorization header value and verifies it, returning either
// the authenticated subject or a typed rejection. No store access happens here.
func subjectFromHeader(authService *services.AuthService, header string) (models.UserID, error) {
	if header == "" {
		return "", errMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errBadFormat
	}

	return authService.ValidateToken(parts[1])
}

// AuthRequired is a Fiber middleware that rejects requests without a valid
// bearer token and attaches the verified subject to the request context.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject, err := subjectFromHeader(authService, c.Get("Authorization"))
		if err != nil {
			if errors.Is(err, errMissingToken) || errors.Is(err, errBadFormat) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error":   "Missing token",
					"details": err.Error(),
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Invalid or expired token",
				"details": err.Error(),
			})
		}

		c.Locals(subjectKey, subject)
		return c.Next()
	}
}

// Subject returns the authenticated user id attached by AuthRequired. The
// boolean is false on routes that never passed through the middleware.
func Subject(c *fiber.Ctx) (models.UserID, bool) {
	subject, ok := c.Locals(subjectKey).(models.UserID)
	return subject, ok
}
