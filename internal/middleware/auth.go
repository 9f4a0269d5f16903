package middleware

import (
	"context"
	"errors"
	"strings"

	"quiz-admin/internal/auth"
	"quiz-admin/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "admin_identity"

// TokenVerifier resolves a bearer token to the administrator it was issued for.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Identity, error)
}

// RequireAdmin rejects the request with 401 unless it carries a valid bearer token.
func RequireAdmin(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Access token required")
		}

		identity, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Token expired")
			}
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token")
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// CurrentAdmin returns the identity stored by RequireAdmin.
func CurrentAdmin(c *fiber.Ctx) (*auth.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*auth.Identity)
	return identity, ok && identity != nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
