package http

import (
	"context"
	"strings"

	"carebridge/internal/shared/contextkeys"
	"carebridge/internal/shared/refcode"

	"github.com/gofiber/fiber/v2"
)

// ReferenceCodeMiddleware validates the :code path parameter and threads it
// through the request context. Codes are normalized to upper case so watch
// keyboards that type lowercase still resolve.
func ReferenceCodeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := normalizeCode(c.Params("code"))
		if !refcode.IsValid(code) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "invalid_reference_code",
				"message": "Reference code must be 6 uppercase letters or digits",
			})
		}

		c.Locals("refCode", code)

		ctx := context.WithValue(c.UserContext(), contextkeys.RefCodeKey, code)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// refCode returns the validated reference code set by ReferenceCodeMiddleware.
func refCode(c *fiber.Ctx) string {
	if code, ok := c.Locals("refCode").(string); ok {
		return code
	}
	return strings.ToUpper(c.Params("code"))
}

// authGuard requires a caregiver bearer token scoped to the path code on
// mutating routes. It is a pass-through unless REQUIRE_AUTH is on.
func (h *HTTPHandler) authGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !h.RequireAuth || h.Tokens == nil {
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "missing_token",
				"message": "Authorization bearer token is required",
			})
		}

		claims, err := h.Tokens.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "invalid_token",
				"message": err.Error(),
			})
		}
		if claims.ReferenceCode != refCode(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "token_session_mismatch",
				"message": "Token is not valid for this session",
			})
		}

		return c.Next()
	}
}
