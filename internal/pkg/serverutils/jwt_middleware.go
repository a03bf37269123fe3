package serverutils

import (
	"github.com/gofiber/fiber/v2"

	"support-chat-be/pkg/identity"
)

const IdentityLocalsKey = "identity"

// NewJwtMiddleware guards REST routes. The verified identity is stored in
// Locals for controllers to pick up.
func NewJwtMiddleware(verifier identity.Verifier) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
		}

		id, err := verifier.Verify(authHeader[7:])
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
		}

		ctx.Locals(IdentityLocalsKey, id)
		return ctx.Next()
	}
}

// IdentityFromCtx retrieves the identity the middleware stored.
func IdentityFromCtx(ctx *fiber.Ctx) (identity.Identity, bool) {
	id, ok := ctx.Locals(IdentityLocalsKey).(identity.Identity)
	return id, ok
}
