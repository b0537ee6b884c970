package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"studytrack/models"
)

// UserFinder loads an account by id.
type UserFinder interface {
	FindByID(ctx context.Context, userID uint) (*models.User, error)
}

// ActiveUserMiddleware rejects tokens whose account no longer exists. Runs after JWTMiddleware.
func ActiveUserMiddleware(users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		user, err := users.FindByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return JsonResponse(c, fiber.StatusUnauthorized, false, "Account not found or disabled", nil)
			}
			Logger(c).Error("user lookup failed", "userId", userID, "error", err)
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking account!", nil)
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// CurrentUser returns the account stored by ActiveUserMiddleware.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	u, ok := c.Locals("user").(*models.User)
	return u, ok
}
