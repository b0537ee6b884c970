package authRoutes

import (
	"github.com/gofiber/fiber/v2"

	authController "studytrack/controllers/auth"
	authValidator "studytrack/validators/auth"
)

// SetupAuthRoutes mounts signup and login, plus the account endpoints behind the given auth handlers.
func SetupAuthRoutes(app *fiber.App, ctl *authController.Controller, auth ...fiber.Handler) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidator.Signup(), ctl.Signup)
	authGroup.Post("/login", authValidator.Login(), ctl.Login)

	me := authGroup.Group("/me", auth...)
	me.Get("", ctl.Me)
	me.Patch("", authValidator.Settings(), ctl.UpdateSettings)
	me.Delete("", ctl.DeleteAccount)
}
