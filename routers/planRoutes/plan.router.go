package planRoutes

import (
	"github.com/gofiber/fiber/v2"

	planController "studytrack/controllers/plan"
	planValidator "studytrack/validators/plan"
)

// SetupPlanRoutes mounts the study plan endpoints behind the given auth handlers.
func SetupPlanRoutes(app *fiber.App, ctl *planController.Controller, auth ...fiber.Handler) {
	plan := app.Group("/plan", auth...)

	plan.Get("/list", ctl.List)
	plan.Post("/create", planValidator.CreatePlan(), ctl.Create)
	plan.Get("/:id", ctl.Get)
	plan.Patch("/:id", planValidator.UpdatePlan(), ctl.Update)
	plan.Post("/:id/complete-day", planValidator.CompleteDay(), ctl.CompleteDay)
	plan.Post("/:id/miss-day", planValidator.MissDay(), ctl.MissDay)
	plan.Post("/:id/recalculate", ctl.Recalculate)
	plan.Delete("/:id", ctl.Delete)
}
