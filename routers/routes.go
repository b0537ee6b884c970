package routers

import (
	"github.com/gofiber/fiber/v2"

	"studytrack/config"
	authController "studytrack/controllers/auth"
	planController "studytrack/controllers/plan"
	playlistController "studytrack/controllers/playlist"
	"studytrack/database"
	"studytrack/logger"
	"studytrack/middleware"
	"studytrack/repository"
	"studytrack/routers/authRoutes"
	"studytrack/routers/planRoutes"
	"studytrack/routers/playlistRoutes"
	"studytrack/services"
	"studytrack/utils"
)

// Deps are the long-lived collaborators built by main.
type Deps struct {
	Config  *config.Config
	DB      *database.DbInstance
	Users   *repository.UserRepository
	Plans   *services.PlanService
	Sources *services.SourceService
	Mailer  utils.Mailer
	Log     *logger.Logger
}

// SetupRoutes registers the request context, the health check and every route group.
func SetupRoutes(app *fiber.App, deps Deps) {
	app.Use(middleware.RequestContext(deps.Log, deps.Config.RequestTimeout))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := deps.DB.Ping(c.UserContext()); err != nil {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database unavailable", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "ok", nil)
	})

	auth := []fiber.Handler{
		middleware.JWTMiddleware(deps.Config.JWTKey),
		middleware.ActiveUserMiddleware(deps.Users),
	}

	authRoutes.SetupAuthRoutes(app, authController.New(deps.Users, deps.Mailer, authController.Settings{
		JWTSecret: deps.Config.JWTKey,
		JWTTTL:    deps.Config.JWTTTL,
		SaltRound: deps.Config.SaltRound,
	}, deps.Log), auth...)
	playlistRoutes.SetupPlaylistRoutes(app, playlistController.New(deps.Sources), auth...)
	planRoutes.SetupPlanRoutes(app, planController.New(deps.Plans, deps.Mailer, deps.Log), auth...)
}
