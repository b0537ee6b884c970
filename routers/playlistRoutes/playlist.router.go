package playlistRoutes

import (
	"github.com/gofiber/fiber/v2"

	playlistController "studytrack/controllers/playlist"
	playlistValidator "studytrack/validators/playlist"
)

// SetupPlaylistRoutes mounts the playlist source endpoints behind the given auth handlers.
func SetupPlaylistRoutes(app *fiber.App, ctl *playlistController.Controller, auth ...fiber.Handler) {
	playlist := app.Group("/playlist", auth...)

	playlist.Get("/list", ctl.List)
	playlist.Post("/manual", playlistValidator.CreateManual(), ctl.CreateManual)
	playlist.Post("/fetch", playlistValidator.CreateFetched(), ctl.CreateFetched)
	playlist.Get("/:id", ctl.Get)
	playlist.Post("/:id/sync", ctl.Sync)
	playlist.Patch("/:id/progress", playlistValidator.SetProgress(), ctl.SetProgress)
	playlist.Patch("/:id/item/:item_id", playlistValidator.SetItem(), ctl.SetItem)
	playlist.Delete("/:id", ctl.Delete)
}
