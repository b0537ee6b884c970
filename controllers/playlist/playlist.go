package playlistController

import (
	"github.com/gofiber/fiber/v2"

	"studytrack/middleware"
	"studytrack/services"
	playlistValidator "studytrack/validators/playlist"
)

type Controller struct {
	sources *services.SourceService
}

func New(sources *services.SourceService) *Controller {
	return &Controller{sources: sources}
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	sources, err := ctl.sources.List(c.UserContext(), userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Playlists fetched successfully.", sources)
}

func (ctl *Controller) CreateManual(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}
	reqData, ok := c.Locals("validatedManual").(*playlistValidator.ManualRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	source, err := ctl.sources.CreateManual(c.UserContext(), userID, reqData.Title, reqData.TotalUnits)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Tracker created successfully.", source)
}

func (ctl *Controller) CreateFetched(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}
	reqData, ok := c.Locals("validatedFetch").(*playlistValidator.FetchRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	source, err := ctl.sources.CreateFetched(c.UserContext(), userID, reqData.Playlist)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Playlist imported successfully.", source)
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	userID, sourceID, ok := ids(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid playlist id!", nil)
	}

	source, err := ctl.sources.Get(c.UserContext(), userID, sourceID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Playlist fetched successfully.", source)
}

func (ctl *Controller) Sync(c *fiber.Ctx) error {
	userID, sourceID, ok := ids(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid playlist id!", nil)
	}

	source, err := ctl.sources.Sync(c.UserContext(), userID, sourceID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Playlist synced successfully.", source)
}

func (ctl *Controller) SetProgress(c *fiber.Ctx) error {
	userID, sourceID, ok := ids(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid playlist id!", nil)
	}
	reqData, ok := c.Locals("validatedProgress").(*playlistValidator.ProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	source, err := ctl.sources.SetManualProgress(c.UserContext(), userID, sourceID, *reqData.Completed)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully.", source)
}

func (ctl *Controller) SetItem(c *fiber.Ctx) error {
	userID, sourceID, ok := ids(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid playlist id!", nil)
	}
	itemID, err := c.ParamsInt("item_id")
	if err != nil || itemID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid item id!", nil)
	}
	reqData, ok := c.Locals("validatedItem").(*playlistValidator.ItemRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	source, err := ctl.sources.SetItemCompleted(c.UserContext(), userID, sourceID, uint(itemID), *reqData.Completed)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Item updated successfully.", source)
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	userID, sourceID, ok := ids(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid playlist id!", nil)
	}

	if err := ctl.sources.Delete(c.UserContext(), userID, sourceID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Playlist deleted successfully.", nil)
}

func ids(c *fiber.Ctx) (userID, sourceID uint, ok bool) {
	userID, ok = middleware.UserID(c)
	if !ok {
		return 0, 0, false
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, 0, false
	}
	return userID, uint(id), true
}
