package playlistValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"studytrack/middleware"
	"studytrack/validators"
)

type ManualRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	TotalUnits int    `json:"totalUnits" validate:"gte=1,lte=1000"`
}

type FetchRequest struct {
	Playlist string `json:"playlist" validate:"required,max=500"`
}

type ProgressRequest struct {
	Completed *int `json:"completed" validate:"required,gte=0,lte=1000"`
}

type ItemRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// Manual tracker validator middleware
func CreateManual() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ManualRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedManual", reqData)
		return c.Next()
	}
}

// Fetched playlist validator middleware
func CreateFetched() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(FetchRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Playlist = strings.TrimSpace(reqData.Playlist)

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedFetch", reqData)
		return c.Next()
	}
}

// Manual progress validator middleware
func SetProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProgressRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

// Item completion validator middleware
func SetItem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ItemRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedItem", reqData)
		return c.Next()
	}
}
