package planValidator

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"studytrack/middleware"
	"studytrack/services"
	"studytrack/validators"
)

type createPlanBody struct {
	PlaylistSourceID uint   `json:"playlistSourceId" validate:"required"`
	Name             string `json:"name" validate:"required,max=100"`
	StartDate        string `json:"startDate" validate:"required,calendardate"`
	EndDate          string `json:"endDate" validate:"required,calendardate"`
}

type updatePlanBody struct {
	PlaylistSourceID *uint   `json:"playlistSourceId" validate:"omitempty,gt=0"`
	Name             *string `json:"name" validate:"omitempty,max=100"`
	StartDate        *string `json:"startDate" validate:"omitempty,calendardate"`
	EndDate          *string `json:"endDate" validate:"omitempty,calendardate"`
	Status           *string `json:"status" validate:"omitempty,oneof=active completed cancelled"`
}

type completeDayBody struct {
	Date           string `json:"date" validate:"required,calendardate"`
	UnitsCompleted *int   `json:"unitsCompleted" validate:"required,gte=0"`
}

type missDayBody struct {
	Date   string `json:"date" validate:"required,calendardate"`
	Reason string `json:"reason" validate:"max=200"`
}

// MarkDayRequest is a parsed completed or missed day entry.
type MarkDayRequest struct {
	Date           time.Time
	UnitsCompleted int
	Reason         string
}

// CreatePlan validator middleware
func CreatePlan() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := new(createPlanBody)
		if err := c.BodyParser(body); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		body.Name = strings.TrimSpace(body.Name)

		if errors := validators.Struct(body); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPlan", &services.CreatePlanInput{
			SourceID:  body.PlaylistSourceID,
			Name:      body.Name,
			StartDate: validators.ParseDate(body.StartDate),
			EndDate:   validators.ParseDate(body.EndDate),
		})
		return c.Next()
	}
}

// UpdatePlan validator middleware. Only fields present in the body end up in the patch.
func UpdatePlan() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := new(updatePlanBody)
		if err := c.BodyParser(body); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := validators.Struct(body)
		if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
			if errors == nil {
				errors = map[string]string{}
			}
			errors["name"] = "This field is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		patch := &services.PlanPatch{
			Name:     body.Name,
			SourceID: body.PlaylistSourceID,
			Status:   body.Status,
		}
		if body.StartDate != nil {
			start := validators.ParseDate(*body.StartDate)
			patch.StartDate = &start
		}
		if body.EndDate != nil {
			end := validators.ParseDate(*body.EndDate)
			patch.EndDate = &end
		}

		c.Locals("validatedPlanPatch", patch)
		return c.Next()
	}
}

// CompleteDay validator middleware
func CompleteDay() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := new(completeDayBody)
		if err := c.BodyParser(body); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := validators.Struct(body); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDay", &MarkDayRequest{Date: validators.ParseDate(body.Date), UnitsCompleted: *body.UnitsCompleted})
		return c.Next()
	}
}

// MissDay validator middleware
func MissDay() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := new(missDayBody)
		if err := c.BodyParser(body); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		body.Reason = strings.TrimSpace(body.Reason)
		if errors := validators.Struct(body); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDay", &MarkDayRequest{Date: validators.ParseDate(body.Date), Reason: body.Reason})
		return c.Next()
	}
}
