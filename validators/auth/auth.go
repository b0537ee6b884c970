package authValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"studytrack/middleware"
	"studytrack/validators"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SettingsRequest changes reminder preferences. Absent fields are left alone; an empty
// timezone falls back to the server timezone.
type SettingsRequest struct {
	Reminders *bool   `json:"reminders"`
	Timezone  *string `json:"timezone" validate:"omitempty,max=64"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SignupRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

// Settings validator middleware
func Settings() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SettingsRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := validators.Struct(reqData)
		if reqData.Timezone != nil {
			tz := strings.TrimSpace(*reqData.Timezone)
			reqData.Timezone = &tz
			if tz != "" && validators.Validate.Var(tz, "timezone") != nil {
				if errors == nil {
					errors = map[string]string{}
				}
				errors["timezone"] = "Invalid timezone!"
			}
		}
		if reqData.Reminders == nil && reqData.Timezone == nil {
			if errors == nil {
				errors = map[string]string{}
			}
			errors["reminders"] = "Nothing to update!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSettings", reqData)
		return c.Next()
	}
}
