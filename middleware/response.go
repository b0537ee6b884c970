package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"studytrack/apperr"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse maps a service error to its status code. Unknown errors are logged and reported as 500.
func ErrorResponse(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		Logger(c).Error("request failed", "path", c.Path(), "error", err)
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}

	if appErr.Kind == apperr.KindValidation && len(appErr.Fields) > 0 {
		return ValidationErrorResponse(c, appErr.Fields)
	}
	if appErr.Kind == apperr.KindDependency {
		Logger(c).Warn("dependency failed", "path", c.Path(), "error", err)
	}
	return JsonResponse(c, appErr.Status(), false, appErr.Message, nil)
}
