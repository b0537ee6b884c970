package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studytrack/apperr"
	"studytrack/logger"
	"studytrack/models"
)

const testSecret = "test-secret"

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out envelope
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

type stubUsers map[uint]*models.User

func (s stubUsers) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("find user %d: %w", id, gorm.ErrRecordNotFound)
}

func protectedApp(users UserFinder) *fiber.App {
	app := fiber.New()
	app.Use(RequestContext(logger.NewNop(), time.Second))
	app.Get("/me", JWTMiddleware(testSecret), ActiveUserMiddleware(users), func(c *fiber.Ctx) error {
		id, _ := UserID(c)
		u, _ := CurrentUser(c)
		return JsonResponse(c, fiber.StatusOK, true, "ok", fiber.Map{"id": id, "email": u.Email})
	})
	return app
}

func TestJWTMiddleware(t *testing.T) {
	users := stubUsers{7: {Model: gorm.Model{ID: 7}, Email: "asha@example.com"}}
	app := protectedApp(users)

	valid, err := GenerateJWT(testSecret, time.Hour, 7, "Asha", "asha@example.com")
	require.NoError(t, err)
	expired, err := GenerateJWT(testSecret, -time.Hour, 7, "Asha", "asha@example.com")
	require.NoError(t, err)
	forged, err := GenerateJWT("other-secret", time.Hour, 7, "Asha", "asha@example.com")
	require.NoError(t, err)
	unknown, err := GenerateJWT(testSecret, time.Hour, 8, "Ghost", "ghost@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + valid, fiber.StatusOK},
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Token " + valid, fiber.StatusUnauthorized},
		{"expired", "Bearer " + expired, fiber.StatusUnauthorized},
		{"forged", "Bearer " + forged, fiber.StatusUnauthorized},
		{"deleted account", "Bearer " + unknown, fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode(t, resp)
			assert.Equal(t, tt.status == fiber.StatusOK, body.Status)
		})
	}
}

func TestRequestContextSetsID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestContext(logger.NewNop(), time.Second))
	app.Get("/", func(c *fiber.Ctx) error {
		_, hasDeadline := c.UserContext().Deadline()
		assert.True(t, hasDeadline)
		return c.SendString(c.Locals("reqid").(string))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"fields", apperr.ValidationFields(map[string]string{"name": "Name is required"}), 422, "Validation failed!"},
		{"validation", apperr.Validation("Only active plans can be updated"), 422, "Only active plans can be updated"},
		{"not found", apperr.NotFound("Study plan not found"), 404, "Study plan not found"},
		{"conflict", apperr.Conflict("Day 2026-10-19 is already marked completed"), 409, "Day 2026-10-19 is already marked completed"},
		{"dependency", apperr.Dependency("Could not fetch playlist", errors.New("timeout")), 502, "Could not fetch playlist"},
		{"unknown", errors.New("disk full"), 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return ErrorResponse(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode(t, resp)
			assert.False(t, body.Status)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}
