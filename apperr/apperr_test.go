package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", Validation("bad"), http.StatusUnprocessableEntity},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"conflict", Conflict("dup"), http.StatusConflict},
		{"dependency", Dependency("down", errors.New("timeout")), http.StatusBadGateway},
		{"unknown kind", &Error{Kind: "OTHER"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("mark day: %w", Conflict("Day already marked as completed!"))

	assert.True(t, IsConflict(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency("Failed to load playlist source", cause)

	assert.Equal(t, "Failed to load playlist source: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "dup", Conflict("dup").Error())
}

func TestValidationFields(t *testing.T) {
	err := ValidationFields(map[string]string{"name": "Name is required!"})

	assert.True(t, IsValidation(err))
	assert.Equal(t, "Name is required!", err.Fields["name"])
}
