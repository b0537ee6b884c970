package validators

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"studytrack/scheduler"
)

// Validate is the shared validator instance. Field names in errors use the json tag.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := scheduler.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// Struct validates req and returns one message per failing field.
func Struct(req interface{}) map[string]string {
	err := Validate.Struct(req)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"request": err.Error()}
	}

	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required!"
	case "email":
		return "Invalid email!"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long!", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s!", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long!", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s!", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be at least %s!", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be at most %s!", fe.Param())
	case "oneof":
		return "Must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ") + "!"
	case "timezone":
		return "Invalid timezone!"
	case "calendardate":
		return "Invalid date, expected YYYY-MM-DD!"
	default:
		return "Invalid value!"
	}
}

// ParseDate converts an already validated date field. Empty input yields the zero time.
func ParseDate(raw string) time.Time {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}
	}
	t, err := scheduler.ParseDate(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
