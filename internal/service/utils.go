package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
)

// fieldPath drops the root struct name so nested fields read as
// prizes[0].rank.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// translateValidationError turns a validator failure into a message for the
// caller.
func translateValidationError(e validator.FieldError) string {
	field := fieldPath(e)
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		// param is "<Field> <value>"
		parts := strings.SplitN(e.Param(), " ", 2)
		if len(parts) == 2 {
			return fmt.Sprintf("%s is required when %s is %s", field, lowerFirst(parts[0]), parts[1])
		}
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters long", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, e.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", field, lowerFirst(e.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid uuid", field)
	default:
		return fmt.Sprintf("validation failed for %s with rule %s", field, e.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// ValidateInput checks inp against its validate tags and reports the first
// failure wrapped in ErrInvalidInput.
func ValidateInput(inp any) error {
	err := validate.Struct(inp)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		msg := translateValidationError(validationErrors[0])
		log.Warn(msg)
		return fmt.Errorf("%w, %s", app_errors.ErrInvalidInput, msg)
	}
	err = fmt.Errorf("%w, %v", app_errors.ErrInvalidInput, err)
	log.Warn(err)
	return err
}
