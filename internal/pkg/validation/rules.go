// Package validation holds the custom request rules registered on gin's
// validator engine and turns validator failures into client messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/devcamper/internal/app/models"
)

// Validation rule patterns
var (
	// PhonePattern accepts digits with common separators and an optional leading +
	PhonePattern = `^\+?[0-9 ().\-]{7,20}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Phone *regexp.Regexp
}{
	Phone: regexp.MustCompile(PhonePattern),
}

// RegisterRules adds the custom tags used by request DTOs to v and makes
// field errors report JSON names.
func RegisterRules(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("career", validateCareer); err != nil {
		return fmt.Errorf("register career rule: %w", err)
	}
	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		return fmt.Errorf("register phone rule: %w", err)
	}
	return nil
}

func validateCareer(fl validator.FieldLevel) bool {
	return models.IsCareer(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return CompiledPatterns.Phone.MatchString(fl.Field().String())
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// FormatErrors joins the messages of every failed field. Errors that are not
// validator errors are returned as is.
func FormatErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, formatFieldError(e))
	}
	return strings.Join(messages, ", ")
}

// formatFieldError creates a human-readable validation error message
func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s can not be more than %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s can not be more than %s", field, e.Param())
	case "email":
		return "Please add a valid email"
	case "url":
		return "Please use a valid URL with HTTP or HTTPS"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "career":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(models.Careers, ", "))
	case "phone":
		return "Please add a valid phone number"
	default:
		return field + " validation failed: " + e.Tag()
	}
}
