// Package validation checks request input and cleans user-supplied rich text.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"stackit/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

	validate *validator.Validate
	policy   = bluemonday.UGCPolicy()
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return Phone(fl.Field().String())
	})
}

// Struct validates v against its `validate` tags and reports every failing field.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewValidationError(err.Error())
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return models.NewFieldValidationError(fields)
}

// fieldPath drops the root struct name from the namespace: "Input.tags[0]" -> "tags[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	isCollection := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if isCollection {
			return fmt.Sprintf("%s must have at least %s item(s)", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		if isCollection {
			return fmt.Sprintf("%s cannot have more than %s items", label, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
	case "email":
		return "Please provide a valid email"
	case "phone":
		return "Please provide a valid phone number"
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt", "gte":
		return fmt.Sprintf("%s must be a positive number", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// Phone reports whether s is an acceptable phone number.
func Phone(s string) bool {
	return phoneRegex.MatchString(s)
}

// Sanitize strips unsafe markup from user-authored rich text.
func Sanitize(html string) string {
	return strings.TrimSpace(policy.Sanitize(html))
}

// SanitizeField sanitizes text whose length was already checked on the raw input.
// Input made only of disallowed markup is rejected against field.
func SanitizeField(field, raw string) (string, error) {
	clean := Sanitize(raw)
	if clean == "" {
		return "", models.NewFieldValidationError([]models.FieldError{{
			Field:   field,
			Message: fmt.Sprintf("%s is required", strings.ToUpper(field[:1])+field[1:]),
		}})
	}
	return clean, nil
}

// NormalizeTags trims and lowercases tags, dropping blanks and duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
