// Package validation checks request structs with validator/v10 and converts failures into
// apperr validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kevinaaaquil/readingbud/backend/apperr"
)

// accountEmail is the address pattern accepted at registration.
var accountEmail = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)

// Validator wraps go-playground/validator with apperr conversion.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			name = fld.Tag.Get("form")
		}
		if name == "" {
			return fld.Name
		}
		name, _, _ = strings.Cut(name, ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("account_email", func(fl validator.FieldLevel) bool {
		return accountEmail.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return isHex24(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate returns a 400 validation error with per-field details.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err, apperr.ErrValidation, "validation failed")
	}
	return nil
}

// ValidateSchema is Validate for request bodies whose schema failures answer 422.
func (v *Validator) ValidateSchema(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err, apperr.ErrUnprocessable, "schema validation failed")
	}
	return nil
}

// ValidateVar checks a single value against tag and reports failures under field.
func (v *Validator) ValidateVar(field, value, tag string) error {
	err := v.v.Var(value, tag)
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	return &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "validation failed",
		Details: map[string]string{field: friendlyMessage(validationErrs[0])},
	}
}

func (v *Validator) formatError(err error, kind *apperr.Error, message string) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return &apperr.Error{Kind: kind.Kind, Message: message, Details: fieldErrors}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email", "account_email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "objectid":
		return "must be a valid id"
	case "url", "http_url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

func isHex24(s string) bool {
	if len(s) != 24 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
