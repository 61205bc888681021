// Package validation applies the per-field write rules for every entity and
// translates validator failures into *models.FieldError values.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wayfare/backend/internal/models"
)

// NameForbiddenChars may not appear in a first or last name.
const NameForbiddenChars = "~!@#$%^&*()+=_`\\"

var emailShape = regexp.MustCompile(`^[^@\s]+@([^@\s.]+\.)+[^@\s.]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	must(v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return ValidName(fl.Field().String())
	}))
	must(v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	}))
	must(v.RegisterValidation("capacity", func(fl validator.FieldLevel) bool {
		return ValidCapacity(int(fl.Field().Int()))
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ValidName reports whether s is at most 64 characters and free of NameForbiddenChars.
func ValidName(s string) bool {
	return len([]rune(s)) <= 64 && !strings.ContainsAny(s, NameForbiddenChars)
}

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailShape.MatchString(s)
}

func ValidCapacity(n int) bool {
	return n >= models.MinCapacity && n <= models.MaxCapacity
}

// Struct validates v and returns the first failing field as a *models.FieldError.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return fieldError(verrs[0])
}

// Required checks that every field tagged `validate:"required"` on a patch is
// present, reporting the first missing one in declaration order.
func Required(patch any) error {
	return Struct(patch)
}

func fieldError(fe validator.FieldError) *models.FieldError {
	kind := models.ErrInvalidFormat
	switch fe.Tag() {
	case "required":
		kind = models.ErrMissingField
	case "capacity":
		kind = models.ErrInvalidCapacity
	}
	return &models.FieldError{Kind: kind, Field: fe.Field(), Value: fe.Value()}
}
