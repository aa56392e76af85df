// Package validation wraps go-playground/validator for editor inputs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/webcomics/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// titlePattern matches titles usable inside a <Type:Tag> reference.
var titlePattern = regexp.MustCompile(`^[\p{L}\p{N} -]+$`)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the project's custom tags registered:
// "slug" for URL slugs and "title" for tag and tag type titles.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("title", func(fl validator.FieldLevel) bool {
		return titlePattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate validates a struct. Field failures are returned as a single error
// wrapping domain.ErrValidation, fields listed alphabetically.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msgs = append(msgs, e.Field()+" "+friendlyMessage(e))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "hostname_rfc1123", "fqdn":
		return "must be a valid domain name"
	case "oneof":
		return "must be one of: " + e.Param()
	case "slug":
		return "may only contain letters, digits, hyphens and underscores"
	case "title":
		return "may only contain letters, digits, spaces and hyphens"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
