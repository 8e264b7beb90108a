// Package validation provides request validation on top of go-playground/validator
// plus the catalogue field rules shared by the API and the CSV importer.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
)

// Field limits.
const (
	UsernameMaxLength = 150
	EmailMaxLength    = 254
	NameMaxLength     = 150
	SlugMaxLength     = 50
	TitleMaxLength    = 256
	ScoreMin          = 1
	ScoreMax          = 10

	// ReservedUsername cannot be registered because /users/me is a route.
	ReservedUsername = "me"
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New creates a validator with the username, slug, notfuture and score tags registered.
func New() *Validator {
	return NewWithClock(time.Now)
}

// NewWithClock creates a validator whose notfuture rule uses now.
func NewWithClock(now func() time.Time) *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	val := &Validator{v: v, now: now}

	// Registration only fails on empty tag names.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(val.now().Year())
	})
	_ = v.RegisterValidation("score", func(fl validator.FieldLevel) bool {
		s := fl.Field().Int()
		return s >= ScoreMin && s <= ScoreMax
	})

	return val
}

// Now returns the validator clock.
func (v *Validator) Now() time.Time {
	return v.now()
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "username":
		if msg := usernameProblem(stringValue(e.Value())); msg != "" {
			return msg
		}
		return "is invalid"
	case "slug":
		if msg := slugProblem(stringValue(e.Value())); msg != "" {
			return msg
		}
		return "is invalid"
	case "notfuture":
		return fmt.Sprintf("must not be later than %d", v.now().Year())
	case "score":
		return fmt.Sprintf("must be between %d and %d", ScoreMin, ScoreMax)
	default:
		return "is invalid"
	}
}

// ValidateUsername rejects the reserved name (by Unicode case folding),
// characters outside letters, digits and "_.@+-", and names over the length limit.
func ValidateUsername(name string) error {
	if msg := usernameProblem(name); msg != "" {
		return domainerrors.FieldError("username", msg)
	}
	return nil
}

// ValidateYear rejects years later than the calendar year of now.
func ValidateYear(year int, now time.Time) error {
	if year > now.Year() {
		return domainerrors.FieldError("year", fmt.Sprintf("must not be later than %d", now.Year()))
	}
	return nil
}

// ValidateScore rejects scores outside 1..10.
func ValidateScore(score int) error {
	if score < ScoreMin || score > ScoreMax {
		return domainerrors.FieldError("score", fmt.Sprintf("must be between %d and %d", ScoreMin, ScoreMax))
	}
	return nil
}

// ValidateSlug enforces the slug pattern and length.
func ValidateSlug(slug string) error {
	return ValidateSlugField("slug", slug)
}

// ValidateSlugField is ValidateSlug reporting under the given field name.
func ValidateSlugField(field, slug string) error {
	if msg := slugProblem(slug); msg != "" {
		return domainerrors.FieldError(field, msg)
	}
	return nil
}

// IsReservedUsername reports whether name folds to the reserved username.
func IsReservedUsername(name string) bool {
	// Casers are stateful and cannot be shared between goroutines.
	return cases.Fold().String(name) == ReservedUsername
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}

func usernameProblem(name string) string {
	switch {
	case name == "":
		return "is required"
	case IsReservedUsername(name):
		return fmt.Sprintf("%q cannot be used as a username", name)
	case utf8.RuneCountInString(name) > UsernameMaxLength:
		return fmt.Sprintf("must not exceed %d characters", UsernameMaxLength)
	case !usernamePattern.MatchString(name):
		return "may contain only letters, digits and @/./+/-/_"
	}
	return ""
}

func slugProblem(slug string) string {
	switch {
	case slug == "":
		return "is required"
	case utf8.RuneCountInString(slug) > SlugMaxLength:
		return fmt.Sprintf("must not exceed %d characters", SlugMaxLength)
	case !slugPattern.MatchString(slug):
		return "may contain only latin letters, digits, hyphens and underscores"
	}
	return ""
}
