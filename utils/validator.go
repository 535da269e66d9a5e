package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/models"
)

var (
	hhmmPattern        = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	tableNumberPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _-]{0,49}$`)

	registerOnce sync.Once
	validate     = newValidate()
)

// newValidate reads the same "binding" tags gin does, so service inputs are
// checked identically whether or not they came through a handler.
func newValidate() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// RegisterValidators installs the custom tags on gin's binding validator and
// on the package validator used by the services.
func RegisterValidators() {
	registerOnce.Do(func() {
		register(validate)
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			register(v)
		}
	})
}

func register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsValidTime(fl.Field().String())
	})
	_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		return IsValidDate(fl.Field().String())
	})
	_ = v.RegisterValidation("tablenumber", func(fl validator.FieldLevel) bool {
		return IsValidTableNumber(fl.Field().String())
	})
	_ = v.RegisterValidation("useremail", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	})
}

// Validator returns the shared validator with custom tags registered.
func Validator() *validator.Validate {
	RegisterValidators()
	return validate
}

// ValidateStruct runs the binding rules on v and reports failures as a
// validation error listing every failed field.
func ValidateStruct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := FormatValidationError(verrs)
	parts := make([]string, 0, len(msgs))
	for field, msg := range msgs {
		parts = append(parts, field+" "+msg)
	}
	sort.Strings(parts)
	return apperror.Validation("%s", strings.Join(parts, "; "))
}

func IsValidTime(s string) bool {
	return hhmmPattern.MatchString(s)
}

func IsValidDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

// IsValidEmail checks the address after trimming and lowercasing it, the
// form in which emails are stored.
func IsValidEmail(s string) bool {
	return Validator().Var(models.NormalizeEmail(s), "required,email") == nil
}

// IsValidUsername checks the trimmed length of a username.
func IsValidUsername(s string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= models.MinUsernameLength && n <= models.MaxUsernameLength
}

func IsValidTableNumber(s string) bool {
	return tableNumberPattern.MatchString(strings.TrimSpace(s))
}

// FormatValidationError maps each failed field to a readable message.
func FormatValidationError(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email", "useremail":
		return "must be a valid email address"
	case "username":
		return fmt.Sprintf("must be %d to %d characters", models.MinUsernameLength, models.MaxUsernameLength)
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "hhmm":
		return "must be a time in HH:MM format"
	case "ymd":
		return "must be a date in YYYY-MM-DD format"
	case "tablenumber":
		return "must be a valid table number"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
