package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

	validate = newValidator()
)

const (
	passwordMinLen  = 8
	passwordMaxLen  = 20
	passwordSymbols = "$@!%*?&"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report payload names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("credemail", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("credpassword", func(fl validator.FieldLevel) bool {
		return IsValidPassword(fl.Field().String())
	})
	return v
}

// IsValidEmail reports whether email looks like local@domain.tld.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPassword enforces the password policy: 8 to 20 characters from
// [A-Za-z0-9$@!%*?&] with at least one lowercase letter, one uppercase
// letter, one digit and one symbol.
func IsValidPassword(password string) bool {
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return false
	}

	var lower, upper, digit, symbol bool
	for i := 0; i < len(password); i++ {
		c := password[i]
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.IndexByte(passwordSymbols, c) >= 0:
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

var checkMessages = map[string]string{
	"credemail":    "invalid email address",
	"credpassword": "invalid password",
}

// validateRequest checks req and maps the first failure onto the error
// taxonomy. Missing fields are reported before format problems.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}

	for _, fe := range ves {
		if fe.Tag() == "required" {
			return common.BadRequest(fe.Field())
		}
	}

	fe := ves[0]
	msg, ok := checkMessages[fe.Tag()]
	if !ok {
		msg = fe.Field() + " is invalid"
	}
	return common.Validation(fe.Field(), msg)
}
