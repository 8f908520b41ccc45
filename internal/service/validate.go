package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/pocketfile/internal/errs"
	"github.com/and161185/pocketfile/internal/model"
)

// Field rules shared by registration and admin user management.
const (
	minUsernameLen = 3
	minPasswordLen = 6
	maxColumnLen   = 255 // VARCHAR(255) columns
	maxVersionLen  = 50
)

var validate = validator.New()

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errs.ErrValidation, fmt.Sprintf(format, args...))
}

func checkUsername(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < minUsernameLen {
		return "", invalid("username must be at least %d characters", minUsernameLen)
	}
	if len(s) > maxColumnLen {
		return "", invalid("username is too long")
	}
	return s, nil
}

func checkEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	if err := validate.Var(s, "required,email,max=255"); err != nil {
		return "", invalid("invalid email")
	}
	return s, nil
}

func checkPassword(s string) error {
	if utf8.RuneCountInString(s) < minPasswordLen {
		return invalid("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func checkRole(s string) (model.Role, error) {
	r, ok := model.ParseRole(s)
	if !ok {
		return "", invalid("role must be admin or user")
	}
	return r, nil
}

// RequireAdmin fails with errs.ErrForbidden unless p carries the admin role.
func RequireAdmin(p model.Principal) error {
	if !p.IsAdmin() {
		return fmt.Errorf("%w: admin access required", errs.ErrForbidden)
	}
	return nil
}
