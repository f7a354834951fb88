package services

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/marketmemphis/mdash/internal/client/models"
	"github.com/marketmemphis/mdash/internal/common"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidationError is a form error caught before any request is sent. It
// matches common.ErrorValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == common.ErrorValidation }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// ValidateLogin checks the login form. Lengths are counted in runes on the
// value as typed, surrounding spaces included.
func ValidateLogin(username string, password []byte) error {
	if utf8.RuneCountInString(username) < minUsernameLength {
		return invalid("username", "Username must be at least 3 characters long")
	}
	if utf8.RuneCount(password) < minPasswordLength {
		return invalid("password", "Password must be at least 8 characters long")
	}
	return nil
}

// ValidateRegistration checks the sign-up form and returns the first problem
// in form order.
func ValidateRegistration(r models.Registration) error {
	switch {
	case utf8.RuneCountInString(r.Username) < minUsernameLength:
		return invalid("username", "Username must be at least 3 characters long")
	case !emailPattern.MatchString(r.Email):
		return invalid("email", "Please enter a valid email address")
	case utf8.RuneCountInString(r.Password) < minPasswordLength:
		return invalid("password", "Password must be at least 8 characters long")
	case r.Password != r.Password2:
		return invalid("password2", "Passwords do not match")
	case blank(r.FirstName) || blank(r.LastName):
		return invalid("name", "First name and last name are required")
	case blank(r.BusinessName):
		return invalid("business_name", "Business name is required")
	case blank(r.BusinessAddress):
		return invalid("business_address", "Business address is required")
	case blank(r.PhoneNumber):
		return invalid("phone_number", "Phone number is required")
	}

	for _, svc := range r.ServiceTypes {
		if !slices.Contains(models.KnownServices, svc) {
			return invalid("service_types", fmt.Sprintf("Unknown service %q", svc))
		}
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
