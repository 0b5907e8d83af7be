// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/quickpoll/models"
)

// ValidationError is one rejected form field
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is returned when a form fails validation
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Message
	}
	return strings.Join(parts, "; ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func check(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("at least %s %s are required", fe.Param(), field)
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// ValidateRegister checks the registration form
func ValidateRegister(req models.RegisterRequest) error {
	return check(req)
}

// ValidateLogin checks the login form
func ValidateLogin(req models.LoginRequest) error {
	return check(req)
}

// NormalizeCreatePoll trims the form and drops blank options, then
// validates what is left.
func NormalizeCreatePoll(req models.CreatePollRequest) (models.CreatePollRequest, error) {
	out := models.CreatePollRequest{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Options:     make([]models.OptionInput, 0, len(req.Options)),
	}
	for _, opt := range req.Options {
		text := strings.TrimSpace(opt.Text)
		if text == "" {
			continue
		}
		out.Options = append(out.Options, models.OptionInput{Text: text})
	}

	if err := check(out); err != nil {
		return models.CreatePollRequest{}, err
	}
	return out, nil
}
