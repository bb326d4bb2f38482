package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so error meta matches the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct maps the first failing field to a domain validation error.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ErrInternal(err)
	}

	fe := verrs[0]
	if fe.Tag() == "required" {
		return domain.ErrMissingField(fe.Field())
	}
	return domain.ErrInvalidField(fe.Field(), fe.Tag())
}

// RegisterRequest requires a username and an email. Any password is accepted,
// including an empty one.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() error { return validateStruct(r) }

// LoginRequest has no field rules: an empty email or password is just a
// credential that does not match, and the service answers it as such.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LinkIDRequest struct {
	UserEmail  string `json:"user_email" validate:"required"`
	ExternalID string `json:"external_id" validate:"required"`
}

func (r *LinkIDRequest) Validate() error { return validateStruct(r) }
