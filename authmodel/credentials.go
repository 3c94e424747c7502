package authmodel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/site-admin-console/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Credentials are the email/password pair posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate checks the credentials before they are sent anywhere. The returned
// error wraps ErrInvalidCredentials and names the offending fields.
func (c Credentials) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Wrapf(apperrors.ErrInvalidCredentials, "credentials validation: %v", err)
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return apperrors.Wrapf(apperrors.ErrInvalidCredentials, "invalid fields %s", strings.Join(fields, ", "))
}

// String never includes the password.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Email: %q}", c.Email)
}
