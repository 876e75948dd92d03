package util

import (
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payloads.
type Validatable interface {
	Validate() error
}

// BindAndValidateBody binds the JSON body of the request to v and validates it.
func BindAndValidateBody(c echo.Context, v Validatable) error {
	binder := &echo.DefaultBinder{}
	if err := binder.BindBody(c, v); err != nil {
		LogFromContext(c.Request().Context()).Debug().Err(err).Msg("Failed to bind request body")
		return err
	}

	return v.Validate()
}
