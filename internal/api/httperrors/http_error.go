package httperrors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// HTTPError is the JSON body of every failed request.
type HTTPError struct {
	Code   int    `json:"status"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`

	Internal error `json:"-"`
}

func NewHTTPError(code int, errorType string, title string) *HTTPError {
	return &HTTPError{
		Code:  code,
		Type:  errorType,
		Title: title,
	}
}

func NewHTTPErrorWithDetail(code int, errorType string, title string, detail string) *HTTPError {
	return &HTTPError{
		Code:   code,
		Type:   errorType,
		Title:  title,
		Detail: detail,
	}
}

// NewFromEcho converts errors raised by echo itself (routing, binding).
func NewFromEcho(e *echo.HTTPError) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Type:     "generic",
		Title:    fmt.Sprint(e.Message),
		Internal: e.Internal,
	}
}

func (e *HTTPError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
	if len(e.Detail) > 0 {
		fmt.Fprintf(&b, " - %s", e.Detail)
	}
	if e.Internal != nil {
		fmt.Fprintf(&b, ", %v", e.Internal)
	}

	return b.String()
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// Wrap returns a copy of e carrying err for logging. err never reaches the client.
func (e *HTTPError) Wrap(err error) *HTTPError {
	c := *e
	c.Internal = err

	return &c
}

// WithDetail returns a copy of e whose detail is shown to the client.
func (e *HTTPError) WithDetail(detail string) *HTTPError {
	c := *e
	c.Detail = detail

	return &c
}

func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}

	return e.Code == t.Code && e.Type == t.Type
}

var ErrBadRequest = NewHTTPError(http.StatusBadRequest, "generic", "Bad request.")
