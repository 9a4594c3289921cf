package common

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("login required")
	ErrForbidden       = errors.New("not allowed")
)

// ValidationError carries field-scoped messages back to the caller.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field, keeping the first message if one exists.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Empty() bool { return e == nil || len(e.Fields) == 0 }

// OrNil returns nil when no field failed, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StatusFor maps an error from the store or access layers to an HTTP status.
func StatusFor(err error) int {
	var ve *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &ve):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var bindingMessages = map[string]string{
	"required": "%s required",
	"email":    "A valid email address is required",
	"url":      "A valid url is required",
	"max":      "%s is too long",
	"eqfield":  "Passwords don't match",
}

// FromBinding converts gin binding failures into a ValidationError keyed by the
// form field name. Errors that are not validator failures come back as a
// "form" entry.
func FromBinding(err error) *ValidationError {
	ve := &ValidationError{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ve.Add("form", "Invalid form data")
		return ve
	}

	for _, fe := range verrs {
		field := snakeCase(fe.Field())
		format, ok := bindingMessages[fe.Tag()]
		if !ok {
			format = "%s is invalid"
		}
		msg := format
		if strings.Contains(format, "%s") {
			msg = fmt.Sprintf(format, fe.Field())
		}
		ve.Add(field, msg)
	}
	return ve
}

func snakeCase(name string) string {
	var b strings.Builder
	var prevLower bool
	for _, r := range name {
		upper := r >= 'A' && r <= 'Z'
		if upper && prevLower {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		prevLower = !upper
	}
	return strings.ToLower(b.String())
}
