// Package apperr carries the (message, HTTP status) pair that handlers raise
// and the error middleware renders as {success:false, message}.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(http.StatusConflict, format, args...)
}

// Internal hides the cause from the client.
func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error"}
}

// From maps any error onto the flat taxonomy. Unknown errors become a
// generic 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Resource not found")
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return BadRequest("%s", describeValidation(verrs))
	}
	return Internal()
}

// Binding reports a request that could not be decoded or validated. It is
// always a client error.
func Binding(err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return BadRequest("%s", describeValidation(verrs))
	}
	return BadRequest("Invalid request: %s", err.Error())
}

func describeValidation(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fe.Field()+" must be one of: "+fe.Param())
		case "min", "gte":
			msgs = append(msgs, fe.Field()+" must be at least "+fe.Param())
		case "gt":
			msgs = append(msgs, fe.Field()+" must be greater than "+fe.Param())
		case "max", "lte":
			msgs = append(msgs, fe.Field()+" cannot exceed "+fe.Param())
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		case "clock":
			msgs = append(msgs, fe.Field()+" must be in HH:MM format")
		case "datetime":
			msgs = append(msgs, fe.Field()+" must match "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, ", ")
}
