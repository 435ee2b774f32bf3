package jsonapi

import (
	"net/http"
	"strconv"
)

// NewError creates an error object for an HTTP status.
func NewError(status int, code, title string) Error {
	return Error{Status: strconv.Itoa(status), Code: code, Title: title}
}

// StatusCode returns the HTTP status of e, or 500 when it is unset or
// malformed.
func (e Error) StatusCode() int {
	code, err := strconv.Atoi(e.Status)
	if err != nil || code < 100 {
		return http.StatusInternalServerError
	}
	return code
}

// WithDetail returns a copy of e with detail set.
func (e Error) WithDetail(detail string) Error {
	e.Detail = detail
	return e
}

// WithParameter returns a copy of e blaming a path or query parameter.
func (e Error) WithParameter(name string) Error {
	e.Source = &ErrorSource{Parameter: name}
	return e
}

func ErrBadRequest(detail string) Error {
	return NewError(http.StatusBadRequest, "bad_request", "Bad Request").WithDetail(detail)
}

func ErrNotFound(resourceType string) Error {
	return NewError(http.StatusNotFound, "not_found", "Not Found").WithDetail(resourceType + " not found")
}

func ErrForbidden(detail string) Error {
	return NewError(http.StatusForbidden, "forbidden", "Forbidden").WithDetail(detail)
}

func ErrInternal(detail string) Error {
	return NewError(http.StatusInternalServerError, "internal_error", "Internal Server Error").WithDetail(detail)
}
