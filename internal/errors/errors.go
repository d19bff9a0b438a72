package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrProfileNotFound is returned when the referenced user has no profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrMalformedID is returned when a path id is not a valid identifier.
	ErrMalformedID = errors.New("malformed identifier")
)

const (
	msgNoProfile       = "There is no profile for this user."
	msgProfileNotFound = "Profile not found."
	// MsgServerError is the opaque body of every 500 response.
	MsgServerError = "Server Error"
)

// MessageResponse is the {msg} error body.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// FieldError describes one violated field rule.
type FieldError struct {
	Value    interface{} `json:"value"`
	Msg      string      `json:"msg"`
	Param    string      `json:"param"`
	Location string      `json:"location"`
}

// ValidationErrorResponse is the {errors:[...]} error body.
type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// ValidationError is returned when request fields fail validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields[0].Msg
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// Body returns the JSON body for the error.
func (e *HTTPError) Body() interface{} {
	if e.Fields != nil {
		return ValidationErrorResponse{Errors: e.Fields}
	}
	return MessageResponse{Msg: e.Message}
}

// Internal reports whether the error is a server error with an opaque body.
func (e *HTTPError) Internal() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Missing profiles are reported as 400, not 404.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: verr.Error(), Fields: verr.Fields}
	case errors.Is(err, ErrProfileNotFound):
		return NewHTTPError(http.StatusBadRequest, msgNoProfile)
	case errors.Is(err, ErrMalformedID):
		return NewHTTPError(http.StatusBadRequest, msgProfileNotFound)
	default:
		return NewHTTPError(http.StatusInternalServerError, MsgServerError)
	}
}
