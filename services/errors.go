package services

import (
	"errors"
	"log"

	"clearance/portal/clearanceapi"
)

// ErrorKind classifies a failure for display
type ErrorKind string

const (
	// KindValidation is a local check that failed before any API call
	KindValidation ErrorKind = "validation"
	// KindApplication is a structured error returned by the API
	KindApplication ErrorKind = "application"
	// KindTransport is an unreachable API or an unreadable reply
	KindTransport ErrorKind = "transport"
)

// MsgServerError is shown for every transport failure
const MsgServerError = "Server error. Try again later."

// UserError is a failure ready to show to the user. Fields holds per-field
// messages for validation errors.
type UserError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
}

func (e *UserError) Error() string {
	return e.Message
}

func validationError(message string, fields map[string]string) *UserError {
	return &UserError{Kind: KindValidation, Message: message, Fields: fields}
}

// fromAPIError converts a client error. Application errors carry the
// server's text, or fallback when it sent none; anything else is a
// transport error and is logged.
func fromAPIError(op string, err error, fallback string) *UserError {
	var apiErr *clearanceapi.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		return &UserError{Kind: KindApplication, Message: msg}
	}

	log.Printf("Error during %s: %v", op, err)
	return &UserError{Kind: KindTransport, Message: MsgServerError}
}

// AsUserError extracts a UserError from err
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
