package promoapi

import (
	"errors"
	"fmt"
)

// GenericErrorMessage is shown when a failure carries no message from the service.
const GenericErrorMessage = "Server error!"

// Error is returned for every failed operation. Status is zero when no HTTP
// response was received.
type Error struct {
	Op      Operation
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status > 0 && e.Err != nil:
		return fmt.Sprintf("%s promotion: status %d: %s: %v", e.Op, e.Status, e.Message, e.Err)
	case e.Status > 0:
		return fmt.Sprintf("%s promotion: status %d: %s", e.Op, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s promotion: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s promotion: %s", e.Op, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorMessage returns the user-facing text for err: the service's message
// when one was supplied, GenericErrorMessage otherwise.
func ErrorMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericErrorMessage
}

// errorBody is the failure shape the service uses.
type errorBody struct {
	Message string `json:"message"`
}
