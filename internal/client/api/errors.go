package api

import (
	"errors"
	"fmt"
)

// FallbackMessage is shown when an error carries no usable text.
const FallbackMessage = "something went wrong, please try again"

// ValidationError is a client-side precondition failure. Requests that fail
// validation never reach the network.
type ValidationError struct {
	// Field names the offending input.
	Field string
	// Message is safe to show to the user.
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RemoteError is a failed call: non-2xx response, transport failure or
// unreadable response body.
type RemoteError struct {
	// StatusCode is 0 when the request never got a response.
	StatusCode int
	// Message is the server's "message" field when present, else generic text.
	Message string
	// Err is the underlying transport or decode error, if any.
	Err error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Message turns any error from this package into one line of display text:
// the server-supplied message first, then the error text, then
// FallbackMessage.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	if s := err.Error(); s != "" {
		return s
	}
	return FallbackMessage
}
