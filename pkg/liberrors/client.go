// Package liberrors contains errors returned by the library.
package liberrors

import (
	"fmt"

	"github.com/judocare/hevcrec/pkg/base"
)

// ErrClientTerminated is returned when the client has been terminated.
type ErrClientTerminated struct{}

// Error implements the error interface.
func (e ErrClientTerminated) Error() string {
	return "terminated"
}

// ErrClientBadStatusCode is returned in case of a bad status code.
type ErrClientBadStatusCode struct {
	Method  base.Method
	Code    base.StatusCode
	Message string
}

// Error implements the error interface.
func (e ErrClientBadStatusCode) Error() string {
	return fmt.Sprintf("bad status code on %s: %d (%s)", e.Method, e.Code, e.Message)
}

// ErrClientSessionHeaderMissing is returned when the response to DESCRIBE
// or SETUP does not carry a Session header.
type ErrClientSessionHeaderMissing struct {
	Method base.Method
}

// Error implements the error interface.
func (e ErrClientSessionHeaderMissing) Error() string {
	return fmt.Sprintf("Session header is missing in response to %s", e.Method)
}

// ErrClientSessionHeaderInvalid is returned in case of an invalid session header.
type ErrClientSessionHeaderInvalid struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientSessionHeaderInvalid) Error() string {
	return fmt.Sprintf("invalid session header: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e ErrClientSessionHeaderInvalid) Unwrap() error {
	return e.Err
}

// ErrClientTransportHeaderInvalid is returned in case the transport header is invalid.
type ErrClientTransportHeaderInvalid struct {
	Err error
}

// Error implements the error interface.
func (e ErrClientTransportHeaderInvalid) Error() string {
	return fmt.Sprintf("invalid transport header: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e ErrClientTransportHeaderInvalid) Unwrap() error {
	return e.Err
}

// ErrClientTransportHeaderInvalidInterleavedIDs is returned in case
// the server answered with interleaved IDs different from the requested ones.
type ErrClientTransportHeaderInvalidInterleavedIDs struct {
	Expected [2]int
	Value    [2]int
}

// Error implements the error interface.
func (e ErrClientTransportHeaderInvalidInterleavedIDs) Error() string {
	return fmt.Sprintf("invalid interleaved IDs, expected %v, got %v", e.Expected, e.Value)
}

// ErrClientConnectionClosed is returned when the camera closes the connection.
type ErrClientConnectionClosed struct{}

// Error implements the error interface.
func (e ErrClientConnectionClosed) Error() string {
	return "connection closed by the camera"
}
