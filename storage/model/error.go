package model

import (
	"fmt"
)

// NotFoundError is an error signaling that something was not found in the
// database
type NotFoundError string

// Error implements the error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// NotFoundErrorFmt returns a NotFoundError from the passed format string and parameters
func NotFoundErrorFmt(format string, params ...any) NotFoundError {
	return NotFoundError(fmt.Sprintf(format, params...))
}

// AlreadyExistsError is an error signaling that a row with the same unique
// attributes already exists in the database
type AlreadyExistsError string

// Error implements the error interface
func (e AlreadyExistsError) Error() string {
	return string(e)
}

// AlreadyExistsErrorFmt returns an AlreadyExistsError from the passed format string and parameters
func AlreadyExistsErrorFmt(format string, params ...any) AlreadyExistsError {
	return AlreadyExistsError(fmt.Sprintf(format, params...))
}

// InvalidRequestError is an error signaling that the caller passed missing or
// malformed input; it is surfaced as a 400 at the API boundary
type InvalidRequestError string

// Error implements the error interface
func (e InvalidRequestError) Error() string {
	return string(e)
}

// InvalidRequestErrorFmt returns an InvalidRequestError from the passed format string and parameters
func InvalidRequestErrorFmt(format string, params ...any) InvalidRequestError {
	return InvalidRequestError(fmt.Sprintf(format, params...))
}
