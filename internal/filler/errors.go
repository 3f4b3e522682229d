package filler

import (
	"errors"
	"fmt"
)

// ErrorType classifies why one document or record could not be processed.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeConversion
	ErrorTypeIO
	ErrorTypeUnrecognized
	ErrorTypeInvalidInput
	ErrorTypePersist
)

// String returns the upper-case name of the error type.
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeConversion:
		return "CONVERSION"
	case ErrorTypeIO:
		return "IO"
	case ErrorTypeUnrecognized:
		return "UNRECOGNIZED"
	case ErrorTypeInvalidInput:
		return "INVALID_INPUT"
	case ErrorTypePersist:
		return "PERSIST"
	default:
		return "UNKNOWN"
	}
}

// FillError is the error attached to a failed batch item.
type FillError struct {
	Type    ErrorType `json:"type"`
	Path    string    `json:"path,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *FillError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Type, e.Path, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FillError) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, path, message string, err error) *FillError {
	return &FillError{Type: t, Path: path, Message: message, Err: err}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var fe *FillError
	if errors.As(err, &fe) {
		return fe.Type
	}
	return ErrorTypeUnknown
}
