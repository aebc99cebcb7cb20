package gatt

import (
	"errors"
	"fmt"
)

// An ErrorCode classifies a failed GATT operation.
// The set is closed; the bus boundary maps each code to a wire error name.
type ErrorCode int

const (
	Failed ErrorCode = iota
	InvalidArgs
	NotSupported
	NotPermitted
	InvalidValueLength
)

func (c ErrorCode) String() string {
	switch c {
	case InvalidArgs:
		return "InvalidArgs"
	case NotSupported:
		return "NotSupported"
	case NotPermitted:
		return "NotPermitted"
	case InvalidValueLength:
		return "InvalidValueLength"
	default:
		return "Failed"
	}
}

// An Error is a GATT operation failure returned to the remote caller.
type Error struct {
	Code    ErrorCode
	Message string
}

// Sentinels for use with errors.Is; any *Error with the same code matches.
var (
	ErrFailed             = &Error{Code: Failed}
	ErrInvalidArgs        = &Error{Code: InvalidArgs}
	ErrNotSupported       = &Error{Code: NotSupported}
	ErrNotPermitted       = &Error{Code: NotPermitted}
	ErrInvalidValueLength = &Error{Code: InvalidValueLength}
)

// Errorf returns an *Error with code c and a formatted message.
func Errorf(c ErrorCode, format string, a ...interface{}) *Error {
	return &Error{Code: c, Message: fmt.Sprintf(format, a...)}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Message
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain,
// or Failed if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Failed
}
