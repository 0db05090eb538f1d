package utils

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidConfig         = 400
	CodeIdentifierUnavailable = 500
	CodeStorageUnavailable    = 503
)

var (
	// ErrStorageUnavailable matches any error carrying CodeStorageUnavailable.
	ErrStorageUnavailable = &CustomError{Code: CodeStorageUnavailable, Message: "storage unavailable"}
	// ErrIdentifierUnavailable matches any error carrying CodeIdentifierUnavailable.
	ErrIdentifierUnavailable = &CustomError{Code: CodeIdentifierUnavailable, Message: "device identifier unavailable"}
	// ErrInvalidConfig matches any error carrying CodeInvalidConfig.
	ErrInvalidConfig = &CustomError{Code: CodeInvalidConfig, Message: "invalid configuration"}
)

type CustomError struct {
	Code    int
	Message string
	Err     error
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Code: %d, Message: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

func (e *CustomError) Unwrap() error { return e.Err }

// Is reports whether target is a *CustomError with the same code.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	return ok && t.Code == e.Code
}

func New(code int, message string) error {
	return &CustomError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches a code and message to err. A nil err yields nil.
func Wrap(code int, message string, err error) error {
	if err == nil {
		return nil
	}
	return &CustomError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first CustomError in err's chain, or 0.
func CodeOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}
