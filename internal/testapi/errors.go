package testapi

import (
	"errors"
)

// Error is a handler failure carrying the status code to respond with.
type Error struct {
	Code int
	Err  error
}

func (e Error) Error() string {
	return e.Err.Error()
}

func (e Error) Unwrap() error {
	return e.Err
}

// NewError wraps err so the router responds with code.
func NewError(code int, err error) Error {
	return Error{Code: code, Err: err}
}

// GetError reports the status-bearing error in err's chain, if any.
func GetError(err error) (Error, bool) {
	return errors.AsType[Error](err)
}
