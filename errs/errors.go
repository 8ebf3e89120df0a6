// Package errs defines the closed set of failures a request can settle with.
//
// Every failure produced by the request, response and hook packages is an
// [*Error] carrying one of the [Kind] values below. Callers match on kind with
// [errors.Is] against the kind sentinels, or compare full values:
//
//	errors.Is(err, errs.ErrHTTPStatus)   // any non-2xx status
//	errors.Is(err, errs.HTTPStatus(404)) // exactly 404
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies which branch of the taxonomy an [Error] belongs to.
type Kind int

const (
	KindNoURL Kind = iota + 1
	KindBadURL
	KindNetwork
	KindHTTPStatus
	KindJSONParse
	KindException
)

var kindNames = map[Kind]string{
	KindNoURL:      "no url",
	KindBadURL:     "bad url",
	KindNetwork:    "network error",
	KindHTTPStatus: "http status",
	KindJSONParse:  "json parse failure",
	KindException:  "exception",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kind sentinels, usable with errors.Is to match a whole branch.
var (
	ErrNoURL      = errors.New("no url")
	ErrBadURL     = errors.New("bad url")
	ErrNetwork    = errors.New("network error")
	ErrHTTPStatus = errors.New("unexpected status code")
	ErrJSONParse  = errors.New("json parse failure")
	ErrException  = errors.New("exception")
)

var sentinels = map[Kind]error{
	KindNoURL:      ErrNoURL,
	KindBadURL:     ErrBadURL,
	KindNetwork:    ErrNetwork,
	KindHTTPStatus: ErrHTTPStatus,
	KindJSONParse:  ErrJSONParse,
	KindException:  ErrException,
}

// Error is a request failure. Message is set for Network, JSONParse and
// Exception; StatusCode is set for HTTPStatus.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
}

// Preallocated errors for the payload-free kinds.
var (
	NoURL  = &Error{Kind: KindNoURL}
	BadURL = &Error{Kind: KindBadURL}
)

// Network reports a transport-level failure.
func Network(msg string) *Error {
	return &Error{Kind: KindNetwork, Message: msg}
}

// HTTPStatus reports a response whose status code is outside [200, 300).
func HTTPStatus(code int) *Error {
	return &Error{Kind: KindHTTPStatus, StatusCode: code}
}

// JSONParse reports a response body that could not be decoded into the
// requested type. msg is the decoder's diagnostic.
func JSONParse(msg string) *Error {
	return &Error{Kind: KindJSONParse, Message: msg}
}

// Exception reports any other anomaly.
func Exception(msg string) *Error {
	return &Error{Kind: KindException, Message: msg}
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNoURL, KindBadURL:
		return e.Kind.String()
	case KindHTTPStatus:
		return fmt.Sprintf("%v: %d", ErrHTTPStatus, e.StatusCode)
	default:
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
}

// Unwrap exposes the kind sentinel.
func (e *Error) Unwrap() error {
	return sentinels[e.Kind]
}

// Is reports whether target is an *Error with the same kind and payload.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return *e == *t
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	if e, ok := errors.AsType[*Error](err); ok {
		return e.Kind
	}
	return 0
}

// StatusCode returns the HTTP status carried by err, if it is an HTTPStatus
// failure.
func StatusCode(err error) (int, bool) {
	e, ok := errors.AsType[*Error](err)
	if !ok || e.Kind != KindHTTPStatus {
		return 0, false
	}
	return e.StatusCode, true
}
