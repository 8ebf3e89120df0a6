// Package response classifies transport outcomes and decodes JSON bodies
// into caller-chosen types.
package response

import (
	"github.com/pontusntengnas/httphook/errs"
	"github.com/pontusntengnas/httphook/transport"
)

// Messages reported as errs.Exception.
const (
	MsgNoResponse = "HttpResponse could not be created"
	MsgEmptyBody  = "Response Data object is empty"
)

// Interpret validates an outcome and returns its body on success.
//
// A transport failure becomes errs.Network and ends classification. A missing
// response, a status outside [200, 300) or an empty success body are reported
// as errs.Exception, errs.HTTPStatus and errs.Exception respectively.
func Interpret(o transport.Outcome) ([]byte, error) {
	if o.Err != nil {
		return nil, errs.Network(o.Err.Error())
	}

	if o.StatusCode <= 0 {
		return nil, errs.Exception(MsgNoResponse)
	}

	if !Success(o.StatusCode) {
		return nil, errs.HTTPStatus(o.StatusCode)
	}

	if len(o.Body) == 0 {
		return nil, errs.Exception(MsgEmptyBody)
	}

	return o.Body, nil
}

// Success reports whether code is in [200, 300).
func Success(code int) bool {
	return code >= 200 && code < 300
}
