package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/pontusntengnas/httphook/errs"
)

// Decoder holds JSON decoding settings shared by every call of a hook.
// The zero value decodes like json.Unmarshal.
type Decoder struct {
	useNumber             bool
	disallowUnknownFields bool
}

// DecoderOption configures a [Decoder].
type DecoderOption func(*Decoder)

// NewDecoder returns a Decoder with the given options applied.
func NewDecoder(opts ...DecoderOption) Decoder {
	var d Decoder
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithJSONNumber tells the decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumber() DecoderOption {
	return func(d *Decoder) {
		d.useNumber = true
	}
}

// WithDisallowUnknownFields rejects objects containing keys that do not
// match a destination field.
func WithDisallowUnknownFields() DecoderOption {
	return func(d *Decoder) {
		d.disallowUnknownFields = true
	}
}

// Decode parses raw into a new T. Any syntax error, type mismatch or trailing
// data is reported as errs.JSONParse carrying the parser's message.
func Decode[T any](d Decoder, raw []byte) (T, error) {
	var val T

	dec := json.NewDecoder(bytes.NewReader(raw))
	if d.useNumber {
		dec.UseNumber()
	}
	if d.disallowUnknownFields {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(&val); err != nil {
		var zero T
		return zero, errs.JSONParse(err.Error())
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		var zero T
		return zero, errs.JSONParse("invalid character after top-level value")
	}

	return val, nil
}
