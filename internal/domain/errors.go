package domain

import (
	"errors"
	"fmt"
)

// ErrNumericParse marks a group that was recognised structurally but whose
// numeric field could not be read.
var ErrNumericParse = errors.New("numeric field not parseable")

// Decoded field names used in DecodeError.
const (
	FieldWind       = "wind"
	FieldCeiling    = "ceiling"
	FieldVisibility = "visibility"
)

// DecodeError reports which field and token failed to decode.
// It unwraps to ErrNumericParse.
type DecodeError struct {
	Field string
	Token Token
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: token %d %q: %v", e.Field, e.Token.Index, e.Token.Text, ErrNumericParse)
}

func (e *DecodeError) Unwrap() error { return ErrNumericParse }

func decodeErr(field string, tok Token) error {
	return &DecodeError{Field: field, Token: tok}
}
