package packet

import (
	"errors"
	"fmt"
)

// Conversion errors.
var (
	ErrInvalidUTF8 = errors.New("packet: data is not valid UTF-8")
	ErrUnknownType = errors.New("packet: unknown packet type")
)

// ConversionError reports that a packet could not be rendered to its wire form.
type ConversionError struct {
	Type Type
	Err  error
}

// Error returns the error message.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("packet: convert %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ConversionError) Unwrap() error {
	return e.Err
}
