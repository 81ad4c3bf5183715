package payload

import (
	"errors"
	"fmt"
)

// ErrAborted is returned when the queue is closed while an encoder is
// waiting for the first packet of a payload. The session ended; the poll
// should finish without a body.
var ErrAborted = errors.New("payload: aborted, queue closed")

// ErrUnknownMode is returned by Encode for a Mode it does not know.
var ErrUnknownMode = errors.New("payload: unknown mode")

// EncodeError reports the packet that could not be encoded. The whole
// payload is discarded.
type EncodeError struct {
	Index int   // Position of the packet in the batch
	Err   error // Usually a *packet.ConversionError
}

// Error returns the error message.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("payload: encode packet %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *EncodeError) Unwrap() error {
	return e.Err
}
