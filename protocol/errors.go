package protocol

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when the underlying port's read timeout
// elapses before the requested bytes arrived. The wire state is
// unknown afterwards, so callers must not retry the read.
var ErrTimeout = errors.New("timed out waiting for serial data")

// EscapeError indicates an escape byte followed by something other
// than the two designated substitute bytes. The stream cannot be
// resynchronized after this.
type EscapeError struct {
	// Byte is the offending byte that followed the escape byte
	Byte byte
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("invalid SLIP escape sequence 0x%02X 0x%02X", FrameEsc, e.Byte)
}

// FramingError indicates a missing frame delimiter where one was
// required (head or tail of a packet).
type FramingError struct {
	// Got is the byte read in place of the delimiter
	Got byte
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("invalid packet delimiter: got 0x%02X, expected 0x%02X", e.Got, FrameEnd)
}

// DirectionError indicates a response header whose direction byte is
// not DirResponse. The device only ever emits responses, so this means
// the stream is corrupt.
type DirectionError struct {
	// Got is the direction byte found in the header
	Got byte
}

func (e *DirectionError) Error() string {
	return fmt.Sprintf("invalid response direction 0x%02X, expected 0x%02X", e.Got, DirResponse)
}
