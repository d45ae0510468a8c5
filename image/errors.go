package image

import "fmt"

// BadMagicError indicates the file does not start with the image magic
// byte.
type BadMagicError struct {
	// Got is the first byte of the file
	Got byte
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("invalid firmware image: magic byte 0x%02X, expected 0x%02X", e.Got, Magic)
}

// TooManySegmentsError indicates a segment count above the format
// limit. Parsing stops before reading any segment.
type TooManySegmentsError struct {
	// Count is the segment count declared in the header
	Count byte
}

func (e *TooManySegmentsError) Error() string {
	return fmt.Sprintf("invalid firmware image: %d segments, maximum is %d", e.Count, MaxSegments)
}

// SuspiciousSegmentError indicates a segment header whose address or
// size is outside the plausible range for the chip. Parsing stops
// before reading the segment data.
type SuspiciousSegmentError struct {
	// Addr is the declared load address
	Addr uint32

	// Size is the declared segment size
	Size uint32
}

func (e *SuspiciousSegmentError) Error() string {
	return fmt.Sprintf("suspicious segment 0x%X, length %d", e.Addr, e.Size)
}

// TruncatedSegmentError indicates the file ended before a segment's
// declared size was satisfied.
type TruncatedSegmentError struct {
	// Addr is the declared load address
	Addr uint32

	// Size is the declared segment size
	Size uint32

	// Read is the number of payload bytes actually present
	Read int
}

func (e *TruncatedSegmentError) Error() string {
	return fmt.Sprintf("end of file reading segment 0x%X, length %d (actual length %d)", e.Addr, e.Size, e.Read)
}
