package bootloader

import "time"

// Operation phases reported through ProgressCallback.
const (
	// PhaseConnecting covers the reset-and-sync handshake
	PhaseConnecting = "connecting"

	// PhaseErasing covers the erase performed by flash begin
	PhaseErasing = "erasing"

	// PhaseWriting covers RAM and flash block downloads
	PhaseWriting = "writing"

	// PhaseReading covers flash and memory readback
	PhaseReading = "reading"

	// PhaseComplete marks a finished operation
	PhaseComplete = "complete"
)

// Progress describes the state of a long-running operation. Passed to
// ProgressCallback as blocks move.
type Progress struct {
	// Phase is one of the Phase* constants
	Phase string

	// Current is the 1-based index of the block just transferred
	Current int

	// Total is the total number of blocks in this operation
	Total int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// Bytes is the number of payload bytes transferred so far
	Bytes int

	// Addr is the target address of the current block
	Addr uint32

	// Elapsed is the time since the operation started
	Elapsed time.Duration
}

// ProgressCallback is invoked as an operation advances. Implementations
// should return quickly; the device is waiting for the next command
// while the callback runs.
type ProgressCallback func(Progress)

// Logger is an optional logging interface. It matches any structured
// key/value logging framework with a thin adapter.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
