package bootloader

import (
	"errors"
	"fmt"
)

// OpError indicates the ROM answered a command with a non-success
// status code.
type OpError struct {
	// Op names the failing operation, e.g. "flash block"
	Op string

	// Seq is the block sequence number for download failures, -1
	// when not applicable
	Seq int

	// Status is the raw status body returned by the device
	Status []byte
}

func (e *OpError) Error() string {
	if e.Seq >= 0 {
		return fmt.Sprintf("%s failed at seq %d (status % 02X)", e.Op, e.Seq, e.Status)
	}
	return fmt.Sprintf("%s failed (status % 02X)", e.Op, e.Status)
}

// ResponseMismatchError indicates that no response matching the
// request's opcode arrived within the bounded retry budget.
type ResponseMismatchError struct {
	// Opcode is the request opcode that went unanswered
	Opcode byte
}

func (e *ResponseMismatchError) Error() string {
	return fmt.Sprintf("response doesn't match request 0x%02X after %d responses", e.Opcode, responseRetries)
}

// ConnectError indicates the chip never completed the sync handshake.
// This is almost always a wiring or boot-mode problem rather than a
// protocol failure.
type ConnectError struct {
	// Attempts is the total number of sync attempts made
	Attempts int
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to ESP8266 after %d attempts (check wiring and boot mode)", e.Attempts)
}

// ErrChipUnsupported is returned by ReadMAC when the OTP flag bit
// identifies the chip as an ESP8089, whose MAC layout is different.
var ErrChipUnsupported = errors.New("ESP8089 chip detected, MAC readout not supported")

// MACReadError indicates the OTP words do not carry a recognized OUI
// selector.
type MACReadError struct {
	// Flag is the unrecognized OUI selector byte from OTP
	Flag byte
}

func (e *MACReadError) Error() string {
	return fmt.Sprintf("MAC read error: unrecognized OUI selector 0x%02X", e.Flag)
}
