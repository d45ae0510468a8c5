package protocol

// Command opcodes known to the ESP8266 ROM bootloader.
const (
	// OpFlashBegin enters flash download mode and erases the target area
	OpFlashBegin = 0x02

	// OpFlashData sends one block of a flash download
	OpFlashData = 0x03

	// OpFlashEnd leaves flash download mode, optionally rebooting
	OpFlashEnd = 0x04

	// OpMemBegin enters RAM download mode
	OpMemBegin = 0x05

	// OpMemEnd leaves RAM download mode, optionally jumping to an entry point
	OpMemEnd = 0x06

	// OpMemData sends one block of a RAM download
	OpMemData = 0x07

	// OpSync performs the baud-rate detection handshake
	OpSync = 0x08

	// OpWriteReg writes a masked value to a target memory address
	OpWriteReg = 0x09

	// OpReadReg reads a 32-bit word from a target memory address
	OpReadReg = 0x0A
)

// Packet direction bytes, first byte of every header.
const (
	// DirRequest marks a host-to-device packet
	DirRequest = 0x00

	// DirResponse marks a device-to-host packet
	DirResponse = 0x01
)

// SLIP framing bytes.
const (
	// FrameEnd delimits every frame on the wire (0xC0)
	FrameEnd = 0xC0

	// FrameEsc introduces a two-byte escape sequence (0xDB)
	FrameEsc = 0xDB

	// EscEnd follows FrameEsc to encode a literal FrameEnd byte
	EscEnd = 0xDC

	// EscEsc follows FrameEsc to encode a literal FrameEsc byte
	EscEsc = 0xDD
)

// HeaderSize is the fixed header size in bytes:
// direction(1) + opcode(1) + length(2) + checksum-or-value(4).
const HeaderSize = 8

// StatusOKSize is the size of the success code body appended by the
// ROM to register and download command responses.
const StatusOKSize = 2

// IsStatusOK reports whether a response body is the ROM's two-byte
// all-zero success code.
func IsStatusOK(body []byte) bool {
	return len(body) == StatusOKSize && body[0] == 0x00 && body[1] == 0x00
}
