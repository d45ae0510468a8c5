package protocol

import (
	"encoding/binary"
	"fmt"
)

// EncodeCommand builds the wire form of a request packet: the fixed
// 8-byte header followed by the body. The checksum argument is the
// block checksum for data commands and zero for everything else.
//
// Header layout (little-endian):
//
//	[DirRequest][opcode][len(body):u16][checksum:u32]
func EncodeCommand(op byte, body []byte, checksum uint32) []byte {
	pkt := make([]byte, HeaderSize+len(body))
	pkt[0] = DirRequest
	pkt[1] = op
	binary.LittleEndian.PutUint16(pkt[2:4], uint16(len(body)))
	binary.LittleEndian.PutUint32(pkt[4:8], checksum)
	copy(pkt[HeaderSize:], body)
	return pkt
}

// ResponseHeader is the parsed fixed header of a response packet.
type ResponseHeader struct {
	// Opcode echoes the opcode of the request being answered
	Opcode byte

	// Length is the size of the variable-length body that follows
	Length uint16

	// Value carries command-specific data, e.g. the word read by READ_REG
	Value uint32
}

// ParseResponseHeader validates and decodes an 8-byte response header.
// A direction byte other than DirResponse is a fatal DirectionError.
func ParseResponseHeader(hdr []byte) (ResponseHeader, error) {
	if len(hdr) != HeaderSize {
		return ResponseHeader{}, fmt.Errorf("response header must be %d bytes, got %d", HeaderSize, len(hdr))
	}
	if hdr[0] != DirResponse {
		return ResponseHeader{}, &DirectionError{Got: hdr[0]}
	}
	return ResponseHeader{
		Opcode: hdr[1],
		Length: binary.LittleEndian.Uint16(hdr[2:4]),
		Value:  binary.LittleEndian.Uint32(hdr[4:8]),
	}, nil
}
