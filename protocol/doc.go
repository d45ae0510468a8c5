// Package protocol implements the ESP8266 ROM bootloader wire protocol.
//
// This package provides the SLIP framing layer and the command packet
// codec used to talk to the mask-ROM serial bootloader of the ESP8266.
//
// # Protocol Overview
//
// Every packet travels inside a SLIP frame:
//
//	[0xC0][escaped header+body][0xC0]
//
// where 0xC0 is escaped as 0xDB 0xDC and 0xDB as 0xDB 0xDD inside the
// frame. The fixed 8-byte header is little-endian:
//
//	Request:  [0x00][opcode][length:u16][checksum:u32] + body
//	Response: [0x01][opcode][length:u16][value:u32]    + body
//
// The checksum field is only meaningful for the data-carrying download
// commands (MEM_DATA, FLASH_DATA); it is the XOR fold of the block
// payload seeded with ChecksumInit. For every other command it is zero.
//
// # Framing
//
// Use Framer for byte-exact framing over a serial connection:
//
//	f := protocol.NewFramer(port)
//	f.WriteFrame(protocol.EncodeCommand(protocol.OpSync, payload, 0))
//	if err := f.ReadFrameDelimiter(); err != nil { ... }
//	hdr, err := f.Read(protocol.HeaderSize)
//
// Framer.Read returns logically unescaped bytes; an escape byte
// followed by anything other than the two designated substitutes is a
// fatal EscapeError, since the stream can no longer be trusted.
//
// # Error Handling
//
// Framing violations are reported with dedicated types (EscapeError,
// FramingError, DirectionError) so callers can distinguish a corrupt
// wire from a device-reported failure. A read that exhausts the
// underlying port's timeout surfaces as ErrTimeout.
package protocol
