// Package port wraps a go.bug.st/serial port with the small surface
// the bootloader session needs: raw reads/writes with a mutable read
// timeout, the two control lines used for the reset-to-bootloader
// sequence, and buffer flushing.
package port

import (
	"time"

	"go.bug.st/serial"
)

// DefaultBaud is the default baud rate. The ROM auto-bauds, so more or
// less any rate works.
const DefaultBaud = 115200

// Port is an open serial connection to the device. It is exclusively
// owned by one bootloader session for its lifetime.
type Port struct {
	p serial.Port
}

// Open opens the serial device at the given baud rate with the 8N1
// settings the ROM expects.
func Open(device string, baud int) (*Port, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	return &Port{p: p}, nil
}

// Read reads raw bytes from the port. A read that hits the configured
// timeout returns (0, nil), per go.bug.st/serial semantics; the
// framing layer translates that into a timeout error.
func (p *Port) Read(b []byte) (int, error) {
	return p.p.Read(b)
}

// Write writes raw bytes to the port.
func (p *Port) Write(b []byte) (int, error) {
	return p.p.Write(b)
}

// SetReadTimeout changes the blocking-read timeout. Several protocol
// sequences mutate this temporarily; callers must restore it on every
// exit path.
func (p *Port) SetReadTimeout(d time.Duration) error {
	return p.p.SetReadTimeout(d)
}

// SetDTR drives the DTR output. On common ESP8266 boards DTR is wired
// to GPIO0 (active low selects the serial bootloader).
func (p *Port) SetDTR(level bool) error {
	return p.p.SetDTR(level)
}

// SetRTS drives the RTS output. On common boards RTS is wired to
// CH_PD or nRESET (active low holds the chip in reset).
func (p *Port) SetRTS(level bool) error {
	return p.p.SetRTS(level)
}

// FlushInput discards unread input buffered by the driver.
func (p *Port) FlushInput() error {
	return p.p.ResetInputBuffer()
}

// FlushOutput discards unsent output buffered by the driver.
func (p *Port) FlushOutput() error {
	return p.p.ResetOutputBuffer()
}

// Close closes the underlying serial port.
func (p *Port) Close() error {
	return p.p.Close()
}
