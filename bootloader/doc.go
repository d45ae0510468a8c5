// Package bootloader drives the ESP8266 mask-ROM serial bootloader.
//
// # Overview
//
// This package orchestrates the complete flashing workflow:
//   - Forcing the chip into bootloader mode via the DTR/RTS control lines
//   - Synchronizing with the ROM's auto-baud handshake
//   - Reading and writing target registers
//   - Downloading data to RAM and flash with the begin/block/finish
//     command sequences
//   - Reading flash back through a small stub executed on the chip
//
// # Basic Usage
//
//	p, err := port.Open("/dev/ttyUSB0", port.DefaultBaud)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	client := bootloader.New(p)
//	if err := client.Connect(); err != nil {
//	    log.Fatal(err)
//	}
//
//	err = client.WriteFlash(0x00000, firmware, bootloader.FlashInfo{
//	    Mode:     image.FlashModeQIO,
//	    SizeFreq: image.PackSizeFreq(image.FlashSize4M, image.FlashFreq40M),
//	})
//
// # Progress Tracking
//
// Long operations report progress through a callback:
//
//	client := bootloader.New(p,
//	    bootloader.WithProgressCallback(func(pr bootloader.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", pr.Phase, pr.Percentage)
//	    }),
//	)
//
// # Logging
//
// Integrate with any logging framework by providing a Logger:
//
//	client := bootloader.New(p, bootloader.WithLogger(myLogger))
//
// # Session Model
//
// A Client exclusively owns its connection; the protocol is strictly
// half-duplex with one command outstanding at a time, so Client is NOT
// safe for concurrent use. Several sequences temporarily change the
// connection's read timeout; the client always restores the operating
// timeout before returning, including on error paths.
//
// # Error Handling
//
// Failures carry structured types:
//   - protocol.EscapeError, protocol.FramingError, protocol.DirectionError,
//     protocol.ErrTimeout: the wire state can no longer be trusted
//   - OpError: the ROM answered with a non-success status
//     (includes the block sequence number for download failures)
//   - ResponseMismatchError: the response retry budget was exhausted
//   - ConnectError: the chip never entered bootloader mode (usually a
//     cabling or boot-strapping problem, not a protocol bug)
//   - ErrChipUnsupported, MACReadError: MAC readout outcomes
package bootloader
