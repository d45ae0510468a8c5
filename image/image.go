package image

import (
	"github.com/matthewtherat/xtensa-toolchain/protocol"
)

// Image format constants.
const (
	// Magic is the first byte of every application image (0xE9)
	Magic = 0xE9

	// MaxSegments is the most segments an image may carry
	MaxSegments = 16

	// HeaderSize is the image header size in bytes
	HeaderSize = 8

	// SegmentHeaderSize is the per-segment header size in bytes
	SegmentHeaderSize = 8

	// SegmentAlignment is the required alignment of segment data
	SegmentAlignment = 4

	// FileAlignment is the alignment of the total file length; the
	// trailing checksum byte is positioned to satisfy it
	FileAlignment = 16
)

// Plausibility bounds applied to segments parsed from untrusted files.
// The window covers the ESP8266 data RAM, instruction RAM and mapped
// flash regions.
const (
	// SegmentMinAddr is the lowest plausible load address
	SegmentMinAddr = 0x3FFE0000

	// SegmentMaxAddr is the highest plausible load address (inclusive)
	SegmentMaxAddr = 0x40200000

	// SegmentMaxSize is the largest plausible individual segment size
	SegmentMaxSize = 65536
)

// Segment is a contiguous block of firmware bytes tagged with its
// target load address. Data length is always a multiple of 4 for
// segments created through AddSegment.
type Segment struct {
	// Addr is the target memory address the segment loads at
	Addr uint32

	// Data is the raw segment payload
	Data []byte
}

// Image is a parsed or under-construction firmware image.
type Image struct {
	// EntryPoint is the address execution jumps to after a RAM load;
	// zero means "not set"
	EntryPoint uint32

	// FlashMode selects the SPI flash access mode (qio/qout/dio/dout)
	FlashMode byte

	// FlashSizeFreq packs the SPI flash size (high nibble) and
	// frequency (low nibble)
	FlashSizeFreq byte

	// Segments holds the load segments in file order
	Segments []Segment

	// Checksum is the trailing checksum byte as stored in the file.
	// Only meaningful on parsed images; serialization always writes a
	// freshly computed value.
	Checksum byte
}

// New creates an empty image.
func New() *Image {
	return &Image{}
}

// AddSegment appends a segment, zero-padding its data to a 4-byte
// boundary. Zero-length input is skipped and leaves the image
// unchanged. The data is copied.
func (img *Image) AddSegment(addr uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	padded := len(data)
	if r := padded % SegmentAlignment; r != 0 {
		padded += SegmentAlignment - r
	}
	buf := make([]byte, padded)
	copy(buf, data)
	img.Segments = append(img.Segments, Segment{Addr: addr, Data: buf})
}

// ComputeChecksum folds the checksum over every segment's payload in
// file order, starting from the ROM seed.
func (img *Image) ComputeChecksum() byte {
	state := byte(protocol.ChecksumInit)
	for _, seg := range img.Segments {
		state = protocol.Checksum(seg.Data, state)
	}
	return state
}

// ValidateChecksum recomputes the checksum and compares it to the
// stored trailing byte. A mismatch on a parsed image is diagnostic,
// not fatal; inspection tooling reports it to the user.
func (img *Image) ValidateChecksum() bool {
	return img.ComputeChecksum() == img.Checksum
}
