package image

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Parse parses a firmware image from the given file path.
//
// Example:
//
//	img, err := image.Parse("firmware.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Parse(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses a firmware image from any io.Reader. Structural
// violations fail before any further bytes are read, so a hostile
// header cannot trigger large allocations or reads.
func ParseReader(r io.Reader) (*Image, error) {
	hdr := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}

	if hdr[0] != Magic {
		return nil, &BadMagicError{Got: hdr[0]}
	}
	count := hdr[1]
	if count > MaxSegments {
		return nil, &TooManySegmentsError{Count: count}
	}

	img := &Image{
		FlashMode:     hdr[2],
		FlashSizeFreq: hdr[3],
		EntryPoint:    binary.LittleEndian.Uint32(hdr[4:8]),
		Segments:      make([]Segment, 0, count),
	}

	pos := HeaderSize
	for i := 0; i < int(count); i++ {
		segHdr := make([]byte, SegmentHeaderSize)
		if _, err := io.ReadFull(r, segHdr); err != nil {
			return nil, fmt.Errorf("failed to read header of segment %d: %w", i, err)
		}
		addr := binary.LittleEndian.Uint32(segHdr[0:4])
		size := binary.LittleEndian.Uint32(segHdr[4:8])

		if addr < SegmentMinAddr || addr > SegmentMaxAddr || size > SegmentMaxSize {
			return nil, &SuspiciousSegmentError{Addr: addr, Size: size}
		}

		data := make([]byte, size)
		n, err := io.ReadFull(r, data)
		if err != nil {
			return nil, &TruncatedSegmentError{Addr: addr, Size: size, Read: n}
		}

		img.Segments = append(img.Segments, Segment{Addr: addr, Data: data})
		pos += SegmentHeaderSize + int(size)
	}

	// The checksum is stored in the last byte so that the file is a
	// multiple of 16 bytes; skip the padding in front of it.
	pad := (FileAlignment - 1) - pos%FileAlignment
	if pad > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(pad)); err != nil {
			return nil, fmt.Errorf("failed to skip image padding: %w", err)
		}
	}

	cs := make([]byte, 1)
	if _, err := io.ReadFull(r, cs); err != nil {
		return nil, fmt.Errorf("failed to read image checksum: %w", err)
	}
	img.Checksum = cs[0]

	return img, nil
}
