package image

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/matthewtherat/xtensa-toolchain/protocol"
)

// WriteTo serializes the image. The trailing checksum byte is always
// freshly computed from the segments, and zero padding places it so
// the total length is a multiple of 16.
func (img *Image) WriteTo(w io.Writer) (int64, error) {
	if len(img.Segments) > MaxSegments {
		return 0, &TooManySegmentsError{Count: byte(len(img.Segments))}
	}

	var written int64

	hdr := make([]byte, HeaderSize)
	hdr[0] = Magic
	hdr[1] = byte(len(img.Segments))
	hdr[2] = img.FlashMode
	hdr[3] = img.FlashSizeFreq
	binary.LittleEndian.PutUint32(hdr[4:8], img.EntryPoint)

	n, err := w.Write(hdr)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("failed to write image header: %w", err)
	}

	state := byte(protocol.ChecksumInit)
	for i, seg := range img.Segments {
		segHdr := make([]byte, SegmentHeaderSize)
		binary.LittleEndian.PutUint32(segHdr[0:4], seg.Addr)
		binary.LittleEndian.PutUint32(segHdr[4:8], uint32(len(seg.Data)))

		n, err = w.Write(segHdr)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write header of segment %d: %w", i, err)
		}

		n, err = w.Write(seg.Data)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write data of segment %d: %w", i, err)
		}

		state = protocol.Checksum(seg.Data, state)
	}

	pad := (FileAlignment - 1) - int(written)%FileAlignment
	trailer := make([]byte, pad+1)
	trailer[pad] = state

	n, err = w.Write(trailer)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("failed to write image trailer: %w", err)
	}

	return written, nil
}

// Save writes the serialized image to the given file path.
func (img *Image) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := img.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
