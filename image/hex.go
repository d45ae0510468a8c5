package image

import (
	"fmt"
	"io"

	"github.com/marcinbor85/gohex"
)

// SegmentsFromHex parses Intel HEX input and returns its data blocks
// as image segments at the addresses recorded in the HEX file. Used by
// make_image so toolchain HEX output can feed an image directly,
// without a prior objcopy to raw binary.
func SegmentsFromHex(r io.Reader) ([]Segment, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("failed to parse Intel HEX input: %w", err)
	}

	var segs []Segment
	for _, ds := range mem.GetDataSegments() {
		data := make([]byte, len(ds.Data))
		copy(data, ds.Data)
		segs = append(segs, Segment{Addr: ds.Address, Data: data})
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("no data records in Intel HEX input")
	}
	return segs, nil
}
