// Package image provides parsing and serialization of ESP8266
// firmware image files.
//
// # Image File Format
//
// An image is a binary container holding up to 16 load segments, each
// tagged with its target memory address. All multi-byte fields are
// little-endian:
//
//	Header (8 bytes):
//	  [magic=0xE9][segment count][flash mode][flash size|freq][entry point:u32]
//	Per segment:
//	  [load address:u32][size:u32][data...]
//	Trailer:
//	  zero padding, then one checksum byte positioned so the total
//	  file length is a multiple of 16
//
// The checksum is the XOR fold of every segment's payload bytes (not
// the segment headers), seeded with 0xEF, folded in file order.
//
// # Usage
//
// Parse an image from disk:
//
//	img, err := image.Parse("firmware.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Entry point: 0x%08X\n", img.EntryPoint)
//	fmt.Printf("%d segments\n", len(img.Segments))
//
// Build one from raw blobs and write it out:
//
//	img := image.New()
//	img.AddSegment(0x40100000, text)
//	img.AddSegment(0x3FFE8000, data)
//	img.EntryPoint = entry
//	err := img.Save("out.bin")
//
// # Error Handling
//
// Parsing untrusted files fails fast with structured errors: bad
// magic, more than 16 segments, a segment with an implausible address
// or size, or a truncated segment. A stored checksum that does not
// match the recomputed one is deliberately NOT a parse error; it is a
// diagnostic surfaced by ValidateChecksum for inspection tooling.
package image
