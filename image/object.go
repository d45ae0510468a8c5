package image

import "fmt"

// Object provides symbol and section access to a compiled firmware
// object. Implementations typically shell out to the Xtensa toolchain
// (see the toolchain package); tests inject a fake.
type Object interface {
	// SymbolAddr resolves a symbol name to its address
	SymbolAddr(name string) (uint32, error)

	// Section returns the raw bytes of a named section
	Section(name string) ([]byte, error)

	// EntryPoint returns the object's declared entry point address
	EntryPoint() (uint32, error)
}

// IROMBase is the memory address the SPI-flash-mapped code region
// starts at; the irom segment's file offset in flash is its link
// address minus this base.
const IROMBase = 0x40200000

// ramSections are the sections loaded into the main image, paired
// with the linker symbol marking each one's load address.
var ramSections = []struct {
	section     string
	startSymbol string
}{
	{".text", "_text_start"},
	{".data", "_data_start"},
	{".rodata", "_rodata_start"},
}

// ObjectImage couples the RAM-resident firmware image with the
// flash-mapped irom blob, which is written to flash as a raw file at
// its own offset rather than as an image segment.
type ObjectImage struct {
	// Image holds the RAM-resident segments, flashed at offset 0
	Image *Image

	// IROM is the raw .irom0.text section contents
	IROM []byte

	// IROMOffset is the flash offset the irom blob belongs at
	IROMOffset uint32
}

// FromObject builds a firmware image from a compiled object. The entry
// point comes from entrySymbol, or from the object's own entry point
// when entrySymbol is empty. Empty sections are skipped, matching
// AddSegment semantics.
func FromObject(obj Object, entrySymbol string) (*ObjectImage, error) {
	img := New()

	var entry uint32
	var err error
	if entrySymbol != "" {
		entry, err = obj.SymbolAddr(entrySymbol)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve entry symbol %q: %w", entrySymbol, err)
		}
	} else {
		entry, err = obj.EntryPoint()
		if err != nil {
			return nil, fmt.Errorf("failed to read entry point: %w", err)
		}
	}
	img.EntryPoint = entry

	for _, s := range ramSections {
		data, err := obj.Section(s.section)
		if err != nil {
			return nil, fmt.Errorf("failed to load section %s: %w", s.section, err)
		}
		addr, err := obj.SymbolAddr(s.startSymbol)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", s.startSymbol, err)
		}
		img.AddSegment(addr, data)
	}

	irom, err := obj.Section(".irom0.text")
	if err != nil {
		return nil, fmt.Errorf("failed to load section .irom0.text: %w", err)
	}
	iromStart, err := obj.SymbolAddr("_irom0_text_start")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve _irom0_text_start: %w", err)
	}
	if iromStart < IROMBase {
		return nil, fmt.Errorf("irom start 0x%08X is below the flash-mapped base 0x%08X", iromStart, uint32(IROMBase))
	}

	return &ObjectImage{
		Image:      img,
		IROM:       irom,
		IROMOffset: iromStart - IROMBase,
	}, nil
}
