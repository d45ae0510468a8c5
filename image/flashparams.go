package image

import "fmt"

// FlashMode selects how the chip accesses its SPI flash. Stored in
// byte 2 of the image header.
type FlashMode byte

// Flash access modes.
const (
	FlashModeQIO  FlashMode = 0x00
	FlashModeQOUT FlashMode = 0x01
	FlashModeDIO  FlashMode = 0x02
	FlashModeDOUT FlashMode = 0x03
)

// FlashSize is the SPI flash capacity nibble, stored in the high
// nibble of header byte 3. Values are in megabit, the -c1/-c2 variants
// are the split layouts of the larger parts.
type FlashSize byte

// Flash sizes.
const (
	FlashSize4M    FlashSize = 0x00
	FlashSize2M    FlashSize = 0x10
	FlashSize8M    FlashSize = 0x20
	FlashSize16M   FlashSize = 0x30
	FlashSize32M   FlashSize = 0x40
	FlashSize16MC1 FlashSize = 0x50
	FlashSize32MC1 FlashSize = 0x60
	FlashSize32MC2 FlashSize = 0x70
)

// FlashFreq is the SPI flash clock nibble, stored in the low nibble of
// header byte 3.
type FlashFreq byte

// Flash frequencies.
const (
	FlashFreq40M FlashFreq = 0x0
	FlashFreq26M FlashFreq = 0x1
	FlashFreq20M FlashFreq = 0x2
	FlashFreq80M FlashFreq = 0xF
)

var flashModes = map[string]FlashMode{
	"qio":  FlashModeQIO,
	"qout": FlashModeQOUT,
	"dio":  FlashModeDIO,
	"dout": FlashModeDOUT,
}

var flashSizes = map[string]FlashSize{
	"4m":     FlashSize4M,
	"2m":     FlashSize2M,
	"8m":     FlashSize8M,
	"16m":    FlashSize16M,
	"32m":    FlashSize32M,
	"16m-c1": FlashSize16MC1,
	"32m-c1": FlashSize32MC1,
	"32m-c2": FlashSize32MC2,
}

var flashFreqs = map[string]FlashFreq{
	"40m": FlashFreq40M,
	"26m": FlashFreq26M,
	"20m": FlashFreq20M,
	"80m": FlashFreq80M,
}

// ParseFlashMode maps a CLI flash mode name to its header value.
func ParseFlashMode(s string) (FlashMode, error) {
	m, ok := flashModes[s]
	if !ok {
		return 0, fmt.Errorf("invalid flash mode %q (valid: qio, qout, dio, dout)", s)
	}
	return m, nil
}

// ParseFlashSize maps a CLI flash size name to its header nibble.
func ParseFlashSize(s string) (FlashSize, error) {
	v, ok := flashSizes[s]
	if !ok {
		return 0, fmt.Errorf("invalid flash size %q (valid: 4m, 2m, 8m, 16m, 32m, 16m-c1, 32m-c1, 32m-c2)", s)
	}
	return v, nil
}

// ParseFlashFreq maps a CLI flash frequency name to its header nibble.
func ParseFlashFreq(s string) (FlashFreq, error) {
	v, ok := flashFreqs[s]
	if !ok {
		return 0, fmt.Errorf("invalid flash frequency %q (valid: 40m, 26m, 20m, 80m)", s)
	}
	return v, nil
}

// PackSizeFreq packs the size and frequency nibbles into header byte 3.
func PackSizeFreq(size FlashSize, freq FlashFreq) byte {
	return byte(size) | byte(freq)
}
