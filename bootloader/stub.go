package bootloader

// sflashStub is a tiny Xtensa routine executed from IRAM to read SPI
// flash, since the ROM bootloader has no flash read command. Three
// little-endian parameter words (offset, block size, block count) are
// prepended before download; the stub calls the ROM's SPIRead and
// send_packet routines to push one framed block per read, then spins.
var sflashStub = []byte{
	0x80, 0x3C, 0x00, 0x40, 0x1C, 0x4B, 0x00, 0x40,
	0x21, 0x11, 0x00, 0x40, 0x00, 0x80, 0xFE, 0x3F,
	0xC1, 0xFB, 0xFF, 0xD1, 0xF8, 0xFF, 0x2D, 0x0D,
	0x31, 0xFD, 0xFF, 0x41, 0xF7, 0xFF, 0x4A, 0xDD,
	0x51, 0xF9, 0xFF, 0xC0, 0x05, 0x00, 0x21, 0xF9,
	0xFF, 0x31, 0xF3, 0xFF, 0x41, 0xF5, 0xFF, 0xC0,
	0x04, 0x00, 0x0B, 0xCC, 0x56, 0xEC, 0xFD, 0x06,
	0xFF, 0xFF, 0x00, 0x00,
}
