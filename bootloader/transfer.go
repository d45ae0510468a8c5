package bootloader

import (
	"github.com/matthewtherat/xtensa-toolchain/protocol"
)

// Block sizes for the download command sequences.
const (
	// RAMBlockSize is the maximum payload per RAM download block
	RAMBlockSize = 0x1800

	// FlashBlockSize is the payload per flash download block; flash
	// blocks are always padded to exactly this size
	FlashBlockSize = 0x400
)

// Flash geometry used by the erase-size calculation.
const (
	flashSectorSize = 4096
	sectorsPerBlock = 16
)

// MemBegin starts a RAM download of size bytes to offset, split into
// the given number of blocks of blockSize bytes each.
func (c *Client) MemBegin(size, blocks, blockSize, offset uint32) error {
	return c.checkedCommand("enter RAM download mode", -1,
		protocol.OpMemBegin, packWords(size, blocks, blockSize, offset), 0)
}

// MemBlock downloads one RAM block. seq is the 0-based block index
// within the transfer started by MemBegin.
func (c *Client) MemBlock(data []byte, seq uint32) error {
	body := append(packWords(uint32(len(data)), seq, 0, 0), data...)
	checksum := uint32(protocol.Checksum(data, protocol.ChecksumInit))
	return c.checkedCommand("RAM block", int(seq), protocol.OpMemData, body, checksum)
}

// MemFinish ends a RAM download. A non-zero entry makes the ROM jump
// there immediately; zero leaves the chip in the bootloader.
func (c *Client) MemFinish(entry uint32) error {
	var flag uint32
	if entry == 0 {
		flag = 1
	}
	return c.checkedCommand("leave RAM download mode", -1,
		protocol.OpMemEnd, packWords(flag, entry), 0)
}

// flashBeginBlocks is the block-count word sent with flash begin. The
// ROM ignores it, so a fixed value is used rather than the real count.
const flashBeginBlocks = 0x200

// FlashBegin starts a flash download of size bytes to offset. The ROM
// erases the target region before acknowledging, which can take
// several seconds, so this runs under the erase timeout.
func (c *Client) FlashBegin(size, offset uint32) error {
	erase := eraseSize(size, offset)
	return c.withReadTimeout(c.config.EraseTimeout, func() error {
		return c.checkedCommand("enter flash download mode", -1,
			protocol.OpFlashBegin, packWords(erase, flashBeginBlocks, FlashBlockSize, offset), 0)
	})
}

// FlashBlock downloads one flash block. Callers pad data to
// FlashBlockSize; seq is the 0-based block index.
func (c *Client) FlashBlock(data []byte, seq uint32) error {
	body := append(packWords(uint32(len(data)), seq, 0, 0), data...)
	checksum := uint32(protocol.Checksum(data, protocol.ChecksumInit))
	return c.checkedCommand("flash block", int(seq), protocol.OpFlashData, body, checksum)
}

// FlashFinish ends a flash download. With reboot set the chip resets
// and boots the freshly written firmware; otherwise it stays in the
// bootloader.
func (c *Client) FlashFinish(reboot bool) error {
	var flag uint32
	if !reboot {
		flag = 1
	}
	return c.checkedCommand("leave flash download mode", -1,
		protocol.OpFlashEnd, packWords(flag), 0)
}

// eraseSize works around a bug in the ESP8266 ROM: for writes
// straddling the first 16-sector block, passing the true size makes
// the ROM erase roughly twice the requested area. The value returned
// here compensates so the region actually erased matches the write.
// Known outputs: (4096,0) erases 4096, (100000,0) erases 53248,
// (1000000,0) erases 937984.
func eraseSize(size, offset uint32) uint32 {
	sectors := (size + flashSectorSize - 1) / flashSectorSize
	startSector := offset / flashSectorSize

	head := sectorsPerBlock - startSector%sectorsPerBlock
	if head > sectors {
		head = sectors
	}

	if sectors > 2*head {
		return (sectors - head) * flashSectorSize
	}
	return (sectors + 1) / 2 * flashSectorSize
}
