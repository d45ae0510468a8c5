package bootloader

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/matthewtherat/xtensa-toolchain/image"
)

// ROM entry points and load addresses used by the side-channel
// operations below. These are fixed by the ESP8266 mask ROM.
const (
	// stubLoadAddr is where the flash-read stub is placed in IRAM
	stubLoadAddr = 0x40100000

	// stubEntryAddr is the stub's entry point within its image
	stubEntryAddr = 0x4010001C

	// romChipEraseAddr is the ROM's SPIEraseChip routine
	romChipEraseAddr = 0x40004984

	// romResetAddr is the ROM's reset vector; jumping there reboots
	// the chip back into the bootloader with a clean SPI state
	romResetAddr = 0x40000080
)

// SPI controller registers used by FlashID.
const (
	spiCmdReg  = 0x60000200
	spiW0Reg   = 0x60000240
	spiRDIDCmd = 0x10000000
)

// FlashInfo carries the flash parameters patched into the firmware
// header during WriteFlash.
type FlashInfo struct {
	// Mode is the SPI flash access mode
	Mode image.FlashMode

	// SizeFreq is the packed size/frequency byte, see image.PackSizeFreq
	SizeFreq byte
}

// WriteFlash writes data to flash at addr. When the write starts at
// offset zero and the data begins with a firmware image header, the
// header's flash parameter bytes are replaced with info so the chip
// boots with the requested SPI settings.
func (c *Client) WriteFlash(addr uint32, data []byte, info FlashInfo) error {
	blocks := (uint32(len(data)) + FlashBlockSize - 1) / FlashBlockSize

	c.logInfo("erasing flash",
		"addr", fmt.Sprintf("0x%05X", addr),
		"size", len(data),
	)
	c.reportProgress(Progress{Phase: PhaseErasing, Total: int(blocks)})

	// The erase covers whole blocks, so flash begin gets the
	// block-rounded size rather than the raw length.
	if err := c.FlashBegin(blocks*FlashBlockSize, addr); err != nil {
		return err
	}

	start := time.Now()
	block := make([]byte, FlashBlockSize)
	for seq := uint32(0); seq < blocks; seq++ {
		// Short final blocks are padded with 0xFF, the erased state
		// of NOR flash.
		for i := range block {
			block[i] = 0xFF
		}
		n := copy(block, data[seq*FlashBlockSize:])

		if addr == 0 && seq == 0 && block[0] == image.Magic {
			block[2] = byte(info.Mode)
			block[3] = info.SizeFreq
		}

		if err := c.FlashBlock(block, seq); err != nil {
			return err
		}

		written := int(seq)*FlashBlockSize + n
		c.reportProgress(Progress{
			Phase:      PhaseWriting,
			Current:    int(seq) + 1,
			Total:      int(blocks),
			Percentage: float64(seq+1) / float64(blocks) * 100,
			Bytes:      written,
			Addr:       addr + seq*FlashBlockSize,
			Elapsed:    time.Since(start),
		})
	}

	c.logInfo("flash write complete",
		"bytes", len(data),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	c.reportProgress(Progress{
		Phase:      PhaseComplete,
		Current:    int(blocks),
		Total:      int(blocks),
		Percentage: 100,
		Bytes:      len(data),
		Elapsed:    time.Since(start),
	})
	return nil
}

// FinishFlash leaves flash download mode after one or more WriteFlash
// calls. In DIO mode the chip is rebooted through the ROM's reset
// vector, which is the only reliable way to get the SPI controller out
// of dual I/O state.
func (c *Client) FinishFlash(mode image.FlashMode) error {
	if mode == image.FlashModeDIO {
		return c.UnlockDIO()
	}
	if err := c.FlashBegin(0, 0); err != nil {
		return err
	}
	return c.FlashFinish(false)
}

// LoadRAM downloads a firmware image into RAM segment by segment and
// jumps to its entry point.
func (c *Client) LoadRAM(img *image.Image) error {
	start := time.Now()
	for _, seg := range img.Segments {
		size := uint32(len(seg.Data))
		blocks := (size + RAMBlockSize - 1) / RAMBlockSize

		c.logInfo("loading segment",
			"addr", fmt.Sprintf("0x%08X", seg.Addr),
			"size", size,
		)
		if err := c.MemBegin(size, blocks, RAMBlockSize, seg.Addr); err != nil {
			return err
		}

		for seq := uint32(0); seq < blocks; seq++ {
			from := seq * RAMBlockSize
			to := from + RAMBlockSize
			if to > size {
				to = size
			}
			if err := c.MemBlock(seg.Data[from:to], seq); err != nil {
				return err
			}
			c.reportProgress(Progress{
				Phase:      PhaseWriting,
				Current:    int(seq) + 1,
				Total:      int(blocks),
				Percentage: float64(seq+1) / float64(blocks) * 100,
				Bytes:      int(to),
				Addr:       seg.Addr + from,
				Elapsed:    time.Since(start),
			})
		}
	}

	c.logInfo("booting", "entry", fmt.Sprintf("0x%08X", img.EntryPoint))
	return c.MemFinish(img.EntryPoint)
}

// ReadFlash reads size bytes of flash starting at offset.
func (c *Client) ReadFlash(offset, size uint32) ([]byte, error) {
	const blockSize = 1024
	count := (size + blockSize - 1) / blockSize
	data, err := c.FlashRead(offset, blockSize, count)
	if err != nil {
		return nil, err
	}
	return data[:size], nil
}

// FlashRead streams count blocks of blockSize bytes from flash at
// offset. The ROM has no flash read command, so a small stub is
// downloaded to IRAM and executed; it pushes one raw framed block per
// read onto the wire. After the stub runs the chip is no longer in the
// bootloader, so this must be the session's last operation.
func (c *Client) FlashRead(offset, blockSize, count uint32) ([]byte, error) {
	stub := append(packWords(offset, blockSize, count), sflashStub...)

	if err := c.FlashBegin(0, 0); err != nil {
		return nil, err
	}
	if err := c.MemBegin(uint32(len(stub)), 1, uint32(len(stub)), stubLoadAddr); err != nil {
		return nil, err
	}
	if err := c.MemBlock(stub, 0); err != nil {
		return nil, err
	}
	if err := c.MemFinish(stubEntryAddr); err != nil {
		return nil, err
	}

	start := time.Now()
	data := make([]byte, 0, count*blockSize)
	for i := uint32(0); i < count; i++ {
		if err := c.framer.ReadFrameDelimiter(); err != nil {
			return nil, fmt.Errorf("flash read block %d: %w", i, err)
		}
		block, err := c.framer.Read(int(blockSize))
		if err != nil {
			return nil, fmt.Errorf("flash read block %d: %w", i, err)
		}
		if err := c.framer.ReadFrameDelimiter(); err != nil {
			return nil, fmt.Errorf("flash read block %d: %w", i, err)
		}
		data = append(data, block...)

		c.reportProgress(Progress{
			Phase:      PhaseReading,
			Current:    int(i) + 1,
			Total:      int(count),
			Percentage: float64(i+1) / float64(count) * 100,
			Bytes:      len(data),
			Addr:       offset + i*blockSize,
			Elapsed:    time.Since(start),
		})
	}
	return data, nil
}

// FlashID reads the SPI flash JEDEC ID by driving the RDID command
// through the SPI controller registers. The low byte is the
// manufacturer ID, the next two the device ID.
func (c *Client) FlashID() (uint32, error) {
	if err := c.FlashBegin(0, 0); err != nil {
		return 0, err
	}
	if err := c.WriteReg(spiW0Reg, 0, 0xFFFFFFFF, 0); err != nil {
		return 0, err
	}
	if err := c.WriteReg(spiCmdReg, spiRDIDCmd, 0xFFFFFFFF, 0); err != nil {
		return 0, err
	}
	id, err := c.ReadReg(spiW0Reg)
	if err != nil {
		return 0, err
	}
	if err := c.FlashFinish(false); err != nil {
		return 0, err
	}
	return id, nil
}

// EraseChip erases the entire flash by jumping into the ROM's
// SPIEraseChip routine. The routine never reports back over serial;
// the chip must be reset by hand once the erase is done.
func (c *Client) EraseChip() error {
	if err := c.FlashBegin(0, 0); err != nil {
		return err
	}
	if err := c.MemBegin(0, 0, 0, stubLoadAddr); err != nil {
		return err
	}
	if err := c.MemFinish(romChipEraseAddr); err != nil {
		return err
	}
	c.logInfo("chip erase started; reset the device when the erase completes")
	return nil
}

// UnlockDIO exits flash download mode on chips wired for dual I/O by
// rebooting through the ROM's reset vector. A plain flash finish
// leaves the SPI controller wedged in DIO state.
func (c *Client) UnlockDIO() error {
	if err := c.FlashBegin(0, 0); err != nil {
		return err
	}
	if err := c.MemBegin(0, 0, 0, stubLoadAddr); err != nil {
		return err
	}
	return c.MemFinish(romResetAddr)
}

// Run reboots the chip out of the bootloader. With reboot set the
// chip starts the firmware in flash; otherwise it stays put.
func (c *Client) Run(reboot bool) error {
	if err := c.FlashBegin(0, 0); err != nil {
		return err
	}
	return c.FlashFinish(reboot)
}

// DumpMem reads target memory starting at addr, one 32-bit register
// read at a time, writing little-endian words to w. Only whole words
// are read; a trailing partial word of size is dropped. Slow but it
// works on any address the ROM can read.
func (c *Client) DumpMem(addr, size uint32, w io.Writer) error {
	words := size / 4
	start := time.Now()
	var buf [4]byte
	for i := uint32(0); i < words; i++ {
		value, err := c.ReadReg(addr + i*4)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(buf[:], value)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}

		c.reportProgress(Progress{
			Phase:      PhaseReading,
			Current:    int(i) + 1,
			Total:      int(words),
			Percentage: float64(i+1) / float64(words) * 100,
			Bytes:      int(i+1) * 4,
			Addr:       addr + i*4,
			Elapsed:    time.Since(start),
		})
	}
	return nil
}
