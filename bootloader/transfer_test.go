package bootloader

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/matthewtherat/xtensa-toolchain/image"
	"github.com/matthewtherat/xtensa-toolchain/protocol"
)

func TestEraseSize(t *testing.T) {
	tests := []struct {
		name   string
		size   uint32
		offset uint32
		want   uint32
	}{
		{
			name:   "single sector",
			size:   4096,
			offset: 0,
			want:   4096,
		},
		{
			name:   "straddles first block",
			size:   100000,
			offset: 0,
			want:   53248,
		},
		{
			name:   "large area",
			size:   1000000,
			offset: 0,
			want:   937984,
		},
		{
			name:   "empty write",
			size:   0,
			offset: 0,
			want:   0,
		},
		{
			name:   "unaligned size rounds up to a sector",
			size:   1,
			offset: 0,
			want:   4096,
		},
		{
			name:   "offset mid-block",
			size:   100000,
			offset: 4096 * 8,
			want:   4096 * 17,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eraseSize(tt.size, tt.offset)
			if got != tt.want {
				t.Errorf("eraseSize(%d, %d) = %d, want %d", tt.size, tt.offset, got, tt.want)
			}
		})
	}
}

// expectFrame builds the exact wire bytes of one framed request.
func expectFrame(op byte, body []byte, checksum uint32) []byte {
	frame := append([]byte{protocol.FrameEnd},
		protocol.Escape(protocol.EncodeCommand(op, body, checksum))...)
	return append(frame, protocol.FrameEnd)
}

func TestMemBlock(t *testing.T) {
	conn := &fakeConn{}
	conn.queueOK(protocol.OpMemData)
	client := New(conn)

	data := []byte{0xAA, 0xBB, 0xCC}
	if err := client.MemBlock(data, 3); err != nil {
		t.Fatalf("MemBlock() error = %v", err)
	}

	wantBody := append(packWords(3, 3, 0, 0), data...)
	wantChecksum := uint32(0xEF ^ 0xAA ^ 0xBB ^ 0xCC)
	want := expectFrame(protocol.OpMemData, wantBody, wantChecksum)
	if !bytes.Equal(conn.tx.Bytes(), want) {
		t.Errorf("wire bytes = % 02X, want % 02X", conn.tx.Bytes(), want)
	}
}

func TestMemBlockStatusFailureCarriesSeq(t *testing.T) {
	conn := &fakeConn{}
	conn.queueResponse(protocol.OpMemData, 0, []byte{0x01, 0x07})
	client := New(conn)

	err := client.MemBlock([]byte{0x00}, 9)
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("MemBlock() error = %v, want *OpError", err)
	}
	if opErr.Seq != 9 {
		t.Errorf("Seq = %d, want 9", opErr.Seq)
	}
}

func TestMemFinish(t *testing.T) {
	tests := []struct {
		name     string
		entry    uint32
		wantBody []byte
	}{
		{
			name:     "jump to entry point",
			entry:    0x40100000,
			wantBody: packWords(0, 0x40100000),
		},
		{
			name:     "stay in bootloader",
			entry:    0,
			wantBody: packWords(1, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{}
			conn.queueOK(protocol.OpMemEnd)
			client := New(conn)

			if err := client.MemFinish(tt.entry); err != nil {
				t.Fatalf("MemFinish() error = %v", err)
			}
			want := expectFrame(protocol.OpMemEnd, tt.wantBody, 0)
			if !bytes.Equal(conn.tx.Bytes(), want) {
				t.Errorf("wire bytes = % 02X, want % 02X", conn.tx.Bytes(), want)
			}
		})
	}
}

func TestFlashBegin(t *testing.T) {
	conn := &fakeConn{}
	conn.queueOK(protocol.OpFlashBegin)
	client := New(conn)

	if err := client.FlashBegin(100000, 0); err != nil {
		t.Fatalf("FlashBegin() error = %v", err)
	}

	wantBody := packWords(53248, flashBeginBlocks, FlashBlockSize, 0)
	want := expectFrame(protocol.OpFlashBegin, wantBody, 0)
	if !bytes.Equal(conn.tx.Bytes(), want) {
		t.Errorf("wire bytes = % 02X, want % 02X", conn.tx.Bytes(), want)
	}

	// The erase timeout applies during the command, the operating
	// timeout afterwards.
	wantTimeouts := []time.Duration{defaultConfig().EraseTimeout, defaultConfig().Timeout}
	if len(conn.timeouts) != len(wantTimeouts) {
		t.Fatalf("timeouts = %v, want %v", conn.timeouts, wantTimeouts)
	}
	for i := range wantTimeouts {
		if conn.timeouts[i] != wantTimeouts[i] {
			t.Errorf("timeouts[%d] = %v, want %v", i, conn.timeouts[i], wantTimeouts[i])
		}
	}
}

func TestFlashFinish(t *testing.T) {
	tests := []struct {
		name     string
		reboot   bool
		wantBody []byte
	}{
		{name: "reboot", reboot: true, wantBody: packWords(0)},
		{name: "stay in bootloader", reboot: false, wantBody: packWords(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{}
			conn.queueOK(protocol.OpFlashEnd)
			client := New(conn)

			if err := client.FlashFinish(tt.reboot); err != nil {
				t.Fatalf("FlashFinish() error = %v", err)
			}
			want := expectFrame(protocol.OpFlashEnd, tt.wantBody, 0)
			if !bytes.Equal(conn.tx.Bytes(), want) {
				t.Errorf("wire bytes = % 02X, want % 02X", conn.tx.Bytes(), want)
			}
		})
	}
}

func TestWriteFlashPatchesImageHeader(t *testing.T) {
	conn := &fakeConn{}
	conn.queueOK(protocol.OpFlashBegin)
	conn.queueOK(protocol.OpFlashData)
	client := New(conn)

	firmware := []byte{0xE9, 0x01, 0x00, 0x00, 0x00, 0x00, 0x10, 0x40}
	info := FlashInfo{Mode: 0x02, SizeFreq: 0x40}
	if err := client.WriteFlash(0, firmware, info); err != nil {
		t.Fatalf("WriteFlash() error = %v", err)
	}

	block := make([]byte, FlashBlockSize)
	for i := range block {
		block[i] = 0xFF
	}
	copy(block, firmware)
	block[2] = 0x02
	block[3] = 0x40

	wantBody := append(packWords(FlashBlockSize, 0, 0, 0), block...)
	checksum := uint32(protocol.Checksum(block, protocol.ChecksumInit))
	want := append(
		expectFrame(protocol.OpFlashBegin, packWords(4096, flashBeginBlocks, FlashBlockSize, 0), 0),
		expectFrame(protocol.OpFlashData, wantBody, checksum)...)
	if !bytes.Equal(conn.tx.Bytes(), want) {
		t.Errorf("wire bytes differ from expected begin+block sequence")
	}
}

func TestWriteFlashSkipsPatchAtNonZeroAddr(t *testing.T) {
	conn := &fakeConn{}
	conn.queueOK(protocol.OpFlashBegin)
	conn.queueOK(protocol.OpFlashData)
	client := New(conn)

	firmware := []byte{0xE9, 0x01, 0x00, 0x00}
	if err := client.WriteFlash(0x1000, firmware, FlashInfo{Mode: 0x02, SizeFreq: 0x40}); err != nil {
		t.Fatalf("WriteFlash() error = %v", err)
	}

	// Byte 2 of the block must remain untouched.
	tx := conn.tx.Bytes()
	blockStart := bytes.LastIndexByte(tx[:len(tx)-1], protocol.FrameEnd)
	payload := tx[blockStart+1+protocol.HeaderSize+16:]
	if payload[2] != 0x00 {
		t.Errorf("header byte 2 patched to 0x%02X at non-zero address", payload[2])
	}
}

func TestLoadRAM(t *testing.T) {
	conn := &fakeConn{}
	conn.queueOK(protocol.OpMemBegin)
	conn.queueOK(protocol.OpMemData)
	conn.queueOK(protocol.OpMemEnd)
	client := New(conn)

	img := image.New()
	img.EntryPoint = 0x40100000
	img.AddSegment(0x3FFE8000, []byte{0x01, 0x02, 0x03, 0x04})
	if err := client.LoadRAM(img); err != nil {
		t.Fatalf("LoadRAM() error = %v", err)
	}

	want := append(
		expectFrame(protocol.OpMemBegin, packWords(4, 1, RAMBlockSize, 0x3FFE8000), 0),
		expectFrame(protocol.OpMemData,
			append(packWords(4, 0, 0, 0), 0x01, 0x02, 0x03, 0x04),
			uint32(0xEF^0x01^0x02^0x03^0x04))...)
	want = append(want,
		expectFrame(protocol.OpMemEnd, packWords(0, 0x40100000), 0)...)
	if !bytes.Equal(conn.tx.Bytes(), want) {
		t.Errorf("wire bytes = % 02X, want % 02X", conn.tx.Bytes(), want)
	}
}

func TestFlashRead(t *testing.T) {
	conn := &fakeConn{}
	conn.queueOK(protocol.OpFlashBegin)
	conn.queueOK(protocol.OpMemBegin)
	conn.queueOK(protocol.OpMemData)
	conn.queueOK(protocol.OpMemEnd)

	// The stub answers with raw framed blocks, not response packets.
	blockA := bytes.Repeat([]byte{0x11}, 4)
	blockB := bytes.Repeat([]byte{0x22}, 4)
	for _, b := range [][]byte{blockA, blockB} {
		conn.rx.WriteByte(protocol.FrameEnd)
		conn.rx.Write(protocol.Escape(b))
		conn.rx.WriteByte(protocol.FrameEnd)
	}
	client := New(conn)

	data, err := client.FlashRead(0x1000, 4, 2)
	if err != nil {
		t.Fatalf("FlashRead() error = %v", err)
	}
	want := append(append([]byte{}, blockA...), blockB...)
	if !bytes.Equal(data, want) {
		t.Errorf("data = % 02X, want % 02X", data, want)
	}
}

func TestFlashID(t *testing.T) {
	conn := &fakeConn{}
	conn.queueOK(protocol.OpFlashBegin)
	conn.queueOK(protocol.OpWriteReg)
	conn.queueOK(protocol.OpWriteReg)
	conn.queueResponse(protocol.OpReadReg, 0x001640E0, []byte{0x00, 0x00})
	conn.queueOK(protocol.OpFlashEnd)
	client := New(conn)

	id, err := client.FlashID()
	if err != nil {
		t.Fatalf("FlashID() error = %v", err)
	}
	if id != 0x001640E0 {
		t.Errorf("id = 0x%08X, want 0x001640E0", id)
	}
}

func TestDumpMem(t *testing.T) {
	conn := &fakeConn{}
	conn.queueResponse(protocol.OpReadReg, 0x44332211, []byte{0x00, 0x00})
	conn.queueResponse(protocol.OpReadReg, 0x88776655, []byte{0x00, 0x00})
	client := New(conn)

	var out bytes.Buffer
	if err := client.DumpMem(0x3FF00000, 8, &out); err != nil {
		t.Fatalf("DumpMem() error = %v", err)
	}
	want := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("dump = % 02X, want % 02X", out.Bytes(), want)
	}
}

func TestDumpMemDropsPartialWord(t *testing.T) {
	conn := &fakeConn{}
	conn.queueResponse(protocol.OpReadReg, 0x44332211, []byte{0x00, 0x00})
	conn.queueResponse(protocol.OpReadReg, 0x88776655, []byte{0x00, 0x00})
	client := New(conn)

	var out bytes.Buffer
	if err := client.DumpMem(0x3FF00000, 11, &out); err != nil {
		t.Fatalf("DumpMem() error = %v", err)
	}
	if out.Len() != 8 {
		t.Errorf("dumped %d bytes, want 8 (whole words only)", out.Len())
	}
}
