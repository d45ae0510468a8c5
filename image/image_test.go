package image

import (
	"bytes"
	"testing"
)

func TestAddSegmentAlignment(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantLen  int
		wantData []byte
	}{
		{
			name:     "already aligned",
			data:     []byte{1, 2, 3, 4},
			wantLen:  4,
			wantData: []byte{1, 2, 3, 4},
		},
		{
			name:     "one byte",
			data:     []byte{0xAA},
			wantLen:  4,
			wantData: []byte{0xAA, 0, 0, 0},
		},
		{
			name:     "three bytes",
			data:     []byte{1, 2, 3},
			wantLen:  4,
			wantData: []byte{1, 2, 3, 0},
		},
		{
			name:     "five bytes",
			data:     []byte{1, 2, 3, 4, 5},
			wantLen:  8,
			wantData: []byte{1, 2, 3, 4, 5, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := New()
			img.AddSegment(0x40100000, tt.data)

			if len(img.Segments) != 1 {
				t.Fatalf("got %d segments, want 1", len(img.Segments))
			}
			seg := img.Segments[0]
			if len(seg.Data) != tt.wantLen {
				t.Errorf("segment length = %d, want %d", len(seg.Data), tt.wantLen)
			}
			if len(seg.Data)%SegmentAlignment != 0 {
				t.Errorf("segment length %d not a multiple of %d", len(seg.Data), SegmentAlignment)
			}
			if !bytes.Equal(seg.Data, tt.wantData) {
				t.Errorf("segment data = % 02X, want % 02X", seg.Data, tt.wantData)
			}
		})
	}
}

func TestAddSegmentEmpty(t *testing.T) {
	img := New()
	img.AddSegment(0x40100000, nil)
	img.AddSegment(0x40100000, []byte{})

	if len(img.Segments) != 0 {
		t.Errorf("empty segments were appended: got %d segments", len(img.Segments))
	}
}

func TestAddSegmentCopiesData(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	img := New()
	img.AddSegment(0x40100000, data)

	data[0] = 0xFF
	if img.Segments[0].Data[0] != 1 {
		t.Error("AddSegment aliased the caller's slice")
	}
}

func TestComputeChecksumKnownImage(t *testing.T) {
	// Two aligned segments: 4 zero bytes and 4 0xFF bytes. The fold is
	// 0xEF ^ 00 ^ 00 ^ 00 ^ 00 ^ FF ^ FF ^ FF ^ FF = 0xEF.
	img := New()
	img.AddSegment(0x40100000, []byte{0x00, 0x00, 0x00, 0x00})
	img.AddSegment(0x3FFE8000, []byte{0xFF, 0xFF, 0xFF, 0xFF})

	if got := img.ComputeChecksum(); got != 0xEF {
		t.Errorf("ComputeChecksum() = 0x%02X, want 0xEF", got)
	}
}

func TestValidateChecksum(t *testing.T) {
	img := New()
	img.AddSegment(0x40100000, []byte{0x12, 0x34, 0x56, 0x78})

	img.Checksum = img.ComputeChecksum()
	if !img.ValidateChecksum() {
		t.Error("ValidateChecksum() = false for matching checksum")
	}

	img.Checksum ^= 0x01
	if img.ValidateChecksum() {
		t.Error("ValidateChecksum() = true for corrupted checksum")
	}
}
