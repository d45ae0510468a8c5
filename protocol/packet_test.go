package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		name     string
		op       byte
		body     []byte
		checksum uint32
		want     []byte
	}{
		{
			name: "empty body",
			op:   OpSync,
			body: nil,
			want: []byte{0x00, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "read reg",
			op:   OpReadReg,
			body: []byte{0x50, 0x00, 0xF0, 0x3F},
			want: []byte{0x00, 0x0A, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x50, 0x00, 0xF0, 0x3F},
		},
		{
			name:     "data block carries checksum",
			op:       OpFlashData,
			body:     []byte{0xAA},
			checksum: 0x45,
			want:     []byte{0x00, 0x03, 0x01, 0x00, 0x45, 0x00, 0x00, 0x00, 0xAA},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeCommand(tt.op, tt.body, tt.checksum)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeCommand() = % 02X, want % 02X", got, tt.want)
			}
		})
	}
}

func TestParseResponseHeader(t *testing.T) {
	hdr := []byte{0x01, 0x0A, 0x02, 0x00, 0x78, 0x56, 0x34, 0x12}

	h, err := ParseResponseHeader(hdr)
	if err != nil {
		t.Fatalf("ParseResponseHeader() error = %v", err)
	}
	if h.Opcode != OpReadReg {
		t.Errorf("Opcode = 0x%02X, want 0x%02X", h.Opcode, OpReadReg)
	}
	if h.Length != 2 {
		t.Errorf("Length = %d, want 2", h.Length)
	}
	if h.Value != 0x12345678 {
		t.Errorf("Value = 0x%08X, want 0x12345678", h.Value)
	}
}

func TestParseResponseHeaderBadDirection(t *testing.T) {
	hdr := []byte{0x00, 0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

	_, err := ParseResponseHeader(hdr)
	var dirErr *DirectionError
	if !errors.As(err, &dirErr) {
		t.Fatalf("ParseResponseHeader() error = %v, want *DirectionError", err)
	}
	if dirErr.Got != 0x00 {
		t.Errorf("DirectionError.Got = 0x%02X, want 0x00", dirErr.Got)
	}
}

func TestParseResponseHeaderShort(t *testing.T) {
	if _, err := ParseResponseHeader([]byte{0x01, 0x0A}); err == nil {
		t.Error("ParseResponseHeader() with short header: expected error")
	}
}

func TestIsStatusOK(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		want bool
	}{
		{name: "success code", body: []byte{0x00, 0x00}, want: true},
		{name: "failure code", body: []byte{0x01, 0x06}, want: false},
		{name: "too short", body: []byte{0x00}, want: false},
		{name: "too long", body: []byte{0x00, 0x00, 0x00}, want: false},
		{name: "nil", body: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStatusOK(tt.body); got != tt.want {
				t.Errorf("IsStatusOK(% 02X) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}
