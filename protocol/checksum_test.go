package protocol

import "testing"

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		state    byte
		expected byte
	}{
		{
			name:     "empty data keeps seed",
			data:     []byte{},
			state:    ChecksumInit,
			expected: 0xEF,
		},
		{
			name:     "single byte",
			data:     []byte{0xEF},
			state:    ChecksumInit,
			expected: 0x00,
		},
		{
			name:     "zeros are identity",
			data:     []byte{0x00, 0x00, 0x00, 0x00},
			state:    ChecksumInit,
			expected: 0xEF,
		},
		{
			name:     "two aligned segments",
			data:     []byte{0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF},
			state:    ChecksumInit,
			expected: 0xEF, // 0xFF xor-folds out in pairs
		},
		{
			name:     "chained state",
			data:     []byte{0xA5},
			state:    0x5A,
			expected: 0xFF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Checksum(tt.data, tt.state)
			if result != tt.expected {
				t.Errorf("Checksum() = 0x%02X, want 0x%02X", result, tt.expected)
			}
		})
	}
}

func TestChecksumFoldOrder(t *testing.T) {
	// Folding segment-by-segment must equal folding the concatenation.
	a := []byte{0x12, 0x34, 0x56, 0x78}
	b := []byte{0x9A, 0xBC, 0xDE, 0xF0}

	chained := Checksum(b, Checksum(a, ChecksumInit))
	whole := Checksum(append(append([]byte{}, a...), b...), ChecksumInit)
	if chained != whole {
		t.Errorf("chained fold = 0x%02X, whole fold = 0x%02X", chained, whole)
	}
}

func BenchmarkChecksum(b *testing.B) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Checksum(data, ChecksumInit)
	}
}
