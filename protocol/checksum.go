package protocol

// ChecksumInit is the seed state of the ROM checksum routine.
const ChecksumInit = 0xEF

// Checksum folds data into state using the XOR checksum defined by the
// ROM. The same routine covers download blocks (seeded fresh per
// block) and the firmware image trailer (folded across all segment
// payloads in file order).
func Checksum(data []byte, state byte) byte {
	for _, b := range data {
		state ^= b
	}
	return state
}
