package bootloader

import "fmt"

// OTP efuse word addresses holding the factory MAC.
const (
	otpMac0 = 0x3FF00050
	otpMac1 = 0x3FF00054
	otpMac2 = 0x3FF00058
	otpMac3 = 0x3FF0005C
)

// MACAddress holds the two factory MAC addresses of an ESP8266. On
// early chips the AP and station interfaces carry different OUIs; on
// later chips they share one.
type MACAddress struct {
	// AP is the soft-AP interface MAC
	AP [6]byte

	// Station is the station interface MAC
	Station [6]byte
}

func formatMAC(mac [6]byte) string {
	return fmt.Sprintf("%02X-%02X-%02X-%02X-%02X-%02X",
		mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
}

// APString formats the AP MAC as dash-separated uppercase hex.
func (m MACAddress) APString() string {
	return formatMAC(m.AP)
}

// StationString formats the station MAC as dash-separated uppercase
// hex.
func (m MACAddress) StationString() string {
	return formatMAC(m.Station)
}

// ReadMAC reads the factory MAC addresses from the chip's OTP words.
//
// A cleared bit 15 in the third OTP word identifies an ESP8089, whose
// MAC layout is different; it is rejected with ErrChipUnsupported.
// Byte 2 of the second word selects the OUI generation; an
// unrecognized selector yields a MACReadError.
func (c *Client) ReadMAC() (MACAddress, error) {
	word0, err := c.ReadReg(otpMac0)
	if err != nil {
		return MACAddress{}, err
	}
	word1, err := c.ReadReg(otpMac1)
	if err != nil {
		return MACAddress{}, err
	}
	word2, err := c.ReadReg(otpMac2)
	if err != nil {
		return MACAddress{}, err
	}
	if _, err := c.ReadReg(otpMac3); err != nil {
		return MACAddress{}, err
	}

	if word2&(1<<15) == 0 {
		return MACAddress{}, ErrChipUnsupported
	}

	tail := [3]byte{
		byte(word1 >> 8),
		byte(word1),
		byte(word0 >> 24),
	}

	var mac MACAddress
	switch flag := byte(word1 >> 16); flag {
	case 0:
		mac.AP = [6]byte{0x1A, 0xFE, 0x34, tail[0], tail[1], tail[2]}
		mac.Station = [6]byte{0x18, 0xFE, 0x34, tail[0], tail[1], tail[2]}
	case 1:
		mac.AP = [6]byte{0xAC, 0xD0, 0x74, tail[0], tail[1], tail[2]}
		mac.Station = mac.AP
	default:
		return MACAddress{}, &MACReadError{Flag: flag}
	}
	return mac, nil
}
