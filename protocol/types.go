package protocol

import (
	"fmt"
	"time"
)

// DeviceInfo contains boot ROM identification information.
// Returned by the GetVersion command.
type DeviceInfo struct {
	// Version is the boot ROM version in host order (received byte-reversed)
	Version [4]byte

	// BuildDate is the raw little-endian build date word
	BuildDate uint32

	// ProcessorID is the processor identifier decoded as text (received byte-reversed)
	ProcessorID string
}

// VersionString formats Version as dotted decimal bytes.
func (d DeviceInfo) VersionString() string {
	return fmt.Sprintf("%d.%d.%d.%d", d.Version[0], d.Version[1], d.Version[2], d.Version[3])
}

// BuildTime interprets BuildDate as BCD encoded YYYYMMDD, which is how
// Marvell boot ROMs stamp it. ok is false when the word is not valid BCD.
func (d DeviceInfo) BuildTime() (t time.Time, ok bool) {
	digits := make([]int, 0, 8)
	for shift := 28; shift >= 0; shift -= 4 {
		nibble := int(d.BuildDate>>uint(shift)) & 0x0F
		if nibble > 9 {
			return time.Time{}, false
		}
		digits = append(digits, nibble)
	}

	year := digits[0]*1000 + digits[1]*100 + digits[2]*10 + digits[3]
	month := digits[4]*10 + digits[5]
	day := digits[6]*10 + digits[7]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// ImageType identifies the image the device expects next, in host order.
// Boot ROMs use four ASCII characters such as "TIMH" or "OBMI".
type ImageType [4]byte

// String returns the identifier as text when all four bytes are printable
// ASCII, and as hex otherwise.
func (t ImageType) String() string {
	for _, b := range t {
		if b < 0x20 || b > 0x7E {
			return fmt.Sprintf("0x%02X%02X%02X%02X", t[0], t[1], t[2], t[3])
		}
	}
	return string(t[:])
}
