package transport

import (
	"fmt"
	"io"
)

// Kind identifies one of the two link variants.
type Kind int

const (
	// KindStdio passes bytes through the process's stdin and stdout
	KindStdio Kind = iota

	// KindSerial owns a serial device exclusively
	KindSerial
)

func (k Kind) String() string {
	switch k {
	case KindStdio:
		return "stdio"
	case KindSerial:
		return "serial"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// StdioPath is the device path that selects the stdio link.
const StdioPath = "-"

// Link is a duplex byte channel to the device.
//
// Reads may block indefinitely; the Framer enforces the session timeout.
type Link interface {
	io.ReadWriteCloser

	// Kind reports which variant backs the link
	Kind() Kind

	// Name describes the link in logs (device path or "stdio")
	Name() string
}

// Open opens the link for path. StdioPath selects the stdio variant; any
// other value is opened as a serial device with the given options.
//
// Example:
//
//	link, err := transport.Open("/dev/ttyUSB0", transport.WithBaudRate(115200))
//	if err != nil {
//	    return err
//	}
//	defer link.Close()
func Open(path string, opts ...SerialOption) (Link, error) {
	if path == "" {
		return nil, fmt.Errorf("device path cannot be empty")
	}
	if path == StdioPath {
		return NewStdio(), nil
	}
	return OpenSerial(path, opts...)
}
