// Package transport provides the byte link to a WTP device and the Framer
// that performs timed, exact-length exchanges on it.
//
// # Links
//
// A Link is a duplex byte channel. Two variants exist:
//
//   - KindStdio reads from stdin and writes to stdout, selected with the
//     device path "-". Useful when another program (socat, an SSH session,
//     a test harness) owns the physical port.
//   - KindSerial owns a serial device at 115200 8N1. On unix the port is
//     opened exclusively.
//
// Open chooses the variant from the path:
//
//	link, err := transport.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer link.Close()
//
// ListPorts enumerates the serial ports present on the host, with USB
// vendor and product identifiers where available.
//
// # Framer
//
// The Framer adds a session timeout to a link and offers three blocking
// operations:
//
//	Send(ctx, frame, b)         write b verbatim
//	Expect(ctx, frame, want)    read len(want) bytes and compare
//	ReadExact(ctx, frame, n)    read exactly n bytes
//
// The frame argument labels the exchange ("preamble", "RequestBlock") and
// is carried by every error.
//
// # Errors
//
// Failures are reported with typed errors that also match a sentinel through
// errors.Is:
//
//	*LinkError      ErrLink      write or read failed, or the link closed
//	*MismatchError  ErrMismatch  the device answered with unexpected bytes
//	*TimeoutError   ErrTimeout   the device did not answer in time
//
// Example:
//
//	err := f.Expect(ctx, "preamble", protocol.PreambleAck())
//	var mm *transport.MismatchError
//	if errors.As(err, &mm) {
//	    fmt.Printf("device sent % X\n", mm.Actual)
//	}
package transport
