package transport

import (
	"errors"
	"fmt"

	"go.bug.st/serial"

	"github.com/moffa90/go-wtptp/protocol"
)

// SerialConfig holds the serial line settings.
type SerialConfig struct {
	// BaudRate is the line speed; the boot ROM listens at 115200
	BaudRate int

	// DataBits is the character size (8 for the WTP protocol)
	DataBits int
}

func defaultSerialConfig() SerialConfig {
	return SerialConfig{
		BaudRate: protocol.DefaultBaudRate,
		DataBits: 8,
	}
}

// SerialOption is a functional option for OpenSerial.
type SerialOption func(*SerialConfig)

// WithBaudRate overrides the line speed. Non-positive values are ignored.
func WithBaudRate(baud int) SerialOption {
	return func(c *SerialConfig) {
		if baud > 0 {
			c.BaudRate = baud
		}
	}
}

// serialLink owns a serial port for the lifetime of a session.
type serialLink struct {
	port serial.Port
	path string
}

// OpenSerial opens path as 8N1 at the configured speed. On unix the port is
// opened with TIOCEXCL, so a second opener fails with PortBusy.
//
// Bytes queued in the input buffer before the session starts are dropped.
func OpenSerial(path string, opts ...SerialOption) (Link, error) {
	cfg := defaultSerialConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	port, err := serial.Open(path, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, &LinkError{Op: "open", Frame: path, Err: describePortError(err)}
	}

	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, &LinkError{Op: "reset input", Frame: path, Err: err}
	}

	return &serialLink{port: port, path: path}, nil
}

func (l *serialLink) Read(p []byte) (int, error) {
	return l.port.Read(p)
}

// Write returns once the bytes have left the output buffer.
func (l *serialLink) Write(p []byte) (int, error) {
	n, err := l.port.Write(p)
	if err != nil {
		return n, err
	}
	if err := l.port.Drain(); err != nil {
		return n, err
	}
	return n, nil
}

// Close releases the port. A Read blocked in the Framer's pump returns.
func (l *serialLink) Close() error {
	return l.port.Close()
}

func (l *serialLink) Kind() Kind {
	return KindSerial
}

func (l *serialLink) Name() string {
	return l.path
}

// describePortError adds a hint to the serial library's error codes that
// users can act on.
func describePortError(err error) error {
	var code serial.PortErrorCode
	var portErr *serial.PortError
	var portErrValue serial.PortError
	switch {
	case errors.As(err, &portErr):
		code = portErr.Code()
	case errors.As(err, &portErrValue):
		code = portErrValue.Code()
	default:
		return err
	}

	switch code {
	case serial.PortBusy:
		return fmt.Errorf("%w (another program holds the port)", err)
	case serial.PortNotFound:
		return fmt.Errorf("%w (check the device path)", err)
	case serial.PermissionDenied:
		return fmt.Errorf("%w (check membership of the dialout group)", err)
	case serial.InvalidSpeed:
		return fmt.Errorf("%w (unsupported baud rate)", err)
	default:
		return err
	}
}
