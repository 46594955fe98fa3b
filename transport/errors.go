package transport

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrLink     = errors.New("transport: link failure")
	ErrMismatch = errors.New("transport: protocol mismatch")
	ErrTimeout  = errors.New("transport: timeout")
)

// LinkError reports an I/O failure on the link.
type LinkError struct {
	// Op is the failing operation ("write", "read", "open")
	Op string

	// Frame names the exchange in progress, or the device path for "open"
	Frame string

	Err error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Frame, e.Op, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

func (e *LinkError) Is(target error) bool { return target == ErrLink }

// MismatchError reports bytes from the device that differ from the
// expected acknowledgment.
type MismatchError struct {
	Frame    string
	Expected []byte
	Actual   []byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: unexpected response: got % X, expected % X", e.Frame, e.Actual, e.Expected)
}

func (e *MismatchError) Is(target error) bool { return target == ErrMismatch }

// TimeoutError reports that the device did not deliver the expected number
// of bytes before the session timeout elapsed.
type TimeoutError struct {
	Frame string

	// Want is the number of bytes expected, Got the number received in time
	Want int
	Got  int

	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s: received %d of %d bytes", e.Frame, e.After, e.Got, e.Want)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// Timeout reports true, matching the net.Error convention.
func (e *TimeoutError) Timeout() bool { return true }
