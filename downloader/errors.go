package downloader

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-wtptp/transport"
)

var ErrConfiguration = errors.New("downloader: invalid configuration")

// ConfigurationError indicates that the download cannot start with the
// given inputs. Nothing has been sent to the device.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// GrantError indicates that the device granted a chunk size the image
// cannot satisfy: zero, or more than the bytes remaining.
type GrantError struct {
	Counter   byte
	Grant     uint32
	Remaining uint64
}

func (e *GrantError) Error() string {
	return fmt.Sprintf("RequestBlock 0x%02X: device granted %d bytes with %d remaining",
		e.Counter, e.Grant, e.Remaining)
}

// Is matches transport.ErrMismatch; an invalid grant is a protocol mismatch.
func (e *GrantError) Is(target error) bool { return target == transport.ErrMismatch }
