package devicetest

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/moffa90/go-wtptp/protocol"
)

// DefaultVersion is what the simulator reports for GetVersion.
var DefaultVersion = protocol.DeviceInfo{
	Version:     [4]byte{3, 2, 1, 0},
	BuildDate:   0x20240315,
	ProcessorID: "MMP3",
}

// Image type identifiers commonly found in WTP bundles.
var (
	TypeTIMH = protocol.ImageType{'T', 'I', 'M', 'H'}
	TypeOBMI = protocol.ImageType{'O', 'B', 'M', 'I'}
	TypeOSLO = protocol.ImageType{'O', 'S', 'L', 'O'}
)

// DefaultMaxGrant is the largest chunk the simulator grants.
const DefaultMaxGrant = 4096

// Simulator plays the device side of a download session over any duplex
// byte stream, typically one end of net.Pipe. It checks every host frame
// against the protocol, including the shared transfer counter, and keeps
// the images it received.
type Simulator struct {
	// Version is reported for GetVersion
	Version protocol.DeviceInfo

	// ImageTypes are reported in order; the last entry repeats
	ImageTypes []protocol.ImageType

	// Grant decides the grant for a RequestBlock; defaults to
	// min(remaining, DefaultMaxGrant)
	Grant func(remaining uint32) uint32

	mu      sync.Mutex
	images  [][]byte
	counter byte
}

// NewSimulator returns a simulator with default identification and a
// TIMH boot image followed by OBMI application images.
func NewSimulator() *Simulator {
	return &Simulator{
		Version:    DefaultVersion,
		ImageTypes: []protocol.ImageType{TypeTIMH, TypeOBMI},
	}
}

// Images returns copies of the images received so far.
func (s *Simulator) Images() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.images))
	for i, img := range s.images {
		out[i] = append([]byte(nil), img...)
	}
	return out
}

// Counter returns the counter value the simulator expects next.
func (s *Simulator) Counter() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}

// Serve runs one session on rw and returns when the host closes its end
// after a complete image, or on the first protocol violation.
func (s *Simulator) Serve(rw io.ReadWriter) error {
	r := bufio.NewReader(rw)
	s.mu.Lock()
	s.counter = protocol.InitialCounter
	s.mu.Unlock()

	if err := s.exchange(r, rw, "sync", protocol.BuildSyncCmd(), protocol.SyncAck()); err != nil {
		return err
	}
	if err := s.exchange(r, rw, "preamble", protocol.BuildPreambleCmd(), protocol.PreambleAck()); err != nil {
		return err
	}

	for index := 0; ; index++ {
		if err := s.exchange(r, rw, "session-ack", protocol.BuildSessionStartCmd(), protocol.SessionStartAck()); err != nil {
			return err
		}
		if index == 0 {
			if err := s.exchange(r, rw, "GetVersion", protocol.BuildGetVersionCmd(), EncodeVersion(s.Version)); err != nil {
				return err
			}
		}
		if err := s.exchange(r, rw, "GetImageType", protocol.BuildGetImageTypeCmd(), EncodeImageType(s.imageType(index))); err != nil {
			return err
		}
		if err := s.exchange(r, rw, "SetImageType", protocol.BuildSetImageTypeCmd(), protocol.SetImageTypeAck()); err != nil {
			return err
		}

		image, err := s.receive(r, rw)
		if err != nil {
			return fmt.Errorf("image %d: %w", index, err)
		}
		s.mu.Lock()
		s.images = append(s.images, image)
		s.mu.Unlock()

		if err := s.exchange(r, rw, "preamble", protocol.BuildPreambleCmd(), protocol.PreambleAck()); err != nil {
			return err
		}

		if _, err := r.Peek(1); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return err
		}
	}
}

// receive runs the chunk loop until EndOfImage and returns the payload.
func (s *Simulator) receive(r *bufio.Reader, w io.Writer) ([]byte, error) {
	var image []byte
	header := make([]byte, protocol.CommandFrameSize)
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}

		switch header[0] {
		case protocol.CmdEndOfImage:
			if !bytes.Equal(header, protocol.BuildEndOfImageCmd()) {
				return nil, fmt.Errorf("malformed EndOfImage % X", header)
			}
			if _, err := w.Write(protocol.EndOfImageAck()); err != nil {
				return nil, err
			}
			return image, nil

		case protocol.CmdRequestBlock:
			ctr, err := s.takeCounter(header[1])
			if err != nil {
				return nil, err
			}
			field := make([]byte, protocol.LengthFieldSize)
			if _, err := io.ReadFull(r, field); err != nil {
				return nil, fmt.Errorf("read remaining: %w", err)
			}
			want := protocol.BuildRequestBlockCmd(ctr, binary.LittleEndian.Uint32(field))
			if !bytes.Equal(append(header, field...), want) {
				return nil, fmt.Errorf("malformed RequestBlock % X % X", header, field)
			}
			grant := s.grant(binary.LittleEndian.Uint32(field))
			if _, err := w.Write(EncodeGrant(ctr, grant)); err != nil {
				return nil, err
			}

		case protocol.CmdDataBlock:
			ctr, err := s.takeCounter(header[1])
			if err != nil {
				return nil, err
			}
			size := binary.LittleEndian.Uint32(header[4:8])
			payload := make([]byte, size)
			if _, err := io.ReadFull(r, payload); err != nil {
				return nil, fmt.Errorf("read DataBlock payload: %w", err)
			}
			image = append(image, payload...)
			if _, err := w.Write(protocol.DataBlockAck(ctr)); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("unexpected frame % X", header)
		}
	}
}

func (s *Simulator) exchange(r *bufio.Reader, w io.Writer, frame string, want, reply []byte) error {
	got := make([]byte, len(want))
	if _, err := io.ReadFull(r, got); err != nil {
		return fmt.Errorf("%s: read: %w", frame, err)
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%s: got % X, expected % X", frame, got, want)
	}
	if _, err := w.Write(reply); err != nil {
		return fmt.Errorf("%s: write: %w", frame, err)
	}
	return nil
}

func (s *Simulator) takeCounter(got byte) (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if got != s.counter {
		return 0, fmt.Errorf("counter 0x%02X, expected 0x%02X", got, s.counter)
	}
	s.counter++
	return got, nil
}

func (s *Simulator) grant(remaining uint32) uint32 {
	if s.Grant != nil {
		return s.Grant(remaining)
	}
	return min(remaining, DefaultMaxGrant)
}

func (s *Simulator) imageType(index int) protocol.ImageType {
	if len(s.ImageTypes) == 0 {
		return TypeTIMH
	}
	if index < len(s.ImageTypes) {
		return s.ImageTypes[index]
	}
	return s.ImageTypes[len(s.ImageTypes)-1]
}
