package downloader

import (
	"context"
	"fmt"
	"io"

	"github.com/moffa90/go-wtptp/firmware"
	"github.com/moffa90/go-wtptp/protocol"
	"github.com/moffa90/go-wtptp/transport"
)

// Session drives the WTP protocol over a single link. It owns the transfer
// counter, which starts at 1 and advances once per RequestBlock and once
// per DataBlock across every image of the session, wrapping at 256.
//
// Session is not safe for concurrent use; the protocol has one frame in
// flight at a time.
type Session struct {
	framer  *transport.Framer
	config  Config
	counter byte
	phase   Phase
}

// New creates a new Session with the given device and options.
// The device must implement io.ReadWriter; a transport.Link does.
//
// Example:
//
//	link, _ := transport.Open("/dev/ttyUSB0")
//	sess := downloader.New(link,
//	    downloader.WithTimeout(10*time.Second),
//	    downloader.WithProgressCallback(progressFunc),
//	)
//	defer sess.Close()
func New(device io.ReadWriter, opts ...Option) *Session {
	if device == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		framer:  transport.NewFramer(device, cfg.Timeout),
		config:  cfg,
		counter: protocol.InitialCounter,
		phase:   PhaseDisconnected,
	}
}

// Counter returns the value the next transfer frame will carry.
func (s *Session) Counter() byte {
	return s.counter
}

// Phase returns the session's current protocol phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Close stops the session's background reader. It does not close the
// device.
func (s *Session) Close() error {
	return s.framer.Close()
}

// Handshake synchronises with the boot ROM: sync, preamble, then the
// session-ack exchange.
func (s *Session) Handshake(ctx context.Context) error {
	if err := s.Sync(ctx); err != nil {
		return err
	}
	if err := s.Preamble(ctx); err != nil {
		return err
	}
	if err := s.OpenSession(ctx); err != nil {
		return err
	}
	s.phase = PhaseSynced
	return nil
}

// Sync sends "wtp\r" and expects "wtp\r\n".
func (s *Session) Sync(ctx context.Context) error {
	return s.exchange(ctx, protocol.FrameSync, protocol.BuildSyncCmd(), protocol.SyncAck())
}

// Preamble sends the 4-byte preamble and expects it echoed.
func (s *Session) Preamble(ctx context.Context) error {
	return s.exchange(ctx, protocol.FramePreamble, protocol.BuildPreambleCmd(), protocol.PreambleAck())
}

// OpenSession performs the session-ack exchange. It opens the session
// after the preamble and is repeated before every image after the first.
func (s *Session) OpenSession(ctx context.Context) error {
	return s.exchange(ctx, protocol.FrameSessionStart, protocol.BuildSessionStartCmd(), protocol.SessionStartAck())
}

// GetVersion queries the boot ROM's identification.
//
// Example:
//
//	info, err := sess.GetVersion(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("boot ROM %s on %s\n", info.VersionString(), info.ProcessorID)
func (s *Session) GetVersion(ctx context.Context) (*protocol.DeviceInfo, error) {
	if err := s.exchange(ctx, protocol.FrameGetVersion, protocol.BuildGetVersionCmd(), protocol.GetVersionAck()); err != nil {
		return nil, err
	}

	payload, err := s.framer.ReadExact(ctx, protocol.FrameVersionPayload, 3*protocol.FieldSize)
	if err != nil {
		return nil, err
	}
	info, err := protocol.ParseVersionResponse(payload)
	if err != nil {
		return nil, err
	}

	if err := s.framer.Expect(ctx, protocol.FrameVersionTrailer, protocol.VersionTrailer()); err != nil {
		return nil, err
	}

	s.phase = PhaseVersioned
	return info, nil
}

// GetImageType asks the device which image it expects next.
func (s *Session) GetImageType(ctx context.Context) (protocol.ImageType, error) {
	if err := s.exchange(ctx, protocol.FrameGetImageType, protocol.BuildGetImageTypeCmd(), protocol.GetImageTypeAck()); err != nil {
		return protocol.ImageType{}, err
	}

	field, err := s.framer.ReadExact(ctx, protocol.FrameImageTypePayload, protocol.FieldSize)
	if err != nil {
		return protocol.ImageType{}, err
	}
	return protocol.ParseImageTypeResponse(field)
}

// SetImageType confirms the image type the device announced.
func (s *Session) SetImageType(ctx context.Context) error {
	if err := s.exchange(ctx, protocol.FrameSetImageType, protocol.BuildSetImageTypeCmd(), protocol.SetImageTypeAck()); err != nil {
		return err
	}
	s.phase = PhaseImageNegotiated
	return nil
}

// TransferImage runs the RequestBlock/DataBlock loop until img is
// exhausted. The device decides the size of every chunk; onChunk, if not
// nil, is called with the size of each accepted chunk. A zero-length image
// sends nothing.
//
// The chunk is read from img before its DataBlock is sent, so a file error
// leaves no partial frame on the link.
func (s *Session) TransferImage(ctx context.Context, img *firmware.Image, onChunk func(n uint64)) error {
	if img.Size > protocol.MaxImageSize {
		return &ConfigurationError{
			Reason: fmt.Sprintf("%s is %d bytes, larger than the protocol limit of %d", img.Name, img.Size, uint64(protocol.MaxImageSize)),
		}
	}

	s.phase = PhaseTransferring
	for img.Remaining() > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		remaining := img.Remaining()
		grant, err := s.requestBlock(ctx, uint32(remaining))
		if err != nil {
			return err
		}
		if grant == 0 || uint64(grant) > remaining {
			return &GrantError{Counter: s.counter - 1, Grant: grant, Remaining: remaining}
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		chunk, err := img.ReadChunk(uint64(grant))
		if err != nil {
			return err
		}
		if err := s.dataBlock(ctx, chunk); err != nil {
			return err
		}

		s.logDebug("block accepted",
			"image", img.Name,
			"bytes", grant,
			"cursor", img.Cursor(),
			"counter", fmt.Sprintf("0x%02X", s.counter),
		)
		if onChunk != nil {
			onChunk(uint64(grant))
		}
	}
	return nil
}

// EndImage signals the end of the current image and resynchronises with
// the preamble.
func (s *Session) EndImage(ctx context.Context) error {
	if err := s.exchange(ctx, protocol.FrameEndOfImage, protocol.BuildEndOfImageCmd(), protocol.EndOfImageAck()); err != nil {
		return err
	}
	if err := s.Preamble(ctx); err != nil {
		return err
	}
	s.phase = PhaseImageDone
	return nil
}

// requestBlock announces the remaining length and returns the device's
// grant.
func (s *Session) requestBlock(ctx context.Context, remaining uint32) (uint32, error) {
	ctr := s.counter
	if err := s.exchange(ctx, protocol.FrameRequestBlock,
		protocol.BuildRequestBlockCmd(ctr, remaining), protocol.RequestBlockAck(ctr)); err != nil {
		return 0, err
	}

	field, err := s.framer.ReadExact(ctx, protocol.FrameGrant, protocol.LengthFieldSize)
	if err != nil {
		return 0, err
	}
	s.counter++

	return protocol.ParseGrantResponse(field)
}

// dataBlock sends one chunk as a single write.
func (s *Session) dataBlock(ctx context.Context, chunk []byte) error {
	ctr := s.counter
	frame, err := protocol.BuildDataBlockCmd(ctr, chunk)
	if err != nil {
		return err
	}
	if err := s.exchange(ctx, protocol.FrameDataBlock, frame, protocol.DataBlockAck(ctr)); err != nil {
		return err
	}
	s.counter++
	return nil
}

// exchange sends a request and expects a fixed acknowledgment.
func (s *Session) exchange(ctx context.Context, frame string, request, ack []byte) error {
	if err := s.framer.Send(ctx, frame, request); err != nil {
		return err
	}
	return s.framer.Expect(ctx, frame, ack)
}

// reportProgress calls the progress callback if configured.
func (s *Session) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Session) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
