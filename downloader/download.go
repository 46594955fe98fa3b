package downloader

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-wtptp/firmware"
	"github.com/moffa90/go-wtptp/protocol"
)

// ImageResult describes one transferred image.
type ImageResult struct {
	Name   string
	Role   firmware.Role
	Type   protocol.ImageType
	Bytes  uint64
	Blocks int
}

// Result summarises a completed download.
type Result struct {
	// Device is the boot ROM identification from GetVersion
	Device *protocol.DeviceInfo

	// Images are the transferred images in order
	Images []ImageResult

	// Counter is the counter value after the last transfer frame
	Counter byte

	Elapsed time.Duration
}

// Download performs the complete download sequence:
//  1. Handshake (sync, preamble, session-ack)
//  2. GetVersion
//  3. For each image in bundle order: session-ack (all but the first),
//     GetImageType, SetImageType, block transfer, EndOfImage and preamble
//
// Inputs are validated before any byte is sent. The first failure aborts
// the session without notifying the device; the error names the image,
// the step and the frame that failed. The operation can be cancelled via
// context.
//
// Example:
//
//	b, _ := firmware.OpenBundle("TIM.bin", []string{"OBM.bin"})
//	defer b.Close()
//	res, err := sess.Download(context.Background(), b)
func (s *Session) Download(ctx context.Context, bundle *firmware.Bundle) (*Result, error) {
	if err := validateBundle(bundle); err != nil {
		return nil, err
	}

	images := bundle.All()
	totalBytes := bundle.TotalSize()
	startTime := time.Now()
	var bytesSent uint64

	report := func(phase Phase, index int, img *firmware.Image) {
		p := Progress{
			Phase:       phase,
			ImageIndex:  index,
			ImageCount:  len(images),
			BytesSent:   bytesSent,
			TotalBytes:  totalBytes,
			Percentage:  100,
			ElapsedTime: time.Since(startTime),
		}
		if totalBytes > 0 {
			p.Percentage = float64(bytesSent) / float64(totalBytes) * 100
		}
		if img != nil {
			p.Image = img.Name
			p.ImageBytes = img.Cursor()
			p.ImageSize = img.Size
		}
		s.reportProgress(p)
	}

	report(PhaseDisconnected, 0, nil)

	if err := s.Handshake(ctx); err != nil {
		s.logError("handshake failed", "error", err)
		return nil, fmt.Errorf("handshake: %w", err)
	}
	report(PhaseSynced, 0, nil)

	info, err := s.GetVersion(ctx)
	if err != nil {
		s.logError("get version failed", "error", err)
		return nil, fmt.Errorf("get version: %w", err)
	}
	s.logInfo("device identified",
		"version", info.VersionString(),
		"build_date", fmt.Sprintf("0x%08X", info.BuildDate),
		"processor", info.ProcessorID,
	)
	report(PhaseVersioned, 0, nil)

	result := &Result{
		Device: info,
		Images: make([]ImageResult, 0, len(images)),
	}

	for i, img := range images {
		fail := func(step string, err error) (*Result, error) {
			s.logError("image failed",
				"image", img.Name,
				"index", i,
				"step", step,
				"cursor", img.Cursor(),
				"error", err,
			)
			return nil, fmt.Errorf("image %d (%s): %s: %w", i, img.Name, step, err)
		}

		if i > 0 {
			if err := s.OpenSession(ctx); err != nil {
				return fail("open session", err)
			}
		}

		imageType, err := s.GetImageType(ctx)
		if err != nil {
			return fail("get image type", err)
		}
		s.logInfo("image requested",
			"image", img.Name,
			"role", img.Role.String(),
			"type", imageType.String(),
			"size", img.Size,
		)

		if err := s.SetImageType(ctx); err != nil {
			return fail("set image type", err)
		}
		report(PhaseImageNegotiated, i, img)

		blocks := 0
		err = s.TransferImage(ctx, img, func(n uint64) {
			blocks++
			bytesSent += n
			report(PhaseTransferring, i, img)
		})
		if err != nil {
			return fail("transfer", err)
		}

		if err := s.EndImage(ctx); err != nil {
			return fail("end of image", err)
		}
		report(PhaseImageDone, i, img)

		s.logInfo("image transferred",
			"image", img.Name,
			"bytes", img.Size,
			"blocks", blocks,
		)
		result.Images = append(result.Images, ImageResult{
			Name:   img.Name,
			Role:   img.Role,
			Type:   imageType,
			Bytes:  img.Size,
			Blocks: blocks,
		})
	}

	s.phase = PhaseComplete
	result.Counter = s.counter
	result.Elapsed = time.Since(startTime)
	report(PhaseComplete, len(images)-1, images[len(images)-1])

	s.logInfo("download complete",
		"images", len(images),
		"bytes", bytesSent,
		"elapsed", result.Elapsed.String(),
	)
	return result, nil
}

// validateBundle rejects inputs the protocol cannot carry.
func validateBundle(bundle *firmware.Bundle) error {
	if bundle == nil {
		return &ConfigurationError{Reason: "bundle cannot be nil"}
	}
	if bundle.Boot == nil {
		return &ConfigurationError{Reason: "boot image is required"}
	}
	for i, img := range bundle.Applications {
		if img == nil {
			return &ConfigurationError{Reason: fmt.Sprintf("application image %d is nil", i+1)}
		}
	}
	for _, img := range bundle.All() {
		if img.Size > protocol.MaxImageSize {
			return &ConfigurationError{
				Reason: fmt.Sprintf("%s is %d bytes, larger than the protocol limit of %d",
					img.Name, img.Size, uint64(protocol.MaxImageSize)),
			}
		}
	}
	return nil
}
