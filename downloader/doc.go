// Package downloader implements the host side of the WTP download protocol
// used by Marvell boot ROMs to receive a boot image and its application
// images over a serial line.
//
// # Basic Usage
//
//	link, err := transport.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer link.Close()
//
//	bundle, err := firmware.OpenBundle("TIM.bin", []string{"OBM.bin"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bundle.Close()
//
//	sess := downloader.New(link, downloader.WithTimeout(10*time.Second))
//	defer sess.Close()
//
//	res, err := sess.Download(context.Background(), bundle)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("boot ROM %s, %d images\n", res.Device.VersionString(), len(res.Images))
//
// # Session Sequence
//
// Download runs the following exchanges, each a request followed by a fixed
// acknowledgment:
//
//	sync, preamble, session-ack      once
//	GetVersion                       once
//	for each image:
//	    session-ack                  all images but the first
//	    GetImageType, SetImageType
//	    RequestBlock, DataBlock      repeated until the image is exhausted
//	    EndOfImage, preamble
//
// The device sizes every chunk: the host announces the bytes remaining and
// sends exactly what the device grants. The counter carried by RequestBlock
// and DataBlock frames starts at 1 and is shared by all images of the
// session, so after N blocks it reads 1+2N modulo 256.
//
// The phase methods (Handshake, GetVersion, GetImageType, SetImageType,
// TransferImage, EndImage) are exported for callers that need a different
// sequence.
//
// # Progress Tracking
//
//	sess := downloader.New(link,
//	    downloader.WithProgressCallback(func(p downloader.Progress) {
//	        fmt.Fprintf(os.Stderr, "\r%s %.1f%%", p.Image, p.Percentage)
//	    }),
//	)
//
// # Error Handling
//
// Download stops at the first failure. Nothing is retried and the device is
// not notified; it is expected to be reset before the next attempt.
//
//	res, err := sess.Download(ctx, bundle)
//	switch {
//	case errors.Is(err, transport.ErrTimeout):
//	    // device stopped answering
//	case errors.Is(err, transport.ErrMismatch):
//	    // unexpected acknowledgment or invalid grant
//	case errors.Is(err, firmware.ErrFile):
//	    // image file could not be read
//	case errors.Is(err, downloader.ErrConfiguration):
//	    // rejected before anything was sent
//	}
//
// # Thread Safety
//
// A Session is used by one goroutine at a time. Sessions on different links
// are independent.
package downloader
