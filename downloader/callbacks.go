package downloader

import "time"

// Progress contains information about the download progress.
// Passed to ProgressCallback during Download.
type Progress struct {
	// Phase is the session phase when the report was made
	Phase Phase

	// Image is the name of the image in flight (empty before the first one)
	Image string

	// ImageIndex is the 0-based position of Image in the bundle
	ImageIndex int

	// ImageCount is the number of images in the bundle
	ImageCount int

	// ImageBytes is the number of bytes of Image accepted by the device
	ImageBytes uint64

	// ImageSize is the total length of Image
	ImageSize uint64

	// BytesSent is the number of payload bytes accepted across all images
	BytesSent uint64

	// TotalBytes is the sum of all image lengths
	TotalBytes uint64

	// Percentage is BytesSent relative to TotalBytes (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since Download started
	ElapsedTime time.Duration
}

// ProgressCallback is called after every accepted data block and at each
// phase change. Implementations should return quickly; the session waits.
//
// Example:
//
//	sess := downloader.New(link,
//	    downloader.WithProgressCallback(func(p downloader.Progress) {
//	        fmt.Fprintf(os.Stderr, "[%s] %s %.1f%%\n", p.Phase, p.Image, p.Percentage)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the session.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	sess := downloader.New(link, downloader.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
