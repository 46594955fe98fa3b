package downloader

import "time"

// DefaultTimeout bounds every read of a device response.
const DefaultTimeout = 10 * time.Second

// Config holds the session configuration.
type Config struct {
	// ProgressCallback is called during Download to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Timeout bounds each Expect/ReadExact on the link; zero waits forever
	Timeout time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Timeout: DefaultTimeout,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithProgressCallback sets a callback function to track download progress.
//
// Example:
//
//	sess := downloader.New(link,
//	    downloader.WithProgressCallback(func(p downloader.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the session operations.
//
// Example:
//
//	sess := downloader.New(link, downloader.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTimeout sets how long the session waits for each device response.
// Negative values are ignored.
//
// Example:
//
//	sess := downloader.New(link, downloader.WithTimeout(30*time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout >= 0 {
			c.Timeout = timeout
		}
	}
}
