package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// pumpBufferSize is the size of a single read from the link
const pumpBufferSize = 512

type readResult struct {
	data []byte
	err  error
}

// Framer performs exact-length reads and writes on a link with a per-call
// timeout. It keeps no protocol state: every call is one blocking step of a
// strictly sequential request/response exchange.
//
// A single pump goroutine copies link reads into a channel, so the timeout
// and context cancellation apply even when the underlying Read cannot be
// interrupted. Bytes read but not yet consumed are kept in order for the
// next call.
//
// Framer is not safe for concurrent use.
type Framer struct {
	link    io.ReadWriter
	timeout time.Duration

	chunks    chan readResult
	done      chan struct{}
	once      sync.Once
	closeOnce sync.Once

	pending []byte
	readErr error
}

// NewFramer returns a Framer for link. A non-positive timeout disables the
// deadline; context cancellation still applies.
//
// Example:
//
//	f := transport.NewFramer(link, 10*time.Second)
//	defer f.Close()
//	if err := f.Send(ctx, "sync", []byte("wtp\r")); err != nil {
//	    return err
//	}
//	err := f.Expect(ctx, "sync", []byte("wtp\r\n"))
func NewFramer(link io.ReadWriter, timeout time.Duration) *Framer {
	if link == nil {
		panic("link cannot be nil")
	}
	return &Framer{
		link:    link,
		timeout: timeout,
		chunks:  make(chan readResult, 16),
		done:    make(chan struct{}),
	}
}

// Timeout returns the per-call deadline.
func (f *Framer) Timeout() time.Duration {
	return f.timeout
}

// Send writes b verbatim. frame labels the exchange in errors.
func (f *Framer) Send(ctx context.Context, frame string, b []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", frame, err)
	}

	n, err := f.link.Write(b)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &LinkError{Op: "write", Frame: frame, Err: err}
	}
	return nil
}

// Expect reads exactly len(want) bytes and compares them with want.
func (f *Framer) Expect(ctx context.Context, frame string, want []byte) error {
	got, err := f.ReadExact(ctx, frame, len(want))
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return &MismatchError{
			Frame:    frame,
			Expected: append([]byte(nil), want...),
			Actual:   got,
		}
	}
	return nil
}

// ReadExact reads exactly n bytes. The timeout covers the whole call, not
// each underlying read.
func (f *Framer) ReadExact(ctx context.Context, frame string, n int) ([]byte, error) {
	buf := make([]byte, 0, n)
	if n <= 0 {
		return buf, nil
	}

	f.once.Do(func() { go f.pump() })

	var deadline <-chan time.Time
	if f.timeout > 0 {
		timer := time.NewTimer(f.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for len(buf) < n {
		if len(f.pending) > 0 {
			k := min(n-len(buf), len(f.pending))
			buf = append(buf, f.pending[:k]...)
			f.pending = f.pending[k:]
			continue
		}
		if f.readErr != nil {
			err := f.readErr
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, &LinkError{Op: "read", Frame: frame, Err: err}
		}

		select {
		case r := <-f.chunks:
			f.pending = append(f.pending, r.data...)
			if r.err != nil {
				f.readErr = r.err
			}
		case <-deadline:
			return nil, &TimeoutError{Frame: frame, Want: n, Got: len(buf), After: f.timeout}
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", frame, ctx.Err())
		}
	}
	return buf, nil
}

// Close stops delivery from the pump goroutine. It does not close the link;
// the goroutine exits once the link's Read returns.
func (f *Framer) Close() error {
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}

func (f *Framer) pump() {
	buf := make([]byte, pumpBufferSize)
	for {
		n, err := f.link.Read(buf)
		r := readResult{err: err}
		if n > 0 {
			r.data = append([]byte(nil), buf[:n]...)
		}
		if n > 0 || err != nil {
			select {
			case f.chunks <- r:
			case <-f.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}
