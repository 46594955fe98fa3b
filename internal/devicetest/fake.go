package devicetest

import (
	"bytes"
	"io"
	"sync"
)

// FakeLink replays a fixed device byte stream and records everything the
// host writes. Once the stream is exhausted, Read blocks until Close, which
// lets callers observe timeouts.
type FakeLink struct {
	mu      sync.Mutex
	reply   []byte
	written bytes.Buffer
	writes  int

	failAfter int
	writeErr  error
	readErr   error

	closed    chan struct{}
	closeOnce sync.Once
}

// NewFakeLink returns a link whose device side sends reply.
func NewFakeLink(reply []byte) *FakeLink {
	return &FakeLink{
		reply:     append([]byte(nil), reply...),
		failAfter: -1,
		closed:    make(chan struct{}),
	}
}

// FailWritesAfter makes every write after the first n fail with err.
func (f *FakeLink) FailWritesAfter(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAfter = n
	f.writeErr = err
}

// FailReadsWith makes reads fail with err once the reply is exhausted.
func (f *FakeLink) FailReadsWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

func (f *FakeLink) Read(p []byte) (int, error) {
	f.mu.Lock()
	if len(f.reply) > 0 {
		n := copy(p, f.reply)
		f.reply = f.reply[n:]
		f.mu.Unlock()
		return n, nil
	}
	err := f.readErr
	f.mu.Unlock()
	if err != nil {
		return 0, err
	}

	<-f.closed
	return 0, io.EOF
}

func (f *FakeLink) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && f.writes >= f.failAfter {
		return 0, f.writeErr
	}
	f.writes++
	return f.written.Write(p)
}

// Close unblocks a pending Read.
func (f *FakeLink) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

// Written returns a copy of every byte the host wrote.
func (f *FakeLink) Written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.written.Bytes()...)
}

// Writes returns the number of successful Write calls.
func (f *FakeLink) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}
