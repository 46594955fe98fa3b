package transport

import (
	"io"
	"os"
)

// stdioLink reads from stdin and writes to stdout.
type stdioLink struct {
	in  io.Reader
	out io.Writer
}

// NewStdio returns a link over the process's stdin and stdout. Anything
// else the program prints must go to stderr while it is in use.
func NewStdio() Link {
	return &stdioLink{in: os.Stdin, out: os.Stdout}
}

func (l *stdioLink) Read(p []byte) (int, error) {
	return l.in.Read(p)
}

func (l *stdioLink) Write(p []byte) (int, error) {
	n, err := l.out.Write(p)
	if err != nil {
		return n, err
	}
	if f, ok := l.out.(*os.File); ok {
		// best effort: pipes and ttys do not support fsync
		_ = f.Sync()
	}
	return n, nil
}

// Close leaves stdin and stdout open; they belong to the process.
func (l *stdioLink) Close() error {
	return nil
}

func (l *stdioLink) Kind() Kind {
	return KindStdio
}

func (l *stdioLink) Name() string {
	return "stdio"
}
