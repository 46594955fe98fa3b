package firmware

import (
	"fmt"
	"io"
	"os"
)

// Role tells where an image sits in the download order.
type Role int

const (
	// RoleBoot is the boot image, always transferred first
	RoleBoot Role = iota

	// RoleApplication is any image following the boot image
	RoleApplication
)

func (r Role) String() string {
	switch r {
	case RoleBoot:
		return "boot"
	case RoleApplication:
		return "application"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Image is a length-known sequential byte source.
//
// The cursor only moves forward and never passes Size.
type Image struct {
	// Name identifies the image in logs and errors (usually its path)
	Name string

	// Role is the image's position in the bundle
	Role Role

	// Size is the total length in bytes, known before transfer starts
	Size uint64

	src    io.Reader
	closer io.Closer
	cursor uint64
}

// Open opens the file at path and discovers its length by seeking to the
// end. The file stays open until Close.
//
// Example:
//
//	img, err := firmware.Open("boot.bin", firmware.RoleBoot)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer img.Close()
//	fmt.Printf("%s: %d bytes\n", img.Name, img.Size)
func Open(path string, role Role) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}

	end, err := f.Seek(0, io.SeekEnd)
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		_ = f.Close()
		return nil, &FileError{Op: "seek", Path: path, Err: err}
	}

	return &Image{
		Name:   path,
		Role:   role,
		Size:   uint64(end),
		src:    f,
		closer: f,
	}, nil
}

// NewImage wraps r, which must deliver exactly size bytes. If r is also an
// io.Closer it is closed by Close.
func NewImage(name string, role Role, r io.Reader, size uint64) *Image {
	img := &Image{Name: name, Role: role, Size: size, src: r}
	if c, ok := r.(io.Closer); ok {
		img.closer = c
	}
	return img
}

// FromBytes returns an in-memory image holding data.
func FromBytes(name string, role Role, data []byte) *Image {
	return &Image{
		Name: name,
		Role: role,
		Size: uint64(len(data)),
		src:  &byteSource{data: data},
	}
}

// Cursor returns the number of bytes already read.
func (i *Image) Cursor() uint64 {
	return i.cursor
}

// Remaining returns the number of bytes left to read.
func (i *Image) Remaining() uint64 {
	return i.Size - i.cursor
}

// ReadChunk reads exactly n bytes and advances the cursor. It refuses to
// read past Size; a source that ends early yields a FileError.
func (i *Image) ReadChunk(n uint64) ([]byte, error) {
	if n > i.Remaining() {
		return nil, &FileError{
			Op:   "read",
			Path: i.Name,
			Err:  fmt.Errorf("chunk of %d bytes exceeds the %d remaining", n, i.Remaining()),
		}
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(i.src, buf); err != nil {
		return nil, &FileError{
			Op:   "read",
			Path: i.Name,
			Err:  fmt.Errorf("at offset %d: %w", i.cursor, err),
		}
	}
	i.cursor += n
	return buf, nil
}

// Close releases the underlying file, if any. It is safe to call twice.
func (i *Image) Close() error {
	if i.closer == nil {
		return nil
	}
	c := i.closer
	i.closer = nil
	if err := c.Close(); err != nil {
		return &FileError{Op: "close", Path: i.Name, Err: err}
	}
	return nil
}

type byteSource struct {
	data []byte
	off  int
}

func (b *byteSource) Read(p []byte) (int, error) {
	if b.off >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.off:])
	b.off += n
	return n, nil
}
