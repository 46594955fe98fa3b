package firmware

import (
	"errors"
	"fmt"
)

var ErrFile = errors.New("firmware: file error")

// FileError reports a failure opening, reading or closing an image source.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func (e *FileError) Is(target error) bool { return target == ErrFile }
