package logging

import (
	"errors"
	"fmt"
)

// ErrInitFailed matches every *InitError via errors.Is.
var ErrInitFailed = errors.New("logging initialization failed")

// InitError reports a sink that could not be installed. When it is
// returned no sink from that Initialize call remains open.
type InitError struct {
	Sink string // "directory", "console", "file" or "errors"
	Path string
	Err  error
}

func (e *InitError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s sink: %v", ErrInitFailed, e.Sink, e.Err)
	}
	return fmt.Sprintf("%s: %s sink %s: %v", ErrInitFailed, e.Sink, e.Path, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

func (e *InitError) Is(target error) bool {
	return target == ErrInitFailed
}
