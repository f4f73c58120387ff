package download

import (
	"errors"
	"fmt"
)

var (
	ErrContentLengthMismatch = errors.New("content length mismatch")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrDownloadCancelled     = errors.New("download cancelled")
)

// IntegrityError reports content that was received in full but does not
// match the announced length or the expected digest. Path was not written.
type IntegrityError struct {
	Path     string
	Mismatch error // ErrContentLengthMismatch or ErrChecksumMismatch
	Want     string
	Got      string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %v: want %s, got %s", e.Path, e.Mismatch, e.Want, e.Got)
}

func (e *IntegrityError) Unwrap() error {
	return e.Mismatch
}
