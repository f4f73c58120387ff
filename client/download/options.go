package download

import (
	"errors"
	"hash"
)

// Option defines optional settings for saving a template.
type Option func(*options) error

type options struct {
	digest       hash.Hash
	want         string
	progress     bool
	skipExisting bool
}

// WithChecksum verifies the saved content against expected, the
// hex-encoded digest h should produce (e.g. sha256.New()).
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		h.Reset()
		opts.digest = h
		opts.want = expected
		return nil
	}
}

// WithProgress logs transfer progress at most once per second.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

// WithSkipExisting makes Handle return nil without writing when
// the destination already exists.
func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}
