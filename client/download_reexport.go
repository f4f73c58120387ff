package client

import (
	"hash"

	"github.com/adamwoolhether/carbone/client/download"
)

// DownloadOption is a functional option for [Client.SaveTemplate].
type DownloadOption = download.Option

// IntegrityError reports a saved template whose length or digest did not
// match. It unwraps to [ErrContentLengthMismatch] or [ErrChecksumMismatch].
type IntegrityError = download.IntegrityError

var (
	// ErrContentLengthMismatch indicates the byte count did not match Content-Length.
	ErrContentLengthMismatch = download.ErrContentLengthMismatch

	// ErrChecksumMismatch indicates the saved template did not match the expected checksum.
	ErrChecksumMismatch = download.ErrChecksumMismatch

	// ErrDownloadCancelled indicates the transfer was cancelled via context.
	ErrDownloadCancelled = download.ErrDownloadCancelled
)

// WithChecksum enables checksum validation of the saved template.
// h is a [hash.Hash] instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum string.
func WithChecksum(h hash.Hash, expected string) DownloadOption {
	return download.WithChecksum(h, expected)
}

// WithProgress enables periodic progress logging while saving.
func WithProgress() DownloadOption { return download.WithProgress() }

// WithSkipExisting makes [Client.SaveTemplate] return nil immediately when
// the destination file already exists.
func WithSkipExisting() DownloadOption { return download.WithSkipExisting() }
