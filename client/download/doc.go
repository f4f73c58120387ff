// Package download streams template content to a filesystem with
// optional checksum validation and progress reporting.
//
// [Handle] writes the body to a temporary file alongside the
// destination path, then renames it into place once the length and the
// optional digest check out. A mismatch is an [*IntegrityError]:
//
//	err := download.Handle(ctx, afero.NewOsFs(), resp.Body, resp.ContentLength, destPath, logger,
//		download.WithChecksum(sha256.New(), expectedHex),
//	)
//
// Most callers should use [github.com/adamwoolhether/carbone/client.Client.SaveTemplate],
// which invokes Handle internally and re-exports all download options as
// client.With* functions.
package download
