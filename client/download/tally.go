package download

import (
	"encoding/hex"
	"hash"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const reportEvery = time.Second

// tally observes the bytes committed to the temp file. It feeds the
// optional digest and logs progress when asked to.
type tally struct {
	dest   string
	logger *slog.Logger

	// length is the announced body size, -1 when unknown.
	length  int64
	written int64

	digest hash.Hash
	want   string

	report     bool
	started    time.Time
	lastReport time.Time
}

func (t *tally) Write(p []byte) (int, error) {
	t.written += int64(len(p))

	if t.digest != nil {
		_, _ = t.digest.Write(p)
	}

	if t.report && time.Since(t.lastReport) >= reportEvery {
		t.lastReport = time.Now()
		t.log("saving template")
	}

	return len(p), nil
}

// check compares what was written with the announced length, then with
// the expected digest.
func (t *tally) check() error {
	if t.length >= 0 && t.written != t.length {
		return &IntegrityError{
			Path:     t.dest,
			Mismatch: ErrContentLengthMismatch,
			Want:     strconv.FormatInt(t.length, 10) + " bytes",
			Got:      strconv.FormatInt(t.written, 10) + " bytes",
		}
	}

	if t.digest == nil {
		return nil
	}

	got := hex.EncodeToString(t.digest.Sum(nil))
	if !strings.EqualFold(got, t.want) {
		return &IntegrityError{
			Path:     t.dest,
			Mismatch: ErrChecksumMismatch,
			Want:     strings.ToLower(t.want),
			Got:      got,
		}
	}

	return nil
}

func (t *tally) finish() {
	if t.report {
		t.log("template saved")
	}
}

func (t *tally) log(msg string) {
	attrs := []any{
		"path", t.dest,
		"written", t.written,
		"elapsed", time.Since(t.started).Round(time.Millisecond),
	}
	if t.length > 0 {
		attrs = append(attrs, "percent", t.written*100/t.length)
	}

	t.logger.Info(msg, attrs...)
}
