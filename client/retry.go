package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const defaultMaxAttempts = 2

// IsConnectionReset reports whether err is the transient failure the
// client retries by default: the peer resetting the connection, or
// hanging up on it before a response was read.
func IsConnectionReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// retryPolicy bounds how often one logical operation hits the network.
// Only *TransportError results are ever handed to retryable.
type retryPolicy struct {
	maxAttempts int
	interval    time.Duration
	retryable   func(error) bool
}

// attemptFn performs exactly one network round-trip.
type attemptFn func(ctx context.Context) error

// run calls attempt until it succeeds, fails with an error that does not
// qualify for retry, or the attempt budget is spent. Attempts never overlap.
func (p retryPolicy) run(ctx context.Context, logger *slog.Logger, op *operation, attempt attemptFn) error {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.interval), uint64(p.maxAttempts-1)),
		ctx,
	)

	try := func() error {
		op.attempts++

		err := attempt(ctx)
		if err == nil {
			return nil
		}

		var te *TransportError
		if !errors.As(err, &te) || !p.retryable(te.Err) || op.attempts >= p.maxAttempts {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("retrying after transient failure",
			"op", op.name,
			"operation_id", op.id,
			"attempt", op.attempts,
			"wait", wait,
			"error", err,
		)
	}

	err := backoff.RetryNotify(try, b, notify)
	if err == nil {
		return nil
	}

	var te *TransportError
	switch {
	case errors.As(err, &te):
		te.Attempts = op.attempts
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		err = &TransportError{Op: op.name, Attempts: op.attempts, Err: err}
	}

	return err
}
