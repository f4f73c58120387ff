package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

// TemplateStream is the streaming result of [Client.OpenTemplate]. It is
// handed back before the request is sent; the response headers become
// available once Ready is closed and the body is consumed with Read.
//
// A failure that prevents the response from arriving (validation,
// transport, non-2xx status) is returned by both Header and Read.
// Callers must Close the stream.
type TemplateStream struct {
	ready  chan struct{}
	header http.Header
	err    error
	pr     *io.PipeReader
	cancel context.CancelFunc
}

// OpenTemplate starts fetching a template and returns immediately with a
// stream its content will be piped into. The bytes read from the stream
// are the same as those returned by [Client.FetchTemplate].
func (c *Client) OpenTemplate(ctx context.Context, templateID string) *TemplateStream {
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()

	s := &TemplateStream{
		ready:  make(chan struct{}),
		pr:     pr,
		cancel: cancel,
	}

	go c.pipeTemplate(ctx, templateID, s, pw)

	return s
}

// Ready returns a channel that is closed once the response headers
// arrived or the request failed.
func (s *TemplateStream) Ready() <-chan struct{} { return s.ready }

// Header blocks until the response headers arrive and returns them, or
// returns the error that kept the response from arriving.
func (s *TemplateStream) Header() (http.Header, error) {
	<-s.ready
	return s.header, s.err
}

// Read reads template content as it arrives. It returns io.EOF once the
// body is complete, or the error that ended the transfer.
func (s *TemplateStream) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

// Close aborts the transfer if it is still running and releases the
// underlying connection.
func (s *TemplateStream) Close() error {
	s.cancel()
	return s.pr.Close()
}

func (s *TemplateStream) fail(err error) {
	s.err = err
	close(s.ready)
}

func (s *TemplateStream) open(header http.Header) {
	s.header = header
	close(s.ready)
}

// pipeTemplate owns the request behind a TemplateStream. Retries only
// happen before the response arrives; once bytes flow they are final.
func (c *Client) pipeTemplate(ctx context.Context, templateID string, s *TemplateStream, pw *io.PipeWriter) {
	var err error
	defer func() {
		pw.CloseWithError(err)
		s.cancel()
	}()

	if err = check(templateRef{TemplateID: templateID}); err != nil {
		s.fail(err)
		return
	}

	ctx, op := c.begin(ctx, "OpenTemplate", attribute.String("carbone.template.id", templateID))
	defer func() { c.end(op, err) }()

	build := c.templateRequest(http.MethodGet, templateID)

	var resp *http.Response
	err = c.retry.run(ctx, c.logger, op, func(ctx context.Context) error {
		var rtErr error
		resp, rtErr = c.roundTrip(ctx, op, build)
		return rtErr
	})
	if err != nil {
		s.fail(err)
		return
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Error("failed to close response body", "error", cerr)
		}
	}()

	s.open(resp.Header.Clone())

	if _, cerr := io.Copy(pw, resp.Body); cerr != nil {
		if errors.Is(cerr, io.ErrClosedPipe) {
			return
		}
		err = &TransportError{Op: op.name, Attempts: op.attempts, Err: fmt.Errorf("streaming body: %w", cerr)}
	}
}
