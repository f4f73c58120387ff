package client

import (
	"io"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
)

type replaysKey struct{}

// replayCounter collects the connections the transport used for a request
// beyond the first one.
type replayCounter struct {
	n atomic.Int32
}

// countReplays wraps the base transport. A request the transport resent on
// a fresh connection adds the extra connections to the replayCounter found
// in its context, so they are charged to the operation's attempts.
type countReplays struct {
	base http.RoundTripper
}

func (t countReplays) RoundTrip(r *http.Request) (*http.Response, error) {
	rc, ok := r.Context().Value(replaysKey{}).(*replayCounter)
	if !ok {
		return t.base.RoundTrip(r)
	}

	var conns atomic.Int32
	ctx := httptrace.WithClientTrace(r.Context(), &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) { conns.Add(1) },
	})

	resp, err := t.base.RoundTrip(r.WithContext(ctx))
	if n := conns.Load(); n > 1 {
		rc.n.Add(n - 1)
	}

	return resp, err
}

// emptyBody is attached to requests that carry no payload. A body without
// GetBody makes net/http treat the request as non-replayable, so a reset on
// a reused connection surfaces to retryPolicy instead of being resent.
type emptyBody struct{}

func (emptyBody) Read([]byte) (int, error) { return 0, io.EOF }

func (emptyBody) Close() error { return nil }
