// Package throttle provides an [http.RoundTripper] that rate-limits
// calls to the render API using a token-bucket algorithm from
// [golang.org/x/time/rate].
//
// # Usage
//
// Most callers enable it through client.WithThrottle. It can also wrap
// any transport directly with [NewRoundTripper]:
//
//	rt, err := throttle.NewRoundTripper(
//		throttle.Config{RPS: 10, Burst: 5},
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// When the rate limit is exceeded, outbound requests block until a
// token becomes available or the request context is cancelled.
package throttle
