package client

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/carbone/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	cfg               Config
	client            *http.Client
	rt                http.RoundTripper
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	retryable         func(error) bool
	tracer            trace.Tracer
	fs                afero.Fs
}

// WithClient replaces the default [http.Client] used by the [Client].
// The client is copied; later changes to hc are not observed.
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the per-call timeout on the underlying [http.Client].
// Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.cfg.Timeout = d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.cfg.UserAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.throttle = &cfg
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithBaseURL points the [Client] at another deployment of the render API.
// A trailing slash is optional.
func WithBaseURL(baseURL string) Option {
	return func(c *options) error {
		c.cfg.BaseURL = baseURL
		return nil
	}
}

// WithAPIVersion sets the value sent in the Carbone-Version header.
func WithAPIVersion(version string) Option {
	return func(c *options) error {
		c.cfg.APIVersion = version
		return nil
	}
}

// WithHeaders merges extra headers into every request. They are applied
// after the Authorization and Carbone-Version headers, so naming either
// of those here overrides it.
func WithHeaders(headers map[string]string) Option {
	return func(c *options) error {
		if c.cfg.Headers == nil {
			c.cfg.Headers = make(map[string]string, len(headers))
		}
		maps.Copy(c.cfg.Headers, headers)
		return nil
	}
}

// WithRetry sets how many times an operation may reach the network and
// how long to wait between attempts. maxAttempts must be 1 or 2; the
// default of 2 allows a single retry.
func WithRetry(maxAttempts int, interval time.Duration) Option {
	return func(c *options) error {
		if interval < 0 {
			return errors.New("retry interval must not be negative")
		}
		c.cfg.MaxAttempts = maxAttempts
		c.cfg.RetryInterval = interval
		return nil
	}
}

// WithRetryable replaces [IsConnectionReset] as the predicate that decides
// whether a transport failure is retried. It is never consulted for HTTP
// error statuses or malformed responses.
func WithRetryable(fn func(error) bool) Option {
	return func(c *options) error {
		if fn == nil {
			return errors.New("retryable predicate must not be nil")
		}
		c.retryable = fn
		return nil
	}
}

// WithTracer sets the tracer used to record a span per operation. The
// global otel tracer provider is used otherwise.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithFs sets the filesystem templates are read from by [Client.AddTemplate]
// and written to by [Client.SaveTemplate]. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *options) error {
		if fs == nil {
			return errors.New("fs must not be nil")
		}
		c.fs = fs
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// TemplateOption is a functional option for [Client.AddTemplate].
type TemplateOption func(opts *templateOpts) error

type templateOpts struct {
	payload string
}

// WithPayload sends payload alongside the uploaded template. The service
// mixes it into the template identifier, so the same file uploaded with
// different payloads yields distinct templates.
func WithPayload(payload string) TemplateOption {
	return func(opts *templateOpts) error {
		opts.payload = payload
		return nil
	}
}

func applyTemplateOpts(optFns []TemplateOption) (templateOpts, error) {
	var opts templateOpts
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return templateOpts{}, fmt.Errorf("applying template option: %w", err)
		}
	}
	return opts, nil
}
