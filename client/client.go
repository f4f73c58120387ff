package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/carbone/client/throttle"
)

const (
	// DefaultBaseURL is the public Carbone render endpoint.
	DefaultBaseURL = "https://render.carbone.io/"
	// DefaultAPIVersion is sent in the Carbone-Version header unless overridden.
	DefaultAPIVersion = "4"
	// DefaultTimeout bounds every call made by the client.
	DefaultTimeout = 7500 * time.Millisecond

	tracerName = "github.com/adamwoolhether/carbone/client"
)

// Config is the effective configuration of a [Client]. It is fixed once
// [Build] returns.
type Config struct {
	APIKey        string            `json:"apiKey" validate:"required"`
	BaseURL       string            `json:"baseUrl" validate:"required,http_url"`
	APIVersion    string            `json:"apiVersion" validate:"required"`
	Timeout       time.Duration     `json:"timeout" validate:"gte=0"`
	MaxAttempts   int               `json:"maxAttempts" validate:"min=1,max=2"`
	RetryInterval time.Duration     `json:"retryInterval" validate:"gte=0"`
	UserAgent     string            `json:"userAgent"`
	Headers       map[string]string `json:"headers"`
}

func defaultConfig(apiKey string) Config {
	return Config{
		APIKey:      apiKey,
		BaseURL:     DefaultBaseURL,
		APIVersion:  DefaultAPIVersion,
		Timeout:     DefaultTimeout,
		MaxAttempts: defaultMaxAttempts,
	}
}

func (cfg Config) clone() Config {
	cfg.Headers = maps.Clone(cfg.Headers)
	return cfg
}

// Client wraps the std-lib *http.Client with the credentials, headers and
// retry policy of the render API. It is safe for concurrent use.
type Client struct {
	c       *http.Client
	logger  *slog.Logger
	cfg     Config
	baseURL *url.URL
	retry   retryPolicy
	tracer  trace.Tracer
	fs      afero.Fs
}

// Build creates a Client authenticating with apiKey. Options are applied
// in order and the resulting [Config] is validated before use.
func Build(apiKey string, optFns ...Option) (*Client, error) {
	opts := options{cfg: defaultConfig(apiKey)}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if err := check(opts.cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	baseURL, err := url.Parse(opts.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if baseURL.Path == "" {
		baseURL.Path = "/"
	}

	client := &Client{
		c:       &http.Client{},
		logger:  slog.Default(),
		cfg:     opts.cfg.clone(),
		baseURL: baseURL,
		retry: retryPolicy{
			maxAttempts: opts.cfg.MaxAttempts,
			interval:    opts.cfg.RetryInterval,
			retryable:   IsConnectionReset,
		},
		tracer: otel.Tracer(tracerName),
		fs:     afero.NewOsFs(),
	}

	if opts.client != nil {
		hc := *opts.client
		client.c = &hc
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.retryable != nil {
		client.retry.retryable = opts.retryable
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.fs != nil {
		client.fs = opts.fs
	}

	client.c.Timeout = opts.cfg.Timeout

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	transport = countReplays{base: transport}
	if opts.cfg.UserAgent != "" {
		transport = userAgent{value: opts.cfg.UserAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// Config returns a copy of the client's effective configuration.
func (c *Client) Config() Config {
	return c.cfg.clone()
}

// execFn represents a func to operate on a successful response.
type execFn func(resp *http.Response) error

// requestFn builds a fresh request for every attempt, so bodies can be replayed.
type requestFn func(ctx context.Context) (*http.Request, error)

// exec runs the request under the retry policy and hands the 2xx response
// to fn. The body is drained and closed once fn returns.
func (c *Client) exec(ctx context.Context, op *operation, build requestFn, fn execFn) error {
	return c.retry.run(ctx, c.logger, op, func(ctx context.Context) error {
		resp, err := c.roundTrip(ctx, op, build)
		if err != nil {
			return err
		}
		defer c.drain(resp)

		return fn(resp)
	})
}

// roundTrip performs a single attempt. It returns the response only for a
// 2xx status; every other status is read, capped and turned into a
// *RemoteError.
func (c *Client) roundTrip(ctx context.Context, op *operation, build requestFn) (*http.Response, error) {
	replays := new(replayCounter)

	req, err := build(context.WithValue(ctx, replaysKey{}, replays))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	c.decorate(req)

	c.logger.Debug("sending request",
		"op", op.name,
		"operation_id", op.id,
		"attempt", op.attempts,
		"method", req.Method,
		"path", req.URL.Path,
	)

	resp, err := c.c.Do(req)
	if n := int(replays.n.Load()); n > 0 {
		op.attempts += n
		c.logger.Warn("transport resent request",
			"op", op.name,
			"operation_id", op.id,
			"attempts", op.attempts,
		)
	}
	if err != nil {
		return nil, &TransportError{Op: op.name, Attempts: op.attempts, Err: err}
	}

	c.logger.Debug("received response",
		"op", op.name,
		"operation_id", op.id,
		"attempt", op.attempts,
		"status", resp.StatusCode,
	)

	if isSuccess(resp.StatusCode) {
		return resp, nil
	}
	defer c.drain(resp)

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		b = []byte("unable to read body")
	}

	return nil, checkStatus(resp.StatusCode, b)
}

// decorate sets the headers every call carries. User headers go last and
// win on collision.
func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Carbone-Version", c.cfg.APIVersion)
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
}

func (c *Client) drain(resp *http.Response) {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		c.logger.Error("failed to discard unused body", "error", err)
	}
	if err := resp.Body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
}

// readBody buffers the whole body. A failure mid-body is a transport
// failure of the current attempt.
func (c *Client) readBody(op *operation, resp *http.Response) ([]byte, error) {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op.name, Attempts: op.attempts, Err: fmt.Errorf("reading body: %w", err)}
	}
	return b, nil
}

// bodyErrReader remembers the first error other than io.EOF returned by r.
type bodyErrReader struct {
	r   io.Reader
	err error
}

func (b *bodyErrReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && b.err == nil {
		b.err = err
	}
	return n, err
}

// endpoint joins path-escaped segments onto the base URL.
func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL.JoinPath(escaped...).String()
}

// operation is one logical call: its attempts share the id and span.
type operation struct {
	name     string
	id       string
	attempts int
	span     trace.Span
}

func (c *Client) begin(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *operation) {
	op := &operation{name: name, id: uuid.NewString()}

	attrs = append(attrs, attribute.String("carbone.operation_id", op.id))
	ctx, op.span = c.tracer.Start(ctx, "carbone."+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, op
}

func (c *Client) end(op *operation, err error) {
	op.span.SetAttributes(attribute.Int("carbone.attempts", op.attempts))
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
	}
	op.span.End()

	c.logger.Debug("operation finished",
		"op", op.name,
		"operation_id", op.id,
		"attempts", op.attempts,
		"error", err,
	)
}
