// Package carbonetest runs an in-process fake of the Carbone render API's
// template endpoints, for tests and examples.
package carbonetest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/adamwoolhether/carbone/internal/web"
	"github.com/adamwoolhether/carbone/internal/web/errs"
	"github.com/adamwoolhether/carbone/internal/web/middleware"
	"github.com/adamwoolhether/carbone/internal/web/mux"
)

// maxUploadSize bounds the multipart form the fake accepts.
const maxUploadSize = 32 << 20

// Server is a fake render API. Templates live in memory for the life of
// the server.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	templates map[string][]byte
	resets    int
	requests  int
}

// NewServer starts a fake accepting apiKey as its only bearer token. The
// caller must Close it.
func NewServer(apiKey string, optFns ...Option) *Server {
	opts := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range optFns {
		opt(&opts)
	}

	s := &Server{
		templates: make(map[string][]byte),
	}

	muxOpts := []mux.Option{
		mux.WithLogger(opts.logger),
		mux.WithGlobal(s.faults),
	}
	if opts.tracer != nil {
		muxOpts = append(muxOpts, mux.WithTracer(opts.tracer))
	}

	app := mux.New(muxOpts...)
	app.Use(
		middleware.Logger(opts.logger),
		middleware.Errors(opts.logger),
		middleware.Authorize(apiKey),
		middleware.Panics(),
	)
	app.Post("/template", s.addTemplate)
	app.Get("/template/{id}", s.getTemplate)
	app.Delete("/template/{id}", s.deleteTemplate)

	s.Server = httptest.NewServer(app)

	return s
}

// BaseURL returns the value to hand to client.WithBaseURL.
func (s *Server) BaseURL() string {
	return s.URL + "/"
}

// ResetNext makes the server reset the connection of the next n requests
// after reading them, without answering.
func (s *Server) ResetNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = n
}

// Requests returns how many requests reached the server, including the
// ones it reset.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Put stores content as if it had been uploaded with payload and returns
// its identifier.
func (s *Server) Put(content []byte, payload string) string {
	id := TemplateID(content, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[id] = append([]byte(nil), content...)

	return id
}

// Template returns the stored content of id.
func (s *Server) Template(id string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.templates[id]
	return content, ok
}

// TemplateID is the identifier the fake assigns to an upload: the
// hex-encoded SHA-256 of the payload followed by the file content.
func TemplateID(content []byte, payload string) string {
	h := sha256.New()
	h.Write([]byte(payload))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// faults counts every request and resets the connection of the ones
// scheduled by ResetNext.
func (s *Server) faults(next mux.Handler) mux.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s.mu.Lock()
		s.requests++
		reset := s.resets > 0
		if reset {
			s.resets--
		}
		s.mu.Unlock()

		if reset {
			_, _ = io.Copy(io.Discard, r.Body)
			return resetConn(w)
		}

		return next(ctx, w, r)
	}
}

func (s *Server) addTemplate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return errs.Newf(http.StatusBadRequest, "expected multipart/form-data")
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return errs.Newf(http.StatusBadRequest, "malformed form: %v", err)
	}

	file, _, err := r.FormFile("template")
	if err != nil {
		return errs.Newf(http.StatusBadRequest, "template file is missing")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	id := s.Put(content, r.FormValue("payload"))

	return web.RespondOK(ctx, w, map[string]string{"templateId": id})
}

func (s *Server) getTemplate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	content, ok := s.Template(r.PathValue("id"))
	if !ok {
		return errs.Newf(http.StatusNotFound, "Template not found")
	}

	return web.RespondFile(ctx, w, "template", content)
}

func (s *Server) deleteTemplate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")

	s.mu.Lock()
	_, ok := s.templates[id]
	delete(s.templates, id)
	s.mu.Unlock()

	if !ok {
		return errs.Newf(http.StatusNotFound, "Template not found")
	}

	return web.RespondOK(ctx, w, nil)
}

// resetConn drops the connection with an RST instead of answering.
func resetConn(w http.ResponseWriter) error {
	hj, ok := w.(http.Hijacker)
	if !ok {
		return errors.New("response writer does not support hijacking")
	}

	conn, _, err := hj.Hijack()
	if err != nil {
		return fmt.Errorf("hijacking connection: %w", err)
	}

	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetLinger(0)
	}

	return conn.Close()
}
