package throttle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRoundTripper_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    Config
		expErr error
	}{
		{
			name:   "Invalid RPS (zero)",
			cfg:    Config{RPS: 0, Burst: 10},
			expErr: ErrMustNotBeZero,
		},
		{
			name:   "Invalid RPS (negative)",
			cfg:    Config{RPS: -5, Burst: 10},
			expErr: ErrMustNotBeZero,
		},
		{
			name:   "Invalid Burst (zero)",
			cfg:    Config{RPS: 10, Burst: 0},
			expErr: ErrMustNotBeZero,
		},
		{
			name:   "Invalid Burst (negative)",
			cfg:    Config{RPS: 10, Burst: -5},
			expErr: ErrMustNotBeZero,
		},
		{
			name: "Valid input",
			cfg:  Config{RPS: 10, Burst: 20},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rt, err := NewRoundTripper(tc.cfg, func() *slog.Logger { return nil }, http.DefaultTransport)
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Errorf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("exp nil err, got: %v", err)
			}
			if rt == nil {
				t.Error("exp non-nil RoundTripper")
			}
		})
	}
}

func TestThrottle_BurstThenWaitTimesOut(t *testing.T) {
	var callCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&callCount, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rt, err := NewRoundTripper(Config{RPS: 1, Burst: 2}, func() *slog.Logger { return slog.Default() }, http.DefaultTransport)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Transport: rt}

	const numRequests = 4
	errs := make([]error, numRequests)
	var wg sync.WaitGroup

	for i := range numRequests {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
			defer cancel()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
			if err != nil {
				errs[idx] = err
				return
			}

			resp, err := client.Do(req)
			if err != nil {
				errs[idx] = err
				return
			}
			_ = resp.Body.Close()
		}(i)
	}
	wg.Wait()

	var failed int
	for _, err := range errs {
		if err == nil {
			continue
		}
		failed++
		if !errors.Is(err, ErrWaitingFailed) {
			t.Errorf("expected ErrWaitingFailed, got: %v", err)
		}
	}

	if failed != 2 {
		t.Errorf("expected 2 throttled requests, got %d", failed)
	}
	if got := atomic.LoadInt32(&callCount); got != 2 {
		t.Errorf("expected 2 calls to reach the server, got %d", got)
	}
}

func TestThrottle_CancelledContext(t *testing.T) {
	rt, err := NewRoundTripper(Config{RPS: 10, Burst: 1}, nil, http.DefaultTransport)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:1", nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = rt.RoundTrip(req)
	if !errors.Is(err, ErrContextEnded) {
		t.Errorf("expected ErrContextEnded, got: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}
