package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/webclient"
)

// UnreachableError reports a true transport failure on the top-level page
// request. It distinguishes a deadline expiry from any other connection
// problem so the caller can word the resulting issue.
type UnreachableError struct {
	URL      string
	TimedOut bool
	Err      error
}

func (e *UnreachableError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("fetch %s: timed out", e.URL)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Result is one completed top-level page request. Any status code counts as
// a successful fetch; classifying 4xx/5xx is the classifier's job.
type Result struct {
	StatusCode int
	Body       []byte
	ElapsedMs  int64
}

// QuickResult is the payload of a lightweight reachability probe.
type QuickResult struct {
	Online     bool   `json:"online"`
	StatusCode int    `json:"statusCode,omitempty"`
	LoadTimeMs int64  `json:"loadTime,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Fetcher performs the top-level page request of a scan, recording
// wall-clock latency and the raw response.
type Fetcher struct {
	cfg    *Config
	wc     webclient.WebClient
	logger logging.Logger
}

// New creates a Fetcher with the given webclient and logger. A nil config
// gets defaults.
func New(cfg *Config, wc webclient.WebClient, logger logging.Logger) (*Fetcher, error) {
	if wc == nil {
		return nil, errors.New("fetcher: nil webclient")
	}
	if logger == nil {
		return nil, errors.New("fetcher: nil logger")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Fetcher{
		cfg:    cfg,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// Fetch GETs the page with the full-scan timeout. Every HTTP status code is
// accepted; the error return is reserved for transport failures, which come
// back as *UnreachableError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	return f.fetch(ctx, url, f.cfg.ScanTimeout)
}

func (f *Fetcher) fetch(ctx context.Context, url string, timeout time.Duration) (*Result, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := f.wc.Get(reqCtx, url)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded
		f.logger.Warn("page unreachable",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "timed_out", Value: timedOut},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, &UnreachableError{URL: url, TimedOut: timedOut, Err: err}
	}

	f.logger.Debug("page fetched",
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "status", Value: resp.StatusCode},
		logging.Field{Key: "elapsed_ms", Value: elapsed})

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		ElapsedMs:  elapsed,
	}, nil
}

// QuickCheck verifies the site is reachable without parsing anything. It
// uses the shorter quick-check timeout and never returns an error: failures
// are reported inside the result.
func (f *Fetcher) QuickCheck(ctx context.Context, url string) *QuickResult {
	res, err := f.fetch(ctx, url, f.cfg.QuickTimeout)
	if err != nil {
		return &QuickResult{Online: false, Error: err.Error()}
	}
	return &QuickResult{
		Online:     res.StatusCode < 400,
		StatusCode: res.StatusCode,
		LoadTimeMs: res.ElapsedMs,
	}
}
