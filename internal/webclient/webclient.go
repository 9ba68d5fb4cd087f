package webclient

import (
	"context"
	"net/http"
	"time"
)

// WebClient is the minimal cross-package contract for outbound HTTP.
// Implementations must honour the request context and must not treat a
// non-2xx status as an error; only transport failures are returned as errors.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	// Head is a convenience method for lightweight existence probes.
	Head(ctx context.Context, url string) (*Response, error)

	Close() error
}

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}
