package apiclient

import (
	"fmt"
	"math"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries a per-request correlation id the backend can log
const RequestIDHeader = "X-Request-ID"

// throttledTransport blocks each request on a token-bucket limiter
type throttledTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// newThrottledTransport limits outbound requests to rps per second.
// A non-positive rps disables throttling.
func newThrottledTransport(base http.RoundTripper, rps float64) *throttledTransport {
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = int(math.Ceil(rps))
	}
	return &throttledTransport{
		base:    base,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return t.base.RoundTrip(req)
}

// requestIDTransport stamps every request with a fresh X-Request-ID
type requestIDTransport struct {
	base http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set(RequestIDHeader, uuid.NewString())
	return t.base.RoundTrip(clone)
}
