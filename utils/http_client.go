package utils

import (
	"net/http"

	"golang.org/x/time/rate"
)

// ThrottledTransport is an http.RoundTripper that waits on a rate limiter
// before every request. The fallback scraper uses it so the browserless
// path is no less polite than the browser one.
type ThrottledTransport struct {
	Transport http.RoundTripper
	Limiter   *rate.Limiter
}

func (t *ThrottledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.Transport.RoundTrip(req)
}

// NewThrottledTransport wraps the default transport with a limiter allowing
// requestsPerSecond sustained requests and the given burst.
func NewThrottledTransport(requestsPerSecond float64, burst int) *ThrottledTransport {
	return &ThrottledTransport{
		Transport: http.DefaultTransport,
		Limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}
