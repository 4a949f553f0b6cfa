package probe

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
)

// maxBodyBytes caps what we read from the search index root endpoint.
const maxBodyBytes = 1 << 20

// BasicAuth builds the Authorization header value for a username/password pair.
func BasicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// HTTPProbe issues a single authenticated GET against a base URL.
type HTTPProbe struct {
	baseURL    string
	authHeader string
	client     *retryablehttp.Client
}

// HTTPOption configures an HTTPProbe.
type HTTPOption func(*HTTPProbe)

// WithTimeout bounds a single request.
func WithTimeout(d time.Duration) HTTPOption {
	return func(p *HTTPProbe) {
		p.client.HTTPClient.Timeout = d
	}
}

// WithHTTPLogger routes transport logs to logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(p *HTTPProbe) {
		if logger != nil {
			p.client.Logger = logger
		}
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(p *HTTPProbe) {
		p.client.HTTPClient.Transport = rt
	}
}

// NewHTTPProbe creates a probe for baseURL. An empty authHeader makes every
// Get fail with ErrCodeMissingCredentials without contacting the server.
func NewHTTPProbe(baseURL, authHeader string, opts ...HTTPOption) *HTTPProbe {
	client := retryablehttp.NewClient()
	// The version probe owns retries: malformed bodies must be retried too.
	client.RetryMax = 0
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	client.HTTPClient.Timeout = 10 * time.Second

	p := &HTTPProbe{
		baseURL:    baseURL,
		authHeader: authHeader,
		client:     client,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// URL returns the probed base URL.
func (p *HTTPProbe) URL() string {
	return p.baseURL
}

// Get performs one GET of the base URL and returns the raw body.
// Any non-2xx status is an error.
func (p *HTTPProbe) Get(ctx context.Context) ([]byte, error) {
	if p.authHeader == "" {
		return nil, perrors.New(perrors.ErrCodeMissingCredentials,
			"search index credentials are not configured", nil).
			WithDetail("url", p.baseURL)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return nil, perrors.New(perrors.ErrCodeInvalidInput,
			fmt.Sprintf("invalid search index url %q", p.baseURL), err)
	}
	req.Header.Set("Authorization", p.authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(p.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, perrors.NetworkError("failed to read search index response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, perrors.New(perrors.ErrCodeBadStatus,
			fmt.Sprintf("search index returned %d", resp.StatusCode), nil).
			WithDetail("url", p.baseURL).
			WithDetail("status", resp.Status)
	}
	return body, nil
}

func classifyTransportError(url string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return perrors.New(perrors.ErrCodeNetworkTimeout, "search index request timed out", err).
			WithDetail("url", url)
	}
	return perrors.NetworkError("could not connect to search index", err).WithDetail("url", url)
}
