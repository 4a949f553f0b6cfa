package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
)

// UnknownVersion is returned when the major version could not be determined.
const UnknownVersion = 0

// Default retry policy for the version probe.
const (
	DefaultRetries    = 5
	DefaultRetryDelay = 5 * time.Second
)

// Getter fetches the raw body of the search index root endpoint.
type Getter interface {
	Get(ctx context.Context) ([]byte, error)
}

// VersionProbe reads the major version of the search index, retrying with a
// fixed delay on any failure.
type VersionProbe struct {
	getter  Getter
	retries int
	delay   time.Duration
	sleep   perrors.SleepFunc
	logger  *slog.Logger
}

// VersionOption configures a VersionProbe.
type VersionOption func(*VersionProbe)

// WithRetries sets how many retries follow the first failed attempt.
func WithRetries(n int) VersionOption {
	return func(p *VersionProbe) {
		if n >= 0 {
			p.retries = n
		}
	}
}

// WithRetryDelay sets the fixed wait between attempts.
func WithRetryDelay(d time.Duration) VersionOption {
	return func(p *VersionProbe) {
		p.delay = d
	}
}

// WithSleeper replaces the wait between attempts. Tests pass a no-op.
func WithSleeper(sleep perrors.SleepFunc) VersionOption {
	return func(p *VersionProbe) {
		p.sleep = sleep
	}
}

// WithLogger sets the logger for retry and exhaustion messages.
func WithLogger(logger *slog.Logger) VersionOption {
	return func(p *VersionProbe) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewVersionProbe creates a probe over getter with the default retry policy.
func NewVersionProbe(getter Getter, opts ...VersionOption) *VersionProbe {
	p := &VersionProbe{
		getter:  getter,
		retries: DefaultRetries,
		delay:   DefaultRetryDelay,
		sleep:   perrors.ContextSleep,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MajorVersion returns the search index major version, or UnknownVersion once
// retries are exhausted. It never fails: an unreachable index must not block startup.
func (p *VersionProbe) MajorVersion(ctx context.Context) int {
	v, err := p.Probe(ctx)
	if err != nil {
		args := append([]any{slog.Int("retries", p.retries)}, perrors.FormatForLog(err)...)
		p.logger.Error("Could not connect to search index", args...)
		return UnknownVersion
	}
	return v
}

// Probe is MajorVersion with the final error exposed.
func (p *VersionProbe) Probe(ctx context.Context) (int, error) {
	cfg := perrors.FixedRetryConfig(p.retries, p.delay)
	cfg.Sleep = p.sleep
	// Transport failures, bad statuses and malformed bodies are retried;
	// missing credentials and uncoded errors are not.
	cfg.ShouldRetry = perrors.IsRetryable
	cfg.OnRetry = func(remaining int, err error) {
		p.logger.Debug("Could not connect to search index, retrying",
			slog.Duration("delay", p.delay),
			slog.Int("retries_left", remaining),
			slog.String("error", err.Error()))
	}

	return perrors.RetryWithResult(ctx, cfg, func() (int, error) {
		body, err := p.getter.Get(ctx)
		if err != nil {
			return UnknownVersion, err
		}
		return ParseMajorVersion(body)
	})
}

// rootResponse is the subset of the search index root document we read.
type rootResponse struct {
	Version *struct {
		Number string `json:"number"`
	} `json:"version"`
}

// ParseMajorVersion extracts the integer before the first dot of version.number.
func ParseMajorVersion(body []byte) (int, error) {
	var root rootResponse
	if err := json.Unmarshal(body, &root); err != nil {
		return UnknownVersion, perrors.New(perrors.ErrCodeMalformedResponse,
			"search index response is not valid JSON", err)
	}
	if root.Version == nil || root.Version.Number == "" {
		return UnknownVersion, perrors.New(perrors.ErrCodeMalformedResponse,
			"search index response has no version.number", nil)
	}

	major, _, _ := strings.Cut(root.Version.Number, ".")
	n, err := strconv.Atoi(strings.TrimSpace(major))
	if err != nil || n < 0 {
		return UnknownVersion, perrors.New(perrors.ErrCodeMalformedResponse,
			fmt.Sprintf("unparseable version.number %q", root.Version.Number), err)
	}
	return n, nil
}
