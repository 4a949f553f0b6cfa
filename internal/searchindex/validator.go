// Package searchindex validates the search-index settings of the server
// configuration and checks the running index version.
package searchindex

import (
	"context"
	"log/slog"

	"github.com/Aman-CERP/serverpreflight/internal/config"
	"github.com/Aman-CERP/serverpreflight/internal/preflight"
	"github.com/Aman-CERP/serverpreflight/internal/probe"
)

// Name is the registry name of the search-index validator.
const Name = "search_index"

// Thresholds and versions enforced by the checks.
const (
	RequiredMemoryMB = 3072
	MinHeapSizeMB    = 1024
	MaxHeapSizeMB    = 26 * 1024

	RequiredVersion  = 1
	SupportedVersion = 1
)

// VersionProber returns the major version of the search index, or 0 when
// it could not be determined.
type VersionProber interface {
	MajorVersion(ctx context.Context) int
}

// Validator runs the search-index checks against one snapshot.
type Validator struct {
	snap          *config.Snapshot
	memory        probe.MemoryProbe
	version       VersionProber
	logger        *slog.Logger
	heapSizeCheck bool
	versionOpts   []probe.VersionOption
	httpOpts      []probe.HTTPOption
	onVersion     func(major int)
}

// Option configures a Validator.
type Option func(*Validator)

// WithMemoryProbe replaces the host memory probe.
func WithMemoryProbe(m probe.MemoryProbe) Option {
	return func(v *Validator) {
		v.memory = m
	}
}

// WithVersionProber replaces the HTTP version probe.
func WithVersionProber(p VersionProber) Option {
	return func(v *Validator) {
		v.version = p
	}
}

// WithLogger sets the logger for checks and the version probe.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithHeapSizeCheck turns the heap-size bounds check on. It is off by default.
func WithHeapSizeCheck(enabled bool) Option {
	return func(v *Validator) {
		v.heapSizeCheck = enabled
	}
}

// WithVersionOptions configures the default version probe's retry policy.
func WithVersionOptions(opts ...probe.VersionOption) Option {
	return func(v *Validator) {
		v.versionOpts = append(v.versionOpts, opts...)
	}
}

// WithHTTPOptions configures the default version probe's HTTP transport.
func WithHTTPOptions(opts ...probe.HTTPOption) Option {
	return func(v *Validator) {
		v.httpOpts = append(v.httpOpts, opts...)
	}
}

// WithVersionObserver is called with every probed major version, including 0.
func WithVersionObserver(fn func(major int)) Option {
	return func(v *Validator) {
		v.onVersion = fn
	}
}

// New creates a validator for snap. Without WithVersionProber, the version is
// probed over HTTP at SearchEngineURL using AuthHeader.
func New(snap *config.Snapshot, opts ...Option) *Validator {
	v := &Validator{
		snap:   snap,
		memory: probe.HostMemory{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.version == nil {
		httpProbe := probe.NewHTTPProbe(v.SearchEngineURL(), v.AuthHeader(),
			append([]probe.HTTPOption{probe.WithHTTPLogger(v.logger)}, v.httpOpts...)...)
		v.version = probe.NewVersionProbe(httpProbe,
			append([]probe.VersionOption{probe.WithLogger(v.logger)}, v.versionOpts...)...)
	}
	return v
}

// NewConstructor returns a preflight.Constructor that builds a fresh
// validator from each snapshot.
func NewConstructor(opts ...Option) preflight.Constructor {
	return func(snap *config.Snapshot) (preflight.Validator, error) {
		return New(snap, opts...), nil
	}
}

// Name implements preflight.Validator.
func (v *Validator) Name() string {
	return Name
}

// Run implements preflight.Validator. Checks run in a fixed order and the
// first failure stops the rest.
func (v *Validator) Run(ctx context.Context) preflight.Result {
	return preflight.RunSteps(ctx, v.logger, Name, v.steps())
}

func (v *Validator) steps() []preflight.Step {
	steps := []preflight.Step{
		{Name: "verify_system_memory", Check: v.verifySystemMemory},
	}
	if v.heapSizeCheck {
		steps = append(steps, preflight.Step{Name: "verify_heap_size", Check: v.verifyHeapSize})
	}
	return append(steps,
		preflight.Step{Name: "verify_consistent_reindex_sleep_times", Check: v.verifyReindexSleepTimes},
		preflight.Step{Name: "verify_op_disabled_if_user_set_external_opensearch", Check: v.verifyInternalDisabledIfExternal},
		preflight.Step{Name: "verify_external_url", Check: v.verifyExternalURL},
		preflight.Step{Name: "verify_erchef_config", Check: v.verifyErchefConfig},
		preflight.Step{Name: "verify_opensearch_version", Check: v.verifyVersion},
	)
}
