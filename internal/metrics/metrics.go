// Package metrics exports preflight outcomes as Prometheus gauges, written to a
// node_exporter textfile so the last run stays visible between invocations.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
	"github.com/Aman-CERP/serverpreflight/internal/preflight"
)

const namespace = "server_preflight"

var statuses = []preflight.Status{preflight.StatusPass, preflight.StatusWarn, preflight.StatusFail}

// Recorder holds the preflight gauges on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	ValidatorStatus    *prometheus.GaugeVec
	Outcomes           *prometheus.GaugeVec
	SearchIndexVersion prometheus.Gauge
	LastRun            prometheus.Gauge
}

// New creates a Recorder with all gauges registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ValidatorStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validator_status",
			Help:      "Result of the last run per validator (0 pass, 1 warn, 2 fail)",
		}, []string{"validator"}),
		Outcomes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outcomes",
			Help:      "Number of check outcomes in the last run by validator and status",
		}, []string{"validator", "status"}),
		SearchIndexVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_index_major_version",
			Help:      "Major version reported by the search index, 0 when unreachable",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last preflight run started",
		}),
	}
	r.registry.MustRegister(r.ValidatorStatus, r.Outcomes, r.SearchIndexVersion, r.LastRun)
	return r
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// SetSearchIndexVersion records the probed major version.
func (r *Recorder) SetSearchIndexVersion(major int) {
	r.SearchIndexVersion.Set(float64(major))
}

// Observe records every validator result of rep.
func (r *Recorder) Observe(rep *preflight.Report) {
	r.LastRun.Set(float64(rep.StartedAt.UnixNano()) / 1e9)

	for _, res := range rep.Results {
		r.ValidatorStatus.WithLabelValues(res.Validator).Set(float64(res.Status))

		counts := make(map[preflight.Status]int, len(statuses))
		for _, o := range res.Outcomes {
			counts[o.Status]++
		}
		for _, s := range statuses {
			text, _ := s.MarshalText()
			r.Outcomes.WithLabelValues(res.Validator, string(text)).Set(float64(counts[s]))
		}
	}
}

// WriteTextfile writes the registry in the text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return perrors.New(perrors.ErrCodeFilePermission, "create metrics directory", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return perrors.New(perrors.ErrCodeFilePermission, "write metrics file "+path, err)
	}
	return nil
}
