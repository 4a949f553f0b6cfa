package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/serverpreflight/internal/preflight"
)

func sampleReport() *preflight.Report {
	return &preflight.Report{
		StartedAt: time.Unix(1700000000, 0),
		Results: []preflight.Result{
			{
				Validator: "host",
				Status:    preflight.StatusPass,
				Outcomes:  []preflight.Outcome{preflight.Pass(), preflight.Pass()},
			},
			{
				Validator: "search_index",
				Status:    preflight.StatusFail,
				Outcomes: []preflight.Outcome{
					preflight.Pass(),
					preflight.Warn("", "old"),
					preflight.Fail("INDEX006", "no url"),
				},
			},
		},
	}
}

func TestRecorder_Observe(t *testing.T) {
	r := New()
	r.Observe(sampleReport())

	assert.Equal(t, 0.0, testutil.ToFloat64(r.ValidatorStatus.WithLabelValues("host")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.ValidatorStatus.WithLabelValues("search_index")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Outcomes.WithLabelValues("host", "pass")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.Outcomes.WithLabelValues("host", "fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Outcomes.WithLabelValues("search_index", "warn")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Outcomes.WithLabelValues("search_index", "fail")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.LastRun))
}

func TestRecorder_SearchIndexVersion(t *testing.T) {
	r := New()
	r.SetSearchIndexVersion(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SearchIndexVersion))

	r.SetSearchIndexVersion(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.SearchIndexVersion))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.Observe(sampleReport())
	r.SetSearchIndexVersion(1)

	path := filepath.Join(t.TempDir(), "textfile", "preflight.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `server_preflight_validator_status{validator="search_index"} 2`)
	assert.Contains(t, out, `server_preflight_outcomes{status="warn",validator="search_index"} 1`)
	assert.Contains(t, out, "server_preflight_search_index_major_version 1")
	assert.Contains(t, out, "# HELP server_preflight_last_run_timestamp_seconds")
}
