package cmd

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/serverpreflight/internal/preflight"
)

func TestStatusCmd_NeverPassed(t *testing.T) {
	e := newEnv(t, "")

	out, _, err := e.execute("status")

	require.NoError(t, err)
	assert.Contains(t, out, "has not passed yet")
}

func TestStatusCmd_AfterPass(t *testing.T) {
	e := newEnv(t, "")
	require.NoError(t, preflight.MarkPassed(e.dataDir, time.Now().Add(-time.Hour)))

	out, _, err := e.execute("status", "--json")
	require.NoError(t, err)

	var info statusInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.True(t, info.Passed)
	assert.False(t, info.NeedsCheck)
	assert.InDelta(t, 3600, info.AgeSeconds, 60)
	assert.Equal(t, e.metricsFile, info.MetricsFile)
}

func TestStatusCmd_Clear(t *testing.T) {
	e := newEnv(t, "")
	require.NoError(t, preflight.MarkPassed(e.dataDir, time.Now()))

	out, _, err := e.execute("status", "--clear")

	require.NoError(t, err)
	assert.Contains(t, out, "has not passed yet")
	assert.True(t, preflight.NeedsCheck(e.dataDir))
}
