package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
)

func layers(user, def map[string]any) *Layers {
	if user == nil {
		user = map[string]any{}
	}
	if def == nil {
		def = map[string]any{}
	}
	return &Layers{User: user, Default: def, UserPath: "/etc/opscode/chef-server.yaml"}
}

func TestNewSnapshot_UserOverridesDefault(t *testing.T) {
	src := layers(
		map[string]any{KeySearchPort: 9300, KeyErchefReindexSleepMin: 100},
		map[string]any{KeySearchPort: 9200, KeyErchefReindexSleepMin: 500, KeyErchefReindexSleepMax: 2000, KeySearchVIP: "127.0.0.1"},
	)

	snap, err := NewSnapshot(src, src.UserPath)

	require.NoError(t, err)
	assert.Equal(t, 9300, snap.Search.Port)
	assert.Equal(t, "127.0.0.1", snap.Search.VIP)
	require.NotNil(t, snap.Erchef.ReindexSleepMinMS)
	assert.Equal(t, 100, *snap.Erchef.ReindexSleepMinMS)
	require.NotNil(t, snap.Erchef.ReindexSleepMaxMS)
	assert.Equal(t, 2000, *snap.Erchef.ReindexSleepMaxMS)
	assert.Equal(t, "/etc/opscode/chef-server.yaml", snap.UserConfigPath)
}

func TestNewSnapshot_AbsentOptionalValuesStayNil(t *testing.T) {
	snap, err := NewSnapshot(layers(nil, nil), "")

	require.NoError(t, err)
	assert.Nil(t, snap.Erchef.SearchProvider)
	assert.Nil(t, snap.Search.HeapSizeMB)
	assert.Nil(t, snap.Erchef.ReindexSleepMinMS)
	assert.Equal(t, "", snap.Search.ExternalURL)
	assert.False(t, snap.Search.External)
}

func TestNewSnapshot_EnableFallsBackToDefault(t *testing.T) {
	tests := []struct {
		name     string
		user     map[string]any
		def      map[string]any
		expected bool
	}{
		{"user unset uses default true", nil, map[string]any{KeySearchEnable: true}, true},
		{"user false wins", map[string]any{KeySearchEnable: false}, map[string]any{KeySearchEnable: true}, false},
		{"user true wins", map[string]any{KeySearchEnable: true}, map[string]any{KeySearchEnable: false}, true},
		{"chef backend forces disabled", map[string]any{KeySearchEnable: true, KeyUseChefBackend: true}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := NewSnapshot(layers(tt.user, tt.def), "")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, snap.InternalSearchEnabled())
		})
	}
}

func TestNewSnapshot_CredentialsResolveAsPair(t *testing.T) {
	tests := []struct {
		name      string
		user      map[string]any
		def       map[string]any
		wantUser  string
		wantLayer Layer
		complete  bool
	}{
		{
			name:      "complete user pair wins",
			user:      map[string]any{KeyErchefAuthUsername: "alice", KeyErchefAuthPassword: "secret"},
			def:       map[string]any{KeyErchefAuthUsername: "admin", KeyErchefAuthPassword: "admin"},
			wantUser:  "alice",
			wantLayer: LayerUser,
			complete:  true,
		},
		{
			name:      "half user pair falls back to defaults",
			user:      map[string]any{KeyErchefAuthUsername: "alice"},
			def:       map[string]any{KeyErchefAuthUsername: "admin", KeyErchefAuthPassword: "admin"},
			wantUser:  "admin",
			wantLayer: LayerDefault,
			complete:  true,
		},
		{
			name:      "nothing anywhere",
			wantLayer: LayerDefault,
			complete:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := NewSnapshot(layers(tt.user, tt.def), "")
			require.NoError(t, err)

			creds := snap.Erchef.Credentials
			assert.Equal(t, tt.complete, creds.Complete())
			assert.Equal(t, tt.wantLayer, creds.Layer)
			if tt.wantUser != "" {
				require.NotNil(t, creds.Username)
				assert.Equal(t, tt.wantUser, *creds.Username)
			}
		})
	}
}

func TestNewSnapshot_NumericPasswordIsStringified(t *testing.T) {
	src := layers(map[string]any{KeyErchefAuthUsername: "admin", KeyErchefAuthPassword: 1234}, nil)

	snap, err := NewSnapshot(src, "")

	require.NoError(t, err)
	require.NotNil(t, snap.Erchef.Credentials.Password)
	assert.Equal(t, "1234", *snap.Erchef.Credentials.Password)
}

func TestNewSnapshot_TypeMismatchIsConfigError(t *testing.T) {
	src := layers(map[string]any{KeySearchPort: "ninety-two hundred"}, nil)

	_, err := NewSnapshot(src, "")

	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeConfigInvalid, perrors.GetCode(err))
	assert.Contains(t, err.Error(), "opensearch['port']")
	assert.Contains(t, err.Error(), "user layer")
}

func TestNewSnapshot_OutOfRangeIntegerIsConfigError(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"uint64 above max int", uint64(math.MaxUint64)},
		{"float above max int", 1e19},
		{"float below min int", -1e19},
		{"fractional float", 1500.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := layers(map[string]any{KeyErchefReindexSleepMin: tt.value}, nil)

			_, err := NewSnapshot(src, "")

			require.Error(t, err)
			assert.Equal(t, perrors.ErrCodeConfigInvalid, perrors.GetCode(err))
			assert.Contains(t, err.Error(), "opscode_erchef['reindex_sleep_min_ms']")
		})
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{42, 42, true},
		{int64(-7), -7, true},
		{uint64(9200), 9200, true},
		{float64(2000), 2000, true},
		{uint64(math.MaxInt) + 1, 0, false},
		{math.Inf(1), 0, false},
		{math.NaN(), 0, false},
		{"9200", 0, false},
	}
	for _, tt := range tests {
		got, ok := toInt(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestNewSnapshot_SearchAddressFallsBackWhenUnset(t *testing.T) {
	// Given: neither layer sets the internal search index address
	snap, err := NewSnapshot(layers(nil, nil), "")

	// Then: the standard loopback address and port are used
	require.NoError(t, err)
	assert.Equal(t, DefaultSearchVIP, snap.Search.VIP)
	assert.Equal(t, DefaultSearchPort, snap.Search.Port)
}

func TestNewSnapshot_PortOutOfRangeIsConfigError(t *testing.T) {
	for _, port := range []any{0, -1, 70000} {
		src := layers(nil, map[string]any{KeySearchPort: port})

		_, err := NewSnapshot(src, "")

		require.Error(t, err, "port %v", port)
		assert.Equal(t, perrors.ErrCodeConfigInvalid, perrors.GetCode(err))
		assert.Contains(t, err.Error(), "default layer")
	}
}

func TestNewSnapshot_ProviderSetToEmptyStringIsPresent(t *testing.T) {
	src := layers(map[string]any{KeyErchefSearchProvider: ""}, nil)

	snap, err := NewSnapshot(src, "")

	require.NoError(t, err)
	require.NotNil(t, snap.Erchef.SearchProvider)
	assert.Equal(t, "", *snap.Erchef.SearchProvider)
}

func TestSnapshot_RedactedMasksPassword(t *testing.T) {
	src := layers(map[string]any{KeyErchefAuthUsername: "admin", KeyErchefAuthPassword: "hunter2"}, nil)
	snap, err := NewSnapshot(src, "")
	require.NoError(t, err)

	red := snap.Redacted()

	assert.Equal(t, "********", *red.Erchef.Credentials.Password)
	assert.Equal(t, "hunter2", *snap.Erchef.Credentials.Password, "original must be unchanged")
}

func TestLoadSnapshot_EmbeddedDefaults(t *testing.T) {
	snap, err := LoadSnapshot(t.TempDir()+"/missing.yaml", "")

	require.NoError(t, err)
	assert.True(t, snap.InternalSearchEnabled())
	assert.Equal(t, 9200, snap.Search.Port)
	assert.Equal(t, "batch", snap.Erchef.SearchQueueMode)
	assert.True(t, snap.Erchef.Credentials.Complete())
}
