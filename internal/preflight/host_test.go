package preflight

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
)

func fixedDisk(n uint64) func(string) (uint64, error) {
	return func(string) (uint64, error) { return n, nil }
}

func fixedLimit(n uint64) func() (uint64, error) {
	return func() (uint64, error) { return n, nil }
}

func TestHostValidator(t *testing.T) {
	tests := []struct {
		name     string
		disk     func(string) (uint64, error)
		limit    func() (uint64, error)
		status   Status
		wantCode string
	}{
		{
			name:   "enough of everything",
			disk:   fixedDisk(10 * MinDiskSpaceBytes),
			limit:  fixedLimit(65536),
			status: StatusPass,
		},
		{
			name:     "low disk",
			disk:     fixedDisk(MinDiskSpaceBytes - 1),
			limit:    fixedLimit(65536),
			status:   StatusFail,
			wantCode: perrors.CodeHostDiskSpace,
		},
		{
			name:     "disk probe error",
			disk:     func(string) (uint64, error) { return 0, errors.New("statfs failed") },
			limit:    fixedLimit(65536),
			status:   StatusFail,
			wantCode: perrors.CodeHostDiskSpace,
		},
		{
			name:     "low file limit",
			disk:     fixedDisk(MinDiskSpaceBytes),
			limit:    fixedLimit(256),
			status:   StatusFail,
			wantCode: perrors.CodeHostFileDescLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewHostValidator(t.TempDir(), WithDiskProbe(tt.disk), WithFileLimitProbe(tt.limit))

			res := v.Run(context.Background())

			assert.Equal(t, HostName, res.Validator)
			assert.Equal(t, tt.status, res.Status)
			if tt.wantCode != "" {
				fatal, ok := res.Fatal()
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, fatal.Code)
				assert.Contains(t, fatal.Message, tt.wantCode)
			}
		})
	}
}

func TestHostValidator_RealHost(t *testing.T) {
	// Statfs and getrlimit against the test machine
	res := NewHostValidator(t.TempDir()).Run(context.Background())
	require.NotEmpty(t, res.Outcomes)
	assert.Equal(t, "disk_space", res.Outcomes[0].Check)
}

func TestHostValidator_MissingDataDirUsesParent(t *testing.T) {
	root := t.TempDir()
	var seen string
	v := NewHostValidator(filepath.Join(root, "not", "yet"),
		WithDiskProbe(func(p string) (uint64, error) {
			seen = p
			return MinDiskSpaceBytes, nil
		}),
		WithFileLimitProbe(fixedLimit(MinFileDescriptors)))

	res := v.Run(context.Background())

	assert.Equal(t, StatusPass, res.Status)
	assert.Equal(t, filepath.Clean(root), seen)
}

func TestNewHostConstructor(t *testing.T) {
	_, err := NewHostConstructor("")(nil)
	require.Error(t, err)

	v, err := NewHostConstructor(t.TempDir())(nil)
	require.NoError(t, err)
	assert.Equal(t, HostName, v.Name())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 bytes", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "100.0 MB", formatBytes(MinDiskSpaceBytes))
	assert.Equal(t, "2.0 GB", formatBytes(2*1024*1024*1024))
}
