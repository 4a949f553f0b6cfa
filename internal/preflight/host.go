package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/Aman-CERP/serverpreflight/internal/config"
	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
)

const (
	// MinDiskSpaceBytes is the minimum free space under the data directory (100MB).
	MinDiskSpaceBytes = 100 * 1024 * 1024
	// MinFileDescriptors is the minimum open-file limit.
	MinFileDescriptors = 1024
)

// HostName is the registry name of the host validator.
const HostName = "host"

// HostValidator checks the host resources the preflight tool itself relies on.
type HostValidator struct {
	dataDir    string
	logger     *slog.Logger
	freeBytes  func(path string) (uint64, error)
	fileLimit  func() (uint64, error)
	minDisk    uint64
	minFileMax uint64
}

// HostOption configures a HostValidator.
type HostOption func(*HostValidator)

// WithHostLogger sets the logger for step output.
func WithHostLogger(logger *slog.Logger) HostOption {
	return func(v *HostValidator) {
		v.logger = logger
	}
}

// WithDiskProbe replaces the free-space lookup.
func WithDiskProbe(fn func(path string) (uint64, error)) HostOption {
	return func(v *HostValidator) {
		v.freeBytes = fn
	}
}

// WithFileLimitProbe replaces the open-file limit lookup.
func WithFileLimitProbe(fn func() (uint64, error)) HostOption {
	return func(v *HostValidator) {
		v.fileLimit = fn
	}
}

// NewHostValidator creates a host validator for dataDir.
func NewHostValidator(dataDir string, opts ...HostOption) *HostValidator {
	v := &HostValidator{
		dataDir:    dataDir,
		logger:     slog.Default(),
		freeBytes:  statfsFree,
		fileLimit:  openFileLimit,
		minDisk:    MinDiskSpaceBytes,
		minFileMax: MinFileDescriptors,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewHostConstructor returns a Constructor for the host validator.
// The snapshot is not consulted: the data directory comes from tool settings.
func NewHostConstructor(dataDir string, opts ...HostOption) Constructor {
	return func(_ *config.Snapshot) (Validator, error) {
		if dataDir == "" {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "host validator needs a data directory", nil)
		}
		return NewHostValidator(dataDir, opts...), nil
	}
}

// Name implements Validator.
func (v *HostValidator) Name() string {
	return HostName
}

// Run implements Validator.
func (v *HostValidator) Run(ctx context.Context) Result {
	return RunSteps(ctx, v.logger, HostName, []Step{
		{Name: "disk_space", Check: v.checkDiskSpace},
		{Name: "file_descriptors", Check: v.checkFileDescriptors},
	})
}

func (v *HostValidator) checkDiskSpace(_ context.Context) Outcome {
	path := existingAncestor(v.dataDir)
	available, err := v.freeBytes(path)
	if err != nil {
		return Fail(perrors.CodeHostDiskSpace,
			fmt.Sprintf("%s: failed to check disk space at %s: %v", perrors.CodeHostDiskSpace, path, err))
	}

	if available < v.minDisk {
		return Fail(perrors.CodeHostDiskSpace, fmt.Sprintf(`
%s: Insufficient disk space

         %s has %s free,
         but %s is required.
`, perrors.CodeHostDiskSpace, path, formatBytes(available), formatBytes(v.minDisk)))
	}
	return Passf("%s free at %s (minimum: %s)", formatBytes(available), path, formatBytes(v.minDisk))
}

func (v *HostValidator) checkFileDescriptors(_ context.Context) Outcome {
	limit, err := v.fileLimit()
	if err != nil {
		return Fail(perrors.CodeHostFileDescLimit,
			fmt.Sprintf("%s: failed to check file descriptor limit: %v", perrors.CodeHostFileDescLimit, err))
	}

	if limit < v.minFileMax {
		return Fail(perrors.CodeHostFileDescLimit, fmt.Sprintf(`
%s: File descriptor limit too low

         The open file limit is %d, but %d is required.
         Run 'ulimit -n 10240' to increase the limit.
`, perrors.CodeHostFileDescLimit, limit, v.minFileMax))
	}
	return Passf("open file limit %d (minimum: %d)", limit, v.minFileMax)
}

// existingAncestor returns path or its closest existing parent, so the check
// works before the data directory has been created.
func existingAncestor(path string) string {
	p := filepath.Clean(path)
	for {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}

func statfsFree(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

func openFileLimit() (uint64, error) {
	var rLimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}
	return rLimit.Cur, nil
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
