package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
)

// MarkerFile is the name of the file that records the last passing run.
const MarkerFile = ".preflight-passed"

const markerLockFile = ".preflight.lock"

// NeedsCheck returns true if the marker file doesn't exist in the data directory.
func NeedsCheck(dataDir string) bool {
	_, err := os.Stat(filepath.Join(dataDir, MarkerFile))
	return os.IsNotExist(err)
}

// MarkPassed records a passing run at now. Concurrent writers are serialized
// with a lock file next to the marker; a writer that cannot take the lock
// gives up with ErrCodeMarkerLocked.
func MarkPassed(dataDir string, now time.Time) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return perrors.New(perrors.ErrCodeFilePermission,
			fmt.Sprintf("create marker directory %s", dataDir), err)
	}

	return withMarkerLock(dataDir, func() error {
		tmp := filepath.Join(dataDir, MarkerFile+".tmp")
		if err := os.WriteFile(tmp, []byte(now.UTC().Format(time.RFC3339)), 0644); err != nil {
			return perrors.New(perrors.ErrCodeFilePermission, "write marker file", err)
		}
		if err := os.Rename(tmp, filepath.Join(dataDir, MarkerFile)); err != nil {
			_ = os.Remove(tmp)
			return perrors.New(perrors.ErrCodeFilePermission, "replace marker file", err)
		}
		return nil
	})
}

// ClearMarker removes the marker file, forcing a re-check on next run.
func ClearMarker(dataDir string) error {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return nil
	}
	return withMarkerLock(dataDir, func() error {
		err := os.Remove(filepath.Join(dataDir, MarkerFile))
		if err != nil && !os.IsNotExist(err) {
			return perrors.New(perrors.ErrCodeFilePermission, "remove marker file", err)
		}
		return nil
	})
}

// LastPassed returns when the last passing run was recorded.
// ok is false when there is no readable marker.
func LastPassed(dataDir string) (t time.Time, ok bool) {
	content, err := os.ReadFile(filepath.Join(dataDir, MarkerFile))
	if err != nil {
		return time.Time{}, false
	}
	t, err = time.Parse(time.RFC3339, strings.TrimSpace(string(content)))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MarkerAge returns how long ago the last passing run was recorded.
// Returns zero if the marker doesn't exist.
func MarkerAge(dataDir string) time.Duration {
	t, ok := LastPassed(dataDir)
	if !ok {
		return 0
	}
	return time.Since(t)
}

func withMarkerLock(dataDir string, fn func() error) error {
	lock := flock.New(filepath.Join(dataDir, markerLockFile))
	acquired, err := lock.TryLock()
	if err != nil {
		return perrors.New(perrors.ErrCodeFilePermission, "failed to acquire marker lock", err)
	}
	if !acquired {
		return perrors.New(perrors.ErrCodeMarkerLocked,
			"another preflight run is updating the marker", nil).
			WithDetail("lock", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}
