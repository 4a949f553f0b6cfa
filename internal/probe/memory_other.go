//go:build !linux && !darwin

package probe

import (
	"fmt"
	"runtime"
)

func totalMemoryBytes() (uint64, error) {
	return 0, fmt.Errorf("reading total memory is not supported on %s", runtime.GOOS)
}
