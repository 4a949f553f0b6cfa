//go:build darwin

package probe

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func totalMemoryBytes() (uint64, error) {
	total, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0, fmt.Errorf("sysctl hw.memsize: %w", err)
	}
	return total, nil
}
