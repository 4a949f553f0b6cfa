package probe

import "fmt"

// Unit is a memory size unit in bytes.
type Unit uint64

// Memory units.
const (
	Bytes Unit = 1
	KB    Unit = 1024
	MB    Unit = 1024 * KB
	GB    Unit = 1024 * MB
)

// String returns the unit suffix.
func (u Unit) String() string {
	switch u {
	case Bytes:
		return "B"
	case KB:
		return "KB"
	case MB:
		return "MB"
	case GB:
		return "GB"
	default:
		return fmt.Sprintf("%dB", uint64(u))
	}
}

// MemoryProbe reports total system memory.
type MemoryProbe interface {
	TotalMemory(unit Unit) (uint64, error)
}

// HostMemory reads total memory from the running kernel.
type HostMemory struct{}

// TotalMemory returns total physical memory in the given unit, rounded down.
func (HostMemory) TotalMemory(unit Unit) (uint64, error) {
	if unit == 0 {
		unit = Bytes
	}
	total, err := totalMemoryBytes()
	if err != nil {
		return 0, err
	}
	return total / uint64(unit), nil
}

// StaticMemory is a MemoryProbe with a fixed total, in bytes.
type StaticMemory uint64

// TotalMemory returns the fixed total in the given unit.
func (m StaticMemory) TotalMemory(unit Unit) (uint64, error) {
	if unit == 0 {
		unit = Bytes
	}
	return uint64(m) / uint64(unit), nil
}
