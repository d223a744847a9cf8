package system

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

var ErrInsufficientMemory = errors.New("not enough memory for preload")

// AvailableMemory reports how much memory can be allocated without swapping.
func AvailableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// CheckPreload estimates whether frames buffers of frameBytes each fit into
// available, leaving a quarter of it untouched.
func CheckPreload(frames, frameBytes int, available uint64) error {
	if frames <= 0 || frameBytes <= 0 {
		return nil
	}
	need := uint64(frames) * uint64(frameBytes)
	budget := available - available/4
	if need > budget {
		return fmt.Errorf("%w: need %s, available %s", ErrInsufficientMemory, HumanBytes(need), HumanBytes(available))
	}
	return nil
}

func HumanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
