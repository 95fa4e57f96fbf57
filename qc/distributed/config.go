package distributed

import (
	"fmt"
	"math/bits"

	"github.com/00mjk/qibo/internal/config"
)

// DeviceMap groups logical piece indices onto the physical accelerator
// names hosting them, the Go analogue of DeviceQueues.device_to_ids /
// ids_to_device in original_source/distcircuit.py's `_ids` generator: a
// single physical device's configured count run of piece ids is a
// contiguous range, assigned in accelerator-name sorted order so the
// grouping is deterministic despite Go's randomized map iteration. A
// device hosting more than one piece processes them sequentially, never
// concurrently with itself, so it is never oversubscribed.
type DeviceMap struct {
	// Order lists accelerator names in the order piece ids were handed
	// out (sorted), the iteration order the Parallel Dispatcher uses.
	Order []string

	// IDs maps accelerator name -> the piece ids it hosts, ascending.
	IDs map[string][]int

	// PieceDevice maps piece index -> the accelerator name hosting it.
	PieceDevice []string
}

// DeviceLayout derives the logical piece count, global-qubit count, and
// device/piece grouping from an internal/config.Config, validating that
// the accelerator counts sum to a power of two (ndevices validation in
// TensorflowDistributedCircuit.__init__).
type DeviceLayout struct {
	NGlobal int
	Devices *DeviceMap
}

// NewDeviceLayout validates cfg.Accelerators' count sum and derives
// nglobal = log2(D), plus the DeviceMap grouping piece ids per
// accelerator name (summing each name's configured count, matching
// DeviceQueues.device_to_ids rather than treating each accelerator entry
// as exactly one piece).
func NewDeviceLayout(cfg *config.Config) (*DeviceLayout, error) {
	d := cfg.DeviceCount()
	if d == 0 || d&(d-1) != 0 {
		return nil, fmt.Errorf("%w: accelerator count %d is not a power of two", ErrInvalidConfig, d)
	}

	names := cfg.DeviceNames()
	pieceDevice := make([]string, d)
	ids := make(map[string][]int, len(names))
	start := 0
	for _, name := range names {
		n := cfg.Accelerators[name]
		run := make([]int, n)
		for i := 0; i < n; i++ {
			run[i] = start + i
			pieceDevice[start+i] = name
		}
		ids[name] = run
		start += n
	}

	return &DeviceLayout{
		NGlobal: bits.Len(uint(d)) - 1,
		Devices: &DeviceMap{Order: names, IDs: ids, PieceDevice: pieceDevice},
	}, nil
}
