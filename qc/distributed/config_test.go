package distributed

import (
	"testing"

	"github.com/00mjk/qibo/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceLayout_PowerOfTwo(t *testing.T) {
	cfg := &config.Config{Accelerators: map[string]int{"a": 1, "b": 1, "c": 1, "d": 1}}
	layout, err := NewDeviceLayout(cfg)
	require.NoError(t, err)
	require.Equal(t, 2, layout.NGlobal) // log2(4)
}

func TestNewDeviceLayout_SingleDevice(t *testing.T) {
	cfg := &config.Config{Accelerators: map[string]int{"a": 1}}
	layout, err := NewDeviceLayout(cfg)
	require.NoError(t, err)
	require.Equal(t, 0, layout.NGlobal)
}

func TestNewDeviceLayout_RejectsNonPowerOfTwo(t *testing.T) {
	cfg := &config.Config{Accelerators: map[string]int{"a": 1, "b": 1, "c": 1}}
	_, err := NewDeviceLayout(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewDeviceLayout_RejectsEmpty(t *testing.T) {
	cfg := &config.Config{}
	_, err := NewDeviceLayout(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

// TestNewDeviceLayout_OversubscribesByAcceleratorCount checks that D is
// the sum of each accelerator's configured count (not the number of
// accelerator names), and that piece ids are handed out as a contiguous
// run per name in sorted name order, matching device_to_ids.
func TestNewDeviceLayout_OversubscribesByAcceleratorCount(t *testing.T) {
	cfg := &config.Config{Accelerators: map[string]int{"/GPU:0": 2, "/GPU:1": 2}}
	layout, err := NewDeviceLayout(cfg)
	require.NoError(t, err)
	require.Equal(t, 2, layout.NGlobal) // log2(4), not log2(2 names)

	require.Equal(t, []string{"/GPU:0", "/GPU:1"}, layout.Devices.Order)
	require.Equal(t, []int{0, 1}, layout.Devices.IDs["/GPU:0"])
	require.Equal(t, []int{2, 3}, layout.Devices.IDs["/GPU:1"])
	require.Equal(t, []string{"/GPU:0", "/GPU:0", "/GPU:1", "/GPU:1"}, layout.Devices.PieceDevice)
}
