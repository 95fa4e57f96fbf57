package distributed

import (
	"testing"

	"github.com/00mjk/qibo/internal/config"
	"github.com/00mjk/qibo/qc/gate"
	"github.com/stretchr/testify/require"
)

// TestDispatcher_RunWave_AppliesGatesPerDevice checks that a WaveGates wave
// is applied to each piece independently, leaving untouched pieces
// unchanged.
func TestDispatcher_RunWave_AppliesGatesPerDevice(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	pieces := NewPieces(partition)
	devices := oneToOneDeviceMap(t, partition.DeviceCount())

	w := Wave{
		Kind: WaveGates,
		Gates: map[int][]ReducedGate{
			0: {ReducedGate{gate.NewGateStruct("H", []int{0}, nil)}},
		},
	}

	d := Dispatcher{}
	require.NoError(t, d.RunWave(w, pieces, devices))

	// piece 0 has been put into an equal superposition over its local
	// qubit 0; piece 1 (no gates) is untouched.
	require.InDelta(t, 1/1.4142135623730951, real(pieces[0].Amplitudes[0]), 1e-9)
	require.InDelta(t, 1/1.4142135623730951, real(pieces[0].Amplitudes[1]), 1e-9)
	require.Equal(t, complex128(0), pieces[1].Amplitudes[0])
}

// TestDispatcher_RunWave_WrongKind rejects a non-gate wave.
func TestDispatcher_RunWave_WrongKind(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)
	pieces := NewPieces(partition)
	devices := oneToOneDeviceMap(t, partition.DeviceCount())

	d := Dispatcher{}
	require.Error(t, d.RunWave(Wave{Kind: WaveSwap}, pieces, devices))
}

// TestDispatcher_RunWave_PropagatesPerDeviceErrors checks a kernel error on
// one piece's gate surfaces back to the caller.
func TestDispatcher_RunWave_PropagatesPerDeviceErrors(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)
	pieces := NewPieces(partition)
	devices := oneToOneDeviceMap(t, partition.DeviceCount())

	w := Wave{
		Kind: WaveGates,
		Gates: map[int][]ReducedGate{
			1: {ReducedGate{gate.NewGateStruct("NOT-A-REAL-GATE", []int{0}, nil)}},
		},
	}

	d := Dispatcher{}
	require.Error(t, d.RunWave(w, pieces, devices))
}

// TestDispatcher_RunWave_OversubscribedDeviceProcessesPiecesSequentially
// checks that when one physical device name hosts more than one piece
// (device multiplicity > 1), the dispatcher still applies each piece's
// own gate list to its own buffer rather than losing or cross-applying
// work across the pieces sharing that device.
func TestDispatcher_RunWave_OversubscribedDeviceProcessesPiecesSequentially(t *testing.T) {
	partition, err := NewPartition(3, []int{0, 1})
	require.NoError(t, err)
	pieces := NewPieces(partition)
	// NewPieces only seeds piece 0's |0> amplitude; give piece 1 one too
	// so both pieces on "gpu0" have something for X to flip.
	pieces[1].Amplitudes[0] = 1

	cfg := &config.Config{Accelerators: map[string]int{"gpu0": 2, "gpu1": 2}}
	layout, err := NewDeviceLayout(cfg)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, layout.Devices.IDs["gpu0"])
	require.Equal(t, []int{2, 3}, layout.Devices.IDs["gpu1"])

	w := Wave{
		Kind: WaveGates,
		Gates: map[int][]ReducedGate{
			0: {ReducedGate{gate.NewGateStruct("X", []int{0}, nil)}},
			1: {ReducedGate{gate.NewGateStruct("X", []int{0}, nil)}},
		},
	}

	d := Dispatcher{}
	require.NoError(t, d.RunWave(w, pieces, layout.Devices))

	// both pieces hosted by "gpu0" got their own X applied; pieces on
	// "gpu1" (no gates this wave) are untouched.
	require.Equal(t, complex(1, 0), pieces[0].Amplitudes[1])
	require.Equal(t, complex(1, 0), pieces[1].Amplitudes[1])
	require.Equal(t, complex(0, 0), pieces[2].Amplitudes[0])
	require.Equal(t, complex(0, 0), pieces[3].Amplitudes[0])
}
