package distributed

import (
	"testing"

	"github.com/00mjk/qibo/internal/config"
	"github.com/00mjk/qibo/qc/circuit"
	"github.com/00mjk/qibo/qc/gate"
	"github.com/stretchr/testify/require"
)

// oneToOneDeviceMap builds a DeviceMap with d accelerators, each hosting
// exactly one piece, for tests that don't exercise oversubscription.
func oneToOneDeviceMap(t *testing.T, d int) *DeviceMap {
	t.Helper()
	cfg := &config.Config{Accelerators: make(map[string]int, d)}
	for i := 0; i < d; i++ {
		cfg.Accelerators[DeviceName(i)] = 1
	}
	layout, err := NewDeviceLayout(cfg)
	require.NoError(t, err)
	return layout.Devices
}

// TestReduceGates_GlobalControlActivatesOnlyMatchingDevices checks that a
// gate controlled on the global qubit is only present in the device whose
// index bit matches the control, with the global control itself stripped
// from the reduced gate.
func TestReduceGates_GlobalControlActivatesOnlyMatchingDevices(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	queue := []circuit.Operation{
		op(gate.CNOT(), 0, 1), // control=0 (global), target=1 (local)
	}

	byPiece, err := reduceGates(queue, partition)
	require.NoError(t, err)

	// piece 0 (g-bit 0) should see nothing; piece 1 (g-bit 1) should see a
	// bare X with the global control dropped.
	require.Empty(t, byPiece[0])
	require.Len(t, byPiece[1], 1)

	rg := byPiece[1][0]
	require.Equal(t, "CNOT", rg.Name())
	require.Empty(t, rg.Controls())
	require.Equal(t, []int{partition.LocalReduced[1]}, rg.Targets())
}

// TestReduceGates_LocalControlSurvives checks a control on a local qubit
// remains a genuine control on every device's reduced gate.
func TestReduceGates_LocalControlSurvives(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	queue := []circuit.Operation{
		op(gate.CNOT(), 1, 2), // control=1 (local), target=2 (local)
	}

	byPiece, err := reduceGates(queue, partition)
	require.NoError(t, err)

	for i := 0; i < partition.DeviceCount(); i++ {
		rg := byPiece[i]
		require.Len(t, rg, 1)
		require.Equal(t, []int{partition.LocalReduced[1]}, rg[0].Controls())
		require.Equal(t, []int{partition.LocalReduced[2]}, rg[0].Targets())
	}
}

// TestReduceGates_GlobalTargetErrors checks a gate whose target is still
// global (caller bug: should have been transformed away first) is rejected.
func TestReduceGates_GlobalTargetErrors(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	queue := []circuit.Operation{
		op(gate.H(), 0), // targets the global qubit directly
	}

	_, err = reduceGates(queue, partition)
	require.ErrorIs(t, err, ErrInsufficientQubits)
}

// TestBuildWaves_EmptyTransformResult errors on an empty step list.
func TestBuildWaves_EmptyTransformResult(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	_, err = BuildWaves(&TransformResult{}, partition, oneToOneDeviceMap(t, partition.DeviceCount()))
	require.ErrorIs(t, err, ErrPlanEmpty)
}

// TestBuildWaves_EndToEnd runs Transform then BuildWaves for a single H on
// a global qubit and checks the resulting plan has the expected wave shape: one
// swap-in, one gates wave, one swap-out.
func TestBuildWaves_EndToEnd(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	queue := []circuit.Operation{
		op(gate.H(), 0), // forces a swap since qubit 0 is global
	}

	tr, err := Transform(queue, partition)
	require.NoError(t, err)

	plan, err := BuildWaves(tr, partition, oneToOneDeviceMap(t, partition.DeviceCount()))
	require.NoError(t, err)
	require.NotEmpty(t, plan.Waves)

	var kinds []WaveKind
	for _, w := range plan.Waves {
		kinds = append(kinds, w.Kind)
	}
	require.Equal(t, []WaveKind{WaveSwap, WaveGates, WaveSwap}, kinds)
}
