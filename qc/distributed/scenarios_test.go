package distributed

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/00mjk/qibo/qc/circuit"
	"github.com/00mjk/qibo/qc/gate"
	"github.com/stretchr/testify/require"
)

// runPipeline drives a queue through Transform/BuildWaves/Dispatcher/Bridge
// by hand, bypassing Executor so a test can pin the exact initial global
// set a scenario names rather than letting GateQubitCounter pick one.
func runPipeline(t *testing.T, queue []circuit.Operation, partition *Partition) []complex128 {
	t.Helper()

	tr, err := Transform(queue, partition)
	require.NoError(t, err)

	devices := oneToOneDeviceMap(t, partition.DeviceCount())
	plan, err := BuildWaves(tr, partition, devices)
	require.NoError(t, err)

	pieces := NewPieces(partition)
	var bridge Bridge
	var dispatcher Dispatcher

	for _, w := range plan.Waves {
		switch w.Kind {
		case WaveGates:
			require.NoError(t, dispatcher.RunWave(w, pieces, devices))
		case WaveSwap:
			require.NoError(t, bridge.RunSwap(w, pieces, partition))
		case WaveSpecial:
			pieces, err = bridge.RunSpecial(w, pieces, partition)
			require.NoError(t, err)
		}
	}

	full, err := Merge(pieces, partition)
	require.NoError(t, err)
	return full
}

func setAmplitude(full []complex128, bits string, amp complex128) []complex128 {
	idx := 0
	for _, c := range bits {
		idx <<= 1
		if c == '1' {
			idx |= 1
		}
	}
	full[idx] = amp
	return full
}

// Scenario 1: H(0); H(1) with global={0} on a 2-qubit register. Qubit 0 is
// global so the first Hadamard forces a swap in and a swap back; the two
// gates commute on disjoint qubits, so the net effect is the usual
// H-on-every-qubit uniform superposition regardless of how many internal
// swaps the Queue Transformer actually uses to get there.
func TestScenario1_TwoIndependentHadamards_UniformSuperposition(t *testing.T) {
	partition, err := NewPartition(2, []int{0})
	require.NoError(t, err)

	queue := []circuit.Operation{
		op(gate.H(), 0),
		op(gate.H(), 1),
	}

	full := runPipeline(t, queue, partition)
	want := complex(0.5, 0)
	for i, amp := range full {
		require.InDelta(t, 0, cmplx.Abs(amp-want), 1e-9, "index %d", i)
	}
}

// Scenario 2: CNOT(control=0, target=1) with global={0}. The control is
// global and the target is local, so no swap is needed at all: the global
// qubit's value only selects which devices the gate activates on.
func TestScenario2_CNOT_GlobalControlLocalTarget_NoSwap(t *testing.T) {
	partition, err := NewPartition(2, []int{0})
	require.NoError(t, err)

	queue := []circuit.Operation{op(gate.CNOT(), 0, 1)}

	result, err := Transform(queue, partition)
	require.NoError(t, err)
	for _, s := range result.Steps {
		require.NotEqual(t, StepSwap, s.Kind)
	}

	// |00> is unaffected: control qubit 0 reads 0, CNOT is a no-op.
	ground := runPipeline(t, queue, partition)
	requireAmplitudesEqual(t, setAmplitude(make([]complex128, 4), "00", 1), ground)

	// |10> (control=1) flips the target: 0b10 -> 0b11.
	pieces := NewPieces(partition)
	pieces[0].Amplitudes[0] = 0
	pieces[1].Amplitudes[0] = 1 // device 1 (global bit set) holds |10>
	tr, err := Transform(queue, partition)
	require.NoError(t, err)
	devices := oneToOneDeviceMap(t, partition.DeviceCount())
	plan, err := BuildWaves(tr, partition, devices)
	require.NoError(t, err)
	var dispatcher Dispatcher
	for _, w := range plan.Waves {
		require.Equal(t, WaveGates, w.Kind)
		require.NoError(t, dispatcher.RunWave(w, pieces, devices))
	}
	full, err := Merge(pieces, partition)
	require.NoError(t, err)
	requireAmplitudesEqual(t, setAmplitude(make([]complex128, 4), "11", 1), full)
}

// Scenario 3: a bare SWAP(0,2) gate with one global target (0) and one
// local target (2) on a 3-qubit, 2-device partition is a global-swap
// special wave: the Queue Transformer consumes the whole gate as the role
// exchange itself rather than picking an unrelated swap partner and still
// running the SWAP body as a local gate afterward.
func TestScenario3_SwapGlobalLocalTargets_IsConsumedByRoleSwap(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	queue := []circuit.Operation{op(gate.Swap(), 0, 2)}

	result, err := Transform(queue, partition)
	require.NoError(t, err)

	var swapSteps []TransformStep
	for _, s := range result.Steps {
		switch s.Kind {
		case StepSwap:
			swapSteps = append(swapSteps, s)
		case StepGates:
			require.Fail(t, "SWAP(global,local) must not also produce a StepGates batch")
		}
	}
	require.Len(t, swapSteps, 1)
	require.Equal(t, SwapPair{Global: 0, Local: 2}, swapSteps[0].Swap)
}

// Scenario 4: a SWAP gate whose two targets are both global is rejected up
// front, since a single role exchange can only trade one global qubit for
// one local qubit at a time.
func TestScenario4_SwapBetweenTwoGlobalQubits_Rejected(t *testing.T) {
	partition, err := NewPartition(4, []int{0, 1})
	require.NoError(t, err)

	queue := []circuit.Operation{op(gate.Swap(), 0, 1)}
	_, err = Transform(queue, partition)
	require.ErrorIs(t, err, ErrInvalidGlobalSwap)
}

// Scenario 5: H(0); Callback(sample); H(1) with global={0}. The callback
// observes the merged state strictly between the two Hadamards, so it must
// see H applied to qubit 0 alone (uniform over q0 with q1 still 0) even
// though the Queue Transformer has swapped qubit 0 out to local for the
// first Hadamard, so the active global set when the callback's wave runs
// is {1}.
func TestScenario5_CallbackBetweenHadamards_SeesIntermediateState(t *testing.T) {
	partition, err := NewPartition(2, []int{0})
	require.NoError(t, err)

	var observed []complex128
	cb := gate.NewCallback("observe", func(state []complex128) error {
		observed = append([]complex128(nil), state...)
		return nil
	})

	queue := []circuit.Operation{
		op(gate.H(), 0),
		op(cb),
		op(gate.H(), 1),
	}

	full := runPipeline(t, queue, partition)

	half := complex(1/math.Sqrt2, 0)
	want := make([]complex128, 4)
	want[0] = half // q0=0,q1=0 -> index "00"
	want[2] = half // q0=1,q1=0 -> index "10"
	requireAmplitudesEqual(t, want, observed)

	// After H(1) the full state is the usual 4-way uniform superposition.
	quarterAmp := complex(0.5, 0)
	for i, amp := range full {
		require.InDelta(t, 0, cmplx.Abs(amp-quarterAmp), 1e-9, "index %d", i)
	}
}

// Scenario 6: a gate whose target still holds the global role has no local
// index to reduce to, so the Wave Builder rejects it with
// ErrInsufficientQubits when it is handed the gate without a preceding
// swap.
func TestScenario6_GlobalTargetAtWaveBuilder_InsufficientLocalQubits(t *testing.T) {
	partition, err := NewPartition(2, []int{0})
	require.NoError(t, err)

	// Both qubits as plain (uncontrolled) targets of a 2-qubit gate: qubit
	// 0 is global, so the Queue Transformer swaps it in as a target...
	// but SWAP's own two targets are exactly (0,1), so this is scenario 3's
	// shape again; instead force the insufficiency directly at the Wave
	// Builder by reducing a gate that targets the global qubit without
	// going through a swap at all.
	active := partition
	op0 := op(gate.H(), 0)
	_, err = reduceGates([]circuit.Operation{op0}, active)
	require.ErrorIs(t, err, ErrInsufficientQubits)
}
