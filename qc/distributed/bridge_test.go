package distributed

import (
	"math/cmplx"
	"testing"

	"github.com/00mjk/qibo/qc/gate"
	"github.com/stretchr/testify/require"
)

func distinctFullState(n int) []complex128 {
	full := make([]complex128, 1<<uint(n))
	for i := range full {
		full[i] = complex(float64(i), float64(-i))
	}
	return full
}

func requireAmplitudesEqual(t *testing.T, want, got []complex128) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	for i := range want {
		require.InDelta(t, 0, cmplx.Abs(want[i]-got[i]), 1e-9, "index %d", i)
	}
}

// TestMergeSplit_RoundTrip_Prefix checks the cheap prefix path: Global is
// {0,...,nglobal-1}.
func TestMergeSplit_RoundTrip_Prefix(t *testing.T) {
	partition, err := NewPartition(4, []int{0, 1})
	require.NoError(t, err)
	require.True(t, isPrefixGlobal(partition))

	full := distinctFullState(4)
	pieces, err := Split(full, partition)
	require.NoError(t, err)

	back, err := Merge(pieces, partition)
	require.NoError(t, err)
	requireAmplitudesEqual(t, full, back)
}

// TestMergeSplit_RoundTrip_Suffix checks the cheap suffix path: Global is
// {nqubits-nglobal,...,nqubits-1}.
func TestMergeSplit_RoundTrip_Suffix(t *testing.T) {
	partition, err := NewPartition(4, []int{2, 3})
	require.NoError(t, err)
	require.True(t, isSuffixGlobal(partition))

	full := distinctFullState(4)
	pieces, err := Split(full, partition)
	require.NoError(t, err)

	back, err := Merge(pieces, partition)
	require.NoError(t, err)
	requireAmplitudesEqual(t, full, back)
}

// TestMergeSplit_RoundTrip_General checks the general per-qubit transpose
// fallback, where Global is neither a prefix nor a suffix.
func TestMergeSplit_RoundTrip_General(t *testing.T) {
	partition, err := NewPartition(4, []int{0, 2})
	require.NoError(t, err)
	require.False(t, isPrefixGlobal(partition))
	require.False(t, isSuffixGlobal(partition))

	full := distinctFullState(4)
	pieces, err := Split(full, partition)
	require.NoError(t, err)

	back, err := Merge(pieces, partition)
	require.NoError(t, err)
	requireAmplitudesEqual(t, full, back)
}

// TestMerge_PrefixAndGeneral_Agree checks the cheap prefix path and the
// general fallback produce the same natural-order state for a partition
// where both are applicable (prefix is a special case of the general rule).
func TestMerge_PrefixAndGeneral_Agree(t *testing.T) {
	partition, err := NewPartition(4, []int{0, 1})
	require.NoError(t, err)

	full := distinctFullState(4)
	pieces, err := Split(full, partition)
	require.NoError(t, err)

	cheap, err := Merge(pieces, partition)
	require.NoError(t, err)

	general := make([]complex128, len(full))
	for i := range pieces {
		for li := range pieces[i].Amplitudes {
			general[naturalIndex(i, li, partition)] = pieces[i].Amplitudes[li]
		}
	}
	requireAmplitudesEqual(t, cheap, general)
}

// TestBridge_RunSwap_DelegatesToSwapEngine checks RunSwap exchanges roles
// under the wave's ActiveGlobal-derived partition.
func TestBridge_RunSwap_DelegatesToSwapEngine(t *testing.T) {
	base, err := NewPartition(3, []int{0})
	require.NoError(t, err)
	pieces := NewPieces(base)

	w := Wave{Kind: WaveSwap, Swap: SwapPair{Global: 0, Local: 1}, ActiveGlobal: []int{0}}
	b := Bridge{}
	require.NoError(t, b.RunSwap(w, pieces, base))
}

// TestBridge_RunSwap_WrongKind rejects a non-swap wave.
func TestBridge_RunSwap_WrongKind(t *testing.T) {
	base, err := NewPartition(3, []int{0})
	require.NoError(t, err)
	pieces := NewPieces(base)

	b := Bridge{}
	require.Error(t, b.RunSwap(Wave{Kind: WaveGates}, pieces, base))
}

// TestBridge_RunSpecial_Reset checks a Reset special gate collapses the
// merged state back to |0...0>.
func TestBridge_RunSpecial_Reset(t *testing.T) {
	base, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	pieces, err := Split(distinctFullState(3), base)
	require.NoError(t, err)

	w := Wave{Kind: WaveSpecial, Special: op(gate.NewReset()), ActiveGlobal: []int{0}}
	b := Bridge{}
	out, err := b.RunSpecial(w, pieces, base)
	require.NoError(t, err)

	full, err := Merge(out, base)
	require.NoError(t, err)
	require.Equal(t, complex(1.0, 0), full[0])
	for i := 1; i < len(full); i++ {
		require.Equal(t, complex128(0), full[i])
	}
}

// TestBridge_RunSpecial_Callback checks a Callback special gate runs
// against the merged full state and its mutation survives the split.
func TestBridge_RunSpecial_Callback(t *testing.T) {
	base, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	pieces, err := Split(distinctFullState(3), base)
	require.NoError(t, err)

	cb := gate.NewCallback("negate", func(state []complex128) error {
		for i := range state {
			state[i] = -state[i]
		}
		return nil
	})
	w := Wave{Kind: WaveSpecial, Special: op(cb), ActiveGlobal: []int{0}}

	b := Bridge{}
	out, err := b.RunSpecial(w, pieces, base)
	require.NoError(t, err)

	full, err := Merge(out, base)
	require.NoError(t, err)

	want := distinctFullState(3)
	for i := range want {
		want[i] = -want[i]
	}
	requireAmplitudesEqual(t, want, full)
}

// TestBridge_RunSpecial_UnsupportedGate rejects a special gate with no
// bridge handler.
func TestBridge_RunSpecial_UnsupportedGate(t *testing.T) {
	base, err := NewPartition(3, []int{0})
	require.NoError(t, err)
	pieces := NewPieces(base)

	w := Wave{Kind: WaveSpecial, Special: op(fakeSpecialGate{}), ActiveGlobal: []int{0}}
	b := Bridge{}
	_, err = b.RunSpecial(w, pieces, base)
	require.ErrorIs(t, err, ErrUnsupportedFeature)
}

type fakeSpecialGate struct{}

func (fakeSpecialGate) Name() string       { return "FAKE" }
func (fakeSpecialGate) QubitSpan() int     { return 0 }
func (fakeSpecialGate) DrawSymbol() string { return "?" }
func (fakeSpecialGate) Targets() []int     { return nil }
func (fakeSpecialGate) Controls() []int    { return nil }
