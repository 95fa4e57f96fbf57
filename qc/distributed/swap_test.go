package distributed

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
)

// fillDistinct assigns each amplitude a distinct value so any permutation
// bug shows up as a mismatched index rather than an accidental pass.
func fillDistinct(pieces []Piece) {
	n := 0
	for i := range pieces {
		for j := range pieces[i].Amplitudes {
			pieces[i].Amplitudes[j] = complex(float64(n), float64(-n))
			n++
		}
	}
}

func clonePieces(pieces []Piece) []Piece {
	out := make([]Piece, len(pieces))
	for i, p := range pieces {
		out[i] = Piece{Amplitudes: append([]complex128(nil), p.Amplitudes...)}
	}
	return out
}

// TestSwapEngine_PreservesPhysicalState checks SwapEngine.Swap's defining
// property: exchanging global qubit g and local qubit l's roles rearranges
// which piece/offset holds each amplitude, but the natural-order full state
// (Merge'd under the correspondingly role-swapped partition) is unchanged.
func TestSwapEngine_PreservesPhysicalState(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	pieces := make([]Piece, partition.DeviceCount())
	for i := range pieces {
		pieces[i] = Piece{Amplitudes: make([]complex128, partition.PieceSize())}
	}
	fillDistinct(pieces)

	before, err := Merge(pieces, partition)
	require.NoError(t, err)

	engine := SwapEngine{}
	require.NoError(t, engine.Swap(pieces, partition, 0, 2))

	swappedPartition, err := partition.SwapRoles(0, 2)
	require.NoError(t, err)

	after, err := Merge(pieces, swappedPartition)
	require.NoError(t, err)

	for i := range before {
		require.InDelta(t, 0, cmplx.Abs(before[i]-after[i]), 1e-9, "amplitude %d moved under swap", i)
	}
}

// TestSwapEngine_RejectsBadRoles asserts the guard against swapping a
// qubit that is not currently global/local as claimed.
func TestSwapEngine_RejectsBadRoles(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)
	pieces := NewPieces(partition)

	engine := SwapEngine{}
	require.Error(t, engine.Swap(pieces, partition, 1, 2)) // 1 is not global
	require.Error(t, engine.Swap(pieces, partition, 0, 0)) // 0 is not local
}

// TestSwapEngine_IsInvolution swapping a pair and then swapping it back
// (resolved against the post-swap partition, the way the Queue
// Transformer's undo tail does it) restores the original piece layout.
func TestSwapEngine_IsInvolution(t *testing.T) {
	partition, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	pieces := make([]Piece, partition.DeviceCount())
	for i := range pieces {
		pieces[i] = Piece{Amplitudes: make([]complex128, partition.PieceSize())}
	}
	fillDistinct(pieces)
	original := clonePieces(pieces)

	engine := SwapEngine{}
	require.NoError(t, engine.Swap(pieces, partition, 0, 2))

	swapped, err := partition.SwapRoles(0, 2)
	require.NoError(t, err)
	require.NoError(t, engine.Swap(pieces, swapped, 2, 0))

	for i := range pieces {
		require.Equal(t, original[i].Amplitudes, pieces[i].Amplitudes)
	}
}

// TestSwapEngine_NonAdjacentSwap_MatchesIntervening_Involution exercises
// the general (Merge/Split) path specifically: an intervening local qubit
// (1) sits between global qubit 0 and local qubit 2, so a naive per-device
// pairwise exchange at a fixed local bit position would not account for
// qubit 1's reduction number shifting. A swap-then-undo round trip must
// still restore the original layout exactly.
func TestSwapEngine_NonAdjacentSwap_MatchesIntervening_Involution(t *testing.T) {
	partition, err := NewPartition(4, []int{0})
	require.NoError(t, err)
	require.False(t, adjacentRoleSwap(partition, 0, 3))

	pieces := make([]Piece, partition.DeviceCount())
	for i := range pieces {
		pieces[i] = Piece{Amplitudes: make([]complex128, partition.PieceSize())}
	}
	fillDistinct(pieces)
	original := clonePieces(pieces)

	engine := SwapEngine{}
	require.NoError(t, engine.Swap(pieces, partition, 0, 3))

	swapped, err := partition.SwapRoles(0, 3)
	require.NoError(t, err)
	require.NoError(t, engine.Swap(pieces, swapped, 3, 0))

	for i := range pieces {
		require.Equal(t, original[i].Amplitudes, pieces[i].Amplitudes)
	}
}
