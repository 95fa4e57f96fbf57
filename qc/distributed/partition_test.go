package distributed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPartition_ValidSplit(t *testing.T) {
	p, err := NewPartition(3, []int{0})
	require.NoError(t, err)
	require.Equal(t, []int{0}, p.Global)
	require.Equal(t, []int{1, 2}, p.Local)
	require.Equal(t, 2, p.DeviceCount())
	require.Equal(t, 4, p.PieceSize())
	require.True(t, p.IsGlobal(0))
	require.False(t, p.IsGlobal(1))
}

func TestNewPartition_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		nqubits int
		global  []int
	}{
		{"zero qubits", 0, []int{0}},
		{"empty global", 3, nil},
		{"global covers everything", 2, []int{0, 1}},
		{"out of range", 3, []int{5}},
		{"duplicate", 3, []int{0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPartition(tc.nqubits, tc.global)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidPartition))
		})
	}
}

func TestPartition_SwapRoles(t *testing.T) {
	p, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	swapped, err := p.SwapRoles(0, 2)
	require.NoError(t, err)
	require.Equal(t, []int{2}, swapped.Global)
	require.Equal(t, []int{0, 1}, swapped.Local)

	// original is untouched
	require.Equal(t, []int{0}, p.Global)
}

func TestPartition_SwapRoles_Invalid(t *testing.T) {
	p, err := NewPartition(3, []int{0})
	require.NoError(t, err)

	_, err = p.SwapRoles(1, 2) // 1 is not global
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidGlobalSwap))

	_, err = p.SwapRoles(0, 0) // can't swap a qubit with itself either way
	require.Error(t, err)
}

func TestChooseInitialGlobal_BreaksTiesByID(t *testing.T) {
	// all qubits used equally often: must pick the smallest ids
	counter := []int{5, 5, 5, 5}
	got := ChooseInitialGlobal(counter, 2)
	require.Equal(t, []int{0, 1}, got)
}

func TestChooseInitialGlobal_PrefersLeastUsed(t *testing.T) {
	counter := []int{10, 0, 10, 1}
	got := ChooseInitialGlobal(counter, 2)
	require.Equal(t, []int{1, 3}, got)
}

func TestGateQubitCounter(t *testing.T) {
	counter := GateQubitCounter(3, [][]int{{0, 1}, {1, 2}, {0}})
	require.Equal(t, []int{2, 2, 1}, counter)
}
