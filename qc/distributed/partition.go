package distributed

import (
	"fmt"
	"sort"
)

// Partition assigns each of the circuit's qubits to either the global role
// (its bit selects which device/piece holds an amplitude) or the local
// role (its bit selects the offset within a piece). Grounded on
// DeviceQueues.__init__ / global_qubits_reduced / local_qubits_reduced in
// original_source/distcircuit.py.
type Partition struct {
	NQubits int
	Global  []int // sorted ascending, len == log2(D)
	Local   []int // sorted ascending, the complement of Global

	// GlobalReduced/LocalReduced map an absolute qubit id to its index
	// within Global/Local, i.e. qibo's "reduction_number".
	GlobalReduced map[int]int
	LocalReduced  map[int]int
}

// NewPartition validates and builds a Partition. nglobal must equal
// len(global); every id in global must be in range and unique.
func NewPartition(nqubits int, global []int) (*Partition, error) {
	if nqubits <= 0 {
		return nil, fmt.Errorf("%w: nqubits must be positive, got %d", ErrInvalidPartition, nqubits)
	}
	if len(global) == 0 || len(global) >= nqubits {
		return nil, fmt.Errorf("%w: global set size %d invalid for %d qubits", ErrInvalidPartition, len(global), nqubits)
	}

	seen := make(map[int]bool, len(global))
	sortedGlobal := append([]int(nil), global...)
	sort.Ints(sortedGlobal)
	for _, g := range sortedGlobal {
		if g < 0 || g >= nqubits {
			return nil, fmt.Errorf("%w: global qubit %d out of range [0,%d)", ErrInvalidPartition, g, nqubits)
		}
		if seen[g] {
			return nil, fmt.Errorf("%w: duplicate global qubit %d", ErrInvalidPartition, g)
		}
		seen[g] = true
	}

	local := make([]int, 0, nqubits-len(global))
	for q := 0; q < nqubits; q++ {
		if !seen[q] {
			local = append(local, q)
		}
	}

	return buildPartition(nqubits, sortedGlobal, local), nil
}

func buildPartition(nqubits int, global, local []int) *Partition {
	gr := make(map[int]int, len(global))
	for i, g := range global {
		gr[g] = i
	}
	lr := make(map[int]int, len(local))
	for i, l := range local {
		lr[l] = i
	}
	return &Partition{
		NQubits:       nqubits,
		Global:        global,
		Local:         local,
		GlobalReduced: gr,
		LocalReduced:  lr,
	}
}

// NGlobal is the number of global qubits (log2 of device count).
func (p *Partition) NGlobal() int { return len(p.Global) }

// NLocal is the number of local qubits (log2 of piece size).
func (p *Partition) NLocal() int { return len(p.Local) }

// DeviceCount returns D = 2^NGlobal.
func (p *Partition) DeviceCount() int { return 1 << p.NGlobal() }

// PieceSize returns 2^NLocal, the amplitude count per piece.
func (p *Partition) PieceSize() int { return 1 << p.NLocal() }

// IsGlobal reports whether qubit q currently holds the global role.
func (p *Partition) IsGlobal(q int) bool {
	_, ok := p.GlobalReduced[q]
	return ok
}

// WithGlobal returns a new Partition over the same qubits whose global set
// is the given one, validated like NewPartition. It never mutates the
// receiver.
func (p *Partition) WithGlobal(global []int) (*Partition, error) {
	return NewPartition(p.NQubits, global)
}

// SwapRoles returns the partition obtained by exchanging the roles of
// global qubit g and local qubit l.
func (p *Partition) SwapRoles(g, l int) (*Partition, error) {
	if !p.IsGlobal(g) {
		return nil, fmt.Errorf("%w: qubit %d is not currently global", ErrInvalidGlobalSwap, g)
	}
	if p.IsGlobal(l) {
		return nil, fmt.Errorf("%w: cannot swap two global qubits (%d,%d)", ErrInvalidGlobalSwap, g, l)
	}
	newGlobal := make([]int, len(p.Global))
	for i, q := range p.Global {
		if q == g {
			newGlobal[i] = l
		} else {
			newGlobal[i] = q
		}
	}
	return p.WithGlobal(newGlobal)
}

// ChooseInitialGlobal picks the nglobal qubits with the smallest usage
// counters (ties broken by ascending qubit id), the same selection rule
// as TensorflowDistributedCircuit._default_global_qubits's
// counter.argsort()[:nglobal].
func ChooseInitialGlobal(counter []int, nglobal int) []int {
	ids := make([]int, len(counter))
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(i, j int) bool {
		ci, cj := counter[ids[i]], counter[ids[j]]
		if ci != cj {
			return ci < cj
		}
		return ids[i] < ids[j]
	})
	if nglobal > len(ids) {
		nglobal = len(ids)
	}
	chosen := append([]int(nil), ids[:nglobal]...)
	sort.Ints(chosen)
	return chosen
}

// GateQubitCounter builds the usage counter (number of operations touching
// each qubit) used by ChooseInitialGlobal, grounded on
// DeviceQueues.count in the Python original.
func GateQubitCounter(nqubits int, allQubits [][]int) []int {
	counter := make([]int, nqubits)
	for _, qubits := range allQubits {
		for _, q := range qubits {
			if q >= 0 && q < nqubits {
				counter[q]++
			}
		}
	}
	return counter
}
