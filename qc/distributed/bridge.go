package distributed

import (
	"fmt"

	"github.com/00mjk/qibo/qc/gate"
)

// reverseBits reverses the low n bits of v.
func reverseBits(v, n int) int {
	r := 0
	for i := 0; i < n; i++ {
		r |= ((v >> uint(i)) & 1) << uint(n-1-i)
	}
	return r
}

// isPrefixGlobal reports whether partition.Global == {0,...,nglobal-1}.
func isPrefixGlobal(p *Partition) bool {
	for i, q := range p.Global {
		if q != i {
			return false
		}
	}
	return true
}

// isSuffixGlobal reports whether partition.Global == {nqubits-nglobal,...,nqubits-1}.
func isSuffixGlobal(p *Partition) bool {
	start := p.NQubits - p.NGlobal()
	for i, q := range p.Global {
		if q != start+i {
			return false
		}
	}
	return true
}

// Merge concatenates pieces into one natural-order amplitude vector,
// where bit position (NQubits-1-q) holds qubit q's value — independent
// of which qubits currently play the global role. Takes the cheap
// prefix/suffix path when possible, falling back to the general
// per-qubit transpose otherwise. Grounded on
// TensorflowDistributedCircuit._merge in original_source/distcircuit.py.
func Merge(pieces []Piece, partition *Partition) ([]complex128, error) {
	if len(pieces) != partition.DeviceCount() {
		return nil, fmt.Errorf("%w: expected %d pieces, got %d", ErrResourceExhausted, partition.DeviceCount(), len(pieces))
	}
	full := make([]complex128, 1<<uint(partition.NQubits))
	nlocal := partition.NLocal()

	switch {
	case isPrefixGlobal(partition):
		for i, p := range pieces {
			base := i << uint(nlocal)
			for li, amp := range p.Amplitudes {
				full[base|reverseBits(li, nlocal)] = amp
			}
		}
	case isSuffixGlobal(partition):
		nglobal := partition.NGlobal()
		for i, p := range pieces {
			for li, amp := range p.Amplitudes {
				full[i|(reverseBits(li, nlocal)<<uint(nglobal))] = amp
			}
		}
	default:
		for i, p := range pieces {
			for li, amp := range p.Amplitudes {
				full[naturalIndex(i, li, partition)] = amp
			}
		}
	}
	return full, nil
}

// Split is Merge's structural inverse: it distributes a natural-order
// amplitude vector into per-device pieces under partition.
func Split(full []complex128, partition *Partition) ([]Piece, error) {
	if len(full) != 1<<uint(partition.NQubits) {
		return nil, fmt.Errorf("%w: expected %d amplitudes, got %d", ErrResourceExhausted, 1<<uint(partition.NQubits), len(full))
	}
	pieces := make([]Piece, partition.DeviceCount())
	pieceSize := partition.PieceSize()
	for i := range pieces {
		pieces[i] = Piece{Amplitudes: make([]complex128, pieceSize)}
	}
	nlocal := partition.NLocal()

	switch {
	case isPrefixGlobal(partition):
		for idx, amp := range full {
			i := idx >> uint(nlocal)
			li := reverseBits(idx&(pieceSize-1), nlocal)
			pieces[i].Amplitudes[li] = amp
		}
	case isSuffixGlobal(partition):
		nglobal := partition.NGlobal()
		for idx, amp := range full {
			i := idx & ((1 << uint(nglobal)) - 1)
			li := reverseBits(idx>>uint(nglobal), nlocal)
			pieces[i].Amplitudes[li] = amp
		}
	default:
		for i := 0; i < partition.DeviceCount(); i++ {
			for li := 0; li < pieceSize; li++ {
				pieces[i].Amplitudes[li] = full[naturalIndex(i, li, partition)]
			}
		}
	}
	return pieces, nil
}

// naturalIndex maps a (device index, local index) pair, expressed in the
// Parallel Dispatcher's internal bit convention, to its natural full-
// state index. General fallback used when Global is neither a prefix nor
// a suffix of the qubit range.
func naturalIndex(i, li int, p *Partition) int {
	idx := 0
	for gi, q := range p.Global {
		bit := (i >> uint(p.NGlobal()-1-gi)) & 1
		idx |= bit << uint(p.NQubits-1-q)
	}
	for liIdx, q := range p.Local {
		bit := (li >> uint(liIdx)) & 1
		idx |= bit << uint(p.NQubits-1-q)
	}
	return idx
}

// Bridge runs the special (zero-span) waves that can't be expressed as
// per-device local gates: qubit-role swaps and full-state callbacks.
// Because TransformStep/Wave already carry the exact global qubit set in
// effect at each point (ActiveGlobal), and Merge/Split work for any
// partition, the bridge needs no separate swap-revert/redo bookkeeping
// the way the original's _special_gate_execute does — merging against
// the wave's own ActiveGlobal partition already yields the right state.
type Bridge struct {
	Swap SwapEngine
}

// RunSwap executes a WaveSwap wave in place against pieces.
func (b Bridge) RunSwap(w Wave, pieces []Piece, base *Partition) error {
	if w.Kind != WaveSwap {
		return fmt.Errorf("distributed: RunSwap called with non-swap wave kind %d", w.Kind)
	}
	active, err := base.WithGlobal(w.ActiveGlobal)
	if err != nil {
		return err
	}
	return b.Swap.Swap(pieces, active, w.Swap.Global, w.Swap.Local)
}

// RunSpecial executes a WaveSpecial wave: merges pieces into the full
// state under the wave's active partition, runs the special gate
// (Callback or Reset) against it, then splits the result back.
func (b Bridge) RunSpecial(w Wave, pieces []Piece, base *Partition) ([]Piece, error) {
	if w.Kind != WaveSpecial {
		return nil, fmt.Errorf("distributed: RunSpecial called with non-special wave kind %d", w.Kind)
	}
	active, err := base.WithGlobal(w.ActiveGlobal)
	if err != nil {
		return nil, err
	}

	full, err := Merge(pieces, active)
	if err != nil {
		return nil, err
	}

	switch g := w.Special.G.(type) {
	case *gate.Callback:
		if err := g.Run(full); err != nil {
			return nil, err
		}
	case *gate.Reset:
		for i := range full {
			full[i] = 0
		}
		full[0] = 1
	default:
		return nil, fmt.Errorf("%w: special gate %q has no bridge handler", ErrUnsupportedFeature, w.Special.G.Name())
	}

	return Split(full, active)
}
