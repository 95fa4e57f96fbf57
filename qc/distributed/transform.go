package distributed

import (
	"fmt"

	"github.com/00mjk/qibo/qc/circuit"
	"github.com/00mjk/qibo/qc/gate"
)

// StepKind distinguishes the two kinds of transform step.
type StepKind int

const (
	// StepGates holds a batch of operations that are local-only (no
	// global qubit appears as a target) under ActiveGlobal.
	StepGates StepKind = iota
	// StepSwap records a single global<->local role exchange that must
	// run before the following steps.
	StepSwap
	// StepSpecial holds a zero-span special gate (gate.IsSpecial), e.g.
	// a Callback or Reset, which the Special-Gate Bridge executes
	// against the fully merged state.
	StepSpecial
)

// SwapPair names an unordered pair of qubit ids to exchange roles. Which
// one is currently global must be resolved against the step's
// ActiveGlobal (see TransformStep.ResolveSwap), since the undo tail
// replays the same pair after their roles have already flipped.
type SwapPair struct {
	Global int
	Local  int
}

// ResolveSwap returns (global, local) for a StepSwap step, determined by
// which of the pair's two qubits is in ActiveGlobal at this point in the
// schedule rather than trusting the struct field names verbatim.
func (s TransformStep) ResolveSwap() (global, local int) {
	for _, g := range s.ActiveGlobal {
		if g == s.Swap.Global {
			return s.Swap.Global, s.Swap.Local
		}
		if g == s.Swap.Local {
			return s.Swap.Local, s.Swap.Global
		}
	}
	return s.Swap.Global, s.Swap.Local
}

// TransformStep is one entry of a transformed queue.
type TransformStep struct {
	Kind         StepKind
	Gates        []circuit.Operation // StepGates
	Swap         SwapPair            // StepSwap
	Special      circuit.Operation   // StepSpecial
	ActiveGlobal []int               // the global qubit set in effect for this step
}

// TransformResult is the Queue Transformer's output: an ordered sequence
// of steps plus the partition the circuit started and ends with (they
// must match, per the swap-undo tail).
type TransformResult struct {
	Steps         []TransformStep
	InitialGlobal []int
	FinalGlobal   []int
}

// defaultCommutes is the conservative fallback commutation rule: two
// operations commute if they touch disjoint qubits, or if both gates
// report IsDiagonal() via the gate.Diagonal capability interface (two
// diagonal gates always commute regardless of shared qubits).
func defaultCommutes(a, b circuit.Operation) bool {
	if bothDiagonal(a.G, b.G) {
		return true
	}
	return !sharesQubit(a.Qubits, b.Qubits)
}

func bothDiagonal(a, b gate.Gate) bool {
	da, ok := a.(gate.Diagonal)
	if !ok || !da.IsDiagonal() {
		return false
	}
	db, ok := b.(gate.Diagonal)
	return ok && db.IsDiagonal()
}

func sharesQubit(a, b []int) bool {
	set := make(map[int]bool, len(a))
	for _, q := range a {
		set[q] = true
	}
	for _, q := range b {
		if set[q] {
			return true
		}
	}
	return false
}

// commutes checks a's Commuter capability first, falling back to the
// conservative default.
func commutes(a, b circuit.Operation) bool {
	if c, ok := a.G.(Commuter); ok {
		return c.CommutesWith(b)
	}
	return defaultCommutes(a, b)
}

// absoluteTargetsControls resolves an operation's Gate.Targets()/
// Controls() (relative offsets into the gate's span) against its
// absolute op.Qubits, returning absolute qubit ids.
func absoluteTargetsControls(op circuit.Operation) (targets, controls []int) {
	for _, rel := range op.G.Targets() {
		if rel >= 0 && rel < len(op.Qubits) {
			targets = append(targets, op.Qubits[rel])
		}
	}
	for _, rel := range op.G.Controls() {
		if rel >= 0 && rel < len(op.Qubits) {
			controls = append(controls, op.Qubits[rel])
		}
	}
	return
}

// pickSwapPartner chooses a local qubit to trade roles with a global
// target qubit, preferring a local qubit not touched by the current gate,
// smallest id first — a simplified, deterministic stand-in for the
// original's counter.argsort() partner selection.
func pickSwapPartner(p *Partition, avoid map[int]bool) (int, error) {
	for _, l := range p.Local {
		if !avoid[l] {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: no local qubit available to swap", ErrInvalidGlobalSwap)
}

// Transform runs the Queue Transformer: it walks queue in program order,
// inserting global<->local swaps whenever an operation would otherwise
// apply a gate to a global qubit as a target, and appends a swap-undo
// tail so the circuit's global qubit set returns to its starting value.
// Grounded on DeviceQueues._transform / .transform in
// original_source/distcircuit.py.
func Transform(queue []circuit.Operation, partition *Partition) (*TransformResult, error) {
	result := &TransformResult{InitialGlobal: append([]int(nil), partition.Global...)}

	cur := partition
	var pending []circuit.Operation
	var swapLog []SwapPair

	flush := func() {
		if len(pending) == 0 {
			return
		}
		result.Steps = append(result.Steps, TransformStep{
			Kind:         StepGates,
			Gates:        pending,
			ActiveGlobal: append([]int(nil), cur.Global...),
		})
		pending = nil
	}

	for _, op := range queue {
		if gate.IsSpecial(op.G) {
			flush()
			result.Steps = append(result.Steps, TransformStep{
				Kind:         StepSpecial,
				Special:      op,
				ActiveGlobal: append([]int(nil), cur.Global...),
			})
			continue
		}

		targets, _ := absoluteTargetsControls(op)

		var globalTargets []int
		for _, t := range targets {
			if cur.IsGlobal(t) {
				globalTargets = append(globalTargets, t)
			}
		}

		if len(globalTargets) == 0 {
			if len(pending) > 0 && !commutes(pending[len(pending)-1], op) {
				flush()
			}
			pending = append(pending, op)
			continue
		}

		if len(globalTargets) > 1 {
			return nil, fmt.Errorf("%w: gate %s targets multiple global qubits %v", ErrInvalidGlobalSwap, op.G.Name(), globalTargets)
		}

		g := globalTargets[0]

		// A bare SWAP between exactly one global and one local qubit IS a
		// role exchange: the user's own two target qubits become the swap
		// pair directly, and the gate is fully consumed by it, rather than
		// picking an unrelated partner and then still running the SWAP
		// body locally afterward.
		if op.G.Name() == "SWAP" && len(targets) == 2 {
			other := targets[0]
			if other == g {
				other = targets[1]
			}
			if !cur.IsGlobal(other) {
				flush()
				result.Steps = append(result.Steps, TransformStep{
					Kind:         StepSwap,
					Swap:         SwapPair{Global: g, Local: other},
					ActiveGlobal: append([]int(nil), cur.Global...),
				})
				swapLog = append(swapLog, SwapPair{Global: g, Local: other})

				var err error
				cur, err = cur.SwapRoles(g, other)
				if err != nil {
					return nil, err
				}
				continue
			}
		}

		avoid := make(map[int]bool, len(op.Qubits))
		for _, q := range op.Qubits {
			avoid[q] = true
		}
		l, err := pickSwapPartner(cur, avoid)
		if err != nil {
			return nil, err
		}

		flush()
		result.Steps = append(result.Steps, TransformStep{
			Kind:         StepSwap,
			Swap:         SwapPair{Global: g, Local: l},
			ActiveGlobal: append([]int(nil), cur.Global...),
		})
		swapLog = append(swapLog, SwapPair{Global: g, Local: l})

		cur, err = cur.SwapRoles(g, l)
		if err != nil {
			return nil, err
		}

		pending = append(pending, op)
	}
	flush()

	// swap-undo tail: restore the initial global set by replaying the
	// swap log in reverse, exactly as DeviceQueues.transform appends
	// swaps_list[::-1].
	for i := len(swapLog) - 1; i >= 0; i-- {
		s := swapLog[i]
		result.Steps = append(result.Steps, TransformStep{
			Kind:         StepSwap,
			Swap:         s,
			ActiveGlobal: append([]int(nil), cur.Global...),
		})
		// After the forward swap, s.Local holds the global role and
		// s.Global holds the local role; undo by swapping them back.
		var err error
		cur, err = cur.SwapRoles(s.Local, s.Global)
		if err != nil {
			return nil, err
		}
	}

	result.FinalGlobal = append([]int(nil), cur.Global...)
	if !sameQubitSet(result.FinalGlobal, result.InitialGlobal) {
		return nil, fmt.Errorf("%w: final global set %v does not match initial %v", ErrInvalidGlobalSwap, result.FinalGlobal, result.InitialGlobal)
	}
	return result, nil
}

func sameQubitSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
