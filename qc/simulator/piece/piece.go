// Package piece implements the per-device amplitude kernel the Parallel
// Dispatcher runs against each piece. It generalizes the bit-mask gate
// techniques in qc/simulator/qsim/state.go to an explicit, possibly empty
// control-qubit list: a distributed reduced gate may have had some or all
// of its original controls stripped into a per-piece activation mask by
// the Wave Builder, so the fixed two/three-qubit positional dispatch the
// single-device runners use can't be reused directly (a 3-controlled-X or
// a bare 0-controlled X both occur once global controls are stripped).
package piece

import (
	"fmt"
	"math"
)

const invSqrt2 = 1 / math.Sqrt2

// controlsSatisfied reports whether every control qubit is set in idx.
// Control bits are the same for both halves of any target-bit pair, so
// checking once against idx (rather than idx and its pair) is correct.
func controlsSatisfied(idx int, controls []int) bool {
	for _, c := range controls {
		if idx&(1<<uint(c)) == 0 {
			return false
		}
	}
	return true
}

// Apply dispatches a gate, by canonical name, against a single piece's
// amplitude buffer. targets/controls are device-local qubit indices
// (already reindexed by the Wave Builder); controls may be empty.
func Apply(amps []complex128, name string, targets, controls []int) error {
	switch name {
	case "H":
		return applyH(amps, targets[0], controls)
	case "X", "CNOT", "TOFFOLI":
		return applyControlledX(amps, targets[0], controls)
	case "Y":
		return applyY(amps, targets[0], controls)
	case "Z", "CZ":
		return applyControlledPhase(amps, targets[0], controls, -1)
	case "S":
		return applyControlledPhase(amps, targets[0], controls, complex(0, 1))
	case "SWAP", "FREDKIN":
		if len(targets) != 2 {
			return fmt.Errorf("piece: SWAP-family gate needs 2 targets, got %d", len(targets))
		}
		return applyControlledSwap(amps, targets[0], targets[1], controls)
	default:
		return fmt.Errorf("piece: unsupported gate %q", name)
	}
}

func applyH(amps []complex128, target int, controls []int) error {
	bit := 1 << uint(target)
	for idx := range amps {
		if idx&bit != 0 || !controlsSatisfied(idx, controls) {
			continue
		}
		partner := idx | bit
		a, b := amps[idx], amps[partner]
		amps[idx] = complex(invSqrt2, 0) * (a + b)
		amps[partner] = complex(invSqrt2, 0) * (a - b)
	}
	return nil
}

func applyControlledX(amps []complex128, target int, controls []int) error {
	bit := 1 << uint(target)
	for idx := range amps {
		if idx&bit != 0 || !controlsSatisfied(idx, controls) {
			continue
		}
		partner := idx | bit
		amps[idx], amps[partner] = amps[partner], amps[idx]
	}
	return nil
}

func applyY(amps []complex128, target int, controls []int) error {
	bit := 1 << uint(target)
	negI := complex(0, -1)
	posI := complex(0, 1)
	for idx := range amps {
		if idx&bit != 0 || !controlsSatisfied(idx, controls) {
			continue
		}
		partner := idx | bit
		a, b := amps[idx], amps[partner]
		amps[idx] = negI * b
		amps[partner] = posI * a
	}
	return nil
}

func applyControlledPhase(amps []complex128, target int, controls []int, phase complex128) error {
	bit := 1 << uint(target)
	for idx := range amps {
		if idx&bit == 0 || !controlsSatisfied(idx, controls) {
			continue
		}
		amps[idx] *= phase
	}
	return nil
}

func applyControlledSwap(amps []complex128, t0, t1 int, controls []int) error {
	b0, b1 := 1<<uint(t0), 1<<uint(t1)
	for idx := range amps {
		// process the (t0=0,t1=1) half of each differing pair once
		if idx&b0 != 0 || idx&b1 == 0 || !controlsSatisfied(idx, controls) {
			continue
		}
		partner := idx ^ b0 ^ b1
		amps[idx], amps[partner] = amps[partner], amps[idx]
	}
	return nil
}
