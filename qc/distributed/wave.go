package distributed

import (
	"github.com/00mjk/qibo/qc/circuit"
	"github.com/00mjk/qibo/qc/gate"
)

// ReducedGate is a gate bound to one device's local qubit indices, with
// any global qubits it was controlled on already stripped (the device's
// inclusion in the wave *is* that control's effect). Adapts the teacher's
// otherwise-unused gate.GateStruct mutable representation.
type ReducedGate struct {
	*gate.GateStruct
}

// WaveKind distinguishes the three materialized wave shapes.
type WaveKind int

const (
	WaveGates WaveKind = iota
	WaveSwap
	WaveSpecial
)

// Wave is one barrier-synchronized step of the execution plan: either a
// per-piece batch of local-only reduced gates dispatched in parallel, a
// single global/local swap, or a special (zero-span) gate routed through
// the bridge.
type Wave struct {
	Kind         WaveKind
	Gates        map[int][]ReducedGate // piece index -> reduced gates, WaveGates only
	Swap         SwapPair              // WaveSwap only
	Special      circuit.Operation     // WaveSpecial only
	ActiveGlobal []int                 // global qubit set in effect during this wave
}

// Plan is the Wave Builder's output: the ordered waves, the partition
// the circuit was built against, and the DeviceMap the Parallel
// Dispatcher groups piece ids by.
type Plan struct {
	Waves     []Wave
	Partition *Partition
	Devices   *DeviceMap
}

// BuildWaves materializes a TransformResult into piece-addressable
// waves, carrying devices through to the Plan so the Parallel Dispatcher
// can group piece ids by physical device name. Grounded on
// DeviceQueues.create in original_source/distcircuit.py.
func BuildWaves(tr *TransformResult, base *Partition, devices *DeviceMap) (*Plan, error) {
	plan := &Plan{Partition: base, Devices: devices}

	for _, step := range tr.Steps {
		switch step.Kind {
		case StepSwap:
			g, l := step.ResolveSwap()
			plan.Waves = append(plan.Waves, Wave{
				Kind:         WaveSwap,
				Swap:         SwapPair{Global: g, Local: l},
				ActiveGlobal: step.ActiveGlobal,
			})
		case StepSpecial:
			plan.Waves = append(plan.Waves, Wave{
				Kind:         WaveSpecial,
				Special:      step.Special,
				ActiveGlobal: step.ActiveGlobal,
			})
		case StepGates:
			active, err := base.WithGlobal(step.ActiveGlobal)
			if err != nil {
				return nil, err
			}
			byPiece, err := reduceGates(step.Gates, active)
			if err != nil {
				return nil, err
			}
			plan.Waves = append(plan.Waves, Wave{
				Kind:         WaveGates,
				Gates:        byPiece,
				ActiveGlobal: step.ActiveGlobal,
			})
		}
	}

	if len(plan.Waves) == 0 {
		return nil, ErrPlanEmpty
	}
	return plan, nil
}

// reduceGates produces, for every piece, the list of reduced gates it
// must apply locally. A global control qubit determines *whether* a
// piece participates at all (per-piece activation, computed with the
// same bit arithmetic as DeviceQueues.create's
// `ic = nglobal - index(control) - 1; flag = bool((i // 2**ic) % 2)`);
// a local control qubit remains a genuine per-amplitude control passed to
// the piece kernel.
func reduceGates(ops []circuit.Operation, partition *Partition) (map[int][]ReducedGate, error) {
	scratch := circuit.BorrowOperationScratch(len(ops))
	copy(scratch, ops)
	defer circuit.ReturnOperationSlice(scratch)

	byPiece := make(map[int][]ReducedGate, partition.DeviceCount())
	for i := 0; i < partition.DeviceCount(); i++ {
		for _, op := range scratch {
			targets, controls := absoluteTargetsControls(op)

			var globalControls, localControls []int
			for _, c := range controls {
				if partition.IsGlobal(c) {
					globalControls = append(globalControls, c)
				} else {
					localControls = append(localControls, c)
				}
			}

			activated := true
			for _, c := range globalControls {
				ic := partition.NGlobal() - partition.GlobalReduced[c] - 1
				if (i>>uint(ic))&1 == 0 {
					activated = false
					break
				}
			}
			if !activated {
				continue
			}

			for _, t := range targets {
				if partition.IsGlobal(t) {
					return nil, ErrInsufficientQubits
				}
			}

			localTargets := make([]int, len(targets))
			for j, t := range targets {
				localTargets[j] = partition.LocalReduced[t]
			}
			localCtrlIdx := make([]int, len(localControls))
			for j, c := range localControls {
				localCtrlIdx[j] = partition.LocalReduced[c]
			}

			rg := ReducedGate{gate.NewGateStruct(op.G.Name(), localTargets, localCtrlIdx)}
			byPiece[i] = append(byPiece[i], rg)
		}
	}
	return byPiece, nil
}
